package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"sync"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"

	pg "github.com/zeeql/pgadaptor"
	"github.com/zeeql/pgadaptor/arrowbatches"
)

// batchSummary is what one worker computed for one Arrow record.
type batchSummary struct {
	worker  int
	rows    int64
	idSum   int64
	longest string
}

// Reads generated rows into Arrow records and summarizes the records on a
// small worker pool.
func main() {
	batchSize := flag.Int("batchsize", 1000, "rows per arrow record")
	rows := flag.Int("rows", 30000, "number of generated rows")
	workers := flag.Int("workers", 4, "number of workers")
	flag.Parse()

	dsn := os.Getenv("PGADAPTOR_TEST_DSN")
	if dsn == "" {
		log.Fatal("PGADAPTOR_TEST_DSN is not set")
	}
	ctx := arrowbatches.WithBatchSize(context.Background(), *batchSize)

	ch, err := pg.OpenChannel(ctx, dsn, pg.ChannelOptions{})
	if err != nil {
		log.Fatalf("cannot open channel: %v", err)
	}
	defer ch.Close()

	batch, err := arrowbatches.Query(ctx, ch, memory.DefaultAllocator,
		"SELECT n::int4 AS id, 'person ' || n AS name FROM generate_series(1, $1::int4) AS n",
		pg.Int32(int32(*rows)))
	if err != nil {
		log.Fatalf("query failed: %v", err)
	}
	defer batch.Release()

	records := batch.Fetch()
	summaries := make([]batchSummary, len(records))
	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < *workers; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for i := range jobs {
				summaries[i] = summarize(records[i], worker)
			}
		}(w)
	}
	for i := range records {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	var total int64
	for i, s := range summaries {
		fmt.Printf("record %d: worker %d, %d rows, id sum %d, longest name %q\n", i, s.worker, s.rows, s.idSum, s.longest)
		total += s.rows
	}
	fmt.Printf("%d rows in %d records (expected %d)\n", total, len(records), batch.GetRowCount())
}

func summarize(record arrow.Record, worker int) batchSummary {
	s := batchSummary{worker: worker, rows: record.NumRows()}
	for _, id := range record.Column(0).(*array.Int32).Int32Values() {
		s.idSum += int64(id)
	}
	names := record.Column(1).(*array.String)
	for i := 0; i < names.Len(); i++ {
		if name := names.Value(i); len(name) > len(s.longest) {
			s.longest = name
		}
	}
	return s
}
