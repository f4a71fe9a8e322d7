package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"

	pg "github.com/zeeql/pgadaptor"
)

// Runs one parameterized SELECT against the database named by
// PGADAPTOR_TEST_DSN.
func main() {
	logSQL := flag.Bool("logsql", false, "log statements at info level")
	flag.Parse()

	dsn := os.Getenv("PGADAPTOR_TEST_DSN")
	if dsn == "" {
		log.Fatal("PGADAPTOR_TEST_DSN is not set")
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	adaptor := pg.NewAdaptor(dsn, pg.ChannelOptions{LogSQL: *logSQL})
	ch, err := adaptor.OpenChannel(ctx)
	if err != nil {
		log.Fatalf("cannot open channel for %v: %v", adaptor, err)
	}
	defer adaptor.ReleaseChannel(ch)

	const query = "SELECT $1::int4 + 1 AS v"
	records, err := ch.FetchRecords(ctx, query, pg.Int32(0))
	if err != nil {
		log.Fatalf("%v failed: %v", query, err)
	}
	if len(records) != 1 {
		log.Fatalf("expected one record, got %d", len(records))
	}
	if v, ok := records[0].Get("v"); !ok || v != pg.Int32(1) {
		log.Fatalf("expected 1, got %v", v)
	}
	fmt.Printf("%v returned 1 on PostgreSQL %v via %v\n",
		query, ch.ServerParameter("server_version"), ch)
}
