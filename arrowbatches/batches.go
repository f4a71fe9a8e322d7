package arrowbatches

import (
	"context"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"

	pg "github.com/zeeql/pgadaptor"
)

// ArrowBatch holds the arrow records of one query result.
type ArrowBatch struct {
	records   []arrow.Record
	rowCount  int
	allocator memory.Allocator
}

// Fetch returns the arrow records of the batch. They stay owned by the batch
// until Release is called.
func (rb *ArrowBatch) Fetch() []arrow.Record {
	return rb.records
}

// GetRowCount returns the number of rows in this batch.
func (rb *ArrowBatch) GetRowCount() int {
	return rb.rowCount
}

// GetAllocator returns the memory allocator for this batch.
func (rb *ArrowBatch) GetAllocator() memory.Allocator {
	return rb.allocator
}

// Release frees all records of the batch.
func (rb *ArrowBatch) Release() {
	for _, r := range rb.records {
		r.Release()
	}
	rb.records = nil
}

// FromRecords converts records sharing one schema into a single arrow record.
// The caller releases the result.
func FromRecords(ctx context.Context, records []pg.Record, pool memory.Allocator) (arrow.Record, error) {
	if len(records) == 0 {
		return nil, nil
	}
	c := newBatchConverter(ctx, records[0].Schema(), pool)
	defer c.release()
	for _, r := range records {
		if err := c.append(r); err != nil {
			return nil, err
		}
	}
	return c.builder.NewRecord(), nil
}

// Query runs sql on ch and converts the result into arrow records of at most
// the context's batch size rows each.
func Query(ctx context.Context, ch *pg.Channel, pool memory.Allocator, sql string, binds ...pg.Value) (*ArrowBatch, error) {
	if pool == nil {
		pool = memory.DefaultAllocator
	}
	batch := &ArrowBatch{allocator: pool}
	limit := batchSize(ctx)

	var c *batchConverter
	pending := 0
	_, err := ch.Execute(ctx, sql, binds, nil, func(r pg.Record) error {
		if c == nil {
			c = newBatchConverter(ctx, r.Schema(), pool)
		}
		if err := c.append(r); err != nil {
			return err
		}
		batch.rowCount++
		pending++
		if pending == limit {
			batch.records = append(batch.records, c.builder.NewRecord())
			pending = 0
		}
		return nil
	})
	if c != nil {
		if err == nil && pending > 0 {
			batch.records = append(batch.records, c.builder.NewRecord())
		}
		c.release()
	}
	if err != nil {
		batch.Release()
		return nil, err
	}
	return batch, nil
}

type batchConverter struct {
	builder      *array.RecordBuilder
	validateUTF8 bool
}

func newBatchConverter(ctx context.Context, rs *pg.RecordSchema, pool memory.Allocator) *batchConverter {
	if pool == nil {
		pool = memory.DefaultAllocator
	}
	schema := recordToSchema(rs, timestampOption(ctx))
	return &batchConverter{
		builder:      array.NewRecordBuilder(pool, schema),
		validateUTF8: utf8ValidationEnabled(ctx),
	}
}

func (c *batchConverter) append(r pg.Record) error {
	for i := 0; i < r.Len(); i++ {
		if err := appendCell(c.builder.Field(i), r.At(i), c.validateUTF8); err != nil {
			return err
		}
	}
	return nil
}

func (c *batchConverter) release() {
	c.builder.Release()
}
