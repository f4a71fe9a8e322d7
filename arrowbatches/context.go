package arrowbatches

import "context"

// TimestampOption selects the unit of arrow timestamp columns.
type TimestampOption int

// Timestamp option constants.
const (
	// UseMicrosecondTimestamp keeps the server precision. This is the default.
	UseMicrosecondTimestamp TimestampOption = iota
	UseNanosecondTimestamp
	UseMillisecondTimestamp
	UseSecondTimestamp
)

// DefaultBatchSize is the number of rows per arrow record produced by Query.
const DefaultBatchSize = 1024

type contextKey string

const (
	timestampOptionKey contextKey = "ARROW_TIMESTAMP_OPTION"
	utf8ValidationKey  contextKey = "ARROW_UTF8_VALIDATION"
	batchSizeKey       contextKey = "ARROW_BATCH_SIZE"
)

// WithTimestampOption returns a context that sets the timestamp conversion option
// for arrow batches.
func WithTimestampOption(ctx context.Context, option TimestampOption) context.Context {
	return context.WithValue(ctx, timestampOptionKey, option)
}

// WithUtf8Validation returns a context that enables UTF-8 validation for
// string columns in arrow batches. Invalid sequences are replaced.
func WithUtf8Validation(ctx context.Context) context.Context {
	return context.WithValue(ctx, utf8ValidationKey, true)
}

// WithBatchSize returns a context that limits the rows per arrow record.
func WithBatchSize(ctx context.Context, rows int) context.Context {
	return context.WithValue(ctx, batchSizeKey, rows)
}

func timestampOption(ctx context.Context) TimestampOption {
	if v, ok := ctx.Value(timestampOptionKey).(TimestampOption); ok {
		return v
	}
	return UseMicrosecondTimestamp
}

func utf8ValidationEnabled(ctx context.Context) bool {
	v, _ := ctx.Value(utf8ValidationKey).(bool)
	return v
}

func batchSize(ctx context.Context) int {
	if v, ok := ctx.Value(batchSizeKey).(int); ok && v > 0 {
		return v
	}
	return DefaultBatchSize
}
