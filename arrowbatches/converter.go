package arrowbatches

import (
	"fmt"
	"strings"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"

	pg "github.com/zeeql/pgadaptor"
)

const secondsPerDay = 24 * 60 * 60

// appendCell appends c to the column builder b. Infinite timestamps and dates
// have no arrow representation and become nulls.
func appendCell(b array.Builder, c pg.Cell, validateUTF8 bool) error {
	if _, ok := c.(pg.Null); ok || c == nil {
		b.AppendNull()
		return nil
	}
	switch builder := b.(type) {
	case *array.BooleanBuilder:
		if v, ok := c.(pg.Bool); ok {
			builder.Append(bool(v))
			return nil
		}
	case *array.Int16Builder:
		if v, ok := c.(pg.Int16); ok {
			builder.Append(int16(v))
			return nil
		}
	case *array.Int32Builder:
		if v, ok := c.(pg.Int32); ok {
			builder.Append(int32(v))
			return nil
		}
	case *array.Int64Builder:
		if v, ok := c.(pg.Int64); ok {
			builder.Append(int64(v))
			return nil
		}
	case *array.Uint32Builder:
		if v, ok := c.(pg.Oid); ok {
			builder.Append(uint32(v))
			return nil
		}
	case *array.Float32Builder:
		if v, ok := c.(pg.Float32); ok {
			builder.Append(float32(v))
			return nil
		}
	case *array.Float64Builder:
		if v, ok := c.(pg.Float64); ok {
			builder.Append(float64(v))
			return nil
		}
	case *array.BinaryBuilder:
		if v, ok := c.(pg.Bytes); ok {
			builder.Append([]byte(v))
			return nil
		}
	case *array.Date32Builder:
		switch v := c.(type) {
		case pg.Timestamp:
			builder.Append(timeToDate32(v.Time))
			return nil
		case pg.Text:
			builder.AppendNull()
			return nil
		}
	case *array.TimestampBuilder:
		switch v := c.(type) {
		case pg.Timestamp:
			unit := builder.Type().(*arrow.TimestampType).Unit
			builder.Append(timeToTimestamp(v.Time, unit))
			return nil
		case pg.Text:
			builder.AppendNull()
			return nil
		}
	case *array.StringBuilder:
		s := cellToString(c)
		if validateUTF8 {
			s = strings.ToValidUTF8(s, "�")
		}
		builder.Append(s)
		return nil
	}
	return fmt.Errorf("cannot append %T to %v column", c, b.Type())
}

func cellToString(c pg.Cell) string {
	switch v := c.(type) {
	case pg.Text:
		return string(v)
	case pg.Bytes:
		return string(v)
	case pg.Timestamp:
		return v.UTC().Format(time.RFC3339Nano)
	default:
		return fmt.Sprint(v)
	}
}

func timeToTimestamp(t time.Time, unit arrow.TimeUnit) arrow.Timestamp {
	switch unit {
	case arrow.Second:
		return arrow.Timestamp(t.Unix())
	case arrow.Millisecond:
		return arrow.Timestamp(t.UnixMilli())
	case arrow.Nanosecond:
		return arrow.Timestamp(t.UnixNano())
	default:
		return arrow.Timestamp(t.UnixMicro())
	}
}

func timeToDate32(t time.Time) arrow.Date32 {
	secs := t.Unix()
	days := secs / secondsPerDay
	if secs%secondsPerDay < 0 {
		days--
	}
	return arrow.Date32(days)
}
