// Copyright (c) 2024 Snowflake Computing Inc. All rights reserved.

package pgadaptor

import (
	"math"
	"time"
)

// PostgreSQL counts timestamps in microseconds and dates in days since
// 2000-01-01T00:00:00Z.
var pgEpoch = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

const pgEpochSeconds int64 = 946684800

const (
	pgInfinity         = "infinity"
	pgNegativeInfinity = "-infinity"
)

// Seconds and microseconds are shifted separately so that the full range
// PostgreSQL accepts (up to year 294276) does not overflow.
func timeToPGMicros(t time.Time) int64 {
	return (t.Unix()-pgEpochSeconds)*1e6 + int64(t.Nanosecond()/1e3)
}

func pgMicrosToTime(us int64) time.Time {
	return time.Unix(us/1e6+pgEpochSeconds, (us%1e6)*1e3).UTC()
}

func pgDaysToTime(days int32) time.Time {
	return pgEpoch.AddDate(0, 0, int(days))
}

// infinityCell maps the sentinel values PostgreSQL uses for infinite
// timestamps and dates.
func infinityCell(v, max, min int64) (Cell, bool) {
	switch v {
	case max:
		return Text(pgInfinity), true
	case min:
		return Text(pgNegativeInfinity), true
	}
	return nil, false
}

var (
	timestampInfinity    int64 = math.MaxInt64
	timestampNegInfinity int64 = math.MinInt64
	dateInfinity         int64 = math.MaxInt32
	dateNegInfinity      int64 = math.MinInt32
)
