// Copyright (c) 2024 Snowflake Computing Inc. All right reserved.

package pgadaptor

import (
	"strconv"
	"strings"
)

type resultStatus int

const (
	/* result status of one statement */

	statusTuplesOK resultStatus = iota
	statusCommandOK
	statusEmptyQuery
	statusNonfatalError
	statusFatalError
	statusBadResponse
	statusCopyIn
	statusCopyOut
	statusCopyBoth
)

func (s resultStatus) String() string {
	switch s {
	case statusTuplesOK:
		return "TUPLES_OK"
	case statusCommandOK:
		return "COMMAND_OK"
	case statusEmptyQuery:
		return "EMPTY_QUERY"
	case statusNonfatalError:
		return "NONFATAL_ERROR"
	case statusFatalError:
		return "FATAL_ERROR"
	case statusBadResponse:
		return "BAD_RESPONSE"
	case statusCopyIn:
		return "COPY_IN"
	case statusCopyOut:
		return "COPY_OUT"
	case statusCopyBoth:
		return "COPY_BOTH"
	}
	return "UNKNOWN(" + strconv.Itoa(int(s)) + ")"
}

// Result is the outcome of a successfully executed statement.
type Result struct {
	// CommandTag is the tag reported by the server, e.g. "INSERT 0 1".
	CommandTag   string
	affectedRows int64
	hasCount     bool
}

// RowsAffected returns the number of rows the statement touched. ok is false
// for statements which do not report a count, like DDL or an empty query.
func (res Result) RowsAffected() (count int64, ok bool) {
	return res.affectedRows, res.hasCount
}

func newResult(commandTag string) Result {
	count, ok := commandTagRows(commandTag)
	return Result{CommandTag: commandTag, affectedRows: count, hasCount: ok}
}

// commandTagRows extracts the row count from a command tag. INSERT reports
// "INSERT oid rows", the other counting commands "CMD rows".
func commandTagRows(tag string) (int64, bool) {
	words := strings.Fields(tag)
	if len(words) == 0 {
		return 0, false
	}
	var count string
	switch words[0] {
	case "INSERT":
		if len(words) != 3 {
			return 0, false
		}
		count = words[2]
	case "UPDATE", "DELETE", "SELECT", "MOVE", "FETCH", "COPY", "MERGE":
		if len(words) != 2 {
			return 0, false
		}
		count = words[1]
	default:
		return 0, false
	}
	n, err := strconv.ParseInt(count, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
