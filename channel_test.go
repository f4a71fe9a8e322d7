// Copyright (c) 2024 Snowflake Computing Inc. All rights reserved.

package pgadaptor

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgproto3"
	"github.com/lib/pq/oid"
)

func TestExecuteOnClosedChannel(t *testing.T) {
	ch, _ := newFakeChannel(t, ChannelOptions{}, func(s *fakeServer) {})
	assertNilF(t, ch.Close())
	assertFalseE(t, ch.IsOpen())
	assertNilE(t, ch.Close(), "closing twice")

	_, err := ch.Execute(context.Background(), "SELECT 1", nil, nil, nil)
	assertErrIsE(t, err, ErrConnectionClosed)
	_, err = ch.PerformSQL(context.Background(), "SELECT 1")
	assertErrIsE(t, err, ErrConnectionClosed)
}

func TestExecuteCanceledContext(t *testing.T) {
	ch, _ := newFakeChannel(t, ChannelOptions{}, func(s *fakeServer) {})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := ch.Execute(ctx, "SELECT 1", nil, nil, nil)
	assertErrIsE(t, err, context.Canceled)
	assertTrueE(t, ch.IsOpen())
}

func TestExecuteSelect(t *testing.T) {
	ch, _ := newFakeChannel(t, ChannelOptions{}, func(s *fakeServer) {
		st := s.expectStatement()
		if st.sql != "SELECT id, name, note FROM person" {
			t.Errorf("unexpected sql %q", st.sql)
		}
		s.rows(rowDescription(
			column{"id", oid.T_int4},
			column{"name", oid.T_varchar},
			column{"note", oid.T_text},
		), [][][]byte{
			row(int32Bytes(1), textBytes("Alice"), nil),
			row(int32Bytes(2), textBytes("Bob"), textBytes("")),
		})
	})

	var records []Record
	res, err := ch.Execute(context.Background(), "SELECT id, name, note FROM person", nil, nil, func(r Record) error {
		records = append(records, r)
		return nil
	})
	assertNilF(t, err)
	count, ok := res.RowsAffected()
	assertTrueE(t, ok)
	assertEqualE(t, count, int64(2))
	assertEqualF(t, len(records), 2)

	assertDeepEqualE(t, records[0].Schema().Names(), []string{"id", "name", "note"})
	assertEqualE(t, records[0].At(0), Cell(Int32(1)))
	assertEqualE(t, records[0].At(1), Cell(Text("Alice")))
	assertEqualE(t, records[0].At(2), Cell(Null{}))
	note, found := records[1].Get("note")
	assertTrueE(t, found)
	assertEqualE(t, note, Cell(Text("")), "empty text is not null")
	assertTrueE(t, records[0].Schema() == records[1].Schema(), "records share one schema")
}

func TestExecuteNamesColumnsAfterAttributes(t *testing.T) {
	ch, _ := newFakeChannel(t, ChannelOptions{}, func(s *fakeServer) {
		s.expectStatement()
		s.rows(rowDescription(column{"person_id", oid.T_int8}, column{"", oid.T_text}, column{"", oid.T_text}),
			[][][]byte{row(int64Bytes(7), textBytes("x"), textBytes("y"))})
	})
	attrs := []*Attribute{{Name: "id", ColumnName: "person_id"}}
	records, err := collect(ch, "SELECT person_id, 'x', 'y'", attrs)
	assertNilF(t, err)
	assertDeepEqualE(t, records[0].Schema().Names(), []string{"id", "col[1]", "col[2]"})
	v, ok := records[0].Get("person_id")
	assertTrueE(t, ok, "column name lookup")
	assertEqualE(t, v, Cell(Int64(7)))
}

func collect(ch *Channel, sql string, attrs []*Attribute) ([]Record, error) {
	var records []Record
	err := ch.QuerySQL(context.Background(), sql, attrs, func(r Record) error {
		records = append(records, r)
		return nil
	})
	return records, err
}

func TestExecuteSendsBinds(t *testing.T) {
	ch, _ := newFakeChannel(t, ChannelOptions{LogSQL: true}, func(s *fakeServer) {
		st := s.expectStatement()
		assertDeepEqualE(t, st.paramOIDs, []uint32{uint32(oid.T_int8), uint32(oid.T_varchar), 0})
		assertDeepEqualE(t, st.formats, []int16{1, 1, 1})
		assertBytesEqualE(t, st.params[0], int64Bytes(42))
		assertBytesEqualE(t, st.params[1], []byte("abc"))
		assertTrueE(t, st.params[2] == nil, "null is sent as a null parameter")
		s.command("UPDATE 3")
	})
	res, err := ch.Execute(context.Background(), "UPDATE t SET a = $2 WHERE id = $1 AND b = $3",
		[]Value{Int64(42), Text("abc"), Null{}}, nil, nil)
	assertNilF(t, err)
	count, ok := res.RowsAffected()
	assertTrueE(t, ok)
	assertEqualE(t, count, int64(3))
	assertEqualE(t, res.CommandTag, "UPDATE 3")
}

func TestExecuteUnsupportedBind(t *testing.T) {
	ch, _ := newFakeChannel(t, ChannelOptions{}, func(s *fakeServer) {})
	_, err := ch.Execute(context.Background(), "SELECT $1", []Value{Key{Entity: "x", Values: []Value{Int(1), Int(2)}}}, nil, nil)
	assertErrCodeE(t, err, ErrCodeNotImplemented)
	assertTrueE(t, ch.IsOpen())
}

func TestExecuteNonfatalErrorKeepsChannel(t *testing.T) {
	ch, _ := newFakeChannel(t, ChannelOptions{}, func(s *fakeServer) {
		s.expectStatement()
		s.send(errorResponse("ERROR", "42P01", `relation "nope" does not exist`),
			&pgproto3.ReadyForQuery{TxStatus: 'I'})
		s.expectStatement()
		s.command("DELETE 0")
	})
	_, err := ch.Execute(context.Background(), "SELECT * FROM nope", nil, nil, nil)
	assertErrCodeF(t, err, ErrCodeExecError)
	var ae *AdaptorError
	assertTrueF(t, errors.As(err, &ae))
	assertEqualE(t, ae.SQLState, "42P01")
	assertEqualE(t, ae.SQL, "SELECT * FROM nope")
	var pgErr *pgconn.PgError
	assertTrueE(t, errors.As(err, &pgErr), "server error is the cause")
	assertTrueE(t, ch.IsOpen())

	count, err := ch.PerformSQL(context.Background(), "DELETE FROM t")
	assertNilE(t, err)
	assertEqualE(t, count, int64(0))
}

func TestExecuteFatalErrorClosesChannel(t *testing.T) {
	ch, _ := newFakeChannel(t, ChannelOptions{}, func(s *fakeServer) {
		s.expectStatement()
		s.send(errorResponse("FATAL", "57P01", "terminating connection due to administrator command"))
		s.hangup()
	})
	_, err := ch.Execute(context.Background(), "SELECT 1", nil, nil, nil)
	assertErrCodeE(t, err, ErrCodeFatalError)
	assertFalseE(t, ch.IsOpen())
	_, err = ch.Execute(context.Background(), "SELECT 1", nil, nil, nil)
	assertErrIsE(t, err, ErrConnectionClosed)
}

func TestExecuteBadResponseClosesChannel(t *testing.T) {
	ch, _ := newFakeChannel(t, ChannelOptions{}, func(s *fakeServer) {
		s.expectStatement()
		s.send(&pgproto3.ParseComplete{}, &pgproto3.AuthenticationOk{})
	})
	_, err := ch.Execute(context.Background(), "SELECT 1", nil, nil, nil)
	assertErrCodeE(t, err, ErrCodeBadResponse)
	assertFalseE(t, ch.IsOpen())
}

func TestExecuteConnectionLost(t *testing.T) {
	ch, _ := newFakeChannel(t, ChannelOptions{}, func(s *fakeServer) {
		s.expectStatement()
		s.send(&pgproto3.ParseComplete{})
		s.hangup()
	})
	_, err := ch.Execute(context.Background(), "SELECT 1", nil, nil, nil)
	assertErrCodeE(t, err, ErrCodeConnectionLost)
	assertFalseE(t, ch.IsOpen())
}

func TestExecuteCopyIn(t *testing.T) {
	ch, _ := newFakeChannel(t, ChannelOptions{}, func(s *fakeServer) {
		s.expectStatement()
		s.send(&pgproto3.ParseComplete{}, &pgproto3.BindComplete{}, &pgproto3.NoData{},
			&pgproto3.CopyInResponse{ColumnFormatCodes: []uint16{0}})
		// the Sync of the statement is ignored while copying
		if _, ok := s.receive().(*pgproto3.CopyFail); !ok {
			t.Errorf("expected CopyFail")
		}
		if _, ok := s.receive().(*pgproto3.Sync); !ok {
			t.Errorf("expected Sync")
		}
		s.send(errorResponse("ERROR", "57014", "COPY from stdin failed"), &pgproto3.ReadyForQuery{TxStatus: 'I'})
		s.expectStatement()
		s.command("SELECT 0")
	})
	_, err := ch.Execute(context.Background(), "COPY t FROM STDIN", nil, nil, nil)
	assertErrCodeE(t, err, ErrCodeUnsupportedResultType)
	assertStringContainsE(t, err.Error(), "COPY_IN")
	assertTrueE(t, ch.IsOpen(), "copy-in is aborted, the channel stays usable")
	_, err = ch.PerformSQL(context.Background(), "SELECT 1 WHERE false")
	assertNilE(t, err)
}

func TestExecuteCopyOut(t *testing.T) {
	ch, _ := newFakeChannel(t, ChannelOptions{}, func(s *fakeServer) {
		s.expectStatement()
		s.reply('I', &pgproto3.NoData{},
			&pgproto3.CopyOutResponse{ColumnFormatCodes: []uint16{0}},
			&pgproto3.CopyData{Data: []byte("1\n")},
			&pgproto3.CopyDone{},
			&pgproto3.CommandComplete{CommandTag: []byte("COPY 1")})
	})
	_, err := ch.Execute(context.Background(), "COPY t TO STDOUT", nil, nil, nil)
	assertErrCodeE(t, err, ErrCodeUnsupportedResultType)
	assertStringContainsE(t, err.Error(), "COPY_OUT")
	assertTrueE(t, ch.IsOpen())
}

func TestExecuteCopyBothClosesChannel(t *testing.T) {
	ch, _ := newFakeChannel(t, ChannelOptions{}, func(s *fakeServer) {
		s.expectStatement()
		s.send(&pgproto3.ParseComplete{}, &pgproto3.BindComplete{}, &pgproto3.CopyBothResponse{})
	})
	_, err := ch.Execute(context.Background(), "START_REPLICATION", nil, nil, nil)
	assertErrCodeE(t, err, ErrCodeUnsupportedResultType)
	assertFalseE(t, ch.IsOpen())
}

func TestExecuteEmptyQuery(t *testing.T) {
	ch, _ := newFakeChannel(t, ChannelOptions{}, func(s *fakeServer) {
		s.expectStatement()
		s.reply('I', &pgproto3.NoData{}, &pgproto3.EmptyQueryResponse{})
	})
	res, err := ch.Execute(context.Background(), "", nil, nil, nil)
	assertNilF(t, err)
	_, ok := res.RowsAffected()
	assertFalseE(t, ok)
}

func TestExecuteCallbackError(t *testing.T) {
	stop := errors.New("stop")
	ch, _ := newFakeChannel(t, ChannelOptions{}, func(s *fakeServer) {
		s.expectStatement()
		s.rows(rowDescription(column{"n", oid.T_int2}), [][][]byte{row(int16Bytes(1)), row(int16Bytes(2))})
	})
	calls := 0
	_, err := ch.Execute(context.Background(), "SELECT n", nil, nil, func(Record) error {
		calls++
		return stop
	})
	assertErrIsE(t, err, stop)
	assertEqualE(t, calls, 1)
	assertTrueE(t, ch.IsOpen())
}

func TestExecuteInvalidWireValue(t *testing.T) {
	ch, _ := newFakeChannel(t, ChannelOptions{}, func(s *fakeServer) {
		s.expectStatement()
		s.rows(rowDescription(column{"n", oid.T_int4}), [][][]byte{row([]byte{0, 1})})
	})
	_, err := collect(ch, "SELECT n", nil)
	assertErrCodeE(t, err, ErrCodeInvalidWireValue)
}

func TestServerParameterTracksStatus(t *testing.T) {
	ch, _ := newFakeChannel(t, ChannelOptions{}, func(s *fakeServer) {
		s.expectStatement()
		s.reply('I', &pgproto3.NoData{},
			&pgproto3.ParameterStatus{Name: "TimeZone", Value: "UTC"},
			&pgproto3.CommandComplete{CommandTag: []byte("SET")})
	})
	_, err := ch.PerformSQL(context.Background(), "SET TIME ZONE 'UTC'")
	assertNilF(t, err)
	assertEqualE(t, ch.ServerParameter("TimeZone"), "UTC")
}
