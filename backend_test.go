package pgadaptor

import (
	"encoding/binary"
	"net"
	"strconv"
	"testing"

	"github.com/jackc/pgx/v5/pgproto3"
	"github.com/lib/pq/oid"
)

// fakeServer plays the server side of a channel over an in-memory pipe. The
// connection counts as authenticated, scripts start at the first statement.
type fakeServer struct {
	t       *testing.T
	conn    net.Conn
	backend *pgproto3.Backend
}

// statement is what the client sent for one Execute call.
type statement struct {
	sql       string
	paramOIDs []uint32
	formats   []int16
	params    [][]byte
}

// newFakeChannel starts script in the background and returns a channel
// connected to it. done is closed once the script finished and the client
// terminated or dropped the connection.
func newFakeChannel(t *testing.T, opts ChannelOptions, script func(s *fakeServer)) (ch *Channel, done <-chan struct{}) {
	t.Helper()
	clientConn, serverConn := net.Pipe()
	s := &fakeServer{
		t:       t,
		conn:    serverConn,
		backend: pgproto3.NewBackend(serverConn, serverConn),
	}
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		defer serverConn.Close()
		script(s)
		s.drain()
	}()
	ch = newChannel(newWire(clientConn), opts)
	t.Cleanup(func() {
		_ = ch.Close()
		<-finished
	})
	return ch, finished
}

// drain consumes client messages until Terminate or a closed pipe.
func (s *fakeServer) drain() {
	for {
		msg, err := s.backend.Receive()
		if err != nil {
			return
		}
		if _, ok := msg.(*pgproto3.Terminate); ok {
			return
		}
	}
}

func (s *fakeServer) receive() pgproto3.FrontendMessage {
	msg, err := s.backend.Receive()
	if err != nil {
		s.t.Errorf("fake server failed to receive: %v", err)
		return nil
	}
	return msg
}

// expectStatement reads Parse, Bind, Describe, Execute and Sync.
func (s *fakeServer) expectStatement() statement {
	var st statement
	parse, ok := s.receive().(*pgproto3.Parse)
	if !ok {
		s.t.Errorf("expected Parse")
		return st
	}
	st.sql = parse.Query
	st.paramOIDs = append([]uint32(nil), parse.ParameterOIDs...)

	bind, ok := s.receive().(*pgproto3.Bind)
	if !ok {
		s.t.Errorf("expected Bind")
		return st
	}
	st.formats = append([]int16(nil), bind.ParameterFormatCodes...)
	st.params = make([][]byte, len(bind.Parameters))
	for i, p := range bind.Parameters {
		if p != nil {
			st.params[i] = append([]byte{}, p...)
		}
	}
	if len(bind.ResultFormatCodes) != 1 || bind.ResultFormatCodes[0] != binaryFormat {
		s.t.Errorf("expected binary results, got %v", bind.ResultFormatCodes)
	}

	if _, ok := s.receive().(*pgproto3.Describe); !ok {
		s.t.Errorf("expected Describe")
	}
	if _, ok := s.receive().(*pgproto3.Execute); !ok {
		s.t.Errorf("expected Execute")
	}
	if _, ok := s.receive().(*pgproto3.Sync); !ok {
		s.t.Errorf("expected Sync")
	}
	return st
}

func (s *fakeServer) send(msgs ...pgproto3.BackendMessage) {
	for _, m := range msgs {
		s.backend.Send(m)
	}
	if err := s.backend.Flush(); err != nil {
		s.t.Errorf("fake server failed to send: %v", err)
	}
}

// reply answers a statement with the usual prologue, msgs and ReadyForQuery.
func (s *fakeServer) reply(txStatus byte, msgs ...pgproto3.BackendMessage) {
	all := []pgproto3.BackendMessage{&pgproto3.ParseComplete{}, &pgproto3.BindComplete{}}
	all = append(all, msgs...)
	all = append(all, &pgproto3.ReadyForQuery{TxStatus: txStatus})
	s.send(all...)
}

// command answers a statement that returns no rows.
func (s *fakeServer) command(tag string) {
	s.reply('I', &pgproto3.NoData{}, &pgproto3.CommandComplete{CommandTag: []byte(tag)})
}

// rows answers a statement with a result set.
func (s *fakeServer) rows(desc *pgproto3.RowDescription, rows [][][]byte) {
	msgs := []pgproto3.BackendMessage{desc}
	for _, r := range rows {
		msgs = append(msgs, &pgproto3.DataRow{Values: r})
	}
	msgs = append(msgs, &pgproto3.CommandComplete{CommandTag: []byte("SELECT " + strconv.Itoa(len(rows)))})
	s.reply('I', msgs...)
}

// hangup closes the server side, as the server does after a FATAL error.
func (s *fakeServer) hangup() {
	_ = s.conn.Close()
}

func errorResponse(severity, code, message string) *pgproto3.ErrorResponse {
	return &pgproto3.ErrorResponse{
		Severity:            severity,
		SeverityUnlocalized: severity,
		Code:                code,
		Message:             message,
	}
}

type column struct {
	name string
	typ  oid.Oid
}

func rowDescription(cols ...column) *pgproto3.RowDescription {
	fields := make([]pgproto3.FieldDescription, len(cols))
	for i, c := range cols {
		fields[i] = pgproto3.FieldDescription{
			Name:         []byte(c.name),
			DataTypeOID:  uint32(c.typ),
			DataTypeSize: -1,
			Format:       binaryFormat,
		}
	}
	return &pgproto3.RowDescription{Fields: fields}
}

func textColumns(names ...string) *pgproto3.RowDescription {
	cols := make([]column, len(names))
	for i, n := range names {
		cols[i] = column{name: n, typ: oid.T_text}
	}
	return rowDescription(cols...)
}

func row(values ...[]byte) [][]byte {
	return values
}

func textBytes(s string) []byte {
	return []byte(s)
}

func int16Bytes(v int16) []byte {
	return binary.BigEndian.AppendUint16(nil, uint16(v))
}

func int32Bytes(v int32) []byte {
	return binary.BigEndian.AppendUint32(nil, uint32(v))
}

func int64Bytes(v int64) []byte {
	return binary.BigEndian.AppendUint64(nil, uint64(v))
}

func boolBytes(v bool) []byte {
	if v {
		return []byte{1}
	}
	return []byte{0}
}
