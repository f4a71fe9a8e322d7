package pgadaptor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgproto3"
	"github.com/lib/pq/oid"
)

const binaryFormat int16 = 1

type fieldDescription struct {
	name   string
	typ    oid.Oid
	format int16
}

// rawResult is everything the server sent for one statement, copied out of
// the protocol buffers.
type rawResult struct {
	status     resultStatus
	fields     []fieldDescription
	rows       [][][]byte
	commandTag string
	pgErr      *pgconn.PgError
	// reason describes a bad response.
	reason string
}

// binaryTuples reports whether all columns are in binary format.
func (res *rawResult) binaryTuples() bool {
	for _, f := range res.fields {
		if f.format != binaryFormat {
			return false
		}
	}
	return true
}

// pgWire is one authenticated server connection driven with the extended
// query protocol. Connection setup is left to pgconn.
type pgWire struct {
	conn     net.Conn
	frontend *pgproto3.Frontend
	pid      uint32
	user     string
	params   map[string]string
}

func dialWire(ctx context.Context, connString string) (*pgWire, error) {
	cfg, err := pgconn.ParseConfig(connString)
	if err != nil {
		return nil, &AdaptorError{
			Number:   ErrCodeCouldNotConnect,
			SQLState: SQLStateConnectionFailure,
			Message:  errMsgCouldNotConnect,
			cause:    err,
		}
	}
	if _, ok := cfg.RuntimeParams["application_name"]; !ok {
		cfg.RuntimeParams["application_name"] = defaultApplicationName
	}
	pgConn, err := pgconn.ConnectConfig(ctx, cfg)
	if err != nil {
		return nil, &AdaptorError{
			Number:   ErrCodeCouldNotConnect,
			SQLState: SQLStateConnectionFailure,
			Message:  errMsgCouldNotConnect,
			cause:    err,
		}
	}
	hc, err := pgConn.Hijack()
	if err != nil {
		_ = pgConn.Close(ctx)
		return nil, &AdaptorError{
			Number:  ErrCodeCouldNotConnect,
			Message: errMsgCouldNotConnect,
			cause:   err,
		}
	}
	return &pgWire{
		conn:     hc.Conn,
		frontend: hc.Frontend,
		pid:      hc.PID,
		user:     cfg.User,
		params:   hc.ParameterStatuses,
	}, nil
}

// newWire wraps an already authenticated connection.
func newWire(conn net.Conn) *pgWire {
	return &pgWire{
		conn:     conn,
		frontend: pgproto3.NewFrontend(conn, conn),
		params:   map[string]string{},
	}
}

func (w *pgWire) sessionID() string {
	return strconv.FormatUint(uint64(w.pid), 10)
}

func (w *pgWire) close() error {
	w.frontend.Send(&pgproto3.Terminate{})
	_ = w.frontend.Flush()
	return w.conn.Close()
}

func errConnectionLost(sql string, cause error) error {
	return &AdaptorError{
		Number:   ErrCodeConnectionLost,
		SQLState: SQLStateConnectionFailure,
		Message:  errMsgConnectionLost,
		SQL:      sql,
		cause:    cause,
	}
}

// exchange runs one statement: Parse, Bind, Describe, Execute and Sync, then
// reads until ReadyForQuery. All results are requested in binary format. A
// non nil error means the transport is unusable.
func (w *pgWire) exchange(sql string, binds []Bind) (*rawResult, error) {
	paramOIDs := make([]uint32, len(binds))
	formats := make([]int16, len(binds))
	values := make([][]byte, len(binds))
	for i, b := range binds {
		paramOIDs[i] = uint32(b.OID)
		formats[i] = b.formatCode()
		values[i] = b.Data
	}

	w.frontend.Send(&pgproto3.Parse{Query: sql, ParameterOIDs: paramOIDs})
	w.frontend.Send(&pgproto3.Bind{
		ParameterFormatCodes: formats,
		Parameters:           values,
		ResultFormatCodes:    []int16{binaryFormat},
	})
	w.frontend.Send(&pgproto3.Describe{ObjectType: 'P'})
	w.frontend.Send(&pgproto3.Execute{})
	w.frontend.Send(&pgproto3.Sync{})
	if err := w.frontend.Flush(); err != nil {
		return nil, errConnectionLost(sql, err)
	}
	return w.receive(sql)
}

func (w *pgWire) receive(sql string) (*rawResult, error) {
	res := &rawResult{status: statusCommandOK}
	var copyStatus resultStatus
	copying := false
	failed := false
	fail := func(status resultStatus) {
		if !failed {
			res.status = status
			failed = true
		}
	}

	for {
		msg, err := w.frontend.Receive()
		if err != nil {
			if res.status == statusFatalError {
				// the server closes the connection after a FATAL error
				return res, nil
			}
			if isTransportError(err) {
				return nil, errConnectionLost(sql, err)
			}
			res.status = statusBadResponse
			res.reason = err.Error()
			return res, nil
		}

		switch m := msg.(type) {
		case *pgproto3.ParseComplete, *pgproto3.BindComplete, *pgproto3.NoData,
			*pgproto3.ParameterDescription, *pgproto3.CopyDone:
		case *pgproto3.RowDescription:
			res.fields = make([]fieldDescription, len(m.Fields))
			for i, f := range m.Fields {
				res.fields[i] = fieldDescription{
					name:   string(f.Name),
					typ:    oid.Oid(f.DataTypeOID),
					format: f.Format,
				}
			}
			if !failed {
				res.status = statusTuplesOK
			}
		case *pgproto3.DataRow:
			if failed {
				continue
			}
			if len(m.Values) != len(res.fields) {
				fail(statusBadResponse)
				res.reason = "data row does not match row description"
				continue
			}
			row := make([][]byte, len(m.Values))
			for i, v := range m.Values {
				if v != nil {
					row[i] = append(make([]byte, 0, len(v)), v...)
				}
			}
			res.rows = append(res.rows, row)
		case *pgproto3.CommandComplete:
			res.commandTag = string(m.CommandTag)
		case *pgproto3.EmptyQueryResponse:
			if !failed {
				res.status = statusEmptyQuery
			}
		case *pgproto3.ErrorResponse:
			pgErr := pgconn.ErrorResponseToPgError(m)
			if !failed {
				res.pgErr = pgErr
			}
			if isFatalSeverity(m) {
				res.pgErr = pgErr
				res.status = statusFatalError
				failed = true
				continue
			}
			fail(statusNonfatalError)
		case *pgproto3.NoticeResponse:
			logger.Debugf("notice from server: %v %v", m.Severity, m.Message)
		case *pgproto3.ParameterStatus:
			w.params[m.Name] = m.Value
		case *pgproto3.NotificationResponse:
			logger.Debugf("ignoring notification on channel %v", m.Channel)
		case *pgproto3.CopyInResponse:
			// the Sync already sent is ignored in copy-in mode
			copyStatus, copying = statusCopyIn, true
			w.frontend.Send(&pgproto3.CopyFail{Message: "COPY is not supported by this client"})
			w.frontend.Send(&pgproto3.Sync{})
			if err := w.frontend.Flush(); err != nil {
				return nil, errConnectionLost(sql, err)
			}
		case *pgproto3.CopyOutResponse:
			copyStatus, copying = statusCopyOut, true
		case *pgproto3.CopyData:
		case *pgproto3.CopyBothResponse:
			res.status = statusCopyBoth
			return res, nil
		case *pgproto3.ReadyForQuery:
			if copying && res.status != statusFatalError {
				res.status = copyStatus
			}
			return res, nil
		default:
			res.status = statusBadResponse
			res.reason = fmt.Sprintf("unexpected message %T", msg)
			return res, nil
		}
	}
}

func isFatalSeverity(m *pgproto3.ErrorResponse) bool {
	severity := m.SeverityUnlocalized
	if severity == "" {
		severity = m.Severity
	}
	return severity == "FATAL" || severity == "PANIC"
}

func isTransportError(err error) bool {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, net.ErrClosed) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
