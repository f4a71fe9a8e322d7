// Copyright (c) 2024 Snowflake Computing Inc. All rights reserved.

package pgadaptor

import (
	"context"
	"fmt"
	"runtime"
)

// ChannelOptions configures a Channel.
type ChannelOptions struct {
	// LogSQL logs every statement and its binds at info level.
	LogSQL bool
	// TypeMap is used by schema reflection. Defaults to DefaultTypeMap.
	TypeMap TypeMap
	// NameMapper is used by schema reflection. Defaults to IdentityNameMapper.
	NameMapper NameMapper
}

func (o ChannelOptions) withDefaults() ChannelOptions {
	if o.TypeMap == nil {
		o.TypeMap = DefaultTypeMap
	}
	if o.NameMapper == nil {
		o.NameMapper = IdentityNameMapper
	}
	return o
}

// Channel is a single server connection. It runs one statement at a time and
// must not be used concurrently.
type Channel struct {
	wire *pgWire
	opts ChannelOptions

	txInProgress bool
}

// OpenChannel connects to the server described by connString, which may be a
// URL or a keyword/value connect string.
func OpenChannel(ctx context.Context, connString string, opts ChannelOptions) (*Channel, error) {
	w, err := dialWire(ctx, connString)
	if err != nil {
		logger.WithContext(ctx).Errorf("failed to open channel: %v", err)
		return nil, err
	}
	ch := newChannel(w, opts)
	logger.WithContext(ch.logContext(ctx)).Debugf("opened channel, server version %v", w.params["server_version"])
	return ch, nil
}

func newChannel(w *pgWire, opts ChannelOptions) *Channel {
	ch := &Channel{wire: w, opts: opts.withDefaults()}
	runtime.SetFinalizer(ch, (*Channel).finalize)
	return ch
}

func (ch *Channel) finalize() {
	if ch.wire != nil {
		logger.Warnf("closing unreleased channel %v", ch.wire.sessionID())
		_ = ch.closeWire()
	}
}

// IsOpen reports whether the channel still has a live connection.
func (ch *Channel) IsOpen() bool {
	return ch.wire != nil
}

// Close releases the connection. Closing a closed channel is a no-op.
func (ch *Channel) Close() error {
	if ch.wire == nil {
		return nil
	}
	runtime.SetFinalizer(ch, nil)
	return ch.closeWire()
}

func (ch *Channel) closeWire() error {
	w := ch.wire
	ch.wire = nil
	ch.txInProgress = false
	return w.close()
}

// ServerParameter returns a run-time parameter reported by the server, such
// as server_version.
func (ch *Channel) ServerParameter(name string) string {
	if ch.wire == nil {
		return ""
	}
	return ch.wire.params[name]
}

func (ch *Channel) logContext(ctx context.Context) context.Context {
	if ch.wire == nil {
		return ctx
	}
	ctx = context.WithValue(ctx, SessionIDKey, ch.wire.sessionID())
	if ch.wire.user != "" {
		ctx = context.WithValue(ctx, SessionUserKey, ch.wire.user)
	}
	return ctx
}

// Execute runs sql with binds as $1..$n parameters. Rows are decoded using
// attrs as hints and names and passed to fn one by one; fn may be nil.
//
// Server errors of severity ERROR leave the channel usable. Fatal errors, bad
// responses and transport failures close it.
func (ch *Channel) Execute(ctx context.Context, sql string, binds []Value, attrs []*Attribute, fn func(Record) error) (Result, error) {
	if ch.wire == nil {
		return Result{}, ErrConnectionClosed
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	ctx = ch.logContext(ctx)

	arena := newBindArena()
	defer arena.release()

	encoded := make([]Bind, len(binds))
	for i, v := range binds {
		b, err := encodeValue(arena, v, i)
		if err != nil {
			return Result{}, err
		}
		encoded[i] = b
	}

	if ch.opts.LogSQL {
		entry := logger.WithContext(ctx)
		entry.Infof("SQL: %v", sql)
		for i, v := range binds {
			entry.Infof("  BIND[%d]: %v (%v)", i, v, typeName(encoded[i].OID))
		}
	}

	res, err := ch.wire.exchange(sql, encoded)
	if err != nil {
		logger.WithContext(ctx).Errorf("connection lost while running statement: %v", err)
		_ = ch.closeWire()
		return Result{}, err
	}

	switch res.status {
	case statusTuplesOK:
		if err := fetchRows(res, attrs, fn); err != nil {
			return Result{}, err
		}
	case statusCommandOK:
	case statusEmptyQuery:
		return Result{}, nil
	case statusNonfatalError:
		return Result{}, ch.statementError(ctx, ErrCodeExecError, errMsgExecError, sql, res)
	case statusFatalError:
		err := ch.statementError(ctx, ErrCodeFatalError, errMsgFatalError, sql, res)
		_ = ch.closeWire()
		return Result{}, err
	case statusBadResponse:
		err := ch.statementError(ctx, ErrCodeBadResponse, errMsgBadResponse, sql, res)
		_ = ch.closeWire()
		return Result{}, err
	case statusCopyBoth:
		_ = ch.closeWire()
		return Result{}, errUnsupportedResultType(sql, res.status)
	default:
		return Result{}, errUnsupportedResultType(sql, res.status)
	}
	return newResult(res.commandTag), nil
}

func (ch *Channel) statementError(ctx context.Context, number int, message string, sql string, res *rawResult) error {
	ae := &AdaptorError{
		Number:  number,
		Message: message,
		SQL:     sql,
	}
	switch {
	case res.pgErr != nil:
		ae.SQLState = res.pgErr.Code
		ae.cause = res.pgErr
	case res.reason != "":
		ae.SQLState = SQLStateProtocolViolation
		ae.cause = fmt.Errorf("%v", res.reason)
	}
	logger.WithContext(ctx).Errorf("statement failed: %v, SQL: %v", ae, sql)
	return ae
}

func errUnsupportedResultType(sql string, status resultStatus) error {
	return &AdaptorError{
		Number:      ErrCodeUnsupportedResultType,
		SQLState:    SQLStateFeatureNotSupported,
		Message:     errMsgUnsupportedResultType,
		MessageArgs: []interface{}{status},
		SQL:         sql,
	}
}

// QuerySQL runs sql without parameters and passes every record to fn.
func (ch *Channel) QuerySQL(ctx context.Context, sql string, attrs []*Attribute, fn func(Record) error) error {
	_, err := ch.Execute(ctx, sql, nil, attrs, fn)
	return err
}

// PerformSQL runs sql without parameters and returns the number of affected
// rows, 0 if the statement reports none.
func (ch *Channel) PerformSQL(ctx context.Context, sql string) (int64, error) {
	res, err := ch.Execute(ctx, sql, nil, nil, nil)
	if err != nil {
		return 0, err
	}
	count, _ := res.RowsAffected()
	return count, nil
}

// FetchRecords runs sql with binds and collects all records.
func (ch *Channel) FetchRecords(ctx context.Context, sql string, binds ...Value) ([]Record, error) {
	var records []Record
	_, err := ch.Execute(ctx, sql, binds, nil, func(r Record) error {
		records = append(records, r)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// EvaluateQuery runs expr and passes every record to fn, named after attrs.
func (ch *Channel) EvaluateQuery(ctx context.Context, expr *Expression, attrs []*Attribute, fn func(Record) error) error {
	_, err := ch.Execute(ctx, expr.Statement, expr.Binds(), attrs, fn)
	return err
}

// EvaluateUpdate runs expr and returns the number of affected rows.
func (ch *Channel) EvaluateUpdate(ctx context.Context, expr *Expression) (int64, error) {
	res, err := ch.Execute(ctx, expr.Statement, expr.Binds(), nil, nil)
	if err != nil {
		return 0, err
	}
	count, _ := res.RowsAffected()
	return count, nil
}

func (ch *Channel) String() string {
	if ch.wire == nil {
		return "<Channel finished>"
	}
	return fmt.Sprintf("<Channel pid=%v tx=%v>", ch.wire.sessionID(), ch.txInProgress)
}
