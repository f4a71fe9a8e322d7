// Copyright (c) 2024 Snowflake Computing Inc. All rights reserved.

package pgadaptor

import (
	"errors"
	"fmt"
)

// AdaptorError is an error type including PostgreSQL adaptor specific information.
type AdaptorError struct {
	Number      int
	SQLState    string
	Message     string
	MessageArgs []interface{}
	// SQL is the statement that failed, if any.
	SQL   string
	cause error
}

func (ae *AdaptorError) Error() string {
	message := ae.Message
	if len(ae.MessageArgs) > 0 {
		message = fmt.Sprintf(ae.Message, ae.MessageArgs...)
	}
	if ae.cause != nil {
		message = message + ": " + ae.cause.Error()
	}
	if ae.SQLState != "" {
		return fmt.Sprintf("%06d (%s): %s", ae.Number, ae.SQLState, message)
	}
	return fmt.Sprintf("%06d: %s", ae.Number, message)
}

// Unwrap returns the underlying error, for example a *pgconn.PgError.
func (ae *AdaptorError) Unwrap() error {
	return ae.cause
}

// Is reports whether target is an *AdaptorError with the same Number, so that
// errors.Is(err, ErrConnectionClosed) matches decorated copies as well.
func (ae *AdaptorError) Is(target error) bool {
	var t *AdaptorError
	if !errors.As(target, &t) {
		return false
	}
	return t.Number == ae.Number
}

const (
	// connection

	// ErrCodeCouldNotConnect is an error code for the case where a connection cannot be opened.
	ErrCodeCouldNotConnect = 270001
	// ErrCodeConnectionClosed is an error code for the case where a channel has no live connection.
	ErrCodeConnectionClosed = 270002
	// ErrCodeConnectionLost is an error code for the case where the transport failed while a statement was in flight.
	ErrCodeConnectionLost = 270003

	// statement

	// ErrCodeExecError is an error code for a recoverable statement error reported by the server.
	ErrCodeExecError = 271001
	// ErrCodeFatalError is an error code for a fatal error reported by the server.
	ErrCodeFatalError = 271002
	// ErrCodeBadResponse is an error code for a malformed or unexpected server response.
	ErrCodeBadResponse = 271003
	// ErrCodeUnsupportedResultType is an error code for result kinds the adaptor does not handle, such as COPY.
	ErrCodeUnsupportedResultType = 271004

	// transaction

	// ErrCodeTransactionInProgress is an error code for BEGIN while a transaction is active.
	ErrCodeTransactionInProgress = 272001

	// codec

	// ErrCodeUnsupportedBindType is an error code for values that have no wire encoding.
	ErrCodeUnsupportedBindType = 273001
	// ErrCodeInvalidWireValue is an error code for wire bytes that do not match the declared type.
	ErrCodeInvalidWireValue = 273002

	// reflection

	// ErrCodeTableNotFound is an error code for a table missing from the catalog.
	ErrCodeTableNotFound = 274001
	// ErrCodeNoModelTag is an error code for the case where the schema fingerprint could not be computed.
	ErrCodeNoModelTag = 274002

	// insert

	// ErrCodeFailedToRefetchInsertedRow is an error code for an insert that returned zero or several rows.
	ErrCodeFailedToRefetchInsertedRow = 275001
	// ErrCodeMissingEntity is an error code for operations which need an entity but got none.
	ErrCodeMissingEntity = 275002

	// configuration

	// ErrCodeFailedToFindDSNInToml is an error code for a connection name missing in connections.toml.
	ErrCodeFailedToFindDSNInToml = 276001
	// ErrCodeTomlFileParsingFailed is an error code for an invalid value in connections.toml.
	ErrCodeTomlFileParsingFailed = 276002
	// ErrCodeClientConfigFailed is an error code for an invalid client (logging) configuration.
	ErrCodeClientConfigFailed = 276003

	// ErrCodeNotImplemented is an error code for deliberately unsupported paths.
	ErrCodeNotImplemented = 279999
)

const (
	errMsgCouldNotConnect          = "could not open channel"
	errMsgConnectionClosed         = "connection closed"
	errMsgConnectionLost           = "connection lost"
	errMsgExecError                = "could not perform SQL"
	errMsgFatalError               = "fatal server error"
	errMsgBadResponse              = "bad response from server"
	errMsgUnsupportedResultType    = "unsupported result type: %v"
	errMsgTransactionInProgress    = "transaction in progress"
	errMsgUnsupportedBindType      = "unsupported bind value at index %v: %T"
	errMsgInvalidWireValue         = "invalid %v value: expected %v bytes, got %v"
	errMsgUnparsableWireValue      = "cannot parse %v value %q"
	errMsgTableNotFound            = "did not find table: %v"
	errMsgNoModelTag               = "got no schema version"
	errMsgFailedToRefetch          = "failed to refetch inserted row of entity %v"
	errMsgMissingEntity            = "operation requires an entity"
	errMsgFailedToFindDSNInToml    = "failed to find connection %v in connections.toml"
	errMsgFailedToParseTomlFile    = "failed to parse the toml file. key: %v, value: %v"
	errMsgClientConfigFailed       = "client configuration failed: %v"
	errMsgMultiColumnKeyNotAllowed = "cannot bind multi-column key %v"
)

var (
	// preformatted errors

	// ErrConnectionClosed is returned if a channel is used after its connection was released.
	ErrConnectionClosed = &AdaptorError{
		Number:  ErrCodeConnectionClosed,
		Message: errMsgConnectionClosed,
	}
	// ErrTransactionInProgress is returned by Begin while a transaction is active.
	ErrTransactionInProgress = &AdaptorError{
		Number:   ErrCodeTransactionInProgress,
		SQLState: SQLStateActiveSQLTransaction,
		Message:  errMsgTransactionInProgress,
	}
	// ErrNoModelTag is returned if the catalog fingerprint query produced nothing.
	ErrNoModelTag = &AdaptorError{
		Number:  ErrCodeNoModelTag,
		Message: errMsgNoModelTag,
	}
	// ErrMissingEntity is returned by operations that need an entity but got nil.
	ErrMissingEntity = &AdaptorError{
		Number:  ErrCodeMissingEntity,
		Message: errMsgMissingEntity,
	}
	// ErrNotImplemented marks deliberately unsupported paths.
	ErrNotImplemented = &AdaptorError{
		Number:  ErrCodeNotImplemented,
		Message: "not implemented",
	}
)

const (
	// SQLStateActiveSQLTransaction is the SQLSTATE PostgreSQL uses for a nested BEGIN.
	SQLStateActiveSQLTransaction = "25001"
	// SQLStateConnectionFailure is the SQLSTATE for transport failures.
	SQLStateConnectionFailure = "08006"
	// SQLStateConnectionDoesNotExist is the SQLSTATE for use of a closed connection.
	SQLStateConnectionDoesNotExist = "08003"
	// SQLStateProtocolViolation is the SQLSTATE for malformed server responses.
	SQLStateProtocolViolation = "08P01"
	// SQLStateFeatureNotSupported is the SQLSTATE for unsupported features.
	SQLStateFeatureNotSupported = "0A000"
	// SQLStateUndefinedTable is the SQLSTATE for missing relations.
	SQLStateUndefinedTable = "42P01"
)

func errTableNotFound(table string) error {
	return &AdaptorError{
		Number:      ErrCodeTableNotFound,
		SQLState:    SQLStateUndefinedTable,
		Message:     errMsgTableNotFound,
		MessageArgs: []interface{}{table},
	}
}

func errFailedToRefetchInsertedRow(entity *Entity) error {
	return &AdaptorError{
		Number:      ErrCodeFailedToRefetchInsertedRow,
		Message:     errMsgFailedToRefetch,
		MessageArgs: []interface{}{entity.Name},
	}
}

func errUnsupportedBindType(idx int, v interface{}) error {
	return &AdaptorError{
		Number:      ErrCodeUnsupportedBindType,
		SQLState:    SQLStateFeatureNotSupported,
		Message:     errMsgUnsupportedBindType,
		MessageArgs: []interface{}{idx, v},
	}
}

func errInvalidWireValue(typeName string, expected, got int) error {
	return &AdaptorError{
		Number:      ErrCodeInvalidWireValue,
		Message:     errMsgInvalidWireValue,
		MessageArgs: []interface{}{typeName, expected, got},
	}
}

func errUnparsableWireValue(typeName string, raw []byte, cause error) error {
	return &AdaptorError{
		Number:      ErrCodeInvalidWireValue,
		Message:     errMsgUnparsableWireValue,
		MessageArgs: []interface{}{typeName, string(raw)},
		cause:       cause,
	}
}

func errMultiColumnKey(key Key) error {
	return &AdaptorError{
		Number:      ErrCodeNotImplemented,
		SQLState:    SQLStateFeatureNotSupported,
		Message:     errMsgMultiColumnKeyNotAllowed,
		MessageArgs: []interface{}{key},
	}
}
