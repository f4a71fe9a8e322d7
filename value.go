// Copyright (c) 2024 Snowflake Computing Inc. All rights reserved.

package pgadaptor

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Value is a statement parameter. The set of implementations is closed: every
// variant below has a fixed wire encoding, there is no stringifying fallback.
type Value interface {
	isValue()
}

// Cell is a decoded result value. Cell variants are the same Go types as the
// Value variants so a decoded cell can be compared directly with the value
// that produced it.
type Cell interface {
	isCell()
}

// Null is SQL NULL. It is never the same as empty Text.
type Null struct{}

// Bool is a boolean.
type Bool bool

// Int is a native width integer, bound as int8 on 64-bit platforms.
type Int int

// Int16 is a 2 byte integer (int2).
type Int16 int16

// Int32 is a 4 byte integer (int4).
type Int32 int32

// Int64 is an 8 byte integer (int8).
type Int64 int64

// Float32 is a single precision float (float4).
type Float32 float32

// Float64 is a double precision float (float8).
type Float64 float64

// Text is a character string.
type Text string

// Bytes is raw binary data (bytea). Unknown wire types decode to Bytes as well.
type Bytes []byte

// Timestamp is an instant in time, sent as timestamptz.
type Timestamp struct {
	time.Time
}

// Oid is a PostgreSQL object identifier.
type Oid uint32

// UUID is bound as uuid in text format.
type UUID uuid.UUID

// Key is a primary key of an entity. Only single column keys can be bound.
type Key struct {
	Entity string
	Values []Value
}

func (Null) isValue()      {}
func (Bool) isValue()      {}
func (Int) isValue()       {}
func (Int16) isValue()     {}
func (Int32) isValue()     {}
func (Int64) isValue()     {}
func (Float32) isValue()   {}
func (Float64) isValue()   {}
func (Text) isValue()      {}
func (Bytes) isValue()     {}
func (Timestamp) isValue() {}
func (Oid) isValue()       {}
func (UUID) isValue()      {}
func (Key) isValue()       {}

func (Null) isCell()      {}
func (Bool) isCell()      {}
func (Int16) isCell()     {}
func (Int32) isCell()     {}
func (Int64) isCell()     {}
func (Float32) isCell()   {}
func (Float64) isCell()   {}
func (Text) isCell()      {}
func (Bytes) isCell()     {}
func (Timestamp) isCell() {}
func (Oid) isCell()       {}

func (Null) String() string { return "NULL" }

func (u UUID) String() string { return uuid.UUID(u).String() }

func (k Key) String() string {
	return fmt.Sprintf("%v%v", k.Entity, k.Values)
}

// NewTimestamp wraps t as a Timestamp value.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t}
}

// SingleIntKey returns a Key with one Int64 value.
func SingleIntKey(entity string, id int64) Key {
	return Key{Entity: entity, Values: []Value{Int64(id)}}
}

// ValueOf converts a Go value into a Value. Unsupported types are rejected
// with ErrCodeUnsupportedBindType.
func ValueOf(v interface{}) (Value, error) {
	switch x := v.(type) {
	case nil:
		return Null{}, nil
	case Value:
		return x, nil
	case bool:
		return Bool(x), nil
	case int:
		return Int(x), nil
	case int8:
		return Int16(x), nil
	case int16:
		return Int16(x), nil
	case int32:
		return Int32(x), nil
	case int64:
		return Int64(x), nil
	case uint8:
		return Int16(x), nil
	case uint16:
		return Int32(x), nil
	case uint32:
		return Int64(x), nil
	case float32:
		return Float32(x), nil
	case float64:
		return Float64(x), nil
	case string:
		return Text(x), nil
	case []byte:
		if x == nil {
			return Null{}, nil
		}
		return Bytes(x), nil
	case time.Time:
		return Timestamp{Time: x}, nil
	case *time.Time:
		if x == nil {
			return Null{}, nil
		}
		return Timestamp{Time: *x}, nil
	case uuid.UUID:
		return UUID(x), nil
	case *string:
		if x == nil {
			return Null{}, nil
		}
		return Text(*x), nil
	case *int64:
		if x == nil {
			return Null{}, nil
		}
		return Int64(*x), nil
	}
	return nil, errUnsupportedBindType(-1, v)
}

// ValuesOf converts every element with ValueOf.
func ValuesOf(vs ...interface{}) ([]Value, error) {
	values := make([]Value, len(vs))
	for i, v := range vs {
		value, err := ValueOf(v)
		if err != nil {
			return nil, errUnsupportedBindType(i, v)
		}
		values[i] = value
	}
	return values, nil
}
