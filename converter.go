// Copyright (c) 2024 Snowflake Computing Inc. All rights reserved.

package pgadaptor

import (
	"encoding/binary"
	"encoding/hex"
	"math"
	"math/bits"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/lib/pq/oid"
)

// Bind is one encoded statement parameter.
type Bind struct {
	OID    oid.Oid
	Length int32
	Binary bool
	// Data is nil for NULL.
	Data []byte
}

// formatCode is the wire format code of the bind.
func (b Bind) formatCode() int16 {
	if b.Binary {
		return 1
	}
	return 0
}

// typeName returns the uppercased PostgreSQL name of typ, or its number.
func typeName(typ oid.Oid) string {
	if name, ok := oid.TypeName[typ]; ok {
		return name
	}
	return strconv.FormatUint(uint64(typ), 10)
}

// Encode converts a Value into its wire representation. idx is the position of
// the parameter and is only used in error messages.
func Encode(v Value, idx int) (Bind, error) {
	return encodeValue(nil, v, idx)
}

func binaryBind(typ oid.Oid, data []byte) (Bind, error) {
	return Bind{OID: typ, Length: int32(len(data)), Binary: true, Data: data}, nil
}

func encodeValue(arena *bindArena, v Value, idx int) (Bind, error) {
	switch x := v.(type) {
	case nil, Null:
		return Bind{Binary: true}, nil
	case Bool:
		b := arena.alloc(1)
		b[0] = 0
		if x {
			b[0] = 1
		}
		return binaryBind(oid.T_bool, b)
	case Int:
		if bits.UintSize == 64 {
			return encodeValue(arena, Int64(x), idx)
		}
		return encodeValue(arena, Int32(x), idx)
	case Int16:
		b := arena.alloc(2)
		binary.BigEndian.PutUint16(b, uint16(x))
		return binaryBind(oid.T_int2, b)
	case Int32:
		b := arena.alloc(4)
		binary.BigEndian.PutUint32(b, uint32(x))
		return binaryBind(oid.T_int4, b)
	case Int64:
		b := arena.alloc(8)
		binary.BigEndian.PutUint64(b, uint64(x))
		return binaryBind(oid.T_int8, b)
	case Float32:
		b := arena.alloc(4)
		binary.BigEndian.PutUint32(b, math.Float32bits(float32(x)))
		return binaryBind(oid.T_float4, b)
	case Float64:
		b := arena.alloc(8)
		binary.BigEndian.PutUint64(b, math.Float64bits(float64(x)))
		return binaryBind(oid.T_float8, b)
	case Text:
		b := arena.alloc(len(x))
		copy(b, x)
		return binaryBind(oid.T_varchar, b)
	case Bytes:
		if x == nil {
			return Bind{Binary: true}, nil
		}
		b := arena.alloc(len(x))
		copy(b, x)
		return binaryBind(oid.T_bytea, b)
	case Timestamp:
		b := arena.alloc(8)
		binary.BigEndian.PutUint64(b, uint64(timeToPGMicros(x.Time)))
		return binaryBind(oid.T_timestamptz, b)
	case Oid:
		b := arena.alloc(4)
		binary.BigEndian.PutUint32(b, uint32(x))
		return binaryBind(oid.T_oid, b)
	case UUID:
		s := uuid.UUID(x).String()
		b := arena.alloc(len(s))
		copy(b, s)
		return Bind{OID: oid.T_uuid, Length: int32(len(b)), Binary: false, Data: b}, nil
	case Key:
		if len(x.Values) != 1 {
			return Bind{}, errMultiColumnKey(x)
		}
		switch inner := x.Values[0].(type) {
		case Int, Int32, Int64, Text, UUID:
			return encodeValue(arena, inner, idx)
		default:
			return Bind{}, errUnsupportedBindType(idx, inner)
		}
	}
	return Bind{}, errUnsupportedBindType(idx, v)
}

// Decode converts one wire value into a Cell. raw == nil is NULL. attr, when
// not nil, is used as a hint for wire types the codec has no decoder for.
func Decode(typ oid.Oid, raw []byte, binary bool, attr *Attribute) (Cell, error) {
	if raw == nil {
		return Null{}, nil
	}
	if binary {
		return decodeBinary(typ, raw, attr)
	}
	return decodeText(typ, raw, attr)
}

func checkWidth(typ oid.Oid, raw []byte, width int) error {
	if len(raw) != width {
		return errInvalidWireValue(typeName(typ), width, len(raw))
	}
	return nil
}

func decodeBinary(typ oid.Oid, raw []byte, attr *Attribute) (Cell, error) {
	be := binary.BigEndian
	switch typ {
	case oid.T_int2:
		if err := checkWidth(typ, raw, 2); err != nil {
			return nil, err
		}
		return Int16(be.Uint16(raw)), nil
	case oid.T_int4:
		if err := checkWidth(typ, raw, 4); err != nil {
			return nil, err
		}
		return Int32(be.Uint32(raw)), nil
	case oid.T_int8:
		if err := checkWidth(typ, raw, 8); err != nil {
			return nil, err
		}
		return Int64(be.Uint64(raw)), nil
	case oid.T_oid:
		if err := checkWidth(typ, raw, 4); err != nil {
			return nil, err
		}
		return Oid(be.Uint32(raw)), nil
	case oid.T_float4:
		if err := checkWidth(typ, raw, 4); err != nil {
			return nil, err
		}
		return Float32(math.Float32frombits(be.Uint32(raw))), nil
	case oid.T_float8:
		if err := checkWidth(typ, raw, 8); err != nil {
			return nil, err
		}
		return Float64(math.Float64frombits(be.Uint64(raw))), nil
	case oid.T_bool:
		if err := checkWidth(typ, raw, 1); err != nil {
			return nil, err
		}
		return Bool(raw[0] != 0), nil
	case oid.T_varchar, oid.T_text, oid.T_bpchar, oid.T_name, oid.T_char, oid.T_json, oid.T_xml:
		return Text(raw), nil
	case oid.T_jsonb:
		if len(raw) == 0 || raw[0] != 1 {
			return nil, errUnparsableWireValue(typeName(typ), raw, nil)
		}
		return Text(raw[1:]), nil
	case oid.T_timestamptz, oid.T_timestamp:
		if err := checkWidth(typ, raw, 8); err != nil {
			return nil, err
		}
		us := int64(be.Uint64(raw))
		if cell, ok := infinityCell(us, timestampInfinity, timestampNegInfinity); ok {
			return cell, nil
		}
		return Timestamp{Time: pgMicrosToTime(us)}, nil
	case oid.T_date:
		if err := checkWidth(typ, raw, 4); err != nil {
			return nil, err
		}
		days := int32(be.Uint32(raw))
		if cell, ok := infinityCell(int64(days), dateInfinity, dateNegInfinity); ok {
			return cell, nil
		}
		return Timestamp{Time: pgDaysToTime(days)}, nil
	case oid.T_bytea:
		return Bytes(append([]byte{}, raw...)), nil
	case oid.T_uuid:
		u, err := uuid.FromBytes(raw)
		if err != nil {
			return nil, errInvalidWireValue(typeName(typ), 16, len(raw))
		}
		return Text(u.String()), nil
	case oid.T_numeric:
		s, err := decodeBinaryNumeric(raw)
		if err != nil {
			return nil, err
		}
		return Text(s), nil
	}
	logger.Debugf("no binary decoder for type %v, %v bytes", typeName(typ), len(raw))
	if attr.hintsString() {
		return Text(raw), nil
	}
	return Bytes(append([]byte{}, raw...)), nil
}

const (
	numericPositive = 0x0000
	numericNegative = 0x4000
	numericNaN      = 0xC000
	numericPInf     = 0xD000
	numericNInf     = 0xF000
)

// decodeBinaryNumeric renders the base 10000 numeric wire format as a
// decimal string with exactly dscale fractional digits.
func decodeBinaryNumeric(raw []byte) (string, error) {
	be := binary.BigEndian
	if len(raw) < 8 {
		return "", errInvalidWireValue("NUMERIC", 8, len(raw))
	}
	ndigits := int(int16(be.Uint16(raw[0:])))
	dscale := int(be.Uint16(raw[6:]))
	if ndigits < 0 || len(raw) != 8+2*ndigits {
		return "", errInvalidWireValue("NUMERIC", 8+2*ndigits, len(raw))
	}
	switch be.Uint16(raw[4:]) {
	case numericPositive, numericNegative, numericNaN, numericPInf, numericNInf:
	default:
		return "", errUnparsableWireValue("NUMERIC", raw, nil)
	}
	var n pgtype.Numeric
	plan := pgtype.NumericCodec{}.PlanScan(nil, pgtype.NumericOID, pgtype.BinaryFormatCode, &n)
	if err := plan.Scan(raw, &n); err != nil {
		return "", errUnparsableWireValue("NUMERIC", raw, err)
	}
	v, err := n.Value()
	if err != nil {
		return "", errUnparsableWireValue("NUMERIC", raw, err)
	}
	s, _ := v.(string)
	if ndigits == 0 && !n.NaN && n.InfinityModifier == pgtype.Finite && dscale > 0 {
		// zero keeps its scale, as in the text format
		s = "0." + strings.Repeat("0", dscale)
	}
	return s, nil
}

func decodeText(typ oid.Oid, raw []byte, attr *Attribute) (Cell, error) {
	s := string(raw)
	switch typ {
	case oid.T_int2:
		return parseTextInt(typ, raw, 16)
	case oid.T_int4:
		return parseTextInt(typ, raw, 32)
	case oid.T_int8:
		return parseTextInt(typ, raw, 64)
	case oid.T_oid:
		v, err := strconv.ParseUint(s, 10, 32)
		if err != nil {
			return nil, errUnparsableWireValue(typeName(typ), raw, err)
		}
		return Oid(v), nil
	case oid.T_float4:
		v, err := strconv.ParseFloat(s, 32)
		if err != nil {
			return nil, errUnparsableWireValue(typeName(typ), raw, err)
		}
		return Float32(v), nil
	case oid.T_float8:
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, errUnparsableWireValue(typeName(typ), raw, err)
		}
		return Float64(v), nil
	case oid.T_bool:
		switch s {
		case "t", "true":
			return Bool(true), nil
		case "f", "false":
			return Bool(false), nil
		}
		return nil, errUnparsableWireValue(typeName(typ), raw, nil)
	case oid.T_bytea:
		if strings.HasPrefix(s, `\x`) {
			b, err := hex.DecodeString(s[2:])
			if err != nil {
				return nil, errUnparsableWireValue(typeName(typ), raw, err)
			}
			return Bytes(b), nil
		}
		return Bytes(append([]byte{}, raw...)), nil
	case oid.T_varchar, oid.T_text, oid.T_bpchar, oid.T_name, oid.T_char,
		oid.T_timestamptz, oid.T_timestamp, oid.T_date, oid.T_uuid, oid.T_numeric:
		return Text(s), nil
	}
	switch {
	case attr.hintsInteger():
		return parseTextInt(typ, raw, 64)
	case attr.hintsFloat():
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, errUnparsableWireValue(typeName(typ), raw, err)
		}
		return Float64(v), nil
	}
	return Text(s), nil
}

func parseTextInt(typ oid.Oid, raw []byte, bitSize int) (Cell, error) {
	v, err := strconv.ParseInt(string(raw), 10, bitSize)
	if err != nil {
		return nil, errUnparsableWireValue(typeName(typ), raw, err)
	}
	switch bitSize {
	case 16:
		return Int16(v), nil
	case 32:
		return Int32(v), nil
	}
	return Int64(v), nil
}
