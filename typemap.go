package pgadaptor

import "strings"

// TypeMap maps an external (PostgreSQL) type name to a ValueType.
type TypeMap interface {
	ValueTypeForExternalType(externalType string, allowsNull bool) ValueType
}

// TypeMapFunc adapts a function to the TypeMap interface.
type TypeMapFunc func(externalType string, allowsNull bool) ValueType

// ValueTypeForExternalType calls f.
func (f TypeMapFunc) ValueTypeForExternalType(externalType string, allowsNull bool) ValueType {
	return f(externalType, allowsNull)
}

var defaultExternalTypes = map[string]ValueType{
	"BOOL":        ValueTypeBool,
	"BOOLEAN":     ValueTypeBool,
	"INT2":        ValueTypeInt16,
	"SMALLINT":    ValueTypeInt16,
	"INT4":        ValueTypeInt32,
	"INT":         ValueTypeInt32,
	"INTEGER":     ValueTypeInt32,
	"SERIAL":      ValueTypeInt32,
	"INT8":        ValueTypeInt64,
	"BIGINT":      ValueTypeInt64,
	"BIGSERIAL":   ValueTypeInt64,
	"OID":         ValueTypeOid,
	"FLOAT4":      ValueTypeFloat32,
	"REAL":        ValueTypeFloat32,
	"FLOAT8":      ValueTypeFloat64,
	"DOUBLE":      ValueTypeFloat64,
	"NUMERIC":     ValueTypeDecimal,
	"DECIMAL":     ValueTypeDecimal,
	"MONEY":       ValueTypeDecimal,
	"CHAR":        ValueTypeString,
	"BPCHAR":      ValueTypeString,
	"VARCHAR":     ValueTypeString,
	"TEXT":        ValueTypeString,
	"NAME":        ValueTypeString,
	"CITEXT":      ValueTypeString,
	"XML":         ValueTypeString,
	"JSON":        ValueTypeJSON,
	"JSONB":       ValueTypeJSON,
	"BYTEA":       ValueTypeBytes,
	"UUID":        ValueTypeUUID,
	"DATE":        ValueTypeDate,
	"TIME":        ValueTypeTime,
	"TIMETZ":      ValueTypeTime,
	"TIMESTAMP":   ValueTypeTimestamp,
	"TIMESTAMPTZ": ValueTypeTimestamp,
	"INTERVAL":    ValueTypeInterval,
}

// DefaultTypeMap maps the built-in PostgreSQL type names. Lookups are case
// insensitive, nullability does not change the result.
var DefaultTypeMap TypeMap = TypeMapFunc(func(externalType string, _ bool) ValueType {
	return defaultExternalTypes[strings.ToUpper(externalType)]
})

// NameMapper maps between database names and model names.
type NameMapper interface {
	EntityNameForTableName(table string) string
	AttributeNameForColumnName(column string) string
}

type identityNameMapper struct{}

func (identityNameMapper) EntityNameForTableName(table string) string      { return table }
func (identityNameMapper) AttributeNameForColumnName(column string) string { return column }

// IdentityNameMapper uses table and column names as entity and attribute names.
var IdentityNameMapper NameMapper = identityNameMapper{}
