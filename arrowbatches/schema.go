package arrowbatches

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/lib/pq/oid"

	pg "github.com/zeeql/pgadaptor"
)

const (
	metadataTypeKey         = "PG_TYPE"
	metadataExternalTypeKey = "EXTERNAL_TYPE"
)

// recordToSchema derives the arrow schema from the wire types of a result.
func recordToSchema(rs *pg.RecordSchema, option TimestampOption) *arrow.Schema {
	names := rs.Names()
	fields := make([]arrow.Field, len(names))
	for i, name := range names {
		typ := rs.ColumnOID(i)
		attr := rs.Attribute(i)
		keys := []string{metadataTypeKey}
		values := []string{oid.TypeName[typ]}
		nullable := true
		if attr != nil {
			nullable = attr.AllowsNull
			if attr.ExternalType != "" {
				keys = append(keys, metadataExternalTypeKey)
				values = append(values, attr.ExternalType)
			}
		}
		fields[i] = arrow.Field{
			Name:     name,
			Type:     dataTypeForOID(typ, option),
			Nullable: nullable,
			Metadata: arrow.NewMetadata(keys, values),
		}
	}
	return arrow.NewSchema(fields, nil)
}

func dataTypeForOID(typ oid.Oid, option TimestampOption) arrow.DataType {
	switch typ {
	case oid.T_bool:
		return arrow.FixedWidthTypes.Boolean
	case oid.T_int2:
		return arrow.PrimitiveTypes.Int16
	case oid.T_int4:
		return arrow.PrimitiveTypes.Int32
	case oid.T_int8:
		return arrow.PrimitiveTypes.Int64
	case oid.T_oid:
		return arrow.PrimitiveTypes.Uint32
	case oid.T_float4:
		return arrow.PrimitiveTypes.Float32
	case oid.T_float8:
		return arrow.PrimitiveTypes.Float64
	case oid.T_bytea:
		return arrow.BinaryTypes.Binary
	case oid.T_date:
		return arrow.FixedWidthTypes.Date32
	case oid.T_timestamptz:
		return &arrow.TimestampType{Unit: timeUnit(option), TimeZone: "UTC"}
	case oid.T_timestamp:
		return &arrow.TimestampType{Unit: timeUnit(option)}
	default:
		return arrow.BinaryTypes.String
	}
}

func timeUnit(option TimestampOption) arrow.TimeUnit {
	switch option {
	case UseNanosecondTimestamp:
		return arrow.Nanosecond
	case UseMillisecondTimestamp:
		return arrow.Millisecond
	case UseSecondTimestamp:
		return arrow.Second
	default:
		return arrow.Microsecond
	}
}
