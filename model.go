package pgadaptor

import (
	"fmt"
	"strings"
)

// ValueType is the semantic type of an attribute, independent of the column's
// storage type.
type ValueType int

const (
	// ValueTypeUnknown is used for column types without a mapping.
	ValueTypeUnknown ValueType = iota
	ValueTypeString
	ValueTypeBool
	ValueTypeInt16
	ValueTypeInt32
	ValueTypeInt64
	ValueTypeFloat32
	ValueTypeFloat64
	ValueTypeDecimal
	ValueTypeTimestamp
	ValueTypeDate
	ValueTypeTime
	ValueTypeInterval
	ValueTypeBytes
	ValueTypeUUID
	ValueTypeOid
	ValueTypeJSON
)

var valueTypeNames = [...]string{
	ValueTypeUnknown:   "Unknown",
	ValueTypeString:    "String",
	ValueTypeBool:      "Bool",
	ValueTypeInt16:     "Int16",
	ValueTypeInt32:     "Int32",
	ValueTypeInt64:     "Int64",
	ValueTypeFloat32:   "Float32",
	ValueTypeFloat64:   "Float64",
	ValueTypeDecimal:   "Decimal",
	ValueTypeTimestamp: "Timestamp",
	ValueTypeDate:      "Date",
	ValueTypeTime:      "Time",
	ValueTypeInterval:  "Interval",
	ValueTypeBytes:     "Bytes",
	ValueTypeUUID:      "UUID",
	ValueTypeOid:       "Oid",
	ValueTypeJSON:      "JSON",
}

func (vt ValueType) String() string {
	if vt < 0 || int(vt) >= len(valueTypeNames) {
		return fmt.Sprintf("ValueType(%d)", int(vt))
	}
	return valueTypeNames[vt]
}

// Attribute describes one column of an entity.
type Attribute struct {
	Name       string
	ColumnName string
	// ExternalType is the uppercased PostgreSQL type name, e.g. VARCHAR.
	ExternalType string
	ValueType    ValueType
	AllowsNull   bool
	// Width is the fixed storage width in bytes, 0 for variable width types.
	Width           int
	IsAutoIncrement bool
}

func (a *Attribute) String() string {
	if a == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%v(%v %v)", a.Name, a.ColumnName, a.ExternalType)
}

// column returns the column name, falling back to the attribute name.
func (a *Attribute) column() string {
	if a.ColumnName != "" {
		return a.ColumnName
	}
	return a.Name
}

func (a *Attribute) hintsString() bool {
	return a != nil && a.ValueType == ValueTypeString
}

func (a *Attribute) hintsInteger() bool {
	if a == nil {
		return false
	}
	switch a.ValueType {
	case ValueTypeInt16, ValueTypeInt32, ValueTypeInt64:
		return true
	}
	return false
}

func (a *Attribute) hintsFloat() bool {
	if a == nil {
		return false
	}
	return a.ValueType == ValueTypeFloat32 || a.ValueType == ValueTypeFloat64
}

// ConstraintRule is the action a foreign key takes on delete or update of the
// referenced row.
type ConstraintRule int

const (
	// RuleUnspecified is used when the catalog did not report a known rule.
	RuleUnspecified ConstraintRule = iota
	// RuleDeny is RESTRICT.
	RuleDeny
	// RuleCascade is CASCADE.
	RuleCascade
	// RuleNullify is SET NULL.
	RuleNullify
	// RuleApplyDefault is SET DEFAULT.
	RuleApplyDefault
	// RuleNoAction is NO ACTION.
	RuleNoAction
)

func (r ConstraintRule) String() string {
	switch r {
	case RuleDeny:
		return "Deny"
	case RuleCascade:
		return "Cascade"
	case RuleNullify:
		return "Nullify"
	case RuleApplyDefault:
		return "ApplyDefault"
	case RuleNoAction:
		return "NoAction"
	}
	return "Unspecified"
}

// constraintRuleFromCode maps the single letter codes of
// pg_constraint.confdeltype and confupdtype.
func constraintRuleFromCode(code string) (ConstraintRule, bool) {
	switch code {
	case "r":
		return RuleDeny, true
	case "c":
		return RuleCascade, true
	case "n":
		return RuleNullify, true
	case "d":
		return RuleApplyDefault, true
	case "a":
		return RuleNoAction, true
	}
	return RuleUnspecified, false
}

// Join pairs a source column with the column it references.
type Join struct {
	SourceColumn      string
	DestinationColumn string
}

// Relationship is a to-one relationship synthesized from a single column
// foreign key constraint.
type Relationship struct {
	Name           string
	ConstraintName string
	// Entity is the entity owning the foreign key.
	Entity                *Entity
	DestinationEntityName string
	Joins                 []Join
	DeleteRule            ConstraintRule
	UpdateRule            ConstraintRule
	IsToMany              bool
}

func (r *Relationship) String() string {
	joins := make([]string, len(r.Joins))
	for i, j := range r.Joins {
		joins[i] = j.SourceColumn + "=" + j.DestinationColumn
	}
	return fmt.Sprintf("%v -> %v [%v]", r.Name, r.DestinationEntityName, strings.Join(joins, ","))
}

// Entity describes a table.
type Entity struct {
	Name       string
	Table      string
	Attributes []*Attribute
	// PrimaryKeyAttributeNames are attribute names in key order.
	PrimaryKeyAttributeNames []string
	Relationships            []*Relationship
}

// AttributeNamed returns the attribute called name, or nil.
func (e *Entity) AttributeNamed(name string) *Attribute {
	for _, a := range e.Attributes {
		if a.Name == name {
			return a
		}
	}
	return nil
}

// AttributeWithColumn returns the attribute mapped to column, or nil.
func (e *Entity) AttributeWithColumn(column string) *Attribute {
	for _, a := range e.Attributes {
		if a.column() == column {
			return a
		}
	}
	return nil
}

// AttributesWithNames returns the attributes called names, in the order of
// names. Unknown names are skipped.
func (e *Entity) AttributesWithNames(names []string) []*Attribute {
	attrs := make([]*Attribute, 0, len(names))
	for _, name := range names {
		if a := e.AttributeNamed(name); a != nil {
			attrs = append(attrs, a)
		}
	}
	return attrs
}

// RelationshipNamed returns the relationship called name, or nil.
func (e *Entity) RelationshipNamed(name string) *Relationship {
	for _, r := range e.Relationships {
		if r.Name == name {
			return r
		}
	}
	return nil
}

// tableName returns the table, falling back to the entity name.
func (e *Entity) tableName() string {
	if e.Table != "" {
		return e.Table
	}
	return e.Name
}

// ModelTag is a fingerprint of the database schema. Two tags are equal if the
// schema did not change in between.
type ModelTag struct {
	hash string
}

// NewModelTag wraps a fingerprint string.
func NewModelTag(hash string) ModelTag {
	return ModelTag{hash: hash}
}

// Equal reports whether both tags describe the same schema.
func (t ModelTag) Equal(other ModelTag) bool {
	return t.hash == other.hash
}

// IsZero reports whether the tag was never set.
func (t ModelTag) IsZero() bool {
	return t.hash == ""
}

func (t ModelTag) String() string {
	return t.hash
}

// Model is a set of entities, optionally tagged with the schema fingerprint it
// was built from.
type Model struct {
	Entities []*Entity
	Tag      *ModelTag
}

// EntityNamed returns the entity called name, or nil.
func (m *Model) EntityNamed(name string) *Entity {
	for _, e := range m.Entities {
		if e.Name == name {
			return e
		}
	}
	return nil
}
