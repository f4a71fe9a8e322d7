// Copyright (c) 2024 Snowflake Computing Inc. All rights reserved.

package pgadaptor

import (
	"fmt"
	"strings"

	"github.com/lib/pq/oid"
)

// Row is a set of named values, keyed by attribute or column name.
type Row map[string]Value

// RecordSchema is shared by all records of one result.
type RecordSchema struct {
	names      []string
	attributes []*Attribute
	columnOIDs []oid.Oid
	index      map[string]int
}

// newRecordSchema names columns after attrs by position. Columns beyond attrs
// are named from the field metadata, or col[N] if the server sent no name.
func newRecordSchema(fields []fieldDescription, attrs []*Attribute) *RecordSchema {
	count := len(fields)
	schema := &RecordSchema{
		names:      make([]string, count),
		attributes: make([]*Attribute, count),
		columnOIDs: make([]oid.Oid, count),
		index:      make(map[string]int, count*2),
	}
	for i, f := range fields {
		schema.columnOIDs[i] = f.typ
		switch {
		case i < len(attrs) && attrs[i] != nil:
			schema.names[i] = attrs[i].Name
			schema.attributes[i] = attrs[i]
		case f.name != "":
			schema.names[i] = f.name
		default:
			schema.names[i] = fmt.Sprintf("col[%d]", i)
		}
	}
	for i, name := range schema.names {
		if _, ok := schema.index[name]; !ok {
			schema.index[name] = i
		}
	}
	for i, attr := range schema.attributes {
		if attr == nil || attr.ColumnName == "" {
			continue
		}
		if _, ok := schema.index[attr.ColumnName]; !ok {
			schema.index[attr.ColumnName] = i
		}
	}
	return schema
}

// NewRecordSchema creates a schema for columns with the given names and wire
// type ids. Records built on it with NewRecord behave like fetched ones.
func NewRecordSchema(names []string, oids []oid.Oid, attrs []*Attribute) *RecordSchema {
	fields := make([]fieldDescription, len(names))
	for i, name := range names {
		fields[i].name = name
		if i < len(oids) {
			fields[i].typ = oids[i]
		}
		fields[i].format = binaryFormat
	}
	return newRecordSchema(fields, attrs)
}

// Len returns the number of columns.
func (s *RecordSchema) Len() int {
	return len(s.names)
}

// Names returns the column names in result order.
func (s *RecordSchema) Names() []string {
	return append([]string(nil), s.names...)
}

// Attribute returns the attribute used for column i, or nil.
func (s *RecordSchema) Attribute(i int) *Attribute {
	return s.attributes[i]
}

// ColumnOID returns the wire type id of column i.
func (s *RecordSchema) ColumnOID(i int) oid.Oid {
	return s.columnOIDs[i]
}

// IndexOf returns the position of the column called name.
func (s *RecordSchema) IndexOf(name string) (int, bool) {
	i, ok := s.index[name]
	return i, ok
}

// Record is one decoded result row.
type Record struct {
	schema *RecordSchema
	values []Cell
}

// NewRecord creates a record on schema. Missing values are Null.
func NewRecord(schema *RecordSchema, values []Cell) Record {
	cells := make([]Cell, schema.Len())
	for i := range cells {
		if i < len(values) && values[i] != nil {
			cells[i] = values[i]
		} else {
			cells[i] = Null{}
		}
	}
	return Record{schema: schema, values: cells}
}

// Schema returns the schema shared with all other records of the result.
func (r Record) Schema() *RecordSchema {
	return r.schema
}

// Len returns the number of values.
func (r Record) Len() int {
	return len(r.values)
}

// At returns the value at position i.
func (r Record) At(i int) Cell {
	return r.values[i]
}

// Get returns the value of the column with the given attribute or column name.
func (r Record) Get(name string) (Cell, bool) {
	i, ok := r.schema.IndexOf(name)
	if !ok {
		return nil, false
	}
	return r.values[i], true
}

// Values returns the values in column order.
func (r Record) Values() []Cell {
	return append([]Cell(nil), r.values...)
}

// AsRow returns the record as a Row keyed by column name.
func (r Record) AsRow() Row {
	row := make(Row, len(r.values))
	for i, c := range r.values {
		if v, ok := c.(Value); ok {
			row[r.schema.names[i]] = v
		}
	}
	return row
}

func (r Record) String() string {
	var sb strings.Builder
	sb.WriteByte('{')
	for i, c := range r.values {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%v=%v", r.schema.names[i], c)
	}
	sb.WriteByte('}')
	return sb.String()
}

// fetchRows decodes every row of res and calls fn once per row. An error
// returned by fn stops the iteration and is returned as is.
func fetchRows(res *rawResult, attrs []*Attribute, fn func(Record) error) error {
	schema := newRecordSchema(res.fields, attrs)
	binary := res.binaryTuples()
	for _, row := range res.rows {
		values := make([]Cell, len(row))
		for col, raw := range row {
			if raw == nil {
				values[col] = Null{}
				continue
			}
			var attr *Attribute
			if col < len(attrs) {
				attr = attrs[col]
			}
			cell, err := Decode(res.fields[col].typ, raw, binary, attr)
			if err != nil {
				return err
			}
			values[col] = cell
		}
		if fn == nil {
			continue
		}
		if err := fn(Record{schema: schema, values: values}); err != nil {
			return err
		}
	}
	return nil
}
