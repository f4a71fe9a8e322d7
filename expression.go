package pgadaptor

import (
	"sort"
	"strconv"
	"strings"

	"github.com/lib/pq"
)

// BindVariable is one parameter of an Expression.
type BindVariable struct {
	Placeholder string
	Attribute   *Attribute
	Value       Value
}

// Expression is a SQL statement with $n placeholders and its parameters.
type Expression struct {
	Entity        *Entity
	Statement     string
	BindVariables []BindVariable
}

// NewExpression creates an empty expression for entity, which may be nil.
func NewExpression(entity *Entity) *Expression {
	return &Expression{Entity: entity}
}

// AddBind registers a parameter and returns its placeholder.
func (e *Expression) AddBind(attr *Attribute, v Value) string {
	placeholder := "$" + strconv.Itoa(len(e.BindVariables)+1)
	e.BindVariables = append(e.BindVariables, BindVariable{
		Placeholder: placeholder,
		Attribute:   attr,
		Value:       v,
	})
	return placeholder
}

// Binds returns the parameter values in placeholder order.
func (e *Expression) Binds() []Value {
	values := make([]Value, len(e.BindVariables))
	for i, b := range e.BindVariables {
		values[i] = b.Value
	}
	return values
}

// CaseInsensitiveLikeOperator is the operator used for case insensitive
// pattern matches.
func (e *Expression) CaseInsensitiveLikeOperator() string {
	return "ILIKE"
}

// QuoteIdentifier quotes a table or column name.
func (e *Expression) QuoteIdentifier(name string) string {
	return pq.QuoteIdentifier(name)
}

// QuoteLiteral quotes a string constant.
func (e *Expression) QuoteLiteral(s string) string {
	return pq.QuoteLiteral(s)
}

// PrepareInsertReturning builds an INSERT of row into the entity table which
// returns the columns of returning, or all columns if returning is empty.
// Row keys may be attribute or column names; columns are listed in sorted key
// order.
func (e *Expression) PrepareInsertReturning(row Row, returning []*Attribute) error {
	if e.Entity == nil {
		return ErrMissingEntity
	}
	e.BindVariables = nil

	keys := make([]string, 0, len(row))
	for k := range row {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	sb.WriteString("INSERT INTO ")
	sb.WriteString(e.QuoteIdentifier(e.Entity.tableName()))
	if len(keys) == 0 {
		sb.WriteString(" DEFAULT VALUES")
	} else {
		columns := make([]string, len(keys))
		placeholders := make([]string, len(keys))
		for i, key := range keys {
			attr := e.Entity.AttributeNamed(key)
			column := key
			if attr != nil {
				column = attr.column()
			}
			columns[i] = e.QuoteIdentifier(column)
			placeholders[i] = e.AddBind(attr, row[key])
		}
		sb.WriteString(" (")
		sb.WriteString(strings.Join(columns, ", "))
		sb.WriteString(") VALUES (")
		sb.WriteString(strings.Join(placeholders, ", "))
		sb.WriteString(")")
	}

	sb.WriteString(" RETURNING ")
	if len(returning) == 0 {
		sb.WriteString("*")
	} else {
		columns := make([]string, len(returning))
		for i, attr := range returning {
			columns[i] = e.QuoteIdentifier(attr.column())
		}
		sb.WriteString(strings.Join(columns, ", "))
	}
	e.Statement = sb.String()
	return nil
}
