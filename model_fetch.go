package pgadaptor

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"github.com/lib/pq"
)

const tableNameQuery = "SELECT BASE.relname AS table_name " +
	"FROM pg_class AS BASE " +
	"LEFT JOIN pg_catalog.pg_namespace N ON N.oid = BASE.relnamespace " +
	"WHERE BASE.relkind = 'r' " +
	"AND N.nspname NOT IN ('pg_catalog', 'pg_toast') " +
	"AND pg_catalog.pg_table_is_visible(BASE.oid) " +
	"ORDER BY BASE.relname"

const sequenceNameQuery = "SELECT BASE.relname AS sequence_name " +
	"FROM pg_class AS BASE " +
	"LEFT JOIN pg_catalog.pg_namespace N ON N.oid = BASE.relnamespace " +
	"WHERE BASE.relkind = 'S' " +
	"AND N.nspname NOT IN ('pg_catalog', 'pg_toast') " +
	"AND pg_catalog.pg_table_is_visible(BASE.oid) " +
	"ORDER BY BASE.relname"

const databaseNameQuery = "SELECT datname FROM pg_database ORDER BY datname"

const columnQuery = "SELECT c.relname AS table_name, a.attnum, a.attname AS colname, " +
	"t.typname AS exttype, a.attlen, a.attnotnull " +
	"FROM pg_class c, pg_attribute a, pg_type t " +
	"WHERE a.attnum > 0 AND NOT a.attisdropped " +
	"AND a.attrelid = c.oid AND a.atttypid = t.oid " +
	"AND c.oid IN (%TABLES%) " +
	"ORDER BY c.relname, a.attnum"

const primaryKeyQuery = "SELECT c.relname AS table_name, a.attname AS name " +
	"FROM pg_index i " +
	"INNER JOIN pg_class c ON c.oid = i.indrelid " +
	"INNER JOIN pg_attribute a ON a.attrelid = c.oid AND a.attnum = ANY(i.indkey) " +
	"WHERE i.indisprimary " +
	"AND c.oid IN (%TABLES%) " +
	"ORDER BY c.relname, array_position(i.indkey::int2[], a.attnum)"

const autoIncrementQuery = "SELECT TAB.relname AS table_name, ATTR.attname AS name " +
	"FROM pg_depend DEP " +
	"INNER JOIN pg_class TAB " +
	"ON (DEP.refobjid = TAB.oid AND DEP.refclassid = 'pg_class'::regclass) " +
	"INNER JOIN pg_class SEQ " +
	"ON (SEQ.oid = DEP.objid AND SEQ.relkind = 'S' AND DEP.classid = 'pg_class'::regclass) " +
	"INNER JOIN pg_attribute ATTR " +
	"ON (ATTR.attrelid = TAB.oid AND ATTR.attnum = DEP.refobjsubid AND DEP.deptype IN ('a', 'i')) " +
	"WHERE TAB.oid IN (%TABLES%)"

// only the first column pair of a constraint is joined, source_column_count
// tells whether there are more
const foreignKeyQuery = "SELECT c.conname AS constraint_name, " +
	"tf.relname AS source_table, " +
	"tfa.attname AS source_column, " +
	"array_length(c.conkey, 1) AS source_column_count, " +
	"tt.relname AS foreign_table_name, " +
	"tta.attname AS target_column, " +
	"c.contype AS constraint_type, " +
	"c.confupdtype AS on_update, " +
	"c.confdeltype AS on_delete, " +
	"c.confmatchtype::text AS match_type " +
	"FROM pg_catalog.pg_constraint AS c " +
	"INNER JOIN pg_class AS tf ON tf.oid = c.conrelid " +
	"INNER JOIN pg_attribute AS tfa ON (tfa.attrelid = tf.oid AND tfa.attnum = c.conkey[1]) " +
	"INNER JOIN pg_class AS tt ON tt.oid = c.confrelid " +
	"INNER JOIN pg_attribute AS tta ON (tta.attrelid = tt.oid AND tta.attnum = c.confkey[1]) " +
	"WHERE c.contype = 'f' " +
	"AND tf.oid IN (%TABLES%) " +
	"ORDER BY c.conname"

const allSchemaInfoQuery = "SELECT c.relname AS table_name, c.relnamespace, " +
	"a.attnum, a.attname AS colname, t.typname AS exttype, " +
	"a.attlen, a.attnotnull " +
	"FROM pg_class c " +
	"INNER JOIN pg_attribute a ON (a.attrelid = c.oid) " +
	"INNER JOIN pg_type t ON (a.atttypid = t.oid) " +
	"LEFT JOIN pg_catalog.pg_namespace N ON (N.oid = c.relnamespace) " +
	"WHERE a.attnum > 0 " +
	"AND c.relkind = 'r' " +
	"AND N.nspname NOT IN ('pg_catalog', 'pg_toast') " +
	"AND pg_catalog.pg_table_is_visible(c.oid)"

// the row hashes are ordered so the tag does not depend on catalog scan order
const modelTagQuery = "SELECT md5(coalesce(" +
	"array_agg(md5((zzinfo.*)::varchar) ORDER BY md5((zzinfo.*)::varchar)), " +
	"'{}'::text[])::varchar) " +
	"FROM (" + allSchemaInfoQuery + ") AS zzinfo"

// ModelFetch reflects the database schema through a channel.
type ModelFetch struct {
	channel    *Channel
	nameMapper NameMapper
	typeMap    TypeMap
}

// NewModelFetch creates a reflector using the type map and name mapper of the
// channel options.
func NewModelFetch(ch *Channel) *ModelFetch {
	return &ModelFetch{
		channel:    ch,
		nameMapper: ch.opts.NameMapper,
		typeMap:    ch.opts.TypeMap,
	}
}

// FetchModelTag returns the fingerprint of all visible user tables.
func (mf *ModelFetch) FetchModelTag(ctx context.Context) (ModelTag, error) {
	records, err := mf.channel.FetchRecords(ctx, modelTagQuery)
	if err != nil {
		return ModelTag{}, err
	}
	if len(records) == 0 || records[0].Len() == 0 {
		return ModelTag{}, ErrNoModelTag
	}
	hash, ok := cellString(records[0].At(0))
	if !ok || hash == "" {
		return ModelTag{}, ErrNoModelTag
	}
	return NewModelTag(hash), nil
}

// DescribeTableNames returns the visible user tables, ordered by name.
func (mf *ModelFetch) DescribeTableNames(ctx context.Context) ([]string, error) {
	return mf.fetchStrings(ctx, tableNameQuery)
}

// DescribeSequenceNames returns the visible sequences, ordered by name.
func (mf *ModelFetch) DescribeSequenceNames(ctx context.Context) ([]string, error) {
	return mf.fetchStrings(ctx, sequenceNameQuery)
}

// DescribeDatabaseNames returns all databases of the server, ordered by name.
func (mf *ModelFetch) DescribeDatabaseNames(ctx context.Context) ([]string, error) {
	return mf.fetchStrings(ctx, databaseNameQuery)
}

func (mf *ModelFetch) fetchStrings(ctx context.Context, sql string) ([]string, error) {
	records, err := mf.channel.FetchRecords(ctx, sql)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(records))
	for _, r := range records {
		if name, ok := cellString(r.At(0)); ok {
			names = append(names, name)
		}
	}
	return names, nil
}

// FetchModel reflects all visible tables into a tagged model.
func (mf *ModelFetch) FetchModel(ctx context.Context) (*Model, error) {
	names, err := mf.DescribeTableNames(ctx)
	if err != nil {
		return nil, err
	}
	return mf.DescribeModelWithTableNames(ctx, names, true)
}

// DescribeModelWithTableNames reflects tables into a model, tagged if asked.
// When no transaction is active, the reflection runs in one that is always
// rolled back.
func (mf *ModelFetch) DescribeModelWithTableNames(ctx context.Context, tables []string, tagged bool) (*Model, error) {
	didOpenTX := !mf.channel.IsTransactionInProgress()
	if didOpenTX {
		if err := mf.channel.Begin(ctx); err != nil {
			return nil, err
		}
	}

	model, err := mf.describeModel(ctx, tables, tagged)
	if err != nil {
		if didOpenTX {
			if rerr := mf.channel.Rollback(ctx); rerr != nil {
				logger.WithContext(ctx).Debugf("rollback after failed reflection: %v", rerr)
			}
		}
		return nil, err
	}
	if didOpenTX {
		if err := mf.channel.Rollback(ctx); err != nil {
			return nil, err
		}
	}
	return model, nil
}

func (mf *ModelFetch) describeModel(ctx context.Context, tables []string, tagged bool) (*Model, error) {
	entities, err := mf.DescribeEntitiesWithTableNames(ctx, tables)
	if err != nil {
		return nil, err
	}
	model := &Model{Entities: entities}
	if tagged {
		tag, err := mf.FetchModelTag(ctx)
		if err != nil {
			return nil, err
		}
		model.Tag = &tag
	}
	return model, nil
}

// DescribeEntityWithTableName reflects a single table.
func (mf *ModelFetch) DescribeEntityWithTableName(ctx context.Context, table string) (*Entity, error) {
	entities, err := mf.DescribeEntitiesWithTableNames(ctx, []string{table})
	if err != nil {
		return nil, err
	}
	if len(entities) == 0 {
		return nil, errTableNotFound(table)
	}
	return entities[0], nil
}

// tableInList renders tables as a list of regclass lookups. Unknown tables
// resolve to NULL and match nothing.
func tableInList(tables []string) string {
	regs := make([]string, len(tables))
	for i, t := range tables {
		regs[i] = "to_regclass(" + pq.QuoteLiteral(pq.QuoteIdentifier(t)) + ")"
	}
	return strings.Join(regs, ", ")
}

func groupByTable(records []Record) map[string][]Record {
	grouped := make(map[string][]Record)
	for _, r := range records {
		table, ok := recordString(r, "table_name")
		if !ok {
			continue
		}
		grouped[table] = append(grouped[table], r)
	}
	return grouped
}

// DescribeEntitiesWithTableNames reflects tables, in the given order. A table
// without any column is reported as ErrCodeTableNotFound.
func (mf *ModelFetch) DescribeEntitiesWithTableNames(ctx context.Context, tables []string) ([]*Entity, error) {
	if len(tables) == 0 {
		return []*Entity{}, nil
	}
	tableIn := tableInList(tables)
	scoped := func(query string) string {
		return strings.Replace(query, "%TABLES%", tableIn, 1)
	}

	columnRecords, err := mf.channel.FetchRecords(ctx, scoped(columnQuery))
	if err != nil {
		return nil, err
	}
	pkeyRecords, err := mf.channel.FetchRecords(ctx, scoped(primaryKeyQuery))
	if err != nil {
		return nil, err
	}
	autoIncrRecords, err := mf.channel.FetchRecords(ctx, scoped(autoIncrementQuery))
	if err != nil {
		return nil, err
	}
	fkeyRecords, err := mf.channel.FetchRecords(ctx, scoped(foreignKeyQuery))
	if err != nil {
		return nil, err
	}

	columnsByTable := groupByTable(columnRecords)

	pkeysByTable := make(map[string][]string)
	for _, r := range pkeyRecords {
		table, ok1 := recordString(r, "table_name")
		name, ok2 := recordString(r, "name")
		if ok1 && ok2 {
			pkeysByTable[table] = append(pkeysByTable[table], name)
		}
	}

	autoIncrByTable := make(map[string]map[string]bool)
	for _, r := range autoIncrRecords {
		table, ok1 := recordString(r, "table_name")
		name, ok2 := recordString(r, "name")
		if !ok1 || !ok2 {
			continue
		}
		if autoIncrByTable[table] == nil {
			autoIncrByTable[table] = make(map[string]bool)
		}
		autoIncrByTable[table][name] = true
	}

	fkeysByTable := make(map[string][]Record)
	for _, r := range fkeyRecords {
		if table, ok := recordString(r, "source_table"); ok {
			fkeysByTable[table] = append(fkeysByTable[table], r)
		}
	}

	entities := make([]*Entity, 0, len(tables))
	for _, table := range tables {
		columnInfos, ok := columnsByTable[table]
		if !ok {
			return nil, errTableNotFound(table)
		}
		entity := &Entity{
			Name:  mf.nameMapper.EntityNameForTableName(table),
			Table: table,
		}
		entity.Attributes = mf.attributesFromColumnInfos(columnInfos, autoIncrByTable[table])
		entity.PrimaryKeyAttributeNames = attributeNamesFromColumnNames(pkeysByTable[table], entity.Attributes)
		entity.Relationships = mf.relationshipsFromForeignKeys(ctx, entity, fkeysByTable[table])
		entities = append(entities, entity)
	}
	return entities, nil
}

func (mf *ModelFetch) attributesFromColumnInfos(columnInfos []Record, autoIncrement map[string]bool) []*Attribute {
	attributes := make([]*Attribute, 0, len(columnInfos))
	for _, info := range columnInfos {
		column, ok := recordString(info, "colname")
		if !ok {
			continue
		}
		attr := &Attribute{
			Name:       mf.nameMapper.AttributeNameForColumnName(column),
			ColumnName: column,
			AllowsNull: true,
		}
		if exttype, ok := recordString(info, "exttype"); ok {
			attr.ExternalType = strings.ToUpper(exttype)
		}
		if width, ok := recordInt(info, "attlen"); ok && width > 0 {
			attr.Width = int(width)
		}
		if notNull, ok := recordBool(info, "attnotnull"); ok {
			attr.AllowsNull = !notNull
		}
		if attr.ExternalType != "" {
			attr.ValueType = mf.typeMap.ValueTypeForExternalType(attr.ExternalType, attr.AllowsNull)
		}
		attr.IsAutoIncrement = autoIncrement[column]
		attributes = append(attributes, attr)
	}
	return attributes
}

func attributeNamesFromColumnNames(columns []string, attrs []*Attribute) []string {
	names := make([]string, 0, len(columns))
	for _, column := range columns {
		for _, attr := range attrs {
			if attr.ColumnName == column {
				names = append(names, attr.Name)
				break
			}
		}
	}
	return names
}

func (mf *ModelFetch) relationshipsFromForeignKeys(ctx context.Context, entity *Entity, fkeys []Record) []*Relationship {
	if len(fkeys) == 0 {
		return nil
	}
	byConstraint := make(map[string][]Record)
	for _, r := range fkeys {
		if name, ok := recordString(r, "constraint_name"); ok {
			byConstraint[name] = append(byConstraint[name], r)
		}
	}
	names := make([]string, 0, len(byConstraint))
	for name := range byConstraint {
		names = append(names, name)
	}
	sort.Strings(names)

	var relationships []*Relationship
	for _, name := range names {
		rel := &Relationship{
			Name:           name,
			ConstraintName: name,
			Entity:         entity,
		}
		for _, fkey := range byConstraint[name] {
			if contype, ok := recordString(fkey, "constraint_type"); ok && contype != "" && contype != "f" {
				continue
			}
			if count, ok := recordInt(fkey, "source_column_count"); ok && count > 1 {
				logger.WithContext(ctx).Warnf("unsupported multi-column foreign-key constraint: %v", fkey)
				continue
			}
			destination, ok1 := recordString(fkey, "foreign_table_name")
			source, ok2 := recordString(fkey, "source_column")
			target, ok3 := recordString(fkey, "target_column")
			if !ok1 || !ok2 || !ok3 {
				continue
			}
			rel.DestinationEntityName = mf.nameMapper.EntityNameForTableName(destination)
			rel.Joins = append(rel.Joins, Join{SourceColumn: source, DestinationColumn: target})

			if code, ok := recordString(fkey, "on_delete"); ok {
				if rule, known := constraintRuleFromCode(code); known {
					rel.DeleteRule = rule
				} else {
					logger.WithContext(ctx).Warnf("unexpected foreign-key delete rule: %v", fkey)
				}
			}
			if code, ok := recordString(fkey, "on_update"); ok {
				if rule, known := constraintRuleFromCode(code); known {
					rel.UpdateRule = rule
				} else {
					logger.WithContext(ctx).Warnf("unexpected foreign-key update rule: %v", fkey)
				}
			}
		}
		if len(rel.Joins) > 0 {
			relationships = append(relationships, rel)
		}
	}
	return relationships
}

func cellString(c Cell) (string, bool) {
	switch v := c.(type) {
	case Text:
		return string(v), true
	case Bytes:
		return string(v), true
	}
	return "", false
}

func cellInt(c Cell) (int64, bool) {
	switch v := c.(type) {
	case Int16:
		return int64(v), true
	case Int32:
		return int64(v), true
	case Int64:
		return int64(v), true
	case Oid:
		return int64(v), true
	case Text:
		n, err := strconv.ParseInt(string(v), 10, 64)
		return n, err == nil
	}
	return 0, false
}

func cellBool(c Cell) (bool, bool) {
	switch v := c.(type) {
	case Bool:
		return bool(v), true
	case Text:
		switch v {
		case "t", "true":
			return true, true
		case "f", "false":
			return false, true
		}
	}
	return false, false
}

func recordString(r Record, name string) (string, bool) {
	c, ok := r.Get(name)
	if !ok {
		return "", false
	}
	return cellString(c)
}

func recordInt(r Record, name string) (int64, bool) {
	c, ok := r.Get(name)
	if !ok {
		return 0, false
	}
	return cellInt(c)
}

func recordBool(r Record, name string) (bool, bool) {
	c, ok := r.Get(name)
	if !ok {
		return false, false
	}
	return cellBool(c)
}

// DescribeTableNames returns the visible user tables, ordered by name.
func (ch *Channel) DescribeTableNames(ctx context.Context) ([]string, error) {
	return NewModelFetch(ch).DescribeTableNames(ctx)
}

// DescribeSequenceNames returns the visible sequences, ordered by name.
func (ch *Channel) DescribeSequenceNames(ctx context.Context) ([]string, error) {
	return NewModelFetch(ch).DescribeSequenceNames(ctx)
}

// DescribeDatabaseNames returns all databases, ordered by name.
func (ch *Channel) DescribeDatabaseNames(ctx context.Context) ([]string, error) {
	return NewModelFetch(ch).DescribeDatabaseNames(ctx)
}

// DescribeEntityWithTableName reflects a single table.
func (ch *Channel) DescribeEntityWithTableName(ctx context.Context, table string) (*Entity, error) {
	return NewModelFetch(ch).DescribeEntityWithTableName(ctx, table)
}
