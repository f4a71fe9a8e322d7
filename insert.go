package pgadaptor

import "context"

// InsertRow inserts row into the table of entity and returns the inserted
// record as reported by RETURNING. If refetchAll is false and the entity has a
// primary key, only the key columns are returned. Exactly one record must come
// back, anything else fails with ErrCodeFailedToRefetchInsertedRow.
func (ch *Channel) InsertRow(ctx context.Context, row Row, entity *Entity, refetchAll bool) (Record, error) {
	if entity == nil {
		return Record{}, ErrMissingEntity
	}
	attrs := entity.Attributes
	if !refetchAll && len(entity.PrimaryKeyAttributeNames) > 0 {
		if pkeys := entity.AttributesWithNames(entity.PrimaryKeyAttributeNames); len(pkeys) > 0 {
			attrs = pkeys
		}
	}

	expr := NewExpression(entity)
	if err := expr.PrepareInsertReturning(row, attrs); err != nil {
		return Record{}, err
	}

	var inserted *Record
	err := ch.EvaluateQuery(ctx, expr, attrs, func(r Record) error {
		if inserted != nil {
			return errFailedToRefetchInsertedRow(entity)
		}
		inserted = &r
		return nil
	})
	if err != nil {
		return Record{}, err
	}
	if inserted == nil {
		return Record{}, errFailedToRefetchInsertedRow(entity)
	}
	return *inserted, nil
}
