package postgresengine

import (
	"errors"
	"fmt"
	"strings"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
	jsoniter "github.com/json-iterator/go"

	"github.com/MadMax267/payload/versionstore"
)

// fieldLatest is the reserved key the flag strategy combines into the caller's
// where; it addresses the persisted latest marker column, not a payload field.
const fieldLatest = "latest"

// metadataColumn maps a logical metadata key to its physical column. The
// resolved entity id is the parent id, never the version row's own id.
func metadataColumn(key versionstore.FieldNameString) (string, bool) {
	switch key {
	case versionstore.FieldID:
		return colParentID, true
	case versionstore.FieldCreatedAt:
		return colCreatedAt, true
	case versionstore.FieldUpdatedAt:
		return colUpdatedAt, true
	case fieldLatest:
		return colLatest, true
	default:
		return "", false
	}
}

// payloadKey strips the version namespace prefix, leaving the key addressing
// the JSONB payload. Keys that were never rewritten pass through unchanged,
// so the compiler is total over both key spellings.
func payloadKey(key versionstore.FieldNameString) string {
	return strings.TrimPrefix(key, versionstore.VersionFieldPrefix)
}

// whereExpression compiles a predicate tree into a goqu expression over the
// physical version wrapper schema. A nil tree compiles to nil (no filter).
func whereExpression(where *versionstore.Where) (goqu.Expression, error) {
	if where == nil {
		return nil, nil
	}

	if where.IsLeaf() {
		return leafExpression(where)
	}

	if conjuncts := where.Conjuncts(); len(conjuncts) > 0 {
		expressions := make([]goqu.Expression, 0, len(conjuncts))

		for _, conjunct := range conjuncts {
			compiled, err := whereExpression(conjunct)
			if err != nil {
				return nil, err
			}

			expressions = append(expressions, compiled)
		}

		return goqu.And(expressions...), nil
	}

	expressions := make([]goqu.Expression, 0, len(where.Disjuncts()))

	for _, disjunct := range where.Disjuncts() {
		compiled, err := whereExpression(disjunct)
		if err != nil {
			return nil, err
		}

		expressions = append(expressions, compiled)
	}

	return goqu.Or(expressions...), nil
}

func leafExpression(where *versionstore.Where) (goqu.Expression, error) {
	if column, ok := metadataColumn(where.Field()); ok {
		return columnExpression(goqu.C(column), where)
	}

	return payloadExpression(payloadKey(where.Field()), where)
}

func columnExpression(column exp.IdentifierExpression, where *versionstore.Where) (goqu.Expression, error) {
	switch where.Op() {
	case versionstore.OpEquals:
		return column.Eq(where.Value()), nil
	case versionstore.OpNotEquals:
		return column.Neq(where.Value()), nil
	case versionstore.OpGreaterThan:
		return column.Gt(where.Value()), nil
	case versionstore.OpGreaterThanEqual:
		return column.Gte(where.Value()), nil
	case versionstore.OpLessThan:
		return column.Lt(where.Value()), nil
	case versionstore.OpLessThanEqual:
		return column.Lte(where.Value()), nil
	case versionstore.OpIn:
		values, err := listValues(where)
		if err != nil {
			return nil, err
		}

		return column.In(values...), nil
	case versionstore.OpNotIn:
		values, err := listValues(where)
		if err != nil {
			return nil, err
		}

		return column.NotIn(values...), nil
	case versionstore.OpLike:
		return column.Like(where.Value()), nil
	case versionstore.OpExists:
		if mustExist(where) {
			return column.IsNotNull(), nil
		}

		return column.IsNull(), nil
	default:
		return nil, fmt.Errorf("%w: %s", versionstore.ErrUnsupportedOperator, where.Op())
	}
}

func payloadExpression(key string, where *versionstore.Where) (goqu.Expression, error) {
	switch where.Op() {
	case versionstore.OpEquals:
		return payloadContainment(key, where.Value())
	case versionstore.OpNotEquals:
		containment, err := payloadContainment(key, where.Value())
		if err != nil {
			return nil, err
		}

		return goqu.L("NOT (?)", containment), nil
	case versionstore.OpGreaterThan:
		return payloadValue(key, where.Value()).Gt(where.Value()), nil
	case versionstore.OpGreaterThanEqual:
		return payloadValue(key, where.Value()).Gte(where.Value()), nil
	case versionstore.OpLessThan:
		return payloadValue(key, where.Value()).Lt(where.Value()), nil
	case versionstore.OpLessThanEqual:
		return payloadValue(key, where.Value()).Lte(where.Value()), nil
	case versionstore.OpIn:
		values, err := listValues(where)
		if err != nil {
			return nil, err
		}

		return payloadText(key).In(values...), nil
	case versionstore.OpNotIn:
		values, err := listValues(where)
		if err != nil {
			return nil, err
		}

		return payloadText(key).NotIn(values...), nil
	case versionstore.OpLike:
		return payloadText(key).Like(where.Value()), nil
	case versionstore.OpExists:
		if mustExist(where) {
			return goqu.L(fmt.Sprintf("jsonb_exists(%s, '%s')", colPayload, key)), nil
		}

		return goqu.L(fmt.Sprintf("NOT jsonb_exists(%s, '%s')", colPayload, key)), nil
	default:
		return nil, fmt.Errorf("%w: %s", versionstore.ErrUnsupportedOperator, where.Op())
	}
}

// payloadContainment builds a JSONB containment match for payload equality,
// which stays index-friendly for a GIN-indexed payload column.
func payloadContainment(key string, value any) (goqu.Expression, error) {
	containmentJSON, marshalErr := jsoniter.ConfigFastest.Marshal(map[string]any{key: value})
	if marshalErr != nil {
		return nil, errors.Join(versionstore.ErrInvalidOperatorValue, marshalErr)
	}

	quoted := strings.ReplaceAll(string(containmentJSON), "'", "''")

	return goqu.L(fmt.Sprintf("%s @> '%s'", colPayload, quoted)), nil
}

// payloadValue extracts a payload field for ordered comparison, casting to
// numeric when the comparison value is a number so "9" does not sort above "10".
func payloadValue(key string, value any) exp.LiteralExpression {
	if isNumeric(value) {
		return goqu.L(fmt.Sprintf("(%s->>'%s')::numeric", colPayload, key))
	}

	return payloadText(key)
}

func payloadText(key string) exp.LiteralExpression {
	return goqu.L(fmt.Sprintf("%s->>'%s'", colPayload, key))
}

func isNumeric(value any) bool {
	switch value.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return true
	default:
		return false
	}
}

func listValues(where *versionstore.Where) ([]any, error) {
	values, ok := where.Value().([]any)
	if !ok || len(values) == 0 {
		return nil, fmt.Errorf("%w: %s needs a non-empty value list", versionstore.ErrInvalidOperatorValue, where.Op())
	}

	return values, nil
}

func mustExist(where *versionstore.Where) bool {
	exists, ok := where.Value().(bool)

	return !ok || exists
}

// orderedExpressions maps rewritten sort keys onto the physical schema.
// An empty sort falls back to newest-first with a parent id tiebreak, so
// paginated windows stay stable between requests.
func orderedExpressions(sort versionstore.Sort) []exp.OrderedExpression {
	if len(sort) == 0 {
		return []exp.OrderedExpression{
			goqu.I(colUpdatedAt).Desc(),
			goqu.I(colParentID).Asc(),
		}
	}

	ordered := make([]exp.OrderedExpression, 0, len(sort))

	for _, sortField := range sort {
		if column, ok := metadataColumn(sortField.Field); ok {
			if sortField.Direction == versionstore.SortDescending {
				ordered = append(ordered, goqu.I(column).Desc())
			} else {
				ordered = append(ordered, goqu.I(column).Asc())
			}

			continue
		}

		extracted := payloadText(payloadKey(sortField.Field))

		if sortField.Direction == versionstore.SortDescending {
			ordered = append(ordered, extracted.Desc())
		} else {
			ordered = append(ordered, extracted.Asc())
		}
	}

	return ordered
}
