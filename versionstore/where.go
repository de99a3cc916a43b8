package versionstore

// FieldNameString is a type alias for string, representing a caller-supplied entity field name.
type FieldNameString = string

// Operator identifies the comparison a Where leaf applies to a single field.
type Operator string

const (
	OpEquals           Operator = "equals"
	OpNotEquals        Operator = "not_equals"
	OpGreaterThan      Operator = "greater_than"
	OpGreaterThanEqual Operator = "greater_than_equal"
	OpLessThan         Operator = "less_than"
	OpLessThanEqual    Operator = "less_than_equal"
	OpIn               Operator = "in"
	OpNotIn            Operator = "not_in"
	OpLike             Operator = "like"
	OpExists           Operator = "exists"
)

// Where is an immutable boolean expression tree over entity fields.
//
// A node is either a leaf comparing one field with one Operator, or a
// composite combining sub-expressions with AND or OR. A nil *Where means
// "match everything" and is the identity element of And and Or.
//
// Trees are built with the leaf constructors (Eq, NotEq, Gt, ...) and the
// And/Or combinators and are never mutated afterwards.
type Where struct {
	field FieldNameString
	op    Operator
	value any
	and   []*Where
	or    []*Where
}

// Field returns the field name of a leaf node.
func (w *Where) Field() FieldNameString {
	return w.field
}

// Op returns the operator of a leaf node.
func (w *Where) Op() Operator {
	return w.op
}

// Value returns the comparison value of a leaf node.
func (w *Where) Value() any {
	return w.value
}

// Conjuncts returns the sub-expressions of an AND node.
func (w *Where) Conjuncts() []*Where {
	return w.and
}

// Disjuncts returns the sub-expressions of an OR node.
func (w *Where) Disjuncts() []*Where {
	return w.or
}

// IsLeaf reports whether the node is a single field comparison.
func (w *Where) IsLeaf() bool {
	return w != nil && len(w.and) == 0 && len(w.or) == 0
}

func leaf(field FieldNameString, op Operator, value any) *Where {
	return &Where{field: field, op: op, value: value}
}

// Eq matches rows whose field equals value.
func Eq(field FieldNameString, value any) *Where {
	return leaf(field, OpEquals, value)
}

// NotEq matches rows whose field does not equal value.
func NotEq(field FieldNameString, value any) *Where {
	return leaf(field, OpNotEquals, value)
}

// Gt matches rows whose field is greater than value.
func Gt(field FieldNameString, value any) *Where {
	return leaf(field, OpGreaterThan, value)
}

// Gte matches rows whose field is greater than or equal to value.
func Gte(field FieldNameString, value any) *Where {
	return leaf(field, OpGreaterThanEqual, value)
}

// Lt matches rows whose field is less than value.
func Lt(field FieldNameString, value any) *Where {
	return leaf(field, OpLessThan, value)
}

// Lte matches rows whose field is less than or equal to value.
func Lte(field FieldNameString, value any) *Where {
	return leaf(field, OpLessThanEqual, value)
}

// In matches rows whose field equals any of the given values.
func In(field FieldNameString, values ...any) *Where {
	return leaf(field, OpIn, values)
}

// NotIn matches rows whose field equals none of the given values.
func NotIn(field FieldNameString, values ...any) *Where {
	return leaf(field, OpNotIn, values)
}

// Like matches rows whose field matches the given SQL LIKE pattern.
func Like(field FieldNameString, pattern string) *Where {
	return leaf(field, OpLike, pattern)
}

// Exists matches rows where the field is present (true) or absent (false).
func Exists(field FieldNameString, exists bool) *Where {
	return leaf(field, OpExists, exists)
}

// And combines expressions into a conjunction.
//
// Nil inputs are the identity element: they are dropped, a single surviving
// expression is returned unchanged, and combining nothing yields nil.
// The inputs are never mutated.
func And(predicates ...*Where) *Where {
	kept := make([]*Where, 0, len(predicates))
	for _, p := range predicates {
		if p != nil {
			kept = append(kept, p)
		}
	}

	switch len(kept) {
	case 0:
		return nil
	case 1:
		return kept[0]
	default:
		return &Where{and: kept}
	}
}

// Or combines expressions into a disjunction, with the same identity
// behavior as And.
func Or(predicates ...*Where) *Where {
	kept := make([]*Where, 0, len(predicates))
	for _, p := range predicates {
		if p != nil {
			kept = append(kept, p)
		}
	}

	switch len(kept) {
	case 0:
		return nil
	case 1:
		return kept[0]
	default:
		return &Where{or: kept}
	}
}

// Rewrite returns a new tree with every field reference passed through
// rewriteKey. Operators, values and the logical structure are untouched;
// the receiver is never modified.
func (w *Where) Rewrite(rewriteKey func(FieldNameString) FieldNameString) *Where {
	if w == nil {
		return nil
	}

	if w.IsLeaf() {
		return leaf(rewriteKey(w.field), w.op, w.value)
	}

	rewritten := &Where{}

	for _, p := range w.and {
		rewritten.and = append(rewritten.and, p.Rewrite(rewriteKey))
	}

	for _, p := range w.or {
		rewritten.or = append(rewritten.or, p.Rewrite(rewriteKey))
	}

	return rewritten
}
