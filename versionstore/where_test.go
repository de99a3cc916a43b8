package versionstore_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MadMax267/payload/versionstore"
)

func Test_And_IdentityElement(t *testing.T) {
	predicate := versionstore.Eq("status", "published")

	tests := []struct {
		name     string
		combined *versionstore.Where
		expected *versionstore.Where
	}{
		{
			name:     "nothing combines to nil",
			combined: versionstore.And(),
			expected: nil,
		},
		{
			name:     "all nil combines to nil",
			combined: versionstore.And(nil, nil),
			expected: nil,
		},
		{
			name:     "nil and predicate is the predicate",
			combined: versionstore.And(nil, predicate),
			expected: predicate,
		},
		{
			name:     "predicate and nil is the predicate",
			combined: versionstore.And(predicate, nil),
			expected: predicate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Same(t, tt.expected, tt.combined)
		})
	}
}

func Test_And_BuildsConjunction(t *testing.T) {
	first := versionstore.Eq("status", "published")
	second := versionstore.Gt("rating", 3)

	combined := versionstore.And(first, second)

	require.NotNil(t, combined)
	assert.False(t, combined.IsLeaf())
	require.Len(t, combined.Conjuncts(), 2)
	assert.Same(t, first, combined.Conjuncts()[0])
	assert.Same(t, second, combined.Conjuncts()[1])
	assert.Empty(t, combined.Disjuncts())

	// inputs must not be mutated
	assert.True(t, first.IsLeaf())
	assert.Equal(t, "status", first.Field())
	assert.Equal(t, versionstore.OpEquals, first.Op())
}

func Test_Or_BuildsDisjunction(t *testing.T) {
	first := versionstore.Eq("status", "draft")
	second := versionstore.Eq("status", "published")

	combined := versionstore.Or(first, second)

	require.NotNil(t, combined)
	require.Len(t, combined.Disjuncts(), 2)
	assert.Empty(t, combined.Conjuncts())

	assert.Same(t, first, versionstore.Or(nil, first))
	assert.Nil(t, versionstore.Or())
}

func Test_LeafConstructors(t *testing.T) {
	tests := []struct {
		name          string
		where         *versionstore.Where
		expectedField string
		expectedOp    versionstore.Operator
		expectedValue any
	}{
		{"eq", versionstore.Eq("title", "hello"), "title", versionstore.OpEquals, "hello"},
		{"not_eq", versionstore.NotEq("title", "hello"), "title", versionstore.OpNotEquals, "hello"},
		{"gt", versionstore.Gt("rating", 3), "rating", versionstore.OpGreaterThan, 3},
		{"gte", versionstore.Gte("rating", 3), "rating", versionstore.OpGreaterThanEqual, 3},
		{"lt", versionstore.Lt("rating", 3), "rating", versionstore.OpLessThan, 3},
		{"lte", versionstore.Lte("rating", 3), "rating", versionstore.OpLessThanEqual, 3},
		{"in", versionstore.In("status", "a", "b"), "status", versionstore.OpIn, []any{"a", "b"}},
		{"not_in", versionstore.NotIn("status", "a"), "status", versionstore.OpNotIn, []any{"a"}},
		{"like", versionstore.Like("title", "he%"), "title", versionstore.OpLike, "he%"},
		{"exists", versionstore.Exists("title", true), "title", versionstore.OpExists, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.where.IsLeaf())
			assert.Equal(t, tt.expectedField, tt.where.Field())
			assert.Equal(t, tt.expectedOp, tt.where.Op())
			assert.Equal(t, tt.expectedValue, tt.where.Value())
		})
	}
}

func Test_Where_Rewrite_PreservesStructureAndInputs(t *testing.T) {
	original := versionstore.And(
		versionstore.Eq("status", "published"),
		versionstore.Or(
			versionstore.Gt("rating", 3),
			versionstore.Eq("updatedAt", "2025-01-01"),
		),
	)

	rewritten := original.Rewrite(versionstore.RewriteVersionKey)

	require.Len(t, rewritten.Conjuncts(), 2)
	assert.Equal(t, "version.status", rewritten.Conjuncts()[0].Field())
	assert.Equal(t, versionstore.OpEquals, rewritten.Conjuncts()[0].Op())
	assert.Equal(t, "published", rewritten.Conjuncts()[0].Value())

	disjunction := rewritten.Conjuncts()[1]
	require.Len(t, disjunction.Disjuncts(), 2)
	assert.Equal(t, "version.rating", disjunction.Disjuncts()[0].Field())
	assert.Equal(t, "updatedAt", disjunction.Disjuncts()[1].Field())

	// the original tree is untouched
	assert.Equal(t, "status", original.Conjuncts()[0].Field())
	assert.Equal(t, "rating", original.Conjuncts()[1].Disjuncts()[0].Field())
}

func Test_Where_Rewrite_NilTree(t *testing.T) {
	var where *versionstore.Where

	assert.Nil(t, where.Rewrite(versionstore.RewriteVersionKey))
}
