package versionstore_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/MadMax267/payload/versionstore"
)

func Test_ConsistencyFromContext(t *testing.T) {
	ctx := context.Background()

	assert.Equal(t, versionstore.StrongConsistency, versionstore.ConsistencyFromContext(ctx))

	eventual := versionstore.WithEventualConsistency(ctx)
	assert.Equal(t, versionstore.EventualConsistency, versionstore.ConsistencyFromContext(eventual))

	strong := versionstore.WithStrongConsistency(eventual)
	assert.Equal(t, versionstore.StrongConsistency, versionstore.ConsistencyFromContext(strong))
}
