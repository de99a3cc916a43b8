package versionstore

import "context"

// ConsistencyLevel defines the consistency requirements for resolution reads.
type ConsistencyLevel int

const (
	// StrongConsistency requires reads from the primary database to ensure
	// read-after-write consistency. This is the default, so a caller that
	// just saved a draft sees it resolved immediately.
	StrongConsistency ConsistencyLevel = iota

	// EventualConsistency allows reads from replica databases, trading
	// consistency for performance. Suitable for listing resolutions that can
	// tolerate slightly stale data in exchange for a reduced load on the
	// primary database.
	EventualConsistency
)

// contextKey is a private type to prevent context key collisions.
type contextKey string

// ConsistencyLevelKey is the context key used to store consistency level preferences.
const ConsistencyLevelKey contextKey = "versionstore.consistency_level"

// WithStrongConsistency returns a context that signals resolutions should
// use the primary database.
func WithStrongConsistency(ctx context.Context) context.Context {
	return context.WithValue(ctx, ConsistencyLevelKey, StrongConsistency)
}

// WithEventualConsistency returns a context that signals resolutions may
// read from a replica when one is configured.
//
// Example usage:
//
//	ctx = versionstore.WithEventualConsistency(ctx)
//	result, err := store.QueryLatest(ctx, params)
func WithEventualConsistency(ctx context.Context) context.Context {
	return context.WithValue(ctx, ConsistencyLevelKey, EventualConsistency)
}

// ConsistencyFromContext extracts the consistency level from the context,
// defaulting to StrongConsistency when none was set.
func ConsistencyFromContext(ctx context.Context) ConsistencyLevel {
	if level, ok := ctx.Value(ConsistencyLevelKey).(ConsistencyLevel); ok {
		return level
	}

	return StrongConsistency
}
