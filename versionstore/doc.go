// Package versionstore provides the core abstractions for resolving and
// querying the current version of entities in a versioned document store.
//
// Every saved draft or revision of an entity is kept as a VersionRecord in
// one table per entity type, keyed by the owning entity's parent ID. This
// package defines the types used to resolve exactly one current version per
// entity and to shape queries over the resolved result:
//
//   - VersionRecord: one historical snapshot of an entity plus metadata
//   - Entity: the flattened, caller-facing shape of the resolved version
//   - Where: a boolean expression tree over entity fields
//   - AccessResult: the outcome of access-control evaluation
//   - Page / Sort / Result: the uniform paginated result envelope
//
// Two resolution strategies share one contract, selected per Collection:
// an aggregation strategy that derives the latest version per entity at
// query time, and a flag strategy that trusts a persisted latest marker.
// The database engines implementing both live in sub-packages; see
// versionstore/postgresengine.
//
// Common usage pattern:
//
//	where := versionstore.And(
//		versionstore.Eq("status", "published"),
//		versionstore.Gt("rating", 3),
//	)
//
//	result, err := store.QueryLatest(ctx, postgresengine.QueryLatestParams{
//		Collection: collection,
//		Where:      where,
//		Access:     versionstore.AllowAll(),
//		Page:       &versionstore.Page{Limit: 10, Number: 1},
//	})
package versionstore
