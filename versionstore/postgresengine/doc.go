// Package postgresengine provides the PostgreSQL implementation of
// latest-version resolution for the version store.
//
// One table per collection holds the full version history as rows of
// wrapper metadata (id, parent_id, created_at, updated_at, latest) plus the
// entity payload as JSONB. The engine resolves exactly one current version
// per parent and returns flattened entities in a uniform paginated shape.
//
// Two strategies share the QueryLatest contract, selected per collection:
//
//   - Aggregation: DISTINCT ON (parent_id) over the history ordered
//     newest-first derives the latest row per entity at query time; the
//     caller's filter then runs over the resolved rows.
//   - Flag: the persisted latest marker identifies current rows directly,
//     so access and caller predicates push down as one plain find.
//
// The engine supports pgxpool.Pool, sql.DB, and sqlx.DB connections through
// the constructors NewStoreFromPGXPool, NewStoreFromSQLDB, and
// NewStoreFromSQLX. It is strictly read-only: version rows are written and
// the latest marker maintained by an external write path.
package postgresengine
