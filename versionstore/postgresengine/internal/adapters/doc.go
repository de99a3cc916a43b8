// Package adapters provides database adapter implementations for the
// PostgreSQL version store engine.
//
// This package implements the adapter pattern to support multiple PostgreSQL
// database libraries: pgxpool.Pool, sql.DB, and sqlx.DB. All adapters provide
// equivalent functionality through a common DBAdapter interface, allowing the
// engine to work seamlessly with any supported connection type.
//
// The engine is read-only, so the interface covers queries only. The pgx
// adapter can additionally route reads to an optional replica pool when the
// request context asks for eventual consistency.
package adapters
