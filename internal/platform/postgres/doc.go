// Package postgres provides the PostgreSQL implementation of task.Store,
// the embedded schema migrations for it, and the mapping from driver errors
// to the sentinels in internal/store.
package postgres
