// Package sqlite provides a task.Store backed by a local SQLite file, for
// running the service without a PostgreSQL server.
package sqlite
