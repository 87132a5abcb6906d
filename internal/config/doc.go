// Package config handles configuration loading, parsing, and validation
// from a YAML file and LEDGER_-prefixed environment variables. It provides
// type-safe access to the settings needed by the task store, the report
// workers and the HTTP server.
package config
