// Package api exposes report generation over HTTP: triggering the reports,
// reading their status, and looking up individual tasks.
package api
