// Package task manages report generation as background tasks. A Dispatcher
// records each request as a Task in a Store and publishes its id on the
// Broker channel for its Kind; a Runner consumes those channels and hands
// each id back to the Dispatcher, which moves the task through
// pending, in-progress and done. StatusReporter derives a status string per
// report from the most recent task of each kind.
package task
