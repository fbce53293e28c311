// Package observability provides the commtrack event log, metrics derived
// from it, and overdue-communication alerting. Events are persisted as JSON
// Lines and metrics are recomputed on demand.
package observability
