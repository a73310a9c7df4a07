// Package audit records every item mutation in an append-only trail.
//
// Entries are written in the same database transaction as the mutation they
// describe, so a committed change always has its audit entry and a rolled
// back change never does. The trail is queryable with action and date range
// filters, exportable as CSV, and periodically archivable to a directory or
// an S3 bucket. Nothing in this package deletes or rewrites entries.
package audit
