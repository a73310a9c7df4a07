// Package storage opens and configures the SQL database backing the item
// store and the audit log. PostgreSQL is the production backend; SQLite
// serves local development and tests. The Dialect value smooths over the
// placeholder and row-locking differences between the two.
package storage
