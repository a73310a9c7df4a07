// Package inventory implements the item store: validated CRUD over a SQL
// backend with an audit entry appended in the same transaction as every
// mutation, an optional read-through cache, and role gating at the service
// layer.
package inventory
