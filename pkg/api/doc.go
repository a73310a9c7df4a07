// Package api exposes the inventory and audit services over HTTP: item
// CRUD, per-item and global audit queries, and CSV export, all behind
// bearer-token authentication and role checks.
package api
