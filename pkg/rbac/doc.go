// Package rbac implements the role capability table gating every inventory
// and audit operation.
//
// Three roles exist, totally ordered by read capability (viewer < manager <
// admin) with diverging write capability: managers may create and update
// items but only admins may delete them. Audit reads and exports require
// manager or admin.
//
// Authorize is a pure total function: it never errors, and an unrecognized
// role degrades to viewer so malformed input fails closed rather than open.
// Every service entry point re-checks the policy server-side regardless of
// what the client asserted.
package rbac
