// Package auth carries the authenticated role claim from the transport edge
// into the core.
//
// Credential issuance, password hashing, and token signing are out of scope:
// a fronting identity provider (or the bundled static token table for small
// deployments) authenticates the caller, and this package only resolves a
// bearer token to Claims and rejects requests that carry none. The core still
// re-validates the role against the rbac capability table on every
// operation.
package auth
