// Package query provides the shared pagination contract used by item
// listings and audit listings: one page-math algorithm, two call sites.
package query
