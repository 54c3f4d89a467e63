// Package capture extracts values from JSON responses so checks can hand
// them back to the caller, such as the id of a created record.
package capture
