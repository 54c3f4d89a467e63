// Package http provides the HTTP client used by apiprobe checks.
//
// It wraps the standard library's http package with:
//   - An optional overall request timeout (none by default)
//   - Default headers sent on every request
//   - JSON request bodies
//   - Fully-read responses with timing, for assertion and reporting
package http
