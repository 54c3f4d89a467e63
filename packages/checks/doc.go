// Package checks defines the API checks apiprobe runs against a backend.
//
// Three checks make up the default suite, run in this order:
//   - root: GET /api/ answers 200 {"message": "Hello World"}
//   - create_status: POST /api/status echoes the client name with an id and timestamp
//   - list_status: GET /api/status answers 200 with an array of status checks
//
// Each check receives the same immutable *Target and may be called on its
// own. Failures are *AssertionError (contract mismatch) or *TransportError
// (the request itself failed).
package checks
