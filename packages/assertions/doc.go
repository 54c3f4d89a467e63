// Package assertions evaluates expectations against HTTP responses.
//
// Supported assertions:
//   - Status code equality
//   - JSON body field equality (gjson paths: body.message, body.0.id)
//   - Field existence
//   - JSON type checks (object, array, string, number, boolean, null)
//   - Required keys, validated through a JSON Schema "required" list
//
// Each assertion produces a Result; a check passes only when all of its
// results pass.
package assertions
