// Package history keeps a record of past smoke-test runs in a SQLite
// database so that flaky backends can be spotted over time.
//
// Open accepts a plain file path or a sqlite:// / sqlite: connection string.
// The schema is created on first use.
package history
