// Package output provides reporters for smoke-test runs.
//
// Supported output formats:
//   - Console: live progress markers and a colored summary
//   - JSON: Machine-readable JSON output
//   - JUnit: JUnit XML format for CI integration
//
// The console reporter also implements runner.Observer so it can print each
// check as it starts and finishes. JSON and JUnit accumulate the run and
// write it on Flush.
package output
