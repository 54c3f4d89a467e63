// Package runner executes the apiprobe check suite against a target.
//
// Checks run strictly in order on the calling goroutine. A failing check
// never stops the run: every check gets a CheckResult, and the run
// succeeds only if all of them passed. An Observer receives progress
// events as each check starts and finishes.
package runner
