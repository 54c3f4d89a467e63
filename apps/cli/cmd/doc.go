// Package cmd implements the apiprobe CLI commands using Cobra.
//
// The root command runs the smoke-test suite. Subcommands:
//   - validate: Resolve the backend URL without sending requests
//   - list: Show the checks in run order
//   - init: Write a sample apiprobe.yaml
//   - history: Show runs recorded with --history
//   - mock: Serve an in-memory backend for local runs
//   - version: Show version information
//
// Configuration is layered: built-in defaults, then the config file, then
// flags that were set explicitly.
package cmd
