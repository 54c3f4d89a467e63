// Package config handles configuration loading and management for apiprobe.
//
// It provides functionality for:
//   - Loading configuration from apiprobe.yaml, apiprobe.yml or .apiprobe.json
//   - Default configuration values
//   - Merging file configuration with command-line overrides
package config
