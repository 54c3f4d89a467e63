package config

import "github.com/abdul-hamid-achik/apiprobe/packages/core/env"

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		EnvFile:     env.DefaultFile,
		URLKey:      env.DefaultKey,
		Timeout:     0, // no timeout
		ValidateSSL: BoolPtr(true),
		Headers:     nil,
		Output:      "console",
		OutputFile:  "",
		History:     "",
		Verbose:     BoolPtr(false),
		NoColor:     BoolPtr(false),
		NotifyOn:    "failure",
	}
}
