package env

import (
	"errors"
	"fmt"
)

var (
	// ErrKeyNotFound is returned when no line in the file starts with the key.
	ErrKeyNotFound = errors.New("key not found")
	// ErrMalformed is returned when the key is present but its value is unusable.
	ErrMalformed = errors.New("malformed value")
)

// ConfigError is a fatal error raised while resolving the base URL.
// No check may run after one is returned.
type ConfigError struct {
	Path string
	Key  string
	Err  error
}

func (e *ConfigError) Error() string {
	switch {
	case errors.Is(e.Err, ErrKeyNotFound):
		return fmt.Sprintf("could not find %s in %s", e.Key, e.Path)
	case e.Key == "":
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	default:
		return fmt.Sprintf("%s in %s: %v", e.Key, e.Path, e.Err)
	}
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}
