package env

import (
	"bufio"
	"fmt"
	"io"
	neturl "net/url"
	"os"
	"strings"
)

const (
	// DefaultFile is where the frontend keeps its environment.
	DefaultFile = "/app/frontend/.env"
	// DefaultKey names the variable holding the backend URL.
	DefaultKey = "REACT_APP_BACKEND_URL"
)

// Lookup scans r for the first line beginning with "key=" and returns its
// unquoted value. The key must start the line; indented or commented
// lines never match.
func Lookup(r io.Reader, key string) (string, error) {
	prefix := key + "="
	scanner := bufio.NewScanner(r)

	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, prefix) {
			continue
		}
		return unquote(strings.TrimSpace(line[len(prefix):])), nil
	}

	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("reading env file: %w", err)
	}
	return "", ErrKeyNotFound
}

// ResolveBaseURL reads the file at path and returns the value of key as a
// base URL with any trailing slash removed.
func ResolveBaseURL(path, key string) (string, error) {
	if path == "" {
		path = DefaultFile
	}
	if key == "" {
		key = DefaultKey
	}

	file, err := os.Open(path)
	if err != nil {
		return "", &ConfigError{Path: path, Err: fmt.Errorf("cannot open env file: %w", err)}
	}
	defer file.Close()

	value, err := Lookup(file, key)
	if err != nil {
		return "", &ConfigError{Path: path, Key: key, Err: err}
	}

	if value == "" {
		return "", &ConfigError{Path: path, Key: key, Err: fmt.Errorf("%w: empty value", ErrMalformed)}
	}

	u, err := neturl.Parse(value)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", &ConfigError{Path: path, Key: key, Err: fmt.Errorf("%w: %q is not an http(s) URL", ErrMalformed, value)}
	}

	return strings.TrimRight(value, "/"), nil
}

func unquote(value string) string {
	if len(value) >= 2 {
		if (value[0] == '"' && value[len(value)-1] == '"') ||
			(value[0] == '\'' && value[len(value)-1] == '\'') {
			return value[1 : len(value)-1]
		}
	}
	return value
}
