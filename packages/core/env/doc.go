// Package env resolves the backend base URL from a dotenv-style file.
//
// The file holds KEY=VALUE lines, as written by frontend tooling:
//
//	REACT_APP_BACKEND_URL="https://backend.example.com"
//
// Only the first line starting with the requested key is used. Quoting with
// single or double quotes is stripped. A missing key, an empty value or a
// value that is not an absolute http(s) URL is a *ConfigError.
package env
