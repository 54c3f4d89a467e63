package http

import (
	"encoding/json"
	"fmt"
	"strings"
)

type Request struct {
	Method  string
	URL     string
	Headers map[string]string
	Body    []byte
}

func NewRequest(method, requestURL string) *Request {
	return &Request{
		Method:  method,
		URL:     requestURL,
		Headers: make(map[string]string),
	}
}

// SetJSONBody encodes v as the request body and sets the content type.
func (r *Request) SetJSONBody(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding request body: %w", err)
	}
	r.Body = data
	r.Headers["Content-Type"] = "application/json"
	return nil
}

// JoinURL appends path to base, keeping exactly one slash between them.
// A trailing slash on path is preserved ("/api/" stays "/api/").
func JoinURL(base, path string) string {
	if path == "" {
		return base
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}
