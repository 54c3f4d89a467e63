package assertions

import (
	"testing"
	"time"

	"github.com/abdul-hamid-achik/apiprobe/packages/http"
	"github.com/stretchr/testify/assert"
)

func createResponse(statusCode int, body string, headers map[string]string) *http.Response {
	if headers == nil {
		headers = make(map[string]string)
	}
	if _, ok := headers["Content-Type"]; !ok {
		headers["Content-Type"] = "application/json"
	}
	return &http.Response{
		StatusCode: statusCode,
		Status:     "",
		Headers:    headers,
		Body:       []byte(body),
		Duration:   100 * time.Millisecond,
	}
}

func TestEvaluator_StatusCode(t *testing.T) {
	resp := createResponse(200, `{}`, nil)
	e := NewEvaluator(resp)

	result := e.Evaluate(Status(200))

	assert.True(t, result.Passed)
	assert.Equal(t, 200, result.Actual)
	assert.Equal(t, "==", result.Operator)
}

func TestEvaluator_StatusCodeMismatch(t *testing.T) {
	resp := createResponse(500, `{"detail": "boom"}`, nil)
	e := NewEvaluator(resp)

	result := e.Evaluate(Status(200))

	assert.False(t, result.Passed)
	assert.Equal(t, "expected 200, got 500", result.Message)
}

func TestEvaluator_BodyEquals(t *testing.T) {
	resp := createResponse(200, `{"message": "Hello World", "count": 3, "code": 123, "label": "123", "nested": {"ok": true}}`, nil)
	e := NewEvaluator(resp)

	tests := []struct {
		name     string
		subject  string
		expected any
		passed   bool
	}{
		{"string match", "body.message", "Hello World", true},
		{"string mismatch", "body.message", "Goodbye", false},
		{"number against int", "body.count", 3, true},
		{"nested bool", "body.nested.ok", true, true},
		{"missing field", "body.absent", "x", false},
		{"string never matches a number", "body.code", "123", false},
		{"number never matches a string", "body.label", 123, false},
		{"bool never matches its text", "body.nested.ok", "true", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := e.Evaluate(Equals(tt.subject, tt.expected))
			assert.Equal(t, tt.passed, result.Passed, result.Message)
		})
	}
}

func TestEvaluator_MismatchMessage(t *testing.T) {
	resp := createResponse(200, `{"message": "Goodbye"}`, nil)

	result := NewEvaluator(resp).Evaluate(Equals("body.message", "Hello World"))

	assert.False(t, result.Passed)
	assert.Equal(t, `expected "Hello World", got "Goodbye"`, result.Message)
	assert.Equal(t, "Goodbye", result.Actual)
}

func TestEvaluator_MissingFieldMessage(t *testing.T) {
	resp := createResponse(200, `{}`, nil)

	result := NewEvaluator(resp).Evaluate(Equals("body.message", "Hello World"))

	assert.False(t, result.Passed)
	assert.Equal(t, `expected "Hello World", got <missing>`, result.Message)
}

func TestEvaluator_Exists(t *testing.T) {
	resp := createResponse(200, `{"id": "abc", "timestamp": null, "items": [{"id": 1}]}`, nil)
	e := NewEvaluator(resp)

	assert.True(t, e.Evaluate(Exists("body.id")).Passed)
	assert.True(t, e.Evaluate(Exists("body.timestamp")).Passed, "null values are still present")
	assert.True(t, e.Evaluate(Exists("body.items[0].id")).Passed)
	assert.False(t, e.Evaluate(Exists("body.missing")).Passed)
	assert.False(t, e.Evaluate(Exists("status")).Passed)
}

func TestEvaluator_Type(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		expected string
		passed   bool
	}{
		{"array", `[]`, "array", true},
		{"object", `{"a": 1}`, "object", true},
		{"object is not array", `{"a": 1}`, "array", false},
		{"string", `"text"`, "string", true},
		{"null", `null`, "null", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := createResponse(200, tt.body, nil)
			result := NewEvaluator(resp).Evaluate(IsType("body", tt.expected))
			assert.Equal(t, tt.passed, result.Passed, result.Message)
		})
	}
}

func TestEvaluator_HasKeys(t *testing.T) {
	t.Run("all present", func(t *testing.T) {
		resp := createResponse(200, `{"client_name": "a", "id": "1", "timestamp": "t", "extra": 1}`, nil)
		result := NewEvaluator(resp).Evaluate(HasKeys("body", "client_name", "id", "timestamp"))
		assert.True(t, result.Passed, result.Message)
	})

	t.Run("missing key", func(t *testing.T) {
		resp := createResponse(200, `{"client_name": "a", "id": "1"}`, nil)
		result := NewEvaluator(resp).Evaluate(HasKeys("body", "client_name", "id", "timestamp"))
		assert.False(t, result.Passed)
		assert.Contains(t, result.Message, "timestamp")
	})

	t.Run("first array element", func(t *testing.T) {
		resp := createResponse(200, `[{"client_name": "a", "id": "1", "timestamp": "t"}]`, nil)
		result := NewEvaluator(resp).Evaluate(HasKeys("body.0", "client_name", "id", "timestamp"))
		assert.True(t, result.Passed, result.Message)
	})

	t.Run("not an object", func(t *testing.T) {
		resp := createResponse(200, `["a"]`, nil)
		result := NewEvaluator(resp).Evaluate(HasKeys("body.0", "id"))
		assert.False(t, result.Passed)
	})
}

func TestEvaluator_NonJSONBody(t *testing.T) {
	resp := createResponse(200, `<html>oops</html>`, map[string]string{"Content-Type": "text/html"})
	e := NewEvaluator(resp)

	result := e.Evaluate(Equals("body.message", "Hello World"))
	assert.False(t, result.Passed)
	assert.Contains(t, result.Message, "not JSON")
	assert.Contains(t, result.Message, `"text/html"`)

	assert.True(t, e.Evaluate(Status(200)).Passed)
}

func TestEvaluator_JSONWithoutContentType(t *testing.T) {
	resp := createResponse(200, `{"message": "Hello World"}`, map[string]string{"Content-Type": "text/plain"})

	result := NewEvaluator(resp).Evaluate(Equals("body.message", "Hello World"))

	assert.True(t, result.Passed, result.Message)
}

func TestEvaluateAll(t *testing.T) {
	resp := createResponse(200, `{"message": "Goodbye"}`, nil)

	results := EvaluateAll(resp, []*Assertion{
		Status(200),
		Equals("body.message", "Hello World"),
	})

	assert.Len(t, results, 2)
	assert.False(t, AllPassed(results))
	failed := Failures(results)
	assert.Len(t, failed, 1)
	assert.Equal(t, "body.message", failed[0].Subject)
	assert.Equal(t, `body.message ==: expected "Hello World", got "Goodbye"`, failed[0].String())
}

func TestConvertBracketNotation(t *testing.T) {
	assert.Equal(t, "0.id", convertBracketNotation("[0].id"))
	assert.Equal(t, "items.0.tags.1", convertBracketNotation("items[0].tags[1]"))
	assert.Equal(t, "plain", convertBracketNotation("plain"))
}
