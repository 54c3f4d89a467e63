package assertions

import (
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/abdul-hamid-achik/apiprobe/packages/http"
	"github.com/tidwall/gjson"
	"github.com/xeipuuv/gojsonschema"
)

type Result struct {
	Passed   bool
	Message  string
	Expected any
	Actual   any
	Subject  string
	Operator string
}

func (r *Result) String() string {
	if r.Passed {
		return fmt.Sprintf("%s %s: ok", r.Subject, r.Operator)
	}
	return fmt.Sprintf("%s %s: %s", r.Subject, r.Operator, r.Message)
}

type Evaluator struct {
	response *http.Response
	bodyJSON gjson.Result
	isJSON   bool
}

// NewEvaluator parses the response body as JSON when it is valid JSON,
// whatever the declared content type.
func NewEvaluator(resp *http.Response) *Evaluator {
	e := &Evaluator{
		response: resp,
	}
	if gjson.ValidBytes(resp.Body) {
		e.bodyJSON = gjson.ParseBytes(resp.Body)
		e.isJSON = true
	}
	return e
}

func (e *Evaluator) Evaluate(assertion *Assertion) *Result {
	result := &Result{
		Subject:  assertion.Subject,
		Operator: assertion.Operator.String(),
		Expected: assertion.Expected,
	}

	if assertion.Operator == OpExists {
		result.Passed, result.Message = e.exists(assertion.Subject)
		result.Actual = result.Passed
		return result
	}

	actual, err := e.getActualValue(assertion.Subject)
	if err != nil {
		result.Passed = false
		result.Message = err.Error()
		return result
	}
	result.Actual = actual

	switch assertion.Operator {
	case OpEquals:
		result.Passed, result.Message = e.equals(actual, assertion.Expected)
	case OpType:
		result.Passed, result.Message = e.typeCheck(actual, assertion.Expected)
	case OpRequired:
		result.Passed, result.Message = e.required(actual, assertion.Expected)
	default:
		result.Message = fmt.Sprintf("unknown operator: %v", assertion.Operator)
	}

	return result
}

func (e *Evaluator) getActualValue(subject string) (any, error) {
	switch {
	case subject == "status":
		return e.response.StatusCode, nil
	case strings.HasPrefix(subject, "body"):
		if !e.isJSON {
			return nil, fmt.Errorf("response body is not JSON (Content-Type %q): %s", e.response.ContentType(), truncate(e.response.BodyString(), 80))
		}
		result, ok := e.lookup(subject)
		if !ok {
			return nil, nil
		}
		return result.Value(), nil
	default:
		return nil, fmt.Errorf("unknown subject: %s", subject)
	}
}

// lookup resolves a body subject to its gjson result.
func (e *Evaluator) lookup(subject string) (gjson.Result, bool) {
	path := strings.TrimPrefix(subject, "body")
	if path == "" {
		return e.bodyJSON, e.bodyJSON.Exists()
	}
	path = convertBracketNotation(strings.TrimPrefix(path, "."))

	result := e.bodyJSON.Get(path)
	return result, result.Exists()
}

var bracketIndex = regexp.MustCompile(`\[(\d+)\]`)

// convertBracketNotation converts array bracket notation to gjson dot notation
// e.g., "[0].id" -> "0.id", "items[0].tags[1]" -> "items.0.tags.1"
func convertBracketNotation(path string) string {
	result := bracketIndex.ReplaceAllString(path, ".$1")
	return strings.TrimPrefix(result, ".")
}

func (e *Evaluator) exists(subject string) (bool, string) {
	if !strings.HasPrefix(subject, "body") {
		return false, fmt.Sprintf("exists is only supported on body paths, got %s", subject)
	}
	if !e.isJSON {
		return false, "response body is not JSON"
	}
	if _, ok := e.lookup(subject); !ok {
		return false, fmt.Sprintf("expected %s to exist", subject)
	}
	return true, ""
}

func (e *Evaluator) equals(actual, expected any) (bool, string) {
	if reflect.DeepEqual(actual, expected) {
		return true, ""
	}

	// JSON numbers decode as float64, so int expectations compare by value.
	actualNum, aOk := toFloat64(actual)
	expectedNum, eOk := toFloat64(expected)
	if aOk && eOk && actualNum == expectedNum {
		return true, ""
	}

	return false, fmt.Sprintf("expected %v, got %v", formatValue(expected), formatValue(actual))
}

func jsonType(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case float64, float32, int, int64, int32:
		return "number"
	case string:
		return "string"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return reflect.TypeOf(v).String()
	}
}

func (e *Evaluator) typeCheck(actual, expected any) (bool, string) {
	expectedType := fmt.Sprintf("%v", expected)
	actualType := jsonType(actual)

	if actualType == expectedType {
		return true, ""
	}
	return false, fmt.Sprintf("expected type %s, got %s", expectedType, actualType)
}

// required validates actual against {"type": "object", "required": keys}.
func (e *Evaluator) required(actual, expected any) (bool, string) {
	keys, ok := expected.([]string)
	if !ok {
		return false, fmt.Sprintf("required keys must be a list of strings, got %T", expected)
	}

	schema := map[string]any{
		"type":     "object",
		"required": keys,
	}

	result, err := gojsonschema.Validate(gojsonschema.NewGoLoader(schema), gojsonschema.NewGoLoader(actual))
	if err != nil {
		return false, fmt.Sprintf("schema validation error: %v", err)
	}

	if result.Valid() {
		return true, ""
	}

	var errors []string
	for _, desc := range result.Errors() {
		errors = append(errors, desc.Description())
	}
	return false, strings.Join(errors, "; ")
}

func toFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	}
	return 0, false
}

// formatValue quotes strings and summarizes containers for failure messages.
func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "<missing>"
	case string:
		return strconv.Quote(truncate(val, 100))
	case []any:
		return fmt.Sprintf("[array with %d items]", len(val))
	case map[string]any:
		return fmt.Sprintf("{object with %d keys}", len(val))
	}
	return truncate(fmt.Sprintf("%v", v), 100)
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n] + "..."
	}
	return s
}

func EvaluateAll(resp *http.Response, assertions []*Assertion) []*Result {
	evaluator := NewEvaluator(resp)
	results := make([]*Result, len(assertions))
	for i, a := range assertions {
		results[i] = evaluator.Evaluate(a)
	}
	return results
}

// AllPassed reports whether every result passed.
func AllPassed(results []*Result) bool {
	for _, r := range results {
		if !r.Passed {
			return false
		}
	}
	return true
}

// Failures returns the results that did not pass, in order.
func Failures(results []*Result) []*Result {
	var failed []*Result
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, r)
		}
	}
	return failed
}
