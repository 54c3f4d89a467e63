package output

import (
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/abdul-hamid-achik/apiprobe/packages/core/runner"
)

// JSONOutput is the document written by JSONFormatter.
type JSONOutput struct {
	BaseURL  string      `json:"baseUrl"`
	Success  bool        `json:"success"`
	Summary  JSONSummary `json:"summary"`
	Checks   []JSONCheck `json:"checks"`
	Errors   []string    `json:"errors,omitempty"`
	Duration float64     `json:"duration"`
	Time     string      `json:"time"`
}

type JSONSummary struct {
	Total  int `json:"total"`
	Passed int `json:"passed"`
	Failed int `json:"failed"`
}

// JSONCheck represents a single check result
type JSONCheck struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Passed      bool            `json:"passed"`
	Duration    float64         `json:"duration"`
	Error       string          `json:"error,omitempty"`
	ErrorType   string          `json:"errorType,omitempty"`
	Assertions  []JSONAssertion `json:"assertions,omitempty"`
	Captures    map[string]any  `json:"captures,omitempty"`
}

// JSONAssertion represents a failed assertion
type JSONAssertion struct {
	Subject  string `json:"subject"`
	Operator string `json:"operator"`
	Expected any    `json:"expected"`
	Actual   any    `json:"actual"`
	Message  string `json:"message,omitempty"`
}

// JSONFormatter formats run results as JSON
type JSONFormatter struct {
	writer io.Writer
	result *runner.RunResult
	errors []string
}

type JSONOption func(*JSONFormatter)

func NewJSONFormatter(opts ...JSONOption) *JSONFormatter {
	f := &JSONFormatter{
		writer: os.Stdout,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func JSONWithWriter(w io.Writer) JSONOption {
	return func(f *JSONFormatter) {
		f.writer = w
	}
}

func (f *JSONFormatter) FormatResult(result *runner.RunResult) {
	f.result = result
}

func (f *JSONFormatter) FormatError(err error) {
	f.errors = append(f.errors, err.Error())
}

func (f *JSONFormatter) FormatHeader(baseURL string) {
	// No header needed for JSON output
}

// errorType names the failure class of a check for machine consumers.
func errorType(r *runner.CheckResult) string {
	switch {
	case r.Error == nil:
		return ""
	case r.IsTransportError():
		return "transport"
	case len(r.Assertions) > 0:
		return "assertion"
	default:
		return "error"
	}
}

// Flush writes the accumulated JSON output
func (f *JSONFormatter) Flush(totalDuration time.Duration) error {
	output := JSONOutput{
		Checks:   make([]JSONCheck, 0),
		Errors:   f.errors,
		Duration: float64(totalDuration.Milliseconds()),
		Time:     time.Now().Format(time.RFC3339),
	}

	if r := f.result; r != nil {
		output.BaseURL = r.BaseURL
		output.Success = r.Success()
		output.Summary = JSONSummary{
			Total:  len(r.Results),
			Passed: r.Passed,
			Failed: r.Failed,
		}

		for _, c := range r.Results {
			check := JSONCheck{
				Name:        c.Name,
				Description: c.Description,
				Passed:      c.Passed,
				Duration:    float64(c.Duration.Milliseconds()),
				Error:       c.ErrorMessage(),
				ErrorType:   errorType(c),
			}

			for _, a := range c.Assertions {
				check.Assertions = append(check.Assertions, JSONAssertion{
					Subject:  a.Subject,
					Operator: a.Operator,
					Expected: a.Expected,
					Actual:   a.Actual,
					Message:  a.Message,
				})
			}

			if len(c.Captures) > 0 {
				check.Captures = c.Captures
			}

			output.Checks = append(output.Checks, check)
		}
	}

	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}
