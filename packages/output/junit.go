package output

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/abdul-hamid-achik/apiprobe/packages/core/env"
	"github.com/abdul-hamid-achik/apiprobe/packages/core/runner"
)

// JUnit XML structures

// JUnitTestSuites is the root element
type JUnitTestSuites struct {
	XMLName    xml.Name         `xml:"testsuites"`
	Name       string           `xml:"name,attr,omitempty"`
	Tests      int              `xml:"tests,attr"`
	Failures   int              `xml:"failures,attr"`
	Errors     int              `xml:"errors,attr"`
	Time       float64          `xml:"time,attr"`
	Timestamp  string           `xml:"timestamp,attr,omitempty"`
	TestSuites []JUnitTestSuite `xml:"testsuite"`
}

// JUnitTestSuite holds one run against one backend.
type JUnitTestSuite struct {
	XMLName   xml.Name        `xml:"testsuite"`
	Name      string          `xml:"name,attr"`
	Tests     int             `xml:"tests,attr"`
	Failures  int             `xml:"failures,attr"`
	Errors    int             `xml:"errors,attr"`
	Time      float64         `xml:"time,attr"`
	Timestamp string          `xml:"timestamp,attr,omitempty"`
	TestCases []JUnitTestCase `xml:"testcase"`
}

// JUnitTestCase represents a single check
type JUnitTestCase struct {
	XMLName   xml.Name      `xml:"testcase"`
	Name      string        `xml:"name,attr"`
	ClassName string        `xml:"classname,attr"`
	Time      float64       `xml:"time,attr"`
	Failure   *JUnitFailure `xml:"failure,omitempty"`
	Error     *JUnitError   `xml:"error,omitempty"`
}

// JUnitFailure represents an assertion failure
type JUnitFailure struct {
	Message string `xml:"message,attr,omitempty"`
	Type    string `xml:"type,attr,omitempty"`
	Content string `xml:",chardata"`
}

// JUnitError represents a check that never got a usable response
type JUnitError struct {
	Message string `xml:"message,attr,omitempty"`
	Type    string `xml:"type,attr,omitempty"`
	Content string `xml:",chardata"`
}

// JUnitFormatter formats run results as JUnit XML
type JUnitFormatter struct {
	writer     io.Writer
	testSuites []JUnitTestSuite
	errors     []error
}

type JUnitOption func(*JUnitFormatter)

func NewJUnitFormatter(opts ...JUnitOption) *JUnitFormatter {
	f := &JUnitFormatter{
		writer:     os.Stdout,
		testSuites: make([]JUnitTestSuite, 0),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func JUnitWithWriter(w io.Writer) JUnitOption {
	return func(f *JUnitFormatter) {
		f.writer = w
	}
}

func (f *JUnitFormatter) FormatResult(result *runner.RunResult) {
	suite := JUnitTestSuite{
		Name:      result.BaseURL,
		Tests:     len(result.Results),
		Time:      result.Duration.Seconds(),
		Timestamp: result.StartedAt.Format(time.RFC3339),
		TestCases: make([]JUnitTestCase, 0, len(result.Results)),
	}

	for _, r := range result.Results {
		tc := JUnitTestCase{
			Name:      r.Description,
			ClassName: "apiprobe." + r.Name,
			Time:      r.Duration.Seconds(),
		}

		switch {
		case r.Passed:
		case len(r.Assertions) > 0:
			suite.Failures++
			var failureMsg strings.Builder
			for _, a := range r.Assertions {
				fmt.Fprintf(&failureMsg, "%s\n", a.String())
			}
			tc.Failure = &JUnitFailure{
				Message: r.ErrorMessage(),
				Type:    "AssertionError",
				Content: failureMsg.String(),
			}
		default:
			suite.Errors++
			errType := "Error"
			if r.IsTransportError() {
				errType = "TransportError"
			}
			tc.Error = &JUnitError{
				Message: r.ErrorMessage(),
				Type:    errType,
			}
		}

		suite.TestCases = append(suite.TestCases, tc)
	}

	f.testSuites = append(f.testSuites, suite)
}

// FormatError records an error that kept the checks from running. Check
// failures are reported on their own test cases instead.
func (f *JUnitFormatter) FormatError(err error) {
	f.errors = append(f.errors, err)
}

// errorSuite turns the recorded errors into a suite of errored test cases
// so CI still sees why nothing ran.
func (f *JUnitFormatter) errorSuite() JUnitTestSuite {
	suite := JUnitTestSuite{
		Name:      "apiprobe",
		Tests:     len(f.errors),
		Errors:    len(f.errors),
		TestCases: make([]JUnitTestCase, 0, len(f.errors)),
	}
	for _, err := range f.errors {
		tc := JUnitTestCase{Name: "configuration", ClassName: "apiprobe.setup"}
		errType := "Error"
		var cfgErr *env.ConfigError
		if errors.As(err, &cfgErr) {
			errType = "ConfigError"
		}
		tc.Error = &JUnitError{Message: err.Error(), Type: errType}
		suite.TestCases = append(suite.TestCases, tc)
	}
	return suite
}

func (f *JUnitFormatter) FormatHeader(baseURL string) {
	// No header needed for JUnit XML
}

// Flush writes the accumulated JUnit XML output
func (f *JUnitFormatter) Flush(totalDuration time.Duration) error {
	testSuites := f.testSuites
	if len(f.errors) > 0 {
		testSuites = append(testSuites, f.errorSuite())
	}

	var totalTests, totalFailures, totalErrors int
	for _, suite := range testSuites {
		totalTests += suite.Tests
		totalFailures += suite.Failures
		totalErrors += suite.Errors
	}

	suites := JUnitTestSuites{
		Name:       "apiprobe",
		Tests:      totalTests,
		Failures:   totalFailures,
		Errors:     totalErrors,
		Time:       totalDuration.Seconds(),
		Timestamp:  time.Now().Format(time.RFC3339),
		TestSuites: testSuites,
	}

	fmt.Fprintf(f.writer, "<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
	encoder := xml.NewEncoder(f.writer)
	encoder.Indent("", "  ")
	return encoder.Encode(suites)
}
