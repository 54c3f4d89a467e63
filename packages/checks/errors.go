package checks

import (
	"fmt"
	"strings"

	"github.com/abdul-hamid-achik/apiprobe/packages/assertions"
)

// AssertionError reports a response that does not match the API contract.
type AssertionError struct {
	Method string
	URL    string
	// Failures holds only the assertions that did not pass.
	Failures []*assertions.Result
}

func (e *AssertionError) Error() string {
	msgs := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		msgs[i] = f.String()
	}
	return fmt.Sprintf("%s %s: %s", e.Method, e.URL, strings.Join(msgs, "; "))
}

// TransportError reports a request that produced no usable response.
type TransportError struct {
	Method string
	URL    string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
