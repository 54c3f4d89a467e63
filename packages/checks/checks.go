package checks

import (
	"context"
	"fmt"
	"time"

	"github.com/abdul-hamid-achik/apiprobe/packages/assertions"
	"github.com/abdul-hamid-achik/apiprobe/packages/capture"
	"github.com/abdul-hamid-achik/apiprobe/packages/http"
	"github.com/google/uuid"
	"github.com/tidwall/gjson"
)

const (
	RootPath   = "/api/"
	StatusPath = "/api/status"

	// Greeting is the message the root endpoint must return.
	Greeting = "Hello World"

	// ClientNamePrefix starts every generated client name.
	ClientNamePrefix = "test_client_"
)

// statusCheckKeys must be present on every StatusCheck the backend returns.
var statusCheckKeys = []string{"client_name", "id", "timestamp"}

// NewClientName returns a client name unique to this invocation: the prefix,
// now in second resolution and eight hex digits of a random UUID.
func NewClientName(now time.Time) string {
	return fmt.Sprintf("%s%s_%s", ClientNamePrefix, now.Format("20060102150405"), uuid.NewString()[:8])
}

// Root checks GET /api/ answers 200 with {"message": "Hello World"}.
func Root(ctx context.Context, t *Target) error {
	url := t.URL(RootPath)
	resp, err := t.Client.Get(ctx, url)
	if err != nil {
		return &TransportError{Method: "GET", URL: url, Err: err}
	}

	return verify("GET", url, resp,
		assertions.IsType("body", "object"),
		assertions.Equals("body.message", Greeting),
	)
}

// CreateStatus posts clientName to /api/status and checks the backend echoes
// it with an id and a timestamp. It returns the created record.
func CreateStatus(ctx context.Context, t *Target, clientName string) (*StatusCheck, error) {
	url := t.URL(StatusPath)
	resp, err := t.Client.PostJSON(ctx, url, map[string]string{"client_name": clientName})
	if err != nil {
		return nil, &TransportError{Method: "POST", URL: url, Err: err}
	}

	err = verify("POST", url, resp,
		assertions.Equals("body.client_name", clientName),
		assertions.Exists("body.id"),
		assertions.Exists("body.timestamp"),
	)
	if err != nil {
		return nil, err
	}

	e := capture.NewExtractor(resp)
	record := &StatusCheck{ClientName: clientName}
	record.ID, _ = e.String("id")
	record.Timestamp, _ = e.String("timestamp")
	return record, nil
}

// ListStatus checks GET /api/status answers 200 with a JSON array. Only the
// first element is inspected, for the StatusCheck keys.
func ListStatus(ctx context.Context, t *Target) ([]StatusCheck, error) {
	url := t.URL(StatusPath)
	resp, err := t.Client.Get(ctx, url)
	if err != nil {
		return nil, &TransportError{Method: "GET", URL: url, Err: err}
	}

	if err := verify("GET", url, resp, assertions.IsType("body", "array")); err != nil {
		return nil, err
	}

	items := gjson.ParseBytes(resp.Body).Array()
	if len(items) > 0 {
		if err := verify("GET", url, resp, assertions.HasKeys("body.0", statusCheckKeys...)); err != nil {
			return nil, err
		}
	}

	records := make([]StatusCheck, len(items))
	for i, item := range items {
		records[i] = StatusCheck{
			ID:         item.Get("id").String(),
			ClientName: item.Get("client_name").String(),
			Timestamp:  item.Get("timestamp").String(),
		}
	}
	return records, nil
}

// verify requires a 200 status, then evaluates the body assertions. Body
// assertions are skipped when the status is wrong.
func verify(method, url string, resp *http.Response, body ...*assertions.Assertion) error {
	results := assertions.EvaluateAll(resp, []*assertions.Assertion{assertions.Status(200)})
	if assertions.AllPassed(results) {
		results = assertions.EvaluateAll(resp, body)
	}

	if failed := assertions.Failures(results); len(failed) > 0 {
		return &AssertionError{Method: method, URL: url, Failures: failed}
	}
	return nil
}
