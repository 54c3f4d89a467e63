package checks

import (
	"github.com/abdul-hamid-achik/apiprobe/packages/http"
)

// StatusCheck is the record the backend stores for each status ping.
type StatusCheck struct {
	ID         string `json:"id"`
	ClientName string `json:"client_name"`
	Timestamp  string `json:"timestamp"`
}

// Target is the backend under test. It is built once and never modified.
type Target struct {
	BaseURL string
	Client  *http.Client
}

// NewTarget returns a Target for baseURL. A nil client gets the defaults.
func NewTarget(baseURL string, client *http.Client) *Target {
	if client == nil {
		client = http.NewClient()
	}
	return &Target{BaseURL: baseURL, Client: client}
}

// URL joins path onto the base URL.
func (t *Target) URL(path string) string {
	return http.JoinURL(t.BaseURL, path)
}
