package capture

import (
	"github.com/abdul-hamid-achik/apiprobe/packages/http"
	"github.com/tidwall/gjson"
)

type Extractor struct {
	bodyJSON gjson.Result
	valid    bool
}

func NewExtractor(resp *http.Response) *Extractor {
	e := &Extractor{}
	if gjson.ValidBytes(resp.Body) {
		e.bodyJSON = gjson.ParseBytes(resp.Body)
		e.valid = true
	}
	return e
}

// String returns the value at a gjson path rendered as a string.
func (e *Extractor) String(path string) (string, bool) {
	if !e.valid {
		return "", false
	}
	result := e.bodyJSON.Get(path)
	if !result.Exists() {
		return "", false
	}
	return result.String(), true
}
