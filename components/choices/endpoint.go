package choices

import (
	"strconv"
	"strings"
)

// Endpoint is the client-side contract for a searchable source: controls
// emit it as data attributes so scripts can query the handler as the user
// types.
type Endpoint struct {
	URL         string            `json:"url"`
	Method      string            `json:"method"`
	ResultsPath string            `json:"resultsPath"`
	SearchParam string            `json:"searchParam"`
	Params      map[string]string `json:"params,omitempty"`
	Value       string            `json:"value"`
	Label       string            `json:"label"`
}

// NewEndpoint describes the named source served at base/<name>.
func NewEndpoint(base, name string, fns ...OptionFn) Endpoint {
	cfg := NewConfig(fns...)
	return Endpoint{
		URL:         SourceURL(base, name),
		Method:      "GET",
		ResultsPath: "data",
		SearchParam: cfg.SearchParam,
		Params:      map[string]string{cfg.LimitParam: strconv.Itoa(cfg.DefaultLimit)},
		Value:       "value",
		Label:       "label",
	}
}

// SourceURL joins base and the normalized source name.
func SourceURL(base, name string) string {
	base = "/" + strings.Trim(strings.TrimSpace(base), "/")
	if base == "/" {
		base = ""
	}
	return base + "/" + normalizeName(name)
}

// Attrs renders the endpoint as data-* attributes.
func (e Endpoint) Attrs() map[string]string {
	attrs := map[string]string{
		"data-endpoint-url":          e.URL,
		"data-endpoint-method":       e.Method,
		"data-endpoint-results-path": e.ResultsPath,
		"data-endpoint-search-param": e.SearchParam,
		"data-endpoint-value":        e.Value,
		"data-endpoint-label":        e.Label,
	}
	for key, value := range e.Params {
		attrs["data-endpoint-param-"+key] = value
	}
	return attrs
}
