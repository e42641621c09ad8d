package tui

import (
	"fmt"
	"net/url"
	"strings"
)

// OutputFormat selects how Render serializes the collected answers.
type OutputFormat string

const (
	// OutputFormatJSON encodes answers as a JSON object of field to value(s).
	OutputFormatJSON OutputFormat = "json"
	// OutputFormatFormURLEncoded encodes answers the way the save endpoint
	// expects a browser post.
	OutputFormatFormURLEncoded OutputFormat = "form"
	// OutputFormatPrettyText prints one "Label: value" line per field.
	OutputFormatPrettyText OutputFormat = "pretty"
)

// ParseOutputFormat maps a flag value onto an OutputFormat. Empty means JSON.
func ParseOutputFormat(value string) (OutputFormat, error) {
	switch format := OutputFormat(strings.ToLower(strings.TrimSpace(value))); format {
	case "":
		return OutputFormatJSON, nil
	case OutputFormatJSON, OutputFormatFormURLEncoded, OutputFormatPrettyText:
		return format, nil
	default:
		return "", fmt.Errorf("tui: unknown output format %q", value)
	}
}

// Prefixes are prepended to the informational lines the renderer prints.
type Prefixes struct {
	Section string
	Info    string
	Error   string
}

// SubmitTransformer rewrites the answers before they are serialized.
type SubmitTransformer func(url.Values) (url.Values, error)

// Option configures a Renderer.
type Option func(*Renderer)

// WithPromptDriver swaps the survey driver, mostly for tests.
func WithPromptDriver(driver PromptDriver) Option {
	return func(r *Renderer) {
		if driver != nil {
			r.driver = driver
		}
	}
}

// WithOutputFormat sets the Render output. Empty keeps JSON.
func WithOutputFormat(format OutputFormat) Option {
	return func(r *Renderer) {
		if format != "" {
			r.outputFormat = format
		}
	}
}

func WithSubmitTransformer(fn SubmitTransformer) Option {
	return func(r *Renderer) {
		r.submitTransformer = fn
	}
}

// WithPrefixes overrides the section, info and error line prefixes.
func WithPrefixes(prefixes Prefixes) Option {
	return func(r *Renderer) {
		r.prefixes = prefixes
	}
}
