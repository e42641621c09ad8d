// Package sanitize provides the named callbacks applied to submitted values
// before they are coerced and stored. String sanitizers are applied element
// by element to slices.
package sanitize

import (
	"fmt"
	"net/url"
	"slices"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

// Built-in sanitizer names.
const (
	Text  = "text"
	HTML  = "html"
	Key   = "key"
	Email = "email"
	URL   = "url"
	None  = "none"
)

// Func transforms a submitted value.
type Func func(value any) any

// StringFunc lifts a string transform into a Func that also walks []string
// and []any values. Other types pass through untouched.
func StringFunc(fn func(string) string) Func {
	return func(value any) any {
		switch typed := value.(type) {
		case string:
			return fn(typed)
		case []string:
			out := make([]string, len(typed))
			for i, item := range typed {
				out[i] = fn(item)
			}
			return out
		case []any:
			out := make([]any, len(typed))
			for i, item := range typed {
				if s, ok := item.(string); ok {
					out[i] = fn(s)
					continue
				}
				out[i] = item
			}
			return out
		default:
			return value
		}
	}
}

var (
	policyOnce   sync.Once
	strictPolicy *bluemonday.Policy
	ugcPolicy    *bluemonday.Policy
)

func policies() (*bluemonday.Policy, *bluemonday.Policy) {
	policyOnce.Do(func() {
		strictPolicy = bluemonday.StrictPolicy()
		ugcPolicy = bluemonday.UGCPolicy()
	})
	return strictPolicy, ugcPolicy
}

// TextField strips every tag and trims surrounding whitespace.
func TextField(value string) string {
	strict, _ := policies()
	return strings.TrimSpace(strict.Sanitize(value))
}

// KSES keeps the markup allowed in user generated content.
func KSES(value string) string {
	_, ugc := policies()
	return strings.TrimSpace(ugc.Sanitize(value))
}

// KeyName lowercases value and drops everything except a-z, 0-9, "_" and "-".
func KeyName(value string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(value) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' || r == '-' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// EmailAddress trims and lowercases an address, returning "" when it has no
// usable local part or domain.
func EmailAddress(value string) string {
	value = strings.ToLower(TextField(value))
	at := strings.LastIndex(value, "@")
	if at <= 0 || at == len(value)-1 || strings.ContainsAny(value, " \t\r\n") {
		return ""
	}
	return value
}

var allowedSchemes = []string{"http", "https", "mailto", "tel"}

// RawURL keeps relative URLs and absolute URLs with an allowed scheme.
func RawURL(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	parsed, err := url.Parse(value)
	if err != nil {
		return ""
	}
	if parsed.Scheme != "" && !slices.Contains(allowedSchemes, strings.ToLower(parsed.Scheme)) {
		return ""
	}
	return parsed.String()
}

// Registry maps sanitizer names to functions.
type Registry struct {
	mu    sync.RWMutex
	funcs map[string]Func
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{funcs: make(map[string]Func)}
}

// NewDefaultRegistry returns a registry seeded with the built-in sanitizers.
func NewDefaultRegistry() *Registry {
	reg := NewRegistry()
	reg.MustRegister(Text, StringFunc(TextField))
	reg.MustRegister(HTML, StringFunc(KSES))
	reg.MustRegister(Key, StringFunc(KeyName))
	reg.MustRegister(Email, StringFunc(EmailAddress))
	reg.MustRegister(URL, StringFunc(RawURL))
	reg.MustRegister(None, func(value any) any { return value })
	return reg
}

// Register stores fn under name, replacing any existing entry.
func (r *Registry) Register(name string, fn Func) error {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return fmt.Errorf("sanitize: name is required")
	}
	if fn == nil {
		return fmt.Errorf("sanitize: %q func is nil", name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.funcs[name] = fn
	return nil
}

func (r *Registry) MustRegister(name string, fn Func) {
	if err := r.Register(name, fn); err != nil {
		panic(err)
	}
}

// Lookup returns the named sanitizer.
func (r *Registry) Lookup(name string) (Func, bool) {
	if r == nil {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.funcs[strings.ToLower(strings.TrimSpace(name))]
	return fn, ok
}

// Names lists registered sanitizers alphabetically.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.funcs))
	for name := range r.funcs {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Apply runs the named sanitizer. An empty name falls back to fallback; an
// unknown name is an error so misconfigured fields never store raw input.
func (r *Registry) Apply(name, fallback string, value any) (any, error) {
	if strings.TrimSpace(name) == "" {
		name = fallback
	}
	if strings.TrimSpace(name) == "" {
		return value, nil
	}
	fn, ok := r.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("sanitize: unknown sanitizer %q", name)
	}
	return fn(value), nil
}
