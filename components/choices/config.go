package choices

import "net/http"

// Config tunes the search handler and the endpoint controls advertise.
type Config struct {
	SearchParam  string
	LimitParam   string
	DefaultLimit int
	MaxLimit     int
	// EmptyQueryTop returns the first DefaultLimit options for an empty
	// query instead of nothing.
	EmptyQueryTop bool
	// Guard runs before the source is resolved. A StatusError picks the
	// response code; any other error answers 403.
	Guard func(*http.Request) error
}

// OptionFn mutates a Config.
type OptionFn func(*Config)

// NewConfig returns the defaults (q, limit, 50, 200, top results on empty
// queries) with fns applied. Non-positive limits fall back to the defaults.
func NewConfig(fns ...OptionFn) Config {
	cfg := Config{
		SearchParam:   "q",
		LimitParam:    "limit",
		DefaultLimit:  50,
		MaxLimit:      200,
		EmptyQueryTop: true,
	}
	for _, fn := range fns {
		if fn != nil {
			fn(&cfg)
		}
	}
	if cfg.SearchParam == "" {
		cfg.SearchParam = "q"
	}
	if cfg.LimitParam == "" {
		cfg.LimitParam = "limit"
	}
	if cfg.DefaultLimit <= 0 {
		cfg.DefaultLimit = 50
	}
	if cfg.MaxLimit <= 0 {
		cfg.MaxLimit = 200
	}
	return cfg
}

func WithSearchParam(name string) OptionFn {
	return func(c *Config) { c.SearchParam = name }
}

func WithLimitParam(name string) OptionFn {
	return func(c *Config) { c.LimitParam = name }
}

func WithDefaultLimit(limit int) OptionFn {
	return func(c *Config) { c.DefaultLimit = limit }
}

func WithMaxLimit(limit int) OptionFn {
	return func(c *Config) { c.MaxLimit = limit }
}

// WithEmptyQueryTop toggles results for an empty query.
func WithEmptyQueryTop(enabled bool) OptionFn {
	return func(c *Config) { c.EmptyQueryTop = enabled }
}

func WithGuard(guard func(*http.Request) error) OptionFn {
	return func(c *Config) { c.Guard = guard }
}

// limit resolves a requested limit: zero means DefaultLimit, negative means
// none, and MaxLimit caps the rest.
func (c Config) limit(requested int) int {
	switch {
	case requested < 0:
		return 0
	case requested == 0:
		return min(c.DefaultLimit, c.MaxLimit)
	default:
		return min(requested, c.MaxLimit)
	}
}
