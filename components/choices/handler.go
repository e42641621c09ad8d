package choices

import (
	"encoding/json"
	"errors"
	"net/http"
	"path"
	"strconv"
	"strings"
)

// NameFunc extracts the source name from a request.
type NameFunc func(r *http.Request) string

// Handler serves every source in reg. The source name is the {name} path
// value, or the last path segment when the router sets no path values.
func Handler(reg *Registry, fns ...OptionFn) http.Handler {
	return NewHandler(reg, NewConfig(fns...), nil)
}

// SourceHandler serves a single source regardless of the request path.
func SourceHandler(source Source, fns ...OptionFn) http.Handler {
	reg := NewRegistry()
	reg.MustRegister("source", source)
	return NewHandler(reg, NewConfig(fns...), func(*http.Request) string { return "source" })
}

// NewHandler answers GET and HEAD with {"data": [options...]}, filtered by
// the search and limit query parameters. A nil name uses the request path.
func NewHandler(reg *Registry, cfg Config, name NameFunc) http.Handler {
	if name == nil {
		name = pathName
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", "GET, HEAD")
			httpStatus(w, http.StatusMethodNotAllowed)
			return
		}
		if cfg.Guard != nil {
			if err := cfg.Guard(r); err != nil {
				httpStatus(w, guardStatus(err))
				return
			}
		}

		options, err := reg.Resolve(r.Context(), name(r))
		switch {
		case errors.Is(err, ErrUnknownSource):
			httpStatus(w, http.StatusNotFound)
			return
		case err != nil:
			httpStatus(w, http.StatusInternalServerError)
			return
		}

		query := r.URL.Query()
		limit, _ := strconv.Atoi(query.Get(cfg.LimitParam))
		results := Search(options, query.Get(cfg.SearchParam), limit, cfg)
		if results == nil {
			results = []Option{}
		}

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		if r.Method == http.MethodHead {
			return
		}
		_ = json.NewEncoder(w).Encode(struct {
			Data []Option `json:"data"`
		}{results})
	})
}

func pathName(r *http.Request) string {
	if name := r.PathValue("name"); name != "" {
		return name
	}
	trimmed := strings.TrimRight(r.URL.Path, "/")
	if trimmed == "" {
		return ""
	}
	return path.Base(trimmed)
}

func httpStatus(w http.ResponseWriter, code int) {
	http.Error(w, http.StatusText(code), code)
}
