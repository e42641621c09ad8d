package choices

import (
	"cmp"
	"slices"
	"strings"
)

// Search returns up to limit options whose label or value contains query,
// ignoring case. Options starting with the query come first; ties sort by
// label. An empty query returns the leading options when cfg.EmptyQueryTop.
func Search(options []Option, query string, limit int, cfg Config) []Option {
	limit = cfg.limit(limit)
	if limit == 0 {
		return nil
	}

	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		if !cfg.EmptyQueryTop {
			return nil
		}
		return slices.Clone(options[:min(limit, len(options))])
	}

	type ranked struct {
		Option
		prefix bool
	}
	var hits []ranked
	for _, option := range options {
		label, value := strings.ToLower(option.Label), strings.ToLower(option.Value)
		if strings.Contains(label, q) || strings.Contains(value, q) {
			hits = append(hits, ranked{option, strings.HasPrefix(label, q) || strings.HasPrefix(value, q)})
		}
	}
	slices.SortStableFunc(hits, func(a, b ranked) int {
		if a.prefix != b.prefix {
			if a.prefix {
				return -1
			}
			return 1
		}
		return cmp.Compare(a.Label, b.Label)
	})

	out := make([]Option, 0, min(limit, len(hits)))
	for _, hit := range hits[:min(limit, len(hits))] {
		out = append(out, hit.Option)
	}
	return out
}
