package timezones

import (
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-formfields/components/choices"
)

// DatasourceName is the name the source is registered under by default.
const DatasourceName = "timezones"

// Source offers zone names, and optionally manual UTC offsets, as options.
type Source struct {
	zones      []string
	offsets    bool
	continents bool
}

var _ choices.Source = (*Source)(nil)

// OptionFn customises a Source.
type OptionFn func(*Source)

// WithZones replaces the embedded zone list.
func WithZones(zones []string) OptionFn {
	return func(s *Source) {
		s.zones = append([]string{}, zones...)
	}
}

// WithOffsets appends UTC-12 through UTC+14 in half hour steps after the
// named zones.
func WithOffsets(enabled bool) OptionFn {
	return func(s *Source) {
		s.offsets = enabled
	}
}

// WithContinentsOnly drops zones outside Continents, keeping UTC.
func WithContinentsOnly(enabled bool) OptionFn {
	return func(s *Source) {
		s.continents = enabled
	}
}

// New builds a source over the embedded zone list.
func New(fns ...OptionFn) *Source {
	s := &Source{}
	for _, fn := range fns {
		if fn != nil {
			fn(s)
		}
	}
	return s
}

// Options returns one option per zone. Labels replace underscores with
// spaces; values stay the IANA name.
func (s *Source) Options(ctx context.Context) ([]choices.Option, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	zones := s.zones
	if zones == nil {
		var err error
		if zones, err = DefaultZones(); err != nil {
			return nil, fmt.Errorf("timezones: %w", err)
		}
	}

	out := make([]choices.Option, 0, len(zones)+55)
	for _, zone := range zones {
		if s.continents && zone != "UTC" && Continent(zone) == "" {
			continue
		}
		out = append(out, choices.Option{Value: zone, Label: strings.ReplaceAll(zone, "_", " ")})
	}
	if s.offsets {
		out = append(out, Offsets()...)
	}
	return out, nil
}

// Offsets lists the manual offsets. Values use decimal hours ("UTC+5.5"),
// labels use clock notation ("UTC+5:30").
func Offsets() []choices.Option {
	out := make([]choices.Option, 0, 53)
	for half := -24; half <= 28; half++ {
		hours := float64(half) / 2
		sign := "+"
		if hours < 0 {
			sign = "-"
			hours = -hours
		}
		whole := int(hours)
		value := fmt.Sprintf("UTC%s%g", sign, hours)
		label := fmt.Sprintf("UTC%s%d", sign, whole)
		if half%2 != 0 {
			label += ":30"
		}
		if half == 0 {
			value, label = "UTC+0", "UTC+0"
		}
		out = append(out, choices.Option{Value: value, Label: label})
	}
	return out
}
