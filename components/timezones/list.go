package timezones

import (
	"bufio"
	"embed"
	"errors"
	"io"
	"slices"
	"strings"
	"sync"
)

//go:embed data/iana_timezones.txt
var dataFS embed.FS

// Continents are the zone prefixes offered in the admin picker, in display
// order. Legacy aliases ("US/Eastern", "Etc/GMT+5") fall outside them.
var Continents = []string{
	"Africa", "America", "Antarctica", "Arctic", "Asia",
	"Atlantic", "Australia", "Europe", "Indian", "Pacific",
}

var embedded = sync.OnceValues(func() ([]string, error) {
	f, err := dataFS.Open("data/iana_timezones.txt")
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadZones(f)
})

// DefaultZones returns a copy of the embedded zone list, sorted.
func DefaultZones() ([]string, error) {
	zones, err := embedded()
	if err != nil {
		return nil, err
	}
	return slices.Clone(zones), nil
}

// LoadZones reads one zone per line. Blank lines and # comments are skipped;
// the result is sorted and free of duplicates.
func LoadZones(r io.Reader) ([]string, error) {
	if r == nil {
		return nil, errors.New("timezones: missing reader")
	}
	var zones []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || line[0] == '#' {
			continue
		}
		zones = append(zones, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	slices.Sort(zones)
	return slices.Compact(zones), nil
}

// Continent returns the leading segment of zone when it is one of
// Continents, and "" otherwise.
func Continent(zone string) string {
	head, _, found := strings.Cut(zone, "/")
	if !found || !slices.Contains(Continents, head) {
		return ""
	}
	return head
}
