// Package catalog holds the static destination reference data the
// availability monitor works from: airports with their best travel months.
package catalog

import (
	"fmt"
	"os"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// Destination is one catalog entry. BestMonths is a comma-separated list of
// single months or month ranges ("November–February").
type Destination struct {
	AirportCode string `yaml:"airport_code"`
	City        string `yaml:"city"`
	Country     string `yaml:"country"`
	BestMonths  string `yaml:"best_months"`
}

// Catalog is the read-only destination list loaded once at process start.
type Catalog struct {
	Destinations []Destination `yaml:"destinations"`
}

// Load reads the catalog from a YAML file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: read %s: %w", path, err)
	}
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("catalog: parse %s: %w", path, err)
	}
	for i, d := range c.Destinations {
		if d.AirportCode == "" {
			return nil, fmt.Errorf("catalog: entry %d is missing airport_code", i)
		}
	}
	return &c, nil
}

// MatchingMonth returns the destinations whose best-months ranges cover the
// given month.
func (c *Catalog) MatchingMonth(month time.Month) []Destination {
	if c == nil {
		return nil
	}
	var matched []Destination
	for _, d := range c.Destinations {
		if MonthInRanges(month, d.BestMonths) {
			matched = append(matched, d)
		}
	}
	return matched
}

var titler = cases.Title(language.English)

// monthNumber resolves an English month name, case-insensitively.
func monthNumber(name string) (time.Month, bool) {
	name = titler.String(strings.ToLower(strings.TrimSpace(name)))
	for m := time.January; m <= time.December; m++ {
		if m.String() == name {
			return m, true
		}
	}
	return 0, false
}

// MonthInRanges reports whether month falls inside a best-months string.
// Ranges are comma separated; each is a single month name or two names
// joined by an en-dash (ASCII hyphen accepted). Two-month ranges are
// inclusive and may wrap the year end: "November–February" covers November,
// December, January and February. Ranges with unknown month names never
// match.
func MonthInRanges(month time.Month, rangesStr string) bool {
	for _, r := range strings.Split(rangesStr, ",") {
		r = strings.TrimSpace(r)
		if r == "" {
			continue
		}
		parts := splitRange(r)
		switch len(parts) {
		case 1:
			if m, ok := monthNumber(parts[0]); ok && m == month {
				return true
			}
		case 2:
			start, okStart := monthNumber(parts[0])
			end, okEnd := monthNumber(parts[1])
			if !okStart || !okEnd {
				continue
			}
			if start <= end {
				if month >= start && month <= end {
					return true
				}
			} else if month >= start || month <= end {
				// Wraparound range crossing the year boundary.
				return true
			}
		}
	}
	return false
}

func splitRange(r string) []string {
	if strings.Contains(r, "–") {
		return strings.SplitN(r, "–", 2)
	}
	if strings.Contains(r, "-") {
		return strings.SplitN(r, "-", 2)
	}
	return []string{r}
}
