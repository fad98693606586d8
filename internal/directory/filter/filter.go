// Package filter narrows a company collection by free-text name search and
// exact location/industry selection. Filtering never reorders records.
package filter

import (
	"strings"

	"github.com/gartstein/companydir/internal/directory/models"
)

// Selection is a single-choice restriction on one field: either Any value,
// or exactly one value. It replaces a reserved "All" string so that a real
// value literally named "All" stays selectable.
type Selection struct {
	value string
	set   bool
}

// Any matches every value.
func Any() Selection {
	return Selection{}
}

// Exactly matches only v.
func Exactly(v string) Selection {
	return Selection{value: v, set: true}
}

// IsAny reports whether the selection is unrestricted.
func (s Selection) IsAny() bool {
	return !s.set
}

// Value returns the selected value and whether one is set.
func (s Selection) Value() (string, bool) {
	return s.value, s.set
}

// Matches reports whether v passes the selection.
func (s Selection) Matches(v string) bool {
	return !s.set || s.value == v
}

// String renders the selection for logs.
func (s Selection) String() string {
	if !s.set {
		return "any"
	}
	return s.value
}

// Params is the full set of filter inputs.
type Params struct {
	Query    string
	Location Selection
	Industry Selection
}

// IsZero reports whether the params restrict nothing.
func (p Params) IsZero() bool {
	return strings.TrimSpace(p.Query) == "" && p.Location.IsAny() && p.Industry.IsAny()
}

// Predicate returns the conjunction of the three field rules.
func (p Params) Predicate() func(models.Company) bool {
	q := strings.ToLower(strings.TrimSpace(p.Query))
	return func(c models.Company) bool {
		if q != "" && !strings.Contains(strings.ToLower(c.Name), q) {
			return false
		}
		return p.Location.Matches(c.Location) && p.Industry.Matches(c.Industry)
	}
}

// Apply returns the records passing p in their input order. The result is a
// new slice, never nil, and may be empty.
func Apply(companies []models.Company, p Params) []models.Company {
	keep := p.Predicate()
	out := make([]models.Company, 0, len(companies))
	for _, c := range companies {
		if keep(c) {
			out = append(out, c)
		}
	}
	return out
}

// Options lists the distinct locations and industries present in the
// collection, each in first-seen order.
type Options struct {
	Locations  []string `json:"locations"`
	Industries []string `json:"industries"`
}

// OptionsOf collects the selectable values of companies.
func OptionsOf(companies []models.Company) Options {
	opts := Options{Locations: []string{}, Industries: []string{}}
	seenLoc := make(map[string]struct{})
	seenInd := make(map[string]struct{})
	for _, c := range companies {
		if _, ok := seenLoc[c.Location]; !ok {
			seenLoc[c.Location] = struct{}{}
			opts.Locations = append(opts.Locations, c.Location)
		}
		if _, ok := seenInd[c.Industry]; !ok {
			seenInd[c.Industry] = struct{}{}
			opts.Industries = append(opts.Industries, c.Industry)
		}
	}
	return opts
}
