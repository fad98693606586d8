// Package sorting orders a company collection by name or employee count.
package sorting

import (
	"cmp"
	"fmt"
	"slices"

	e "github.com/gartstein/companydir/internal/directory/errors"
	"github.com/gartstein/companydir/internal/directory/models"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Mode selects the comparator.
type Mode string

const (
	NameAsc       Mode = "name_asc"
	NameDesc      Mode = "name_desc"
	EmployeesAsc  Mode = "employees_asc"
	EmployeesDesc Mode = "employees_desc"
)

// DefaultMode is used when no mode is given.
const DefaultMode = NameAsc

// Modes lists every mode in display order.
var Modes = []Mode{NameAsc, NameDesc, EmployeesAsc, EmployeesDesc}

var labels = map[Mode]string{
	NameAsc:       "Name ↑",
	NameDesc:      "Name ↓",
	EmployeesAsc:  "Employees ↑",
	EmployeesDesc: "Employees ↓",
}

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	_, ok := labels[m]
	return ok
}

// Label is the short human-readable name of m.
func (m Mode) Label() string {
	return labels[m]
}

// ParseMode maps a wire value to a Mode. The empty string yields DefaultMode.
func ParseMode(s string) (Mode, error) {
	if s == "" {
		return DefaultMode, nil
	}
	m := Mode(s)
	if !m.Valid() {
		return "", fmt.Errorf("%w: unknown sort mode %q", e.ErrInvalidInput, s)
	}
	return m, nil
}

// Sorter orders collections using a fixed collation language.
type Sorter struct {
	tag language.Tag
}

// NewSorter returns a Sorter comparing names under the rules of tag.
func NewSorter(tag language.Tag) *Sorter {
	return &Sorter{tag: tag}
}

// Default compares names with English collation rules.
var Default = NewSorter(language.English)

// Sort returns a newly ordered copy of companies. Ties keep their input
// order in every mode. Unknown modes leave the order unchanged.
func (s *Sorter) Sort(companies []models.Company, mode Mode) []models.Company {
	out := models.Clone(companies)
	if out == nil {
		return []models.Company{}
	}

	switch mode {
	case NameAsc, NameDesc:
		// collate.Collator keeps internal buffers, one per call.
		col := collate.New(s.tag)
		if mode == NameAsc {
			slices.SortStableFunc(out, func(a, b models.Company) int {
				return col.CompareString(a.Name, b.Name)
			})
		} else {
			slices.SortStableFunc(out, func(a, b models.Company) int {
				return col.CompareString(b.Name, a.Name)
			})
		}
	case EmployeesAsc:
		slices.SortStableFunc(out, func(a, b models.Company) int {
			return cmp.Compare(a.Employees, b.Employees)
		})
	case EmployeesDesc:
		slices.SortStableFunc(out, func(a, b models.Company) int {
			return cmp.Compare(b.Employees, a.Employees)
		})
	}
	return out
}

// Sort orders companies with the Default sorter.
func Sort(companies []models.Company, mode Mode) []models.Company {
	return Default.Sort(companies, mode)
}
