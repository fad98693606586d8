// Package models defines the core domain model of the directory: the Company
// record as it is fetched from a record source and rendered by the views.
package models

import (
	"github.com/google/uuid"
)

// Company is one entry of the directory. Records are immutable once fetched;
// every stage of the pipeline works on copies of the value.
type Company struct {
	// ID is the unique identifier for the company.
	ID uuid.UUID `json:"id" yaml:"id"`
	// Name is the company’s name.
	Name string `json:"name" yaml:"name"`
	// Industry is the sector the company operates in.
	Industry string `json:"industry" yaml:"industry"`
	// Location is the city the company is based in.
	Location string `json:"location" yaml:"location"`
	// Employees is the number of employees in the company.
	Employees int `json:"employees" yaml:"employees"`
	// Founded is the founding year.
	Founded int `json:"founded" yaml:"founded"`
}

// Clone returns a copy of the collection that shares no backing array with
// the input. Company holds only value fields, so a slice copy is deep.
func Clone(companies []Company) []Company {
	if companies == nil {
		return nil
	}
	out := make([]Company, len(companies))
	copy(out, companies)
	return out
}
