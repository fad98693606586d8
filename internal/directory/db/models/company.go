// Package models contains the persistence models of the directory,
// configured to work using GORM as the ORM.
package models

import (
	"time"

	domain "github.com/gartstein/companydir/internal/directory/models"
	"github.com/google/uuid"
)

// Company is the stored form of a directory record. Position keeps the
// source order, which is the order the filter stage must preserve.
type Company struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Position  int       `gorm:"not null;index"`
	Name      string    `gorm:"size:255;not null"`
	Industry  string    `gorm:"size:255;index"`
	Location  string    `gorm:"size:255;index"`
	Employees int       `gorm:"check:employees >= 0"`
	Founded   int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// FromDomain builds a row for the record at the given source position.
func FromDomain(c domain.Company, position int) Company {
	return Company{
		ID:        c.ID,
		Position:  position,
		Name:      c.Name,
		Industry:  c.Industry,
		Location:  c.Location,
		Employees: c.Employees,
		Founded:   c.Founded,
	}
}

// ToDomain converts the row back into a directory record.
func (c Company) ToDomain() domain.Company {
	return domain.Company{
		ID:        c.ID,
		Name:      c.Name,
		Industry:  c.Industry,
		Location:  c.Location,
		Employees: c.Employees,
		Founded:   c.Founded,
	}
}
