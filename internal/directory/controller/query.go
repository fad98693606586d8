package controller

import (
	"github.com/gartstein/companydir/internal/directory/filter"
	"github.com/gartstein/companydir/internal/directory/models"
	"github.com/gartstein/companydir/internal/directory/pagination"
	"github.com/gartstein/companydir/internal/directory/sorting"
)

// Query is the complete set of view parameters. It holds only primitive
// inputs; everything displayed is derived from it on demand.
type Query struct {
	Filter filter.Params
	Sort   sorting.Mode
	Page   pagination.State
}

// DefaultQuery is the initial view: no filters, name ascending, first page
// of DefaultSize.
func DefaultQuery() Query {
	return Query{
		Sort: sorting.DefaultMode,
		Page: pagination.State{Page: 1, Size: pagination.DefaultSize},
	}
}

// View is the derived result of a Query over the full collection.
type View struct {
	// Query is the effective query; its page is clamped into range.
	Query   Query
	Page    pagination.Page[models.Company]
	Options filter.Options
}

// PageReset reports whether the requested page had to be reset to 1.
func (v View) PageReset(requested Query) bool {
	return requested.Page.Page != v.Query.Page.Page
}

// Derive runs filter, sort and paginate over companies. It is pure: the
// input is never modified and the result shares no memory with it.
func Derive(companies []models.Company, q Query, sorter *sorting.Sorter, opts filter.Options) View {
	if sorter == nil {
		sorter = sorting.Default
	}
	if q.Sort == "" {
		q.Sort = sorting.DefaultMode
	}
	filtered := filter.Apply(companies, q.Filter)
	ordered := sorter.Sort(filtered, q.Sort)
	page := pagination.Paginate(ordered, q.Page)
	q.Page = page.State()
	return View{Query: q, Page: page, Options: opts}
}
