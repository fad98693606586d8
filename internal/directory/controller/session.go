package controller

import (
	"github.com/gartstein/companydir/internal/directory/filter"
	"github.com/gartstein/companydir/internal/directory/sorting"
)

// Querier derives views. *Directory implements it.
type Querier interface {
	Query(q Query) (View, error)
}

// Session is the mutable view state of a single interactive client. Every
// setter re-derives the view, so the stored page always stays in range:
// when a change shrinks the result below the current page, the page
// resets to 1.
//
// A Session is not safe for concurrent use; it has exactly one owner.
type Session struct {
	source Querier
	query  Query
}

// NewSession starts a session on the default query.
func NewSession(source Querier) *Session {
	return &Session{source: source, query: DefaultQuery()}
}

// Query returns the current parameters.
func (s *Session) Query() Query {
	return s.query
}

// View derives the current view and stores the effective page back.
func (s *Session) View() (View, error) {
	v, err := s.source.Query(s.query)
	if err != nil {
		return View{}, err
	}
	s.query = v.Query
	return v, nil
}

func (s *Session) apply(change func(q *Query) error) (View, error) {
	next := s.query
	if err := change(&next); err != nil {
		return View{}, err
	}
	s.query = next
	return s.View()
}

// SetSearch replaces the free-text name query.
func (s *Session) SetSearch(text string) (View, error) {
	return s.apply(func(q *Query) error {
		q.Filter.Query = text
		return nil
	})
}

// SetLocation replaces the location selection.
func (s *Session) SetLocation(sel filter.Selection) (View, error) {
	return s.apply(func(q *Query) error {
		q.Filter.Location = sel
		return nil
	})
}

// SetIndustry replaces the industry selection.
func (s *Session) SetIndustry(sel filter.Selection) (View, error) {
	return s.apply(func(q *Query) error {
		q.Filter.Industry = sel
		return nil
	})
}

// SetSort changes the ordering. Unknown modes are rejected.
func (s *Session) SetSort(mode sorting.Mode) (View, error) {
	return s.apply(func(q *Query) error {
		m, err := sorting.ParseMode(string(mode))
		if err != nil {
			return err
		}
		q.Sort = m
		return nil
	})
}

// SetPageSize changes the page size. Sizes outside pagination.Sizes are
// rejected.
func (s *Session) SetPageSize(size int) (View, error) {
	return s.apply(func(q *Query) error {
		st, err := q.Page.WithSize(size)
		if err != nil {
			return err
		}
		q.Page = st
		return nil
	})
}

// First jumps to page 1.
func (s *Session) First() (View, error) {
	return s.apply(func(q *Query) error {
		q.Page = q.Page.First()
		return nil
	})
}

// Prev steps back one page; a no-op on page 1.
func (s *Session) Prev() (View, error) {
	return s.apply(func(q *Query) error {
		q.Page = q.Page.Prev()
		return nil
	})
}

// Next steps forward one page; a no-op on the last page.
func (s *Session) Next() (View, error) {
	return s.navigate(func(q *Query, totalPages int) {
		q.Page = q.Page.Next(totalPages)
	})
}

// Last jumps to the last page.
func (s *Session) Last() (View, error) {
	return s.navigate(func(q *Query, totalPages int) {
		q.Page = q.Page.Last(totalPages)
	})
}

func (s *Session) navigate(move func(q *Query, totalPages int)) (View, error) {
	current, err := s.View()
	if err != nil {
		return View{}, err
	}
	return s.apply(func(q *Query) error {
		move(q, current.Page.TotalPages)
		return nil
	})
}
