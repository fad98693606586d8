// Package pagination slices an ordered collection into fixed-size pages and
// keeps a 1-based page number within bounds as the collection changes size.
package pagination

import (
	"fmt"
	"slices"

	e "github.com/gartstein/companydir/internal/directory/errors"
)

// DefaultSize is the page size used when none is chosen.
const DefaultSize = 5

// Sizes are the selectable page sizes.
var Sizes = []int{5, 10, 20}

// ValidSize reports whether size is one of Sizes.
func ValidSize(size int) bool {
	return slices.Contains(Sizes, size)
}

// TotalPages is max(1, ceil(total/size)).
func TotalPages(total, size int) int {
	if size <= 0 || total <= 0 {
		return 1
	}
	return (total + size - 1) / size
}

// State is the current page number and page size.
type State struct {
	Page int `json:"page"`
	Size int `json:"page_size"`
}

// NewState validates size and starts on page 1.
func NewState(size int) (State, error) {
	if !ValidSize(size) {
		return State{}, fmt.Errorf("%w: page size %d not in %v", e.ErrInvalidInput, size, Sizes)
	}
	return State{Page: 1, Size: size}, nil
}

// Clamp returns s with Page reset to 1 when it falls outside [1, totalPages].
func (s State) Clamp(totalPages int) State {
	if s.Page < 1 || s.Page > totalPages {
		s.Page = 1
	}
	return s
}

// First jumps to page 1.
func (s State) First() State {
	s.Page = 1
	return s
}

// Last jumps to totalPages.
func (s State) Last(totalPages int) State {
	s.Page = max(1, totalPages)
	return s
}

// Prev steps back one page, floored at 1.
func (s State) Prev() State {
	s.Page = max(1, s.Page-1)
	return s
}

// Next steps forward one page, capped at totalPages.
func (s State) Next(totalPages int) State {
	s.Page = max(1, min(totalPages, s.Page+1))
	return s
}

// WithSize changes the page size. The page number is kept; Paginate resets
// it when the new size leaves it out of range.
func (s State) WithSize(size int) (State, error) {
	if !ValidSize(size) {
		return s, fmt.Errorf("%w: page size %d not in %v", e.ErrInvalidInput, size, Sizes)
	}
	s.Size = size
	return s, nil
}

// Page is one window of a collection plus the numbers needed to describe it.
type Page[T any] struct {
	Items      []T `json:"data"`
	Page       int `json:"page"`
	Size       int `json:"page_size"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
	// Start and End are the 1-based display range; both are 0 when Total is 0.
	Start int `json:"start"`
	End   int `json:"end"`
}

// Paginate returns the page of items described by s, after clamping s to the
// collection. Items of the result is a fresh, non-nil slice.
func Paginate[T any](items []T, s State) Page[T] {
	size := s.Size
	if size <= 0 {
		size = DefaultSize
	}
	total := len(items)
	totalPages := TotalPages(total, size)
	page := State{Page: s.Page, Size: size}.Clamp(totalPages).Page

	from := min((page-1)*size, total)
	to := min(page*size, total)

	return Page[T]{
		Items:      append(make([]T, 0, to-from), items[from:to]...),
		Page:       page,
		Size:       size,
		Total:      total,
		TotalPages: totalPages,
		Start:      min((page-1)*size+1, total),
		End:        to,
	}
}

// State returns the pagination state the page was cut with.
func (p Page[T]) State() State {
	return State{Page: p.Page, Size: p.Size}
}

// HasPrev reports whether a previous page exists.
func (p Page[T]) HasPrev() bool {
	return p.Page > 1
}

// HasNext reports whether a following page exists.
func (p Page[T]) HasNext() bool {
	return p.Page < p.TotalPages
}

// Empty reports whether there is nothing to show.
func (p Page[T]) Empty() bool {
	return len(p.Items) == 0
}

// Range renders the display range as "Start - End of Total".
func (p Page[T]) Range() string {
	return fmt.Sprintf("%d - %d of %d", p.Start, p.End, p.Total)
}
