package handlers

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/gartstein/companydir/internal/directory/controller"
	e "github.com/gartstein/companydir/internal/directory/errors"
	"github.com/gartstein/companydir/internal/directory/filter"
	"github.com/gartstein/companydir/internal/directory/models"
	"github.com/gartstein/companydir/internal/directory/pagination"
	"github.com/gartstein/companydir/internal/directory/sorting"
)

// Query string parameters.
const (
	paramSearch   = "q"
	paramLocation = "location"
	paramIndustry = "industry"
	paramSort     = "sort"
	paramSize     = "size"
	paramPage     = "page"
)

// parseQuery reads view parameters from a query string. An absent or empty
// location/industry means "all"; the page is clamped later by the pipeline.
func parseQuery(values url.Values, defaultSize int) (controller.Query, error) {
	q := controller.DefaultQuery()
	q.Page.Size = defaultSize

	q.Filter.Query = values.Get(paramSearch)
	q.Filter.Location = parseSelection(values.Get(paramLocation))
	q.Filter.Industry = parseSelection(values.Get(paramIndustry))

	mode, err := sorting.ParseMode(values.Get(paramSort))
	if err != nil {
		return q, err
	}
	q.Sort = mode

	if raw := values.Get(paramSize); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil {
			return q, fmt.Errorf("%w: page size %q is not a number", e.ErrInvalidInput, raw)
		}
		if q.Page, err = q.Page.WithSize(size); err != nil {
			return q, err
		}
	}

	if raw := values.Get(paramPage); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil {
			return q, fmt.Errorf("%w: page %q is not a number", e.ErrInvalidInput, raw)
		}
		q.Page.Page = page
	}
	return q, nil
}

func parseSelection(raw string) filter.Selection {
	if raw == "" {
		return filter.Any()
	}
	return filter.Exactly(raw)
}

// encodeQuery is the inverse of parseQuery; default values are omitted.
func encodeQuery(q controller.Query) url.Values {
	values := url.Values{}
	if q.Filter.Query != "" {
		values.Set(paramSearch, q.Filter.Query)
	}
	if v, ok := q.Filter.Location.Value(); ok {
		values.Set(paramLocation, v)
	}
	if v, ok := q.Filter.Industry.Value(); ok {
		values.Set(paramIndustry, v)
	}
	if q.Sort != "" && q.Sort != sorting.DefaultMode {
		values.Set(paramSort, string(q.Sort))
	}
	if q.Page.Size != 0 {
		values.Set(paramSize, strconv.Itoa(q.Page.Size))
	}
	if q.Page.Page > 1 {
		values.Set(paramPage, strconv.Itoa(q.Page.Page))
	}
	return values
}

// pageHref links to the same view on another page.
func pageHref(q controller.Query, page int) string {
	q.Page.Page = page
	encoded := encodeQuery(q).Encode()
	if encoded == "" {
		return "/"
	}
	return "/?" + encoded
}

// PaginationResponse describes the returned window.
type PaginationResponse struct {
	Page       int    `json:"page"`
	PageSize   int    `json:"page_size"`
	Total      int    `json:"total"`
	TotalPages int    `json:"total_pages"`
	Start      int    `json:"start"`
	End        int    `json:"end"`
	Range      string `json:"range"`
}

// FiltersResponse echoes the applied parameters. Nil selections mean "all".
type FiltersResponse struct {
	Query    string       `json:"query"`
	Location *string      `json:"location"`
	Industry *string      `json:"industry"`
	Sort     sorting.Mode `json:"sort"`
}

// ListResponse is the JSON body of GET /api/companies.
type ListResponse struct {
	Data       []models.Company   `json:"data"`
	Pagination PaginationResponse `json:"pagination"`
	Filters    FiltersResponse    `json:"filters"`
}

func selectionPtr(s filter.Selection) *string {
	if v, ok := s.Value(); ok {
		return &v
	}
	return nil
}

func viewToResponse(v controller.View) ListResponse {
	p := v.Page
	return ListResponse{
		Data: p.Items,
		Pagination: PaginationResponse{
			Page:       p.Page,
			PageSize:   p.Size,
			Total:      p.Total,
			TotalPages: p.TotalPages,
			Start:      p.Start,
			End:        p.End,
			Range:      p.Range(),
		},
		Filters: FiltersResponse{
			Query:    v.Query.Filter.Query,
			Location: selectionPtr(v.Query.Filter.Location),
			Industry: selectionPtr(v.Query.Filter.Industry),
			Sort:     v.Query.Sort,
		},
	}
}

// option is one <option> of a select control.
type option struct {
	Value    string
	Label    string
	Selected bool
}

func selectionOptions(values []string, current filter.Selection) []option {
	out := make([]option, 0, len(values)+1)
	out = append(out, option{Value: "", Label: "All", Selected: current.IsAny()})
	for _, v := range values {
		out = append(out, option{Value: v, Label: v, Selected: !current.IsAny() && current.Matches(v)})
	}
	return out
}

func sortOptions(current sorting.Mode) []option {
	out := make([]option, 0, len(sorting.Modes))
	for _, m := range sorting.Modes {
		out = append(out, option{Value: string(m), Label: m.Label(), Selected: m == current})
	}
	return out
}

func sizeOptions(current int) []option {
	out := make([]option, 0, len(pagination.Sizes))
	for _, s := range pagination.Sizes {
		out = append(out, option{
			Value:    strconv.Itoa(s),
			Label:    fmt.Sprintf("%d / page", s),
			Selected: s == current,
		})
	}
	return out
}
