// Package pagination provides page requests and page results shared by list endpoints.
package pagination

import (
	"encoding/json"
	"net/url"
	"strconv"

	"github.com/JaimeStill/outreach/pkg/openapi"
	"github.com/JaimeStill/outreach/pkg/query"
)

// SortFields accepts either "lastName,-createdAt" or an array of SortField objects in JSON.
type SortFields []query.SortField

func (s *SortFields) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		*s = query.ParseSortFields(str)
		return nil
	}

	var fields []query.SortField
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	*s = fields
	return nil
}

// PageRequest selects one page of a listing with optional free-text search and sort.
type PageRequest struct {
	Page     int        `json:"page"`
	PageSize int        `json:"pageSize"`
	Search   *string    `json:"search,omitempty"`
	Sort     SortFields `json:"sort,omitempty"`
}

// Normalize clamps Page to at least 1 and PageSize into [1, cfg.MaxPageSize],
// substituting cfg.DefaultPageSize when no size was requested.
func (r *PageRequest) Normalize(cfg Config) {
	r.Page = max(r.Page, 1)
	if r.PageSize < 1 {
		r.PageSize = cfg.DefaultPageSize
	}
	r.PageSize = min(r.PageSize, cfg.MaxPageSize)
}

func (r *PageRequest) Offset() int {
	return (r.Page - 1) * r.PageSize
}

// PageRequestFromQuery reads page, pageSize, search and sort from the query string.
// Malformed numbers are treated as absent.
func PageRequestFromQuery(values url.Values, cfg Config) PageRequest {
	req := PageRequest{Sort: query.ParseSortFields(values.Get("sort"))}
	req.Page, _ = strconv.Atoi(values.Get("page"))
	req.PageSize, _ = strconv.Atoi(values.Get("pageSize"))

	if s := values.Get("search"); s != "" {
		req.Search = &s
	}

	req.Normalize(cfg)
	return req
}

// QueryParameters documents the query string read by PageRequestFromQuery.
func QueryParameters(search string) []*openapi.Parameter {
	return []*openapi.Parameter{
		openapi.QueryParam("page", "integer", "Page number, starting at 1", false),
		openapi.QueryParam("pageSize", "integer", "Results per page", false),
		openapi.QueryParam("search", "string", search, false),
		openapi.QueryParam("sort", "string", "Comma separated fields, prefix with - for descending", false),
	}
}

// PageResult is one page of T plus the totals needed to page further.
type PageResult[T any] struct {
	Data       []T `json:"data"`
	Total      int `json:"total"`
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	TotalPages int `json:"totalPages"`
}

// NewPageResult never returns a nil Data slice and reports at least one page.
func NewPageResult[T any](data []T, total, page, pageSize int) PageResult[T] {
	if data == nil {
		data = []T{}
	}

	pages := 1
	if pageSize > 0 && total > 0 {
		pages = (total + pageSize - 1) / pageSize
	}

	return PageResult[T]{
		Data:       data,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: pages,
	}
}
