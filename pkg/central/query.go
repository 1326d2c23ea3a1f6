package central

import (
	"net/url"
	"strconv"
	"strings"
)

// QueryParams represents query parameters for list requests.
//
// Typed fields cover the pagination and projection options shared by every
// list endpoint; Filters carries endpoint-specific filter keys (for example
// healthStatus or severity) and encodes list values comma-separated, the way
// the API expects them.
type QueryParams struct {
	PageSize     int
	PageFromKey  string
	PageTotal    bool
	Page         int
	Sort         []string
	Search       string
	SearchFields []string
	View         string
	Fields       []string
	IDs          []string
	Filters      map[string][]string
}

// NewQueryParams creates a new QueryParams instance.
func NewQueryParams() *QueryParams {
	return &QueryParams{
		Filters: make(map[string][]string),
	}
}

// WithPageSize sets the page size.
func (q *QueryParams) WithPageSize(size int) *QueryParams {
	q.PageSize = size

	return q
}

// WithPageFromKey sets the cursor key to page from.
func (q *QueryParams) WithPageFromKey(key string) *QueryParams {
	q.PageFromKey = key

	return q
}

// WithPageTotal requests total counts in the pages block.
func (q *QueryParams) WithPageTotal() *QueryParams {
	q.PageTotal = true

	return q
}

// WithPage sets the page number for page-by-number listings.
func (q *QueryParams) WithPage(page int) *QueryParams {
	q.Page = page

	return q
}

// WithSort adds sort expressions (for example "hostname" or "severity:desc").
func (q *QueryParams) WithSort(fields ...string) *QueryParams {
	q.Sort = append(q.Sort, fields...)

	return q
}

// WithSearch sets the free-text search term.
func (q *QueryParams) WithSearch(term string) *QueryParams {
	q.Search = term

	return q
}

// WithSearchFields restricts which fields the search term applies to.
func (q *QueryParams) WithSearchFields(fields ...string) *QueryParams {
	q.SearchFields = append(q.SearchFields, fields...)

	return q
}

// WithView selects the response projection (basic, summary, or full).
func (q *QueryParams) WithView(view string) *QueryParams {
	q.View = view

	return q
}

// WithFields restricts the response to the named fields.
func (q *QueryParams) WithFields(fields ...string) *QueryParams {
	q.Fields = append(q.Fields, fields...)

	return q
}

// WithIDs restricts the listing to the given resource IDs.
func (q *QueryParams) WithIDs(ids ...string) *QueryParams {
	q.IDs = append(q.IDs, ids...)

	return q
}

// WithFilter adds an endpoint-specific filter value.
func (q *QueryParams) WithFilter(key string, values ...string) *QueryParams {
	if q.Filters == nil {
		q.Filters = make(map[string][]string)
	}

	q.Filters[key] = append(q.Filters[key], values...)

	return q
}

// Clone returns a deep copy, so iterators can adjust cursors without
// mutating the caller's params.
func (q *QueryParams) Clone() *QueryParams {
	if q == nil {
		return NewQueryParams()
	}

	clone := *q
	clone.Sort = append([]string(nil), q.Sort...)
	clone.SearchFields = append([]string(nil), q.SearchFields...)
	clone.Fields = append([]string(nil), q.Fields...)
	clone.IDs = append([]string(nil), q.IDs...)
	clone.Filters = make(map[string][]string, len(q.Filters))

	for key, values := range q.Filters {
		clone.Filters[key] = append([]string(nil), values...)
	}

	return &clone
}

// ToValues converts the parameters to url.Values.
func (q *QueryParams) ToValues() url.Values {
	values := url.Values{}

	if q.PageSize > 0 {
		values.Set("pageSize", strconv.Itoa(q.PageSize))
	}

	if q.PageFromKey != "" {
		values.Set("pageFromKey", q.PageFromKey)
	}

	if q.PageTotal {
		values.Set("pageTotal", "true")
	}

	if q.Page > 0 {
		values.Set("page", strconv.Itoa(q.Page))
	}

	if len(q.Sort) > 0 {
		values.Set("sort", strings.Join(q.Sort, ","))
	}

	if q.Search != "" {
		values.Set("search", q.Search)
	}

	if len(q.SearchFields) > 0 {
		values.Set("searchFields", strings.Join(q.SearchFields, ","))
	}

	if q.View != "" {
		values.Set("view", q.View)
	}

	if len(q.Fields) > 0 {
		values.Set("fields", strings.Join(q.Fields, ","))
	}

	if len(q.IDs) > 0 {
		values.Set("ids", strings.Join(q.IDs, ","))
	}

	for key, vals := range q.Filters {
		if len(vals) > 0 {
			values.Set(key, strings.Join(vals, ","))
		}
	}

	return values
}
