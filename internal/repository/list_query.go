package repository

// ListQuery holds common query parameters for list operations
type ListQuery struct {
	Page    int
	PerPage int
	Filters map[string]string
}

// NewListQuery creates a ListQuery with defaults
func NewListQuery() *ListQuery {
	return &ListQuery{
		Page:    1,
		PerPage: 20,
		Filters: make(map[string]string),
	}
}

// Normalize clamps paging values to sane bounds
func (q *ListQuery) Normalize() {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PerPage < 1 {
		q.PerPage = 20
	}
	if q.PerPage > 200 {
		q.PerPage = 200
	}
	if q.Filters == nil {
		q.Filters = make(map[string]string)
	}
}

// Offset returns the number of rows to skip for the current page
func (q *ListQuery) Offset() int {
	return (q.Page - 1) * q.PerPage
}
