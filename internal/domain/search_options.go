package domain

import "time"

// TaskFilter is the closed set of predicates List understands.
type TaskFilter struct {
	Status      *string
	DueDateFrom *time.Time
	DueDateTo   *time.Time
}

// PageRequest selects one page of a listing. Page is 1-based.
type PageRequest struct {
	Page int
	Size int
}

// Offset returns the number of rows to skip.
func (p PageRequest) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.Size
}

// TaskPage is one page of an ownership-scoped listing. Count is the total
// number of matching tasks regardless of page size.
type TaskPage struct {
	Count   int64
	Page    int
	Size    int
	Results []*Task
}

// HasNext reports whether another page follows this one.
func (p TaskPage) HasNext() bool {
	return int64(p.Page*p.Size) < p.Count
}

// HasPrevious reports whether a page precedes this one.
func (p TaskPage) HasPrevious() bool {
	return p.Page > 1
}
