package pagination

import "math"

const (
	// DefaultPage is used when a page is not provided.
	DefaultPage = 1
	// DefaultLimit is the standard page size when a limit is not provided.
	DefaultLimit = 20
	// MaxLimit caps how many rows any page query can request.
	MaxLimit = 100
)

// Params holds offset pagination inputs from controllers or services.
type Params struct {
	Page  int
	Limit int
}

// Page describes the position of a result page within the full set.
type Page struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
	HasNext    bool  `json:"hasNext"`
	HasPrev    bool  `json:"hasPrev"`
}

// Normalize applies defaults and the maximum limit.
func (p Params) Normalize() Params {
	if p.Page <= 0 {
		p.Page = DefaultPage
	}
	p.Limit = NormalizeLimit(p.Limit)
	return p
}

// NormalizeLimit enforces the configured default and maximum limits.
func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// Offset returns the number of rows to skip for the page.
func (p Params) Offset() int {
	n := p.Normalize()
	return (n.Page - 1) * n.Limit
}

// Build computes page metadata for the provided total.
func Build(p Params, total int64) Page {
	n := p.Normalize()
	totalPages := int(math.Ceil(float64(total) / float64(n.Limit)))
	return Page{
		Page:       n.Page,
		Limit:      n.Limit,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    n.Page < totalPages,
		HasPrev:    n.Page > 1,
	}
}
