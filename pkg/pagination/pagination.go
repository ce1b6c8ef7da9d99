package pagination

import "math"

const (
	// DefaultPage is used when the client omits page.
	DefaultPage = 1
	// DefaultLimit is used when the client omits limit.
	DefaultLimit = 100
	// MaxLimit caps limit to prevent unbounded queries.
	MaxLimit = 100
	// MaxPage keeps (page-1)*limit within int32 for any allowed limit.
	MaxPage = math.MaxInt32 / MaxLimit
)

// Params are the page/limit values extracted from a request.
type Params struct {
	Page  int
	Limit int
}

// Normalize fills defaults and clamps page to MaxPage and limit to MaxLimit.
func (p Params) Normalize() Params {
	if p.Page < 1 {
		p.Page = DefaultPage
	}
	if p.Page > MaxPage {
		p.Page = MaxPage
	}
	if p.Limit < 1 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	return p
}

// Offset is the number of rows to skip for the normalized page.
func (p Params) Offset() int {
	n := p.Normalize()
	return (n.Page - 1) * n.Limit
}

// Metadata describes a page of results.
type Metadata struct {
	CurrentPage int   `json:"current_page"`
	PageSize    int   `json:"page_size"`
	TotalPages  int   `json:"total_pages"`
	TotalItems  int64 `json:"total_items"`
}

func NewMetadata(p Params, totalItems int64) Metadata {
	n := p.Normalize()
	return Metadata{
		CurrentPage: n.Page,
		PageSize:    n.Limit,
		TotalPages:  int(math.Ceil(float64(totalItems) / float64(n.Limit))),
		TotalItems:  totalItems,
	}
}
