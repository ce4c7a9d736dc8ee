package pagination

const (
	DefaultSize = 20
	MaxSize     = 100
)

// Pagination is a 1-based page request.
type Pagination struct {
	Page int `form:"page,default=1" binding:"gte=1"`
	Size int `form:"size,default=20" binding:"gte=1,lte=100"`
}

// Normalize clamps the request into the accepted range.
func (p Pagination) Normalize() Pagination {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Size < 1 {
		p.Size = DefaultSize
	}
	if p.Size > MaxSize {
		p.Size = MaxSize
	}
	return p
}

func (p Pagination) Offset() int {
	p = p.Normalize()
	return (p.Page - 1) * p.Size
}

func (p Pagination) Limit() int {
	return p.Normalize().Size
}

// Page is one page of results plus the totals needed to render a pager.
type Page[T any] struct {
	Items []T   `json:"items"`
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Size  int   `json:"size"`
	Pages int64 `json:"pages"`
}

func NewPage[T any](items []T, total int64, p Pagination) Page[T] {
	p = p.Normalize()
	if items == nil {
		items = []T{}
	}
	return Page[T]{
		Items: items,
		Total: total,
		Page:  p.Page,
		Size:  p.Size,
		Pages: TotalPages(total, p.Size),
	}
}

// TotalPages rounds up; zero rows yield zero pages.
func TotalPages(total int64, size int) int64 {
	if size <= 0 || total <= 0 {
		return 0
	}
	return (total + int64(size) - 1) / int64(size)
}
