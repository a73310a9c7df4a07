package query

const (
	// DefaultPage is used when the caller does not specify a page.
	DefaultPage = 1
	// DefaultPageSize is the fixed page size served to clients.
	DefaultPageSize = 20
	// MaxPageSize caps client-supplied page sizes.
	MaxPageSize = 100
)

// Params carries client pagination input. Zero values are valid and are
// replaced by defaults in Normalize.
type Params struct {
	Page     int
	PageSize int
}

// Normalize clamps Params to the supported range: a page below 1 becomes 1,
// a page size outside [1, MaxPageSize] becomes DefaultPageSize. Pages beyond
// the last page are NOT clamped here; callers echo them back with an empty
// result so clients can detect out-of-range requests.
func (p Params) Normalize() Params {
	if p.Page < 1 {
		p.Page = DefaultPage
	}
	if p.PageSize < 1 || p.PageSize > MaxPageSize {
		p.PageSize = DefaultPageSize
	}
	return p
}

// Offset returns the row offset for the normalized params.
func (p Params) Offset() int {
	n := p.Normalize()
	return (n.Page - 1) * n.PageSize
}

// Page is one bounded slice of a filtered, ordered collection plus
// pagination metadata. TotalItems always reflects the filtered set, not the
// unfiltered store.
type Page[T any] struct {
	Items      []T   `json:"items"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalItems int64 `json:"total_items"`
	TotalPages int   `json:"total_pages"`
}

// NewPage assembles a Page from a fetched slice and the filtered total.
// TotalPages is ceil(total/pageSize) with a floor of 1 so that an empty
// collection still reports one (empty) page. The requested page number is
// echoed as-is, even when it lies beyond TotalPages.
func NewPage[T any](items []T, total int64, p Params) *Page[T] {
	n := p.Normalize()
	if items == nil {
		items = []T{}
	}
	return &Page[T]{
		Items:      items,
		Page:       n.Page,
		PageSize:   n.PageSize,
		TotalItems: total,
		TotalPages: totalPages(total, n.PageSize),
	}
}

func totalPages(total int64, pageSize int) int {
	if total <= 0 {
		return 1
	}
	pages := int(total) / pageSize
	if int(total)%pageSize != 0 {
		pages++
	}
	return pages
}
