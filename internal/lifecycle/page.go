package lifecycle

// maxPageSize bounds a requested limit. Paged reports the limit used.
const maxPageSize = 100

const (
	defaultListLimit  = 10
	defaultTrashLimit = 20
)

// Page selects a 1-indexed window of a list.
type Page struct {
	Page  int
	Limit int
}

func (p Page) normalize(defaultLimit int) Page {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = defaultLimit
	}
	if p.Limit > maxPageSize {
		p.Limit = maxPageSize
	}
	return p
}

func (p Page) offset() int {
	return (p.Page - 1) * p.Limit
}

// Paged is one page of a list together with the totals needed to page
// through the rest. Limit is the page size TotalPages was computed with,
// which is the requested one unless it exceeded maxPageSize. A page past
// the end has no items.
type Paged[T any] struct {
	Items      []T
	Page       int
	Limit      int
	TotalPages int
	Total      int64
}

func newPaged[T any](items []T, p Page, total int64) Paged[T] {
	if items == nil {
		items = []T{}
	}
	return Paged[T]{
		Items:      items,
		Page:       p.Page,
		Limit:      p.Limit,
		TotalPages: int((total + int64(p.Limit) - 1) / int64(p.Limit)),
		Total:      total,
	}
}
