package listing

// Page is one page of a listing plus everything needed to render
// pagination controls without another round trip.
type Page[T any] struct {
	Items      []T       `json:"items"`
	Total      int64     `json:"total"`
	Page       int       `json:"page"`
	PageSize   int       `json:"per_page"`
	TotalPages int       `json:"total_pages"`
	HasNext    bool      `json:"has_next"`
	HasPrev    bool      `json:"has_prev"`
	Search     string    `json:"q"`
	Sort       string    `json:"sort"`
	Dir        Direction `json:"dir"`
	View       string    `json:"view"`
}

// Window is the resolved slice of a result set for one page.
type Window struct {
	Page       int
	TotalPages int
	Offset     int
	Limit      int
}

// Paginate clamps page into [1, TotalPages] for total rows at size rows per
// page. An empty result still has one (empty) page.
func Paginate(total int64, page, size int) Window {
	if size <= 0 {
		size = DefaultPageSize
	}
	pages := int((total + int64(size) - 1) / int64(size))
	if pages < 1 {
		pages = 1
	}
	switch {
	case page < 1:
		page = 1
	case page > pages:
		page = pages
	}
	return Window{
		Page:       page,
		TotalPages: pages,
		Offset:     (page - 1) * size,
		Limit:      size,
	}
}

// NewPage assembles a Page from the rows of a resolved window.
func NewPage[T any](items []T, total int64, w Window, q Query) *Page[T] {
	if items == nil {
		items = []T{}
	}
	return &Page[T]{
		Items:      items,
		Total:      total,
		Page:       w.Page,
		PageSize:   w.Limit,
		TotalPages: w.TotalPages,
		HasNext:    w.Page < w.TotalPages,
		HasPrev:    w.Page > 1,
		Search:     q.Search,
		Sort:       q.Sort,
		Dir:        q.Dir,
		View:       q.View,
	}
}
