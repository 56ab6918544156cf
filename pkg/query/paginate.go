package query

// DefaultPerPage is the rows-per-page used when a window does not set one.
const DefaultPerPage = 10

// Window is a zero-based page and its size.
type Window struct {
	Page    int
	PerPage int
}

// Normalize clamps a negative page to 0 and a non-positive size to
// DefaultPerPage.
func (w Window) Normalize() Window {
	if w.Page < 0 {
		w.Page = 0
	}
	if w.PerPage <= 0 {
		w.PerPage = DefaultPerPage
	}
	return w
}

// Reset returns the window moved back to the first page. Clients call it
// whenever the filters or the page size change.
func (w Window) Reset() Window {
	w.Page = 0
	return w
}

// Page is one window of a filtered sequence.
type Page[T any] struct {
	Data    []T `json:"data"`
	Total   int `json:"total"`
	Page    int `json:"page"`
	PerPage int `json:"per_page"`
}

// Paginate returns rows[page*perPage : page*perPage+perPage], clipped to the
// slice. Total is len(rows). A page past the end yields empty Data.
func Paginate[T any](rows []T, w Window) Page[T] {
	w = w.Normalize()
	// Page*PerPage may overflow, so the page is checked by division first.
	start := len(rows)
	if len(rows) > 0 && w.Page <= (len(rows)-1)/w.PerPage {
		start = w.Page * w.PerPage
	}
	end := start + min(w.PerPage, len(rows)-start)
	data := make([]T, end-start)
	copy(data, rows[start:end])
	return Page[T]{
		Data:    data,
		Total:   len(rows),
		Page:    w.Page,
		PerPage: w.PerPage,
	}
}

// PageCount is the number of pages needed to show total rows.
func PageCount(total, perPage int) int {
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	if total <= 0 {
		return 0
	}
	return (total-1)/perPage + 1
}
