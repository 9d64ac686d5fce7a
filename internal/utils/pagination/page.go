package pagination

// DefaultPageSize is the number of rows the transaction table shows per page.
const DefaultPageSize = 8

// Window describes the clamped page that Paginate returned.
type Window struct {
	Page       int
	PageSize   int
	TotalItems int
	TotalPages int
}

// Paginate returns the items of the requested 1-based page.
// A page below 1 becomes 1 and a page past the end becomes the last page.
// An empty input yields page 1 of 1 with no items.
func Paginate[T any](items []T, page, size int) ([]T, Window) {
	if size < 1 {
		size = DefaultPageSize
	}

	total := len(items)
	pages := (total + size - 1) / size
	if pages < 1 {
		pages = 1
	}

	if page < 1 {
		page = 1
	}
	if page > pages {
		page = pages
	}

	start := (page - 1) * size
	end := start + size
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	return items[start:end], Window{
		Page:       page,
		PageSize:   size,
		TotalItems: total,
		TotalPages: pages,
	}
}
