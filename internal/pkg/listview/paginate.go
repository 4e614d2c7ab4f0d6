package listview

// PageSize is the fixed page size used by every console table.
const PageSize = 10

// Page returns the 1-indexed page slice. Out-of-range pages yield an empty
// slice rather than an error.
func Page[T any](items []T, page int) []T {
	if page < 1 {
		page = 1
	}
	start := (page - 1) * PageSize
	if start >= len(items) {
		return []T{}
	}
	end := start + PageSize
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

// TotalPages returns ceil(n / PageSize).
func TotalPages(n int) int {
	return (n + PageSize - 1) / PageSize
}
