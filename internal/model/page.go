package model

// PageSize is the number of rows the list surfaces show at once.
const PageSize = 3

// TotalPages is ceil(count/size), with a floor of 1 so an empty list still
// has a first page.
func TotalPages(count, size int) int {
	if size <= 0 {
		size = PageSize
	}
	if count <= 0 {
		return 1
	}
	return (count + size - 1) / size
}

// ClampPage keeps page inside [1, total].
func ClampPage(page, total int) int {
	if page > total {
		page = total
	}
	if page < 1 {
		page = 1
	}
	return page
}

// Paginate returns the 1-based page of issues. Lists that fit on one page are
// returned whole regardless of page.
func Paginate(issues []Issue, page, size int) []Issue {
	if size <= 0 {
		size = PageSize
	}
	if len(issues) <= size {
		return issues
	}
	page = ClampPage(page, TotalPages(len(issues), size))
	start := (page - 1) * size
	end := start + size
	if end > len(issues) {
		end = len(issues)
	}
	return issues[start:end]
}
