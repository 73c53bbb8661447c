package querycache

// AdjacentPages returns the pages worth prefetching after page was served:
// the next one when there is one, the previous one when page is past the first.
func AdjacentPages(page, pageCount int) []int {
	var pages []int
	if page < pageCount {
		pages = append(pages, page+1)
	}
	if page > 1 {
		pages = append(pages, page-1)
	}
	return pages
}
