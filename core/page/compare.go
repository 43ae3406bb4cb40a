package page

import (
	"slices"
)

// SortByLastModified orders pages newest first.
func SortByLastModified(pages []*Page) {
	slices.SortStableFunc(pages, func(a, b *Page) int {
		return b.LastModifiedTime().Compare(a.LastModifiedTime())
	})
}
