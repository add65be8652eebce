package models

import "github.com/dmitrijs2005/catalogctl/internal/common"

// FilterState narrows the loaded collection without refetching.
// Search applies to the product name only.
type FilterState struct {
	Category string
	Search   string
}

// DefaultFilter selects every category with no search term.
func DefaultFilter() FilterState {
	return FilterState{Category: common.AllCategories}
}
