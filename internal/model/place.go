package model

import "strings"

// CategorySeparator joins category path entries in provider responses.
const CategorySeparator = " > "

// Place is a place-search result reduced to what classification needs.
type Place struct {
	ID           string   `json:"id,omitempty"`
	Name         string   `json:"place_name"`
	CategoryPath []string `json:"-"`
	Category     string   `json:"category_name"`
	Address      string   `json:"address_name,omitempty"`
	X            string   `json:"x,omitempty"`
	Y            string   `json:"y,omitempty"`
	URL          string   `json:"place_url,omitempty"`
}

// Path returns the category breadcrumb, splitting Category when CategoryPath is unset.
func (p Place) Path() []string {
	if len(p.CategoryPath) > 0 {
		return p.CategoryPath
	}
	return SplitCategoryPath(p.Category)
}

// SplitCategoryPath splits "A > B > C" into its entries. An empty string yields nil.
func SplitCategoryPath(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return strings.Split(s, CategorySeparator)
}
