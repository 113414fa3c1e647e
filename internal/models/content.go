package models

// Category names double as the first path segment of their pages.
const (
	CategoryJournals = "journals"
	CategoryStories  = "stories"
)

// Categories lists the dynamic content types in assembly order.
var Categories = []string{CategoryJournals, CategoryStories}

// ContentItem is the subset of a backend journal or story the sitemap needs.
type ContentItem struct {
	Slug   string `json:"slug"`
	Author string `json:"author"`
}
