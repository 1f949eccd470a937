package wardrobe

import (
	"fmt"
	"strings"

	"wardrobe/internal/services"
)

// Category is one of the three wardrobe partitions.
type Category string

const (
	CategoryTop    Category = "top"
	CategoryBottom Category = "bottom"
	CategoryShoes  Category = "shoes"
)

// Categories lists every category in display order.
var Categories = []Category{CategoryTop, CategoryBottom, CategoryShoes}

// ParseCategory accepts the canonical names plus the plural collection names.
func ParseCategory(value string) (Category, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "top", "tops":
		return CategoryTop, nil
	case "bottom", "bottoms":
		return CategoryBottom, nil
	case "shoes", "shoe":
		return CategoryShoes, nil
	default:
		return "", services.Wrap(services.ErrValidation, "wardrobe", "parse category", fmt.Sprintf("unknown category %q (want top, bottom or shoes)", value), nil)
	}
}

// Label returns the display label used in tables.
func (c Category) Label() string {
	switch c {
	case CategoryTop:
		return "上装"
	case CategoryBottom:
		return "下装"
	case CategoryShoes:
		return "鞋子"
	default:
		return string(c)
	}
}

// Item is one classified clothing item. JSON names follow the backend.
type Item struct {
	ID          int64    `json:"id"`
	Category    Category `json:"category"`
	Name        string   `json:"item"`
	Styles      []string `json:"style_semantics"`
	Seasons     []string `json:"season_semantics"`
	Usages      []string `json:"usage_semantics"`
	Color       string   `json:"color_semantics"`
	Description string   `json:"description"`
	ImageURL    string   `json:"image_url"`
	// CreatedAt is kept verbatim; the backend emits naive local timestamps.
	CreatedAt string `json:"created_at,omitempty"`
}

// Wardrobe holds the three category collections.
type Wardrobe struct {
	Tops    []Item `json:"tops"`
	Bottoms []Item `json:"bottoms"`
	Shoes   []Item `json:"shoes"`
}

// Items returns the collection for category.
func (w Wardrobe) Items(category Category) []Item {
	switch category {
	case CategoryTop:
		return w.Tops
	case CategoryBottom:
		return w.Bottoms
	case CategoryShoes:
		return w.Shoes
	default:
		return nil
	}
}

// Len counts all items.
func (w Wardrobe) Len() int {
	return len(w.Tops) + len(w.Bottoms) + len(w.Shoes)
}

// Find looks an item up by id across all categories.
func (w Wardrobe) Find(id int64) (Item, bool) {
	for _, category := range Categories {
		for _, item := range w.Items(category) {
			if item.ID == id {
				return item, true
			}
		}
	}
	return Item{}, false
}

// Validate checks that every item sits in the collection matching its
// category and that no id appears twice.
func (w Wardrobe) Validate() error {
	seen := make(map[int64]Category, w.Len())
	for _, category := range Categories {
		for _, item := range w.Items(category) {
			if item.Category != category {
				return services.Wrap(services.ErrRemoteRejection, "wardrobe", "validate", fmt.Sprintf("item %d has category %q but is listed under %q", item.ID, item.Category, category), nil)
			}
			if prev, ok := seen[item.ID]; ok {
				return services.Wrap(services.ErrRemoteRejection, "wardrobe", "validate", fmt.Sprintf("item %d listed under both %q and %q", item.ID, prev, category), nil)
			}
			seen[item.ID] = category
		}
	}
	return nil
}

// Partition builds a wardrobe from a flat list, preserving order within each
// category. Items with an unknown category are returned separately.
func Partition(items []Item) (Wardrobe, []Item) {
	var w Wardrobe
	var rejected []Item
	for _, item := range items {
		switch item.Category {
		case CategoryTop:
			w.Tops = append(w.Tops, item)
		case CategoryBottom:
			w.Bottoms = append(w.Bottoms, item)
		case CategoryShoes:
			w.Shoes = append(w.Shoes, item)
		default:
			rejected = append(rejected, item)
		}
	}
	return w, rejected
}
