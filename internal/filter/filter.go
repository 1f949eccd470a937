// Package filter evaluates wardrobe items against a composite text and facet
// query. Matching is a pure pass/fail predicate; results keep source order.
package filter

import (
	"slices"

	"wardrobe/internal/textutil"
	"wardrobe/internal/wardrobe"
)

// Seasons is the season facet vocabulary offered by the chip bar.
var Seasons = []string{"春", "夏", "秋", "冬"}

// Styles is the style facet vocabulary offered by the chip bar.
var Styles = []string{"休闲", "正式", "运动", "商务", "复古", "简约", "日常", "通勤"}

// Query combines a free-text search with season and style facets. Values
// within one facet are ORed; the text and both facets are ANDed.
type Query struct {
	Search  string
	Seasons []string
	Styles  []string
}

// IsEmpty reports whether q matches every item.
func (q Query) IsEmpty() bool {
	return q.Search == "" && len(q.Seasons) == 0 && len(q.Styles) == 0
}

// ToggleSeason adds season to the facet or removes it when already present.
func (q Query) ToggleSeason(season string) Query {
	q.Seasons = toggle(q.Seasons, season)
	return q
}

// ToggleStyle adds style to the facet or removes it when already present.
func (q Query) ToggleStyle(style string) Query {
	q.Styles = toggle(q.Styles, style)
	return q
}

func toggle(values []string, value string) []string {
	if idx := slices.Index(values, value); idx >= 0 {
		out := slices.Clone(values)
		return slices.Delete(out, idx, idx+1)
	}
	return append(slices.Clone(values), value)
}

// Matches reports whether item passes q.
func Matches(item wardrobe.Item, q Query) bool {
	if q.Search != "" {
		if !textutil.ContainsFold(item.Name, q.Search) && !textutil.ContainsFold(item.Description, q.Search) {
			return false
		}
	}
	if len(q.Seasons) > 0 && !anyOf(item.Seasons, q.Seasons) {
		return false
	}
	if len(q.Styles) > 0 && !anyOf(item.Styles, q.Styles) {
		return false
	}
	return true
}

func anyOf(tags, wanted []string) bool {
	for _, tag := range tags {
		if slices.Contains(wanted, tag) {
			return true
		}
	}
	return false
}

// Apply returns the items passing q in their original order.
func Apply(items []wardrobe.Item, q Query) []wardrobe.Item {
	out := make([]wardrobe.Item, 0, len(items))
	for _, item := range items {
		if Matches(item, q) {
			out = append(out, item)
		}
	}
	return out
}

// ApplyWardrobe filters each category independently.
func ApplyWardrobe(w wardrobe.Wardrobe, q Query) wardrobe.Wardrobe {
	return wardrobe.Wardrobe{
		Tops:    Apply(w.Tops, q),
		Bottoms: Apply(w.Bottoms, q),
		Shoes:   Apply(w.Shoes, q),
	}
}
