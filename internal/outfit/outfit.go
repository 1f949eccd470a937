// Package outfit composes outfits from the filtered wardrobe: one cyclic
// cursor per category plus independent random reselection.
//
// Cursors index into a derived view (the season-filtered list) and are never
// corrected when that view changes. Every read clamps instead: an index past
// the end of the current list reads as 0.
package outfit

import (
	"math/rand/v2"
	"strings"
	"sync"

	"wardrobe/internal/wardrobe"
)

// AllSeasons disables the season chip.
const AllSeasons = "all"

// SeasonMatches reports whether item passes the outfit season chip. The chip
// matches when any season tag contains it, so "夏" also matches "春夏".
func SeasonMatches(item wardrobe.Item, season string) bool {
	season = strings.TrimSpace(season)
	if season == "" || season == AllSeasons {
		return true
	}
	for _, tag := range item.Seasons {
		if strings.Contains(tag, season) {
			return true
		}
	}
	return false
}

// Outfit is one item per category; a nil entry means the list is empty.
type Outfit struct {
	Top    *wardrobe.Item
	Bottom *wardrobe.Item
	Shoes  *wardrobe.Item
}

// Get returns the outfit entry for category.
func (o Outfit) Get(category wardrobe.Category) *wardrobe.Item {
	switch category {
	case wardrobe.CategoryTop:
		return o.Top
	case wardrobe.CategoryBottom:
		return o.Bottom
	case wardrobe.CategoryShoes:
		return o.Shoes
	default:
		return nil
	}
}

// Option customizes a Composer.
type Option func(*Composer)

// WithIntN replaces the random source used by Shuffle. intN must return a
// value in [0, n) for n > 0.
func WithIntN(intN func(n int) int) Option {
	return func(c *Composer) {
		if intN != nil {
			c.intN = intN
		}
	}
}

// Composer holds the outfit screen state.
type Composer struct {
	mu      sync.Mutex
	source  wardrobe.Wardrobe
	season  string
	cursors map[wardrobe.Category]int
	intN    func(n int) int
}

// NewComposer builds a composer over w with the season chip set to all.
func NewComposer(w wardrobe.Wardrobe, opts ...Option) *Composer {
	c := &Composer{
		source:  w,
		season:  AllSeasons,
		cursors: make(map[wardrobe.Category]int, len(wardrobe.Categories)),
		intN:    rand.IntN,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetWardrobe swaps in a refreshed wardrobe. Cursors are left untouched.
func (c *Composer) SetWardrobe(w wardrobe.Wardrobe) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.source = w
}

// SetSeason changes the season chip. Cursors are left untouched.
func (c *Composer) SetSeason(season string) {
	season = strings.TrimSpace(season)
	if season == "" {
		season = AllSeasons
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.season = season
}

// Season returns the active season chip.
func (c *Composer) Season() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.season
}

// Filtered returns the season-filtered list for category.
func (c *Composer) Filtered(category wardrobe.Category) []wardrobe.Item {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filtered(category)
}

func (c *Composer) filtered(category wardrobe.Category) []wardrobe.Item {
	source := c.source.Items(category)
	out := make([]wardrobe.Item, 0, len(source))
	for _, item := range source {
		if SeasonMatches(item, c.season) {
			out = append(out, item)
		}
	}
	return out
}

// clamped is the effective cursor for a list of length n.
func (c *Composer) clamped(category wardrobe.Category, n int) int {
	idx := c.cursors[category]
	if idx < 0 || idx >= n {
		return 0
	}
	return idx
}

// Index returns the effective cursor for category after clamping.
func (c *Composer) Index(category wardrobe.Category) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.clamped(category, len(c.filtered(category)))
}

// Current returns the item under the cursor, or false when the list is empty.
func (c *Composer) Current(category wardrobe.Category) (wardrobe.Item, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	items := c.filtered(category)
	if len(items) == 0 {
		return wardrobe.Item{}, false
	}
	return items[c.clamped(category, len(items))], true
}

// Next advances the cursor, wrapping from the last index to 0.
func (c *Composer) Next(category wardrobe.Category) {
	c.step(category, 1)
}

// Prev moves the cursor back, wrapping from 0 to the last index.
func (c *Composer) Prev(category wardrobe.Category) {
	c.step(category, -1)
}

func (c *Composer) step(category wardrobe.Category, delta int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := len(c.filtered(category))
	if n == 0 {
		return
	}
	idx := c.clamped(category, n)
	c.cursors[category] = (idx + delta + n) % n
}

// Shuffle draws a uniformly random index for every category independently
// and returns the resulting outfit.
func (c *Composer) Shuffle() Outfit {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, category := range wardrobe.Categories {
		n := len(c.filtered(category))
		if n == 0 {
			c.cursors[category] = 0
			continue
		}
		c.cursors[category] = c.intN(n)
	}
	return c.outfit()
}

// Outfit returns the items currently under the three cursors.
func (c *Composer) Outfit() Outfit {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.outfit()
}

func (c *Composer) outfit() Outfit {
	var o Outfit
	for _, category := range wardrobe.Categories {
		items := c.filtered(category)
		if len(items) == 0 {
			continue
		}
		item := items[c.clamped(category, len(items))]
		switch category {
		case wardrobe.CategoryTop:
			o.Top = &item
		case wardrobe.CategoryBottom:
			o.Bottom = &item
		case wardrobe.CategoryShoes:
			o.Shoes = &item
		}
	}
	return o
}
