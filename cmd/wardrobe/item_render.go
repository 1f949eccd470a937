package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/pflag"

	"wardrobe/internal/backend"
	"wardrobe/internal/textutil"
	"wardrobe/internal/wardrobe"
)

const emptyCell = "-"

func orDash(value string) string {
	if strings.TrimSpace(value) == "" {
		return emptyCell
	}
	return value
}

func tagsCell(tags []string) string {
	return orDash(textutil.JoinTags(tags))
}

func itemRows(items []wardrobe.Item) [][]string {
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		rows = append(rows, []string{
			strconv.FormatInt(item.ID, 10),
			item.Category.Label(),
			orDash(item.Name),
			orDash(item.Color),
			tagsCell(item.Seasons),
			tagsCell(item.Styles),
		})
	}
	return rows
}

func renderItems(items []wardrobe.Item) string {
	return renderTable(
		[]string{"ID", "Category", "Item", "Color", "Seasons", "Styles"},
		itemRows(items),
		[]columnAlignment{alignRight},
	)
}

// printItem writes the detail card for one item.
func printItem(out io.Writer, client *backend.Client, item wardrobe.Item) {
	fmt.Fprintf(out, "#%d %s (%s)\n", item.ID, orDash(item.Name), item.Category.Label())
	fmt.Fprintf(out, "  Color:       %s\n", orDash(item.Color))
	fmt.Fprintf(out, "  Styles:      %s\n", tagsCell(item.Styles))
	fmt.Fprintf(out, "  Seasons:     %s\n", tagsCell(item.Seasons))
	fmt.Fprintf(out, "  Usages:      %s\n", tagsCell(item.Usages))
	fmt.Fprintf(out, "  Description: %s\n", orDash(item.Description))
	image := item.ImageURL
	if client != nil {
		image = client.ResolveImageURL(image)
	}
	fmt.Fprintf(out, "  Image:       %s\n", orDash(image))
	if item.CreatedAt != "" {
		fmt.Fprintf(out, "  Created:     %s\n", item.CreatedAt)
	}
}

// editFlags are the field overrides shared by upload --save and edit.
type editFlags struct {
	category    string
	name        string
	description string
	color       string
	styles      string
	seasons     string
	usages      string
}

func (e *editFlags) register(flags *pflag.FlagSet) {
	flags.StringVar(&e.category, "category", "", "Category: top, bottom or shoes")
	flags.StringVar(&e.name, "name", "", "Item name")
	flags.StringVar(&e.description, "description", "", "Free-text description")
	flags.StringVar(&e.color, "color", "", "Color")
	flags.StringVar(&e.styles, "styles", "", "Comma separated style tags")
	flags.StringVar(&e.seasons, "seasons", "", "Comma separated season tags")
	flags.StringVar(&e.usages, "usages", "", "Comma separated usage tags")
}

// apply copies the flags the user set onto form and reports whether any were.
func (e *editFlags) apply(flags *pflag.FlagSet, form *wardrobe.EditForm) bool {
	changed := false
	set := func(name string, dst *string, value string) {
		if flags.Changed(name) {
			*dst = value
			changed = true
		}
	}
	set("category", &form.Category, e.category)
	set("name", &form.Name, e.name)
	set("description", &form.Description, e.description)
	set("color", &form.Color, e.color)
	set("styles", &form.Styles, e.styles)
	set("seasons", &form.Seasons, e.seasons)
	set("usages", &form.Usages, e.usages)
	return changed
}

func printResult(out io.Writer, result wardrobe.Result, colorize bool) {
	fmt.Fprintf(out, "%s (item %d)\n", result.Message, result.ID)
	if result.Stale {
		fmt.Fprintln(out, renderStatusLine("Wardrobe", statusWarn, "refresh failed; run 'wardrobe list' to retry", colorize))
		return
	}
	w := result.Wardrobe
	fmt.Fprintf(out, "Wardrobe: %d tops, %d bottoms, %d shoes\n", len(w.Tops), len(w.Bottoms), len(w.Shoes))
}
