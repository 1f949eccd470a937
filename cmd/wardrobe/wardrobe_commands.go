package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"wardrobe/internal/backend"
	"wardrobe/internal/filter"
	"wardrobe/internal/wardrobe"
)

func newListCommand(ctx *commandContext) *cobra.Command {
	var query filter.Query
	var category string
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the wardrobe, optionally filtered",
		Long: fmt.Sprintf("List the wardrobe. --season and --style may be repeated; values within one facet match any.\n"+
			"Seasons: %v\nStyles: %v", filter.Seasons, filter.Styles),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, _, err := ctx.store()
			if err != nil {
				return err
			}
			w, err := store.Refresh(cmd.Context())
			if err != nil {
				return fmt.Errorf("load wardrobe: %s", userMessage(err))
			}
			w = filter.ApplyWardrobe(w, query)

			categories := wardrobe.Categories
			if category != "" {
				parsed, err := wardrobe.ParseCategory(category)
				if err != nil {
					return errors.New(userMessage(err))
				}
				categories = []wardrobe.Category{parsed}
			}

			var items []wardrobe.Item
			for _, c := range categories {
				items = append(items, w.Items(c)...)
			}
			if jsonOut {
				if items == nil {
					items = []wardrobe.Item{}
				}
				return writeJSON(cmd, items)
			}

			out := cmd.OutOrStdout()
			if len(items) == 0 {
				if query.IsEmpty() {
					fmt.Fprintln(out, "Wardrobe is empty")
				} else {
					fmt.Fprintln(out, "No items match the filters")
				}
				return nil
			}
			fmt.Fprintln(out, renderItems(items))
			return nil
		},
	}

	cmd.Flags().StringVarP(&query.Search, "search", "s", "", "Match item name or description")
	cmd.Flags().StringSliceVar(&query.Seasons, "season", nil, "Season facet (repeatable)")
	cmd.Flags().StringSliceVar(&query.Styles, "style", nil, "Style facet (repeatable)")
	cmd.Flags().StringVar(&category, "category", "", "Only list one category")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output JSON")
	return cmd
}

func newShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one clothing item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseItemID(args[0])
			if err != nil {
				return err
			}
			client, err := ctx.client()
			if err != nil {
				return err
			}
			item, err := client.Item(cmd.Context(), id)
			if err != nil {
				if backend.IsNotFound(err) {
					return fmt.Errorf("item %d not found", id)
				}
				return errors.New(userMessage(err))
			}
			printItem(cmd.OutOrStdout(), client, item)
			return nil
		},
	}
}

func newEditCommand(ctx *commandContext) *cobra.Command {
	var edits editFlags

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit an item's classification",
		Long:  "Edit an item. Tag flags take comma separated lists; ASCII and full-width commas are both accepted.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseItemID(args[0])
			if err != nil {
				return err
			}
			store, client, err := ctx.store()
			if err != nil {
				return err
			}
			item, err := client.Item(cmd.Context(), id)
			if err != nil {
				if backend.IsNotFound(err) {
					return fmt.Errorf("item %d not found", id)
				}
				return errors.New(userMessage(err))
			}

			form := wardrobe.NewEditForm(item)
			if !edits.apply(cmd.Flags(), &form) {
				return errors.New("nothing to change; pass at least one of --category, --name, --description, --color, --styles, --seasons, --usages")
			}
			result, err := store.Save(cmd.Context(), form)
			if err != nil {
				return fmt.Errorf("save failed: %s", userMessage(err))
			}
			out := cmd.OutOrStdout()
			if updated, ok := result.Wardrobe.Find(id); ok {
				printItem(out, client, updated)
			}
			printResult(out, result, shouldColorize(out))
			return nil
		},
	}

	edits.register(cmd.Flags())
	return cmd
}

func newDeleteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseItemID(args[0])
			if err != nil {
				return err
			}
			store, _, err := ctx.store()
			if err != nil {
				return err
			}
			result, err := store.Delete(cmd.Context(), id)
			if err != nil {
				if backend.IsNotFound(err) {
					return fmt.Errorf("item %d not found", id)
				}
				return fmt.Errorf("delete failed: %s", userMessage(err))
			}
			out := cmd.OutOrStdout()
			printResult(out, result, shouldColorize(out))
			return nil
		},
	}
}
