package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"wardrobe/internal/journal"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var clear bool
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent upload sessions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !cfg.Journal.Enabled {
				fmt.Fprintln(out, "Upload journal is disabled ([journal] enabled = false)")
				return nil
			}
			store, err := journal.Open(cfg.Journal.Path)
			if err != nil {
				return fmt.Errorf("open upload journal: %w", err)
			}
			defer store.Close()

			if clear {
				removed, err := store.Clear(cmd.Context())
				if err != nil {
					return fmt.Errorf("clear upload journal: %w", err)
				}
				fmt.Fprintf(out, "Removed %d journal %s\n", removed, pluralize(removed, "entry", "entries"))
				return nil
			}

			entries, err := store.List(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("read upload journal: %w", err)
			}
			if jsonOut {
				if entries == nil {
					entries = []journal.Entry{}
				}
				return writeJSON(cmd, entries)
			}
			if len(entries) == 0 {
				fmt.Fprintln(out, "No uploads recorded")
				return nil
			}
			rows := make([][]string, 0, len(entries))
			for _, e := range entries {
				rows = append(rows, historyRow(e))
			}
			fmt.Fprintln(out, renderTable(
				[]string{"When", "File", "Source", "Size", "Result", "Item", "Took", "Message"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft, alignRight, alignRight},
			))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of sessions to show")
	cmd.Flags().BoolVar(&clear, "clear", false, "Delete all recorded sessions")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output JSON")
	return cmd
}

func historyRow(e journal.Entry) []string {
	result := "done"
	if !e.Succeeded() {
		result = "failed at " + string(e.FailedAt)
	}
	item := emptyCell
	if e.ItemID > 0 {
		item = strconv.FormatInt(e.ItemID, 10)
		if e.Category != "" {
			item += " " + e.Category.Label()
		}
	}
	return []string{
		humanize.Time(e.StartedAt),
		orDash(e.FileName),
		orDash(e.Origin),
		humanize.Bytes(uint64(max(e.Bytes, 0))),
		result,
		item,
		e.Duration.Round(time.Millisecond).String(),
		orDash(e.Message),
	}
}

func pluralize(n int64, singular, plural string) string {
	if n == 1 {
		return singular
	}
	return plural
}
