package main

import (
	"bufio"
	"fmt"
	"io"
	"math/rand/v2"
	"strings"

	"github.com/spf13/cobra"

	"wardrobe/internal/outfit"
	"wardrobe/internal/wardrobe"
)

const outfitHelp = "Commands: n <category> | p <category> | s (shuffle) | season <season|all> | r (reload) | q"

func newOutfitCommand(ctx *commandContext) *cobra.Command {
	var season string
	var shuffle bool
	var seed uint64

	cmd := &cobra.Command{
		Use:   "outfit",
		Short: "Compose an outfit from the wardrobe",
		Long:  "Step through tops, bottoms and shoes interactively, or print one random outfit with --shuffle.\n" + outfitHelp,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, _, err := ctx.store()
			if err != nil {
				return err
			}
			w, err := store.Refresh(cmd.Context())
			if err != nil {
				return fmt.Errorf("load wardrobe: %s", userMessage(err))
			}

			var opts []outfit.Option
			if cmd.Flags().Changed("seed") {
				rng := rand.New(rand.NewPCG(seed, seed))
				opts = append(opts, outfit.WithIntN(rng.IntN))
			}
			composer := outfit.NewComposer(w, opts...)
			composer.SetSeason(season)

			out := cmd.OutOrStdout()
			if shuffle {
				composer.Shuffle()
				printOutfit(out, composer)
				return nil
			}

			fmt.Fprintln(out, outfitHelp)
			printOutfit(out, composer)
			scanner := bufio.NewScanner(cmd.InOrStdin())
			for {
				fmt.Fprint(out, "> ")
				if !scanner.Scan() {
					fmt.Fprintln(out)
					return scanner.Err()
				}
				quit, err := applyOutfitCommand(cmd, composer, store, scanner.Text())
				if err != nil {
					fmt.Fprintln(out, err)
					continue
				}
				if quit {
					return nil
				}
				printOutfit(out, composer)
			}
		},
	}

	cmd.Flags().StringVar(&season, "season", outfit.AllSeasons, "Season chip: a season name or 'all'")
	cmd.Flags().BoolVar(&shuffle, "shuffle", false, "Print one random outfit and exit")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "Seed for reproducible shuffles")
	return cmd
}

func applyOutfitCommand(cmd *cobra.Command, composer *outfit.Composer, store *wardrobe.Store, line string) (bool, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false, nil
	}
	switch strings.ToLower(fields[0]) {
	case "q", "quit", "exit":
		return true, nil
	case "s", "shuffle":
		composer.Shuffle()
	case "season":
		if len(fields) < 2 {
			return false, fmt.Errorf("usage: season <season|all>")
		}
		composer.SetSeason(fields[1])
	case "r", "reload":
		w, err := store.Refresh(cmd.Context())
		if err != nil {
			return false, fmt.Errorf("reload failed: %s", userMessage(err))
		}
		composer.SetWardrobe(w)
	case "n", "next", "p", "prev":
		if len(fields) < 2 {
			return false, fmt.Errorf("usage: %s <top|bottom|shoes>", fields[0])
		}
		category, err := wardrobe.ParseCategory(fields[1])
		if err != nil {
			return false, fmt.Errorf("%s", userMessage(err))
		}
		if strings.HasPrefix(strings.ToLower(fields[0]), "n") {
			composer.Next(category)
		} else {
			composer.Prev(category)
		}
	default:
		return false, fmt.Errorf("unknown command %q; %s", fields[0], outfitHelp)
	}
	return false, nil
}

func printOutfit(out io.Writer, composer *outfit.Composer) {
	fmt.Fprintf(out, "Season: %s\n", composer.Season())
	for _, category := range wardrobe.Categories {
		total := len(composer.Filtered(category))
		item, ok := composer.Current(category)
		if !ok {
			fmt.Fprintf(out, "  %s: (none)\n", category.Label())
			continue
		}
		fmt.Fprintf(out, "  %s: %s #%d [%d/%d]\n", category.Label(), orDash(item.Name), item.ID, composer.Index(category)+1, total)
	}
}
