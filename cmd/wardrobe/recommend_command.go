package main

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"wardrobe/internal/backend"
	"wardrobe/internal/recommend"
	"wardrobe/internal/stream"
)

func newRecommendCommand(ctx *commandContext) *cobra.Command {
	var locationID string
	var cityQuery string

	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Stream a weather based outfit recommendation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			client, err := ctx.client()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			writer := newTerminalTypewriter(out)
			renderer := stream.New(
				stream.WithCadence(cfg.StreamCadence()),
				stream.WithUpdate(writer.update),
			)

			opts := []recommend.Option{
				recommend.WithLogger(ctx.logger()),
				recommend.WithCity(cfg.Backend.DefaultLocationName, cfg.Backend.DefaultLocationID),
			}
			if locationID != "" {
				opts = append(opts, recommend.WithCity(locationID, locationID))
			}
			screen := recommend.NewScreen(client, renderer, opts...)
			defer screen.Close()

			var rec backend.Recommendation
			if query := strings.TrimSpace(cityQuery); query != "" {
				cities, err := screen.Search(cmd.Context(), query)
				if err != nil {
					return errors.New(userMessage(err))
				}
				if len(cities) == 0 {
					return fmt.Errorf("no city matches %q", query)
				}
				rec, err = screen.Select(cmd.Context(), cities[0])
				if err != nil {
					return fmt.Errorf("获取推荐失败: %s", userMessage(err))
				}
			} else {
				rec, err = screen.Refresh(cmd.Context())
				if err != nil {
					return fmt.Errorf("获取推荐失败: %s", userMessage(err))
				}
			}

			city := screen.City()
			writer.open(func(w io.Writer) { printWeather(w, city, rec.Weather) })
			if err := renderer.Wait(cmd.Context()); err != nil {
				return err
			}
			writer.finish()
			printSuggestions(out, client, rec)
			return nil
		},
	}

	cmd.Flags().StringVar(&locationID, "location", "", "QWeather location id")
	cmd.Flags().StringVar(&cityQuery, "city", "", "Search for a city and use the first match")
	return cmd
}

func printWeather(out io.Writer, city recommend.Selection, w backend.Weather) {
	fmt.Fprintf(out, "%s %s  %s\n", recommend.WeatherIcon(w.Icon), city.Name, orDash(w.Condition))
	fmt.Fprintf(out, "  温度 %.0f°C (体感 %.0f°C)  湿度 %.0f%%  %s %s级\n", w.Temperature, w.FeelsLike, w.Humidity, orDash(w.WindDir), orDash(w.WindScale))
	if w.ObsTime != "" {
		fmt.Fprintf(out, "  观测时间 %s\n", w.ObsTime)
	}
}

func printSuggestions(out io.Writer, client *backend.Client, rec backend.Recommendation) {
	if rec.SuggestedTop != nil {
		fmt.Fprintf(out, "推荐上装: %s #%d %s\n", orDash(rec.SuggestedTop.Name), rec.SuggestedTop.ID, client.ResolveImageURL(rec.SuggestedTop.ImageURL))
	}
	if rec.SuggestedBottom != nil {
		fmt.Fprintf(out, "推荐下装: %s #%d %s\n", orDash(rec.SuggestedBottom.Name), rec.SuggestedBottom.ID, client.ResolveImageURL(rec.SuggestedBottom.ImageURL))
	}
}

// terminalTypewriter appends each newly revealed suffix to out. Frames that
// arrive before open are held back so the weather header prints first.
type terminalTypewriter struct {
	out io.Writer

	mu      sync.Mutex
	opened  bool
	latest  string
	written string
}

func newTerminalTypewriter(out io.Writer) *terminalTypewriter {
	return &terminalTypewriter{out: out}
}

func (t *terminalTypewriter) update(frame stream.Frame) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.latest = frame.Text
	if t.opened {
		t.flush()
	}
}

func (t *terminalTypewriter) open(header func(io.Writer)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	header(t.out)
	t.opened = true
	t.flush()
}

func (t *terminalTypewriter) flush() {
	if !strings.HasPrefix(t.latest, t.written) {
		// restarted reveal
		fmt.Fprintln(t.out)
		t.written = ""
	}
	fmt.Fprint(t.out, t.latest[len(t.written):])
	t.written = t.latest
}

func (t *terminalTypewriter) finish() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.written != "" {
		fmt.Fprintln(t.out)
	}
}

func newCitiesCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "cities <query>",
		Short: "Search cities for weather recommendations",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}
			cities, err := client.SearchCities(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return errors.New(userMessage(err))
			}
			if jsonOut {
				return writeJSON(cmd, cities)
			}
			out := cmd.OutOrStdout()
			if len(cities) == 0 {
				fmt.Fprintln(out, "No cities found")
				return nil
			}
			rows := make([][]string, 0, len(cities))
			for _, city := range cities {
				rows = append(rows, []string{city.Label(), city.ID, orDash(city.Adm2), orDash(city.Country)})
			}
			fmt.Fprintln(out, renderTable([]string{"City", "Location ID", "District", "Country"}, rows, nil))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output JSON")
	return cmd
}
