package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"wardrobe/internal/config"
	"wardrobe/internal/journal"
	"wardrobe/internal/logging"
	"wardrobe/internal/media"
	"wardrobe/internal/upload"
	"wardrobe/internal/wardrobe"
)

func newUploadCommand(ctx *commandContext) *cobra.Command {
	var drop bool
	var edits editFlags

	cmd := &cobra.Command{
		Use:   "upload <file>...",
		Short: "Upload a clothing photo for background removal and classification",
		Long: "Upload a clothing photo. Without --drop only the first file is used, like a file picker;\n" +
			"with --drop the arguments are treated as a dropped file list.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !drop {
				args = args[:1]
			}
			files := make([]media.File, 0, len(args))
			for _, arg := range args {
				path, err := config.ExpandPath(arg)
				if err != nil {
					return err
				}
				file, err := media.OpenFile(path)
				if err != nil {
					return err
				}
				files = append(files, file)
			}

			var source media.Source = media.FilePicked{File: files[0]}
			if drop {
				source = media.Dropped{Files: files}
			}
			payload, err := media.Acquire(source)
			if err != nil {
				return errors.New(userMessage(err))
			}
			return ctx.runUpload(cmd, payload, &edits)
		},
	}

	cmd.Flags().BoolVar(&drop, "drop", false, "Treat arguments as a drag-and-drop file list")
	edits.register(cmd.Flags())
	return cmd
}

// runUpload drives one pipeline session with a progress bar, then
// resynchronizes the wardrobe and applies any edit flags.
func (c *commandContext) runUpload(cmd *cobra.Command, payload media.Payload, edits *editFlags) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	client, err := c.client()
	if err != nil {
		return err
	}
	logger := c.logger()
	out := cmd.OutOrStdout()

	bar := newUploadBar(out)
	opts := []upload.Option{
		upload.WithLogger(logger),
		upload.WithSuccessHold(cfg.SuccessHold()),
		upload.WithLock(upload.NewLock(cfg.Upload.LockPath)),
		upload.WithObserver(bar.observe),
	}
	if cfg.Journal.Enabled {
		store, err := journal.Open(cfg.Journal.Path)
		if err != nil {
			logging.WarnWithContext(logger, "upload journal unavailable", "journal_open_failed",
				logging.String("path", cfg.Journal.Path),
				logging.Error(err),
				logging.String(logging.FieldImpact, "this upload will not appear in 'wardrobe history'"),
			)
		} else {
			defer store.Close()
			opts = append(opts, upload.WithRecorder(store))
		}
	}

	fmt.Fprintf(out, "Uploading %s (%s, %s)\n", payload.Name, payload.ContentType, payload.Size())
	pipeline := upload.NewPipeline(client, opts...)
	item, err := pipeline.Run(cmd.Context(), payload)
	bar.close()
	if err != nil {
		return describeUploadError(err)
	}

	colorize := shouldColorize(out)
	store := wardrobe.NewStore(client, logger)
	result := store.Added(cmd.Context(), item)

	if edits != nil {
		form := wardrobe.NewEditForm(item)
		if edits.apply(cmd.Flags(), &form) {
			saved, err := store.Save(cmd.Context(), form)
			if err != nil {
				printItem(out, client, item)
				return fmt.Errorf("item uploaded but edits were not saved: %s", userMessage(err))
			}
			result = saved
			if updated, ok := result.Wardrobe.Find(item.ID); ok {
				item = updated
			}
		}
	}

	printItem(out, client, item)
	printResult(out, result, colorize)
	return nil
}

func describeUploadError(err error) error {
	if errors.Is(err, upload.ErrSessionActive) {
		return errors.New("another upload is already in progress")
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	var failure *upload.Failure
	if errors.As(err, &failure) {
		return fmt.Errorf("%s (%s): %s", upload.StageFailed.Status(), failure.Stage, failure.Message())
	}
	return errors.New(userMessage(err))
}

// uploadBar mirrors pipeline events onto a terminal progress bar.
type uploadBar struct {
	out     io.Writer
	bar     *progressbar.ProgressBar
	stopped bool
}

func newUploadBar(out io.Writer) *uploadBar {
	return &uploadBar{out: out, bar: progressbar.NewOptions(100,
		progressbar.OptionSetWriter(out),
		progressbar.OptionSetWidth(30),
		progressbar.OptionSetDescription(upload.StageIdle.Status()),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionShowCount(),
	)}
}

func (b *uploadBar) observe(event upload.Event) {
	if b.stopped || event.Stage == upload.StageIdle {
		return
	}
	b.bar.Describe(event.Status)
	if event.Stage == upload.StageFailed {
		_ = b.bar.Exit()
		b.stopped = true
		return
	}
	_ = b.bar.Set(event.Progress)
}

// close ends the bar line; a failed bar keeps its last position.
func (b *uploadBar) close() {
	if !b.stopped {
		_ = b.bar.Exit()
		b.stopped = true
	}
	fmt.Fprintln(b.out)
}
