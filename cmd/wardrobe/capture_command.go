package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/spf13/cobra"

	"wardrobe/internal/config"
	"wardrobe/internal/media"
)

const (
	previewMaxWidth  = 640
	previewMaxHeight = 480
)

func newCaptureCommand(ctx *commandContext) *cobra.Command {
	var previewPath string
	var edits editFlags

	cmd := &cobra.Command{
		Use:   "capture",
		Short: "Take a photo with the camera and upload it",
		Long: "Take a photo with the configured native capture command, or with the live camera device.\n" +
			"In live mode press Enter to capture or type q to cancel.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger := ctx.logger()

			var native media.NativeIntent
			if strings.TrimSpace(cfg.Camera.NativeCommand) != "" {
				native = media.CommandIntent{Command: cfg.Camera.NativeCommand}
			}
			device := &media.V4L2Device{
				Path:   cfg.Camera.Device,
				FFmpeg: cfg.Camera.FFmpegBinary,
				Width:  cfg.Camera.Width,
				Height: cfg.Camera.Height,
				Logger: logger,
			}
			preview := ""
			if previewPath != "" {
				if preview, err = config.ExpandPath(previewPath); err != nil {
					return err
				}
			}
			trigger := newCaptureTrigger(cmd.InOrStdin(), cmd.OutOrStdout(), preview)

			payload, err := media.CaptureStill(cmd.Context(), native, device, trigger,
				media.WithQuality(cfg.Camera.JPEGQuality),
				media.WithLogger(logger),
			)
			if err != nil {
				if errors.Is(err, media.ErrCaptureCancelled) {
					fmt.Fprintln(cmd.OutOrStdout(), "Capture cancelled")
					return nil
				}
				return errors.New(userMessage(err))
			}
			return ctx.runUpload(cmd, payload, &edits)
		},
	}

	cmd.Flags().StringVar(&previewPath, "preview", "", "Write a scaled preview frame to this path before capturing")
	edits.register(cmd.Flags())
	return cmd
}

// newCaptureTrigger prompts on the terminal: Enter captures, q cancels.
func newCaptureTrigger(in io.Reader, out io.Writer, previewPath string) func(context.Context, *media.CaptureSession) (bool, error) {
	return func(ctx context.Context, session *media.CaptureSession) (bool, error) {
		if previewPath != "" {
			frame, err := session.Preview(ctx)
			if err != nil {
				return false, err
			}
			if err := imaging.Save(media.PreviewImage(frame, previewMaxWidth, previewMaxHeight), previewPath); err != nil {
				return false, fmt.Errorf("write preview: %w", err)
			}
			fmt.Fprintf(out, "Preview written to %s\n", previewPath)
		}
		fmt.Fprint(out, "Press Enter to capture, q to cancel: ")

		answer := make(chan string, 1)
		go func() {
			line, _ := bufio.NewReader(in).ReadString('\n')
			answer <- strings.TrimSpace(line)
		}()
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case line := <-answer:
			return !strings.EqualFold(line, "q"), nil
		}
	}
}
