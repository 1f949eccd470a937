package main

import (
	"fmt"
	"io"
	"sync"

	"github.com/spf13/cobra"

	"wardrobe/internal/media"
)

func newDevicesCommand(ctx *commandContext) *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "devices",
		Short: "List camera devices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			devices, err := media.ListDevices()
			if err != nil {
				return fmt.Errorf("list camera devices: %w", err)
			}
			printDevices(out, devices, cfg.Camera.Device)
			if !watch {
				return nil
			}

			var mu sync.Mutex
			monitor := media.NewHotplugMonitor(ctx.logger(), func(event media.HotplugEvent) {
				mu.Lock()
				defer mu.Unlock()
				fmt.Fprintf(out, "%s %s\n", event.Action, event.Device)
			})
			if err := monitor.Start(cmd.Context()); err != nil {
				return fmt.Errorf("watch camera hotplug: %w", err)
			}
			defer monitor.Stop()

			fmt.Fprintln(out, "Watching for camera changes (Ctrl+C to stop)")
			<-cmd.Context().Done()
			return nil
		},
	}

	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Keep running and print hotplug events")
	return cmd
}

func printDevices(out io.Writer, devices []string, configured string) {
	if len(devices) == 0 {
		fmt.Fprintln(out, "No camera devices found")
		return
	}
	rows := make([][]string, 0, len(devices))
	for _, dev := range devices {
		mark := ""
		if dev == configured {
			mark = "configured"
		}
		rows = append(rows, []string{dev, mark})
	}
	fmt.Fprintln(out, renderTable([]string{"Device", ""}, rows, nil))
}
