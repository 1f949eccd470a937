package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"wardrobe/internal/preflight"
)

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check backend, camera and local state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			var pinger preflight.Pinger
			if client, err := ctx.client(); err == nil {
				pinger = client
			} else {
				fmt.Fprintln(out, renderStatusLine("Backend", statusError, userMessage(err), colorize))
			}

			for _, line := range renderSectionHeader("Configuration", colorize) {
				fmt.Fprintln(out, line)
			}
			if ctx.configExists {
				fmt.Fprintln(out, renderStatusLine("Config", statusOK, ctx.configPath, colorize))
			} else {
				fmt.Fprintln(out, renderStatusLine("Config", statusInfo, "defaults (no file at "+ctx.configPath+")", colorize))
			}

			fmt.Fprintln(out)
			for _, line := range renderSectionHeader("Dependencies", colorize) {
				fmt.Fprintln(out, line)
			}
			for _, status := range preflight.CheckSystemDeps(cfg) {
				kind, detail := statusOK, status.Command
				if !status.Available {
					kind, detail = statusError, status.Detail
					if status.Optional {
						kind = statusWarn
					}
				}
				fmt.Fprintln(out, renderStatusLine(status.Name, kind, detail, colorize))
			}

			fmt.Fprintln(out)
			for _, line := range renderSectionHeader("Checks", colorize) {
				fmt.Fprintln(out, line)
			}
			results := preflight.RunAll(cmd.Context(), cfg, pinger)
			for _, r := range results {
				kind := statusOK
				if !r.Passed {
					kind = statusError
					if r.Optional {
						kind = statusWarn
					}
				}
				fmt.Fprintln(out, renderStatusLine(r.Name, kind, r.Detail, colorize))
			}
			if pinger == nil || !preflight.Healthy(results) {
				return errors.New("one or more checks failed")
			}
			return nil
		},
	}
}
