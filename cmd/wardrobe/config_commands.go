package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"wardrobe/internal/config"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or create the client configuration",
	}
	configCmd.AddCommand(newConfigInitCommand(), newConfigValidateCommand(ctx))
	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Write a sample configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := initTarget(targetPath)
			if err != nil {
				return err
			}
			if !overwrite {
				switch _, err := os.Stat(target); {
				case err == nil:
					return fmt.Errorf("%s already exists; pass --overwrite to replace it", target)
				case !errors.Is(err, fs.ErrNotExist):
					return fmt.Errorf("check %s: %w", target, err)
				}
			}
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return fmt.Errorf("create config directory: %w", err)
			}
			if err := config.CreateSample(target); err != nil {
				return fmt.Errorf("write sample config: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
			fmt.Fprintln(out, "Point [backend] api_base_url (or WARDROBE_API_URL) at the wardrobe server, then run `wardrobe doctor`.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Where to write the file (default: user config dir)")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace an existing file")
	return cmd
}

func initTarget(flagValue string) (string, error) {
	if path := strings.TrimSpace(flagValue); path != "" {
		expanded, err := config.ExpandPath(path)
		if err != nil {
			return "", fmt.Errorf("resolve --path: %w", err)
		}
		return expanded, nil
	}
	path, err := config.DefaultConfigPath()
	if err != nil {
		return "", fmt.Errorf("locate default config: %w", err)
	}
	return path, nil
}

type configSummary struct {
	Path     string `json:"path"`
	FromFile bool   `json:"from_file"`
	Backend  string `json:"backend"`
	Media    string `json:"media"`
	Camera   string `json:"camera"`
	Lock     string `json:"upload_lock"`
	Journal  string `json:"journal"`
	Logging  string `json:"logging"`
}

func summarizeConfig(cfg *config.Config, path string, fromFile bool) configSummary {
	camera := fmt.Sprintf("%s %dx%d via %s", cfg.Camera.Device, cfg.Camera.Width, cfg.Camera.Height, cfg.Camera.FFmpegBinary)
	if cfg.Camera.NativeCommand != "" {
		camera = "native: " + cfg.Camera.NativeCommand
	}
	journal := "disabled"
	if cfg.Journal.Enabled {
		journal = cfg.Journal.Path
	}
	logs := cfg.Logging.Level + " " + cfg.Logging.Format + " to stderr"
	if cfg.Logging.Dir != "" {
		logs = cfg.Logging.Level + " " + cfg.Logging.Format + " to " + cfg.Logging.Dir
	}
	return configSummary{
		Path:     path,
		FromFile: fromFile,
		Backend:  cfg.Backend.APIBaseURL,
		Media:    cfg.Backend.MediaBaseURL,
		Camera:   camera,
		Lock:     cfg.Upload.LockPath,
		Journal:  journal,
		Logging:  logs,
	}
}

func (s configSummary) rows() [][]string {
	source := s.Path
	if !s.FromFile {
		source = "defaults (no file at " + s.Path + ")"
	}
	return [][]string{
		{"Source", source},
		{"Backend", s.Backend},
		{"Media", s.Media},
		{"Camera", s.Camera},
		{"Upload lock", s.Lock},
		{"Journal", s.Journal},
		{"Logging", s.Logging},
	}
}

func newConfigValidateCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Load the configuration, create state directories and print the resolved settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return err
			}
			summary := summarizeConfig(cfg, ctx.configPath, ctx.configExists)
			if asJSON {
				return writeJSON(cmd, summary)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable([]string{"Setting", "Value"}, summary.rows(), nil))
			fmt.Fprintln(out, "Configuration valid")
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the resolved settings as JSON")
	return cmd
}
