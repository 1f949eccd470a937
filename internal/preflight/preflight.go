package preflight

import (
	"context"
	"path/filepath"

	"wardrobe/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
	// Optional results do not count as failures.
	Optional bool
}

// RunAll executes the checks that apply to cfg. The backend check is skipped
// when pinger is nil.
func RunAll(ctx context.Context, cfg *config.Config, pinger Pinger) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("State directory", filepath.Dir(cfg.Upload.LockPath)),
	}
	if cfg.Journal.Enabled {
		results = append(results, CheckDirectoryAccess("Journal directory", filepath.Dir(cfg.Journal.Path)))
	}
	if pinger != nil {
		results = append(results, CheckBackend(ctx, cfg.Backend.APIBaseURL, pinger))
	}
	results = append(results, CheckCamera(cfg))
	return results
}

// Healthy reports whether every required result passed.
func Healthy(results []Result) bool {
	for _, r := range results {
		if !r.Passed && !r.Optional {
			return false
		}
	}
	return true
}
