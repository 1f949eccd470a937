package deps

import (
	"fmt"
	"os/exec"
	"strings"
)

// Requirement defines an external program the client shells out to.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if cmd == "" {
			status.Available = false
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		if _, err := exec.LookPath(cmd); err != nil {
			status.Available = false
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Available = true
		results = append(results, status)
	}
	return results
}

// CaptureRequirements lists the programs camera capture needs. When a native
// capture command is configured it is required and ffmpeg becomes optional.
func CaptureRequirements(ffmpegBinary, nativeCommand string) []Requirement {
	native := CommandName(nativeCommand)
	reqs := []Requirement{{
		Name:        "FFmpeg",
		Command:     strings.TrimSpace(ffmpegBinary),
		Description: "Reads frames from the live camera device",
		Optional:    native != "",
	}}
	if native != "" {
		reqs = append(reqs, Requirement{
			Name:        "Native camera",
			Command:     native,
			Description: "Platform capture command",
		})
	}
	return reqs
}

// CommandName returns the program of a command line, or "" when blank.
func CommandName(commandLine string) string {
	fields := strings.Fields(commandLine)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
