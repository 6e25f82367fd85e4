package deps

import (
	"fmt"
	"os/exec"
	"strings"
)

// Requirement defines an external binary sysctlr shells out to.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a binary.
type Status struct {
	Name        string
	Command     string
	Path        string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// ReloadRequirement describes the binary at the head of a reload argv. An
// empty argv yields a requirement whose check reports "command not
// configured".
func ReloadRequirement(argv []string, required bool) Requirement {
	req := Requirement{
		Name:        "Reload command",
		Description: "Applies the sysctl file to the running kernel",
		Optional:    !required,
	}
	if len(argv) > 0 {
		req.Command = argv[0]
	}
	return req
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
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		path, err := exec.LookPath(cmd)
		if err != nil {
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Path = path
		status.Available = true
		status.Detail = fmt.Sprintf("%s (found at %s)", cmd, path)
		results = append(results, status)
	}
	return results
}

// MissingRequired returns the required binaries that were not found. The
// reload binary is only required when reload is enabled.
func MissingRequired(statuses []Status) []Status {
	var missing []Status
	for _, s := range statuses {
		if !s.Available && !s.Optional {
			missing = append(missing, s)
		}
	}
	return missing
}
