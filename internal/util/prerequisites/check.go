// Package prerequisites checks for the client tools a debugging session
// needs once the topology is deployed.
package prerequisites

import (
	"fmt"
	"os/exec"
	"strings"
)

// Tool represents a client tool that may be required.
type Tool struct {
	// Name is the binary name to look for in PATH.
	Name string

	// Required indicates if this tool is mandatory.
	Required bool

	// Description explains what the tool is used for.
	Description string

	// InstallURL provides a URL for installation instructions.
	InstallURL string
}

// DefaultTools returns the tools needed to deploy the template, reach the
// development host and forward the debug port.
func DefaultTools() []Tool {
	return []Tool{
		{
			Name:        "aws",
			Required:    true,
			Description: "Deploys the template and submits Spark jobs",
			InstallURL:  "https://docs.aws.amazon.com/cli/latest/userguide/getting-started-install.html",
		},
		{
			Name:        "session-manager-plugin",
			Required:    true,
			Description: "Opens Session Manager sessions to the development host",
			InstallURL:  "https://docs.aws.amazon.com/systems-manager/latest/userguide/session-manager-working-with-install-plugin.html",
		},
		{
			Name:        "ssh",
			Required:    true,
			Description: "Forwards the debug port from the development host",
			InstallURL:  "https://www.openssh.com/portable.html",
		},
	}
}

// OptionalTools returns tools that are useful but not required.
func OptionalTools() []Tool {
	return []Tool{
		{
			Name:        "kubectl",
			Required:    false,
			Description: "Inspects job pods in the EMR namespace",
			InstallURL:  "https://kubernetes.io/docs/tasks/tools/",
		},
	}
}

// CheckResult contains the result of checking a single tool.
type CheckResult struct {
	Tool    Tool
	Found   bool
	Path    string
	Version string
}

// CheckResults contains the results of checking multiple tools.
type CheckResults struct {
	Results []CheckResult
	Missing []Tool
}

// HasErrors returns true if any required tools are missing.
func (r *CheckResults) HasErrors() bool {
	for _, tool := range r.Missing {
		if tool.Required {
			return true
		}
	}
	return false
}

// Error returns an error if any required tools are missing.
func (r *CheckResults) Error() error {
	var missing []string
	for _, tool := range r.Missing {
		if tool.Required {
			missing = append(missing, fmt.Sprintf("%s (%s)", tool.Name, tool.InstallURL))
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return fmt.Errorf("missing required tools: %s", strings.Join(missing, ", "))
}

// lookPath is exec.LookPath, replaceable in tests.
var lookPath = exec.LookPath

// Check verifies that the specified tools are available.
func Check(tools []Tool) *CheckResults {
	results := &CheckResults{}

	for _, tool := range tools {
		result := CheckResult{Tool: tool}

		path, err := lookPath(tool.Name)
		if err == nil {
			result.Found = true
			result.Path = path
			result.Version = getToolVersion(path)
		} else {
			results.Missing = append(results.Missing, tool)
		}

		results.Results = append(results.Results, result)
	}

	return results
}

// CheckAll checks the default and optional tools.
func CheckAll() *CheckResults {
	return Check(append(DefaultTools(), OptionalTools()...))
}

// getToolVersion returns the first line of the tool's version output, or
// an empty string.
func getToolVersion(path string) string {
	for _, flag := range []string{"--version", "-V", "version"} {
		// #nosec G204 - path comes from a fixed Tool list resolved via PATH
		output, err := exec.Command(path, flag).CombinedOutput()
		if err == nil {
			line, _, _ := strings.Cut(string(output), "\n")
			return strings.TrimSpace(line)
		}
	}
	return ""
}
