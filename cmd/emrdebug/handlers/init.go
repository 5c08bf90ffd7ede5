package handlers

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/aws-samples/remote-debugging-with-emr/internal/config"
)

// Factory function variables for init - can be replaced in tests.
var (
	// fileExists checks if a file exists.
	fileExists = func(path string) bool {
		_, err := os.Stat(path)
		return err == nil
	}

	// runWizard asks for the deployment-specific values.
	runWizard = config.RunWizard

	// writeConfig writes the config to a file.
	writeConfig = config.WriteFile
)

// Init runs the configuration wizard and writes the result to outputPath.
func Init(ctx context.Context, out io.Writer, outputPath string) error {
	if fileExists(outputPath) {
		fmt.Fprintf(out, "Warning: %s already exists and will be overwritten.\n\n", outputPath)
	}

	printWelcome(out)

	result, err := runWizard(ctx)
	if err != nil {
		return fmt.Errorf("wizard canceled: %w", err)
	}

	cfg := result.ToConfig()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("wizard produced an invalid configuration: %w", err)
	}

	if err := writeConfig(cfg, outputPath); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	printInitSuccess(out, outputPath, cfg)
	return nil
}

func printWelcome(out io.Writer) {
	fmt.Fprintln(out)
	fmt.Fprintln(out, "emrdebug - remote debugging for EMR Spark jobs")
	fmt.Fprintln(out, "===============================================")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "This wizard creates a topology configuration with sensible defaults.")
	fmt.Fprintln(out, "Everything else can be edited in the generated YAML.")
	fmt.Fprintln(out)
}

func printInitSuccess(out io.Writer, outputPath string, cfg *config.Config) {
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Configuration saved!")
	fmt.Fprintln(out)
	fmt.Fprintf(out, "  File: %s\n", outputPath)
	fmt.Fprintln(out)

	fmt.Fprintln(out, "Topology Summary")
	fmt.Fprintln(out, "----------------")
	fmt.Fprintf(out, "  Account:        %s\n", cfg.Account)
	fmt.Fprintf(out, "  Region:         %s\n", cfg.Region)
	fmt.Fprintf(out, "  Networks:       %s (%s) <-> %s (%s)\n",
		cfg.Network.Dev.Name, cfg.Network.Dev.CIDR, cfg.Network.EMR.Name, cfg.Network.EMR.CIDR)
	fmt.Fprintf(out, "  Zones:          %d\n", cfg.Network.MaxAZs)
	fmt.Fprintf(out, "  Capacity:       %s\n", cfg.Capacity.Policy)
	if cfg.Cluster.AdminRoleName != "" {
		fmt.Fprintf(out, "  Admin role:     %s\n", cfg.Cluster.AdminRoleName)
	}
	fmt.Fprintf(out, "  Debug port:     %d\n", config.DebugPort)
	fmt.Fprintln(out)

	fmt.Fprintln(out, "Next Steps")
	fmt.Fprintln(out, "----------")
	fmt.Fprintf(out, "  1. Review %s if needed\n", outputPath)
	fmt.Fprintln(out)
	fmt.Fprintln(out, "  2. Preview the topology:")
	fmt.Fprintln(out, "     emrdebug plan")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "  3. Render the template for deployment:")
	fmt.Fprintln(out, "     emrdebug synth -o template.json")
	fmt.Fprintln(out)
}
