package commands

import (
	"github.com/spf13/cobra"

	"github.com/aws-samples/remote-debugging-with-emr/cmd/emrdebug/handlers"
)

// Synth returns the command that renders the deployable template.
//
// Optional flags:
//
//	--config, -c: Path to configuration YAML (default: auto-detect emrdebug.yaml)
//	--output, -o: Template destination (default: stdout)
//	--manifests, -m: Also write the cluster objects as YAML
//	--verbose, -v: Log every declared resource
func Synth() *cobra.Command {
	var (
		opts    handlers.SynthOptions
		verbose bool
	)

	cmd := &cobra.Command{
		Use:   "synth",
		Short: "Render the topology as a template",
		Long: `Declare the whole topology and render it as a JSON template.

The template lists every resource with its properties, the stack outputs,
and the order resources must be applied in. Cluster objects can also be
written as a YAML stream for inspection with --manifests.

If no config file is specified, emrdebug.yaml is searched for in the
current directory and its parents. Without one, configuration is read
from the environment (AWS_ACCOUNT_ID, AWS_REGION, ...).

Examples:
  # Print the template
  emrdebug synth

  # Write the template and the cluster objects
  emrdebug synth -o template.json -m manifests.yaml`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if verbose {
				opts.Verbosity = 1
			}
			return handlers.Synth(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.ConfigPath, "config", "c", "", "Path to configuration file (default: emrdebug.yaml)")
	cmd.Flags().StringVarP(&opts.OutputPath, "output", "o", "", "Template output file (default: stdout)")
	cmd.Flags().StringVarP(&opts.ManifestsPath, "manifests", "m", "", "Write cluster objects as YAML to this file")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Log every declared resource")

	return cmd
}
