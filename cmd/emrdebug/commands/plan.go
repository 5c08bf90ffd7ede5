package commands

import (
	"github.com/spf13/cobra"

	"github.com/aws-samples/remote-debugging-with-emr/cmd/emrdebug/handlers"
)

// Plan returns the command that summarizes the topology.
func Plan() *cobra.Command {
	var (
		opts    handlers.PlanOptions
		verbose bool
	)

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Summarize the topology without rendering it",
		Long: `Declare the whole topology and print what it contains: networks,
cluster, job runtimes, the development host, role mappings, resource
counts and outputs.

On a terminal the declaration phases are shown as they run.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if verbose {
				opts.Verbosity = 1
			}
			return handlers.Plan(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.ConfigPath, "config", "c", "", "Path to configuration file (default: emrdebug.yaml)")
	cmd.Flags().BoolVar(&opts.JSON, "json", false, "Print the summary as JSON")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Log every declared resource")

	return cmd
}
