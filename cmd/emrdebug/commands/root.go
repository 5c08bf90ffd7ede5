// Package commands defines the CLI command structure and flag bindings.
//
// Commands parse arguments and flags only. Execution is delegated to the
// handlers package.
package commands

import "github.com/spf13/cobra"

// Root returns the root command for the emrdebug CLI.
func Root() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "emrdebug",
		Short:        "Declare infrastructure for remote debugging of EMR Spark jobs",
		SilenceUsage: true,
	}

	// Topology
	cmd.AddCommand(Init())
	cmd.AddCommand(Synth())
	cmd.AddCommand(Plan())

	// Debugging workflow
	cmd.AddCommand(Stage())
	cmd.AddCommand(Keygen())
	cmd.AddCommand(Doctor())

	cmd.AddCommand(Version())
	cmd.AddCommand(Completion())

	return cmd
}
