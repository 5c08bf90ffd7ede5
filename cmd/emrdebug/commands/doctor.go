package commands

import (
	"github.com/spf13/cobra"

	"github.com/aws-samples/remote-debugging-with-emr/cmd/emrdebug/handlers"
	"github.com/aws-samples/remote-debugging-with-emr/internal/config"
)

// Doctor returns the command that checks the local debugging setup.
func Doctor() *cobra.Command {
	var opts handlers.DoctorOptions

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check tools, configuration and the local debug listener",
		Long: `Check that the tools for a debugging session are installed, that
the configuration loads, and whether the IDE debug server is listening.

Use --wait to keep probing the debug port while the IDE starts. Use
--port 0 to skip the probe.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Doctor(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.ConfigPath, "config", "c", "", "Path to configuration file (default: emrdebug.yaml)")
	cmd.Flags().IntVar(&opts.Port, "port", config.DebugPort, "Local debug listener port")
	cmd.Flags().DurationVar(&opts.Wait, "wait", 0, "Keep probing the debug port for this long")

	return cmd
}
