package commands

import (
	"github.com/spf13/cobra"

	"github.com/aws-samples/remote-debugging-with-emr/cmd/emrdebug/handlers"
	"github.com/aws-samples/remote-debugging-with-emr/internal/config"
)

// Init returns the command for interactively creating a configuration.
//
// Flags:
//
//	--output, -o: Path to output file (default "emrdebug.yaml")
func Init() *cobra.Command {
	var outputPath string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Interactively create a topology configuration",
		Long: `Interactively create a topology configuration file.

The wizard asks for the account, region, network ranges, availability
zone count, cluster admin role and node capacity policy. Every other
setting is written out with its default so it can be edited by hand.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Init(cmd.Context(), cmd.OutOrStdout(), outputPath)
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", config.DefaultConfigFilename, "Output file path")

	return cmd
}
