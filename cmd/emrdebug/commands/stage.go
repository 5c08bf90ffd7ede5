package commands

import (
	"github.com/spf13/cobra"

	"github.com/aws-samples/remote-debugging-with-emr/cmd/emrdebug/handlers"
)

// Stage returns the command that uploads job artifacts.
func Stage() *cobra.Command {
	var opts handlers.StageOptions

	cmd := &cobra.Command{
		Use:   "stage FILE...",
		Short: "Upload job entrypoints and dependencies to the artifact bucket",
		Long: `Upload Spark job files to the artifact bucket so EMR jobs can
reference them.

The bucket is taken from --bucket or storage.bucket_name. After a deploy
its name is available as the VPCStack.S3Bucket output.

Examples:
  emrdebug stage --bucket my-artifacts debug_demo.py
  emrdebug stage --prefix jobs/v2 entrypoint.py deps.zip`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Files = args
			return handlers.Stage(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.ConfigPath, "config", "c", "", "Path to configuration file (default: emrdebug.yaml)")
	cmd.Flags().StringVarP(&opts.Bucket, "bucket", "b", "", "Artifact bucket (default: storage.bucket_name)")
	cmd.Flags().StringVarP(&opts.Prefix, "prefix", "p", handlers.DefaultStagePrefix, "Key prefix")
	cmd.Flags().StringVar(&opts.Profile, "profile", "", "Shared config profile")
	cmd.Flags().StringVar(&opts.Endpoint, "endpoint", "", "Custom S3 endpoint")

	return cmd
}
