package commands

import (
	"github.com/spf13/cobra"

	"github.com/aws-samples/remote-debugging-with-emr/cmd/emrdebug/handlers"
)

// Keygen returns the command that creates an SSH key for the development host.
func Keygen() *cobra.Command {
	var (
		path      string
		algorithm string
		bits      int
	)

	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Create an SSH key pair for the development host",
		Long: `Create an SSH key pair for reverse-forwarding the debug port
through the development host. The public key goes into
devbox.ssh_public_key.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Keygen(cmd.OutOrStdout(), path, algorithm, bits)
		},
	}

	cmd.Flags().StringVarP(&path, "output", "o", "emrdebug_devbox", "Private key path; the public key gets a .pub suffix")
	cmd.Flags().StringVarP(&algorithm, "type", "t", "ed25519", "Key type: ed25519 or rsa")
	cmd.Flags().IntVar(&bits, "bits", 4096, "RSA key size")

	return cmd
}
