package handlers

import (
	"fmt"
	"io"

	"github.com/aws-samples/remote-debugging-with-emr/internal/util/keygen"
)

// generateKey creates a key pair - can be replaced in tests.
var generateKey = keygen.Generate

// Keygen creates a key pair for the development host and writes it to
// path and path.pub.
func Keygen(out io.Writer, path, algorithm string, bits int) error {
	kp, err := generateKey(keygen.Algorithm(algorithm), bits)
	if err != nil {
		return err
	}
	if err := kp.WriteFiles(path); err != nil {
		return err
	}

	fmt.Fprintf(out, "Private key: %s\n", path)
	fmt.Fprintf(out, "Public key:  %s.pub\n", path)
	fmt.Fprintf(out, "Fingerprint: %s\n", kp.Fingerprint)
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Add the public key to your configuration:")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "  devbox:")
	fmt.Fprintf(out, "    ssh_public_key: %q\n", kp.AuthorizedKey())
	return nil
}
