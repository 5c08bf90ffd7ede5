// Package keygen generates SSH key pairs for the bastion tunnel.
//
// Private keys are PEM encoded; public keys are in OpenSSH authorized_keys
// format, ready for the devbox.ssh_public_key configuration field.
package keygen
