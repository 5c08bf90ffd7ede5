package keygen

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"os"
	"strings"

	"golang.org/x/crypto/ssh"
)

// Algorithm selects the key type.
type Algorithm string

const (
	AlgorithmRSA     Algorithm = "rsa"
	AlgorithmEd25519 Algorithm = "ed25519"
)

// KeyPair holds a key pair in ready-to-use formats.
type KeyPair struct {
	// PrivateKey is PEM encoded.
	PrivateKey []byte
	// PublicKey is in OpenSSH authorized_keys format.
	PublicKey []byte
	// Fingerprint is the SHA256 fingerprint of the public key.
	Fingerprint string
}

// Generate creates a key pair of the given algorithm. bits is only used for RSA.
func Generate(alg Algorithm, bits int) (*KeyPair, error) {
	switch alg {
	case AlgorithmRSA:
		return GenerateRSAKeyPair(bits)
	case AlgorithmEd25519:
		return GenerateEd25519KeyPair()
	default:
		return nil, fmt.Errorf("unsupported key algorithm %q", alg)
	}
}

// GenerateRSAKeyPair generates an RSA key pair with the specified bit size.
func GenerateRSAKeyPair(bits int) (*KeyPair, error) {
	privateKey, err := rsa.GenerateKey(rand.Reader, bits)
	if err != nil {
		return nil, fmt.Errorf("failed to generate RSA private key: %w", err)
	}
	if err := privateKey.Validate(); err != nil {
		return nil, fmt.Errorf("failed to validate RSA private key: %w", err)
	}

	privPEM := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(privateKey),
	})
	return newKeyPair(privPEM, &privateKey.PublicKey)
}

// GenerateEd25519KeyPair generates an Ed25519 key pair in OpenSSH private key format.
func GenerateEd25519KeyPair() (*KeyPair, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to generate ed25519 key: %w", err)
	}

	block, err := ssh.MarshalPrivateKey(priv, "")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal ed25519 private key: %w", err)
	}
	return newKeyPair(pem.EncodeToMemory(block), pub)
}

func newKeyPair(privPEM []byte, pub any) (*KeyPair, error) {
	sshPub, err := ssh.NewPublicKey(pub)
	if err != nil {
		return nil, fmt.Errorf("failed to create SSH public key: %w", err)
	}
	return &KeyPair{
		PrivateKey:  privPEM,
		PublicKey:   ssh.MarshalAuthorizedKey(sshPub),
		Fingerprint: ssh.FingerprintSHA256(sshPub),
	}, nil
}

// AuthorizedKey returns the public key as a single line without the trailing newline.
func (kp *KeyPair) AuthorizedKey() string {
	return strings.TrimSpace(string(kp.PublicKey))
}

// WriteFiles writes the private key to path and the public key to path.pub.
// Existing files are not overwritten.
func (kp *KeyPair) WriteFiles(path string) error {
	for _, f := range []struct {
		path string
		data []byte
		mode os.FileMode
	}{
		{path, kp.PrivateKey, 0600},
		{path + ".pub", kp.PublicKey, 0644},
	} {
		if _, err := os.Stat(f.path); err == nil {
			return fmt.Errorf("refusing to overwrite existing key file %s", f.path)
		}
		// #nosec G304
		if err := os.WriteFile(f.path, f.data, f.mode); err != nil {
			return fmt.Errorf("failed to write %s: %w", f.path, err)
		}
	}
	return nil
}
