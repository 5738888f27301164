package main

import (
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/rswa-project/rswa/internal/audit"
	"github.com/rswa-project/rswa/internal/cosekey"
	"github.com/rswa-project/rswa/internal/jwk"
	"github.com/rswa-project/rswa/internal/keygen"
)

// Output formats recorded in the audit log.
const (
	formatJWK     = "jwk"
	formatCOSEKey = "cose-key"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate values",
	Long:  `Commands for generating key material.`,
}

var generateJWKCmd = &cobra.Command{
	Use:   "jwk",
	Short: "Generate a key pair as a JSON Web Key",
	Long: `Generate a new key pair and print it as a private JSON Web Key.

The document is printed to standard output and nothing else is written there.
Options that only apply to the other algorithm are accepted and ignored
(e.g. --rsa-key-size with --algorithm eddsa).

Key types:
  eddsa  - "kty": "OKP", "alg": "EdDSA", curve from --curve
  rsa    - "kty": "RSA", "alg": "RS256" | "RS384" | "RS512" from --rsa-digest-size

Examples:
  rswa generate jwk
  rswa generate jwk --curve ed448 --key-id edge-1
  rswa generate jwk -a rsa --rsa-key-size 4096 --rsa-digest-size 512`,
	Args: cobra.NoArgs,
	RunE: runGenerateJWK,
}

var generateCOSEKeyCmd = &cobra.Command{
	Use:   "cose-key",
	Short: "Generate a key pair as a COSE_Key",
	Long: `Generate a new key pair and print it as a COSE_Key (RFC 9052) in
canonical CBOR.

The CBOR is hex encoded on one line unless --raw is given, in which case the
bytes are written unchanged.

Examples:
  rswa generate cose-key --curve ed448
  rswa generate cose-key -a rsa --raw > key.cbor`,
	Args: cobra.NoArgs,
	RunE: runGenerateCOSEKey,
}

var (
	genKeyID         string
	genAlgorithm     string
	genCurve         string
	genRSAKeySize    int
	genRSADigestSize string

	genCOSERaw bool
)

func init() {
	generateCmd.AddCommand(generateJWKCmd)
	generateCmd.AddCommand(generateCOSEKeyCmd)

	addKeyFlags(generateJWKCmd.Flags())
	addKeyFlags(generateCOSEKeyCmd.Flags())

	generateCOSEKeyCmd.Flags().BoolVar(&genCOSERaw, "raw", false, "Write raw CBOR bytes instead of hex")
}

// addKeyFlags registers the key selection flags shared by the generate commands.
func addKeyFlags(flags *pflag.FlagSet) {
	flags.StringVarP(&genKeyID, "key-id", "i", "", "Key id to assign to the generated key (any string)")
	flags.StringVarP(&genAlgorithm, "algorithm", "a", keygen.DefaultAlgorithm.String(), "Key algorithm: eddsa, rsa")
	flags.StringVarP(&genCurve, "curve", "c", keygen.DefaultCurve.String(), "Edwards curve for EdDSA keys: ed25519, ed448")
	flags.IntVar(&genRSAKeySize, "rsa-key-size", keygen.DefaultRSAKeySize, "Key size in bits for RSA keys")
	flags.StringVar(&genRSADigestSize, "rsa-digest-size", keygen.DefaultDigestSize.String(), "Digest size for RSA keys: 256, 384, 512")
}

// buildRequest resolves flags, then config defaults, into a Request. Every
// enumerated value is checked here, before any key material is generated.
func buildRequest(flags *pflag.FlagSet) (keygen.Request, error) {
	algName := genAlgorithm
	curveName := genCurve
	digestName := genRSADigestSize
	keySize := genRSAKeySize
	keyID, hasKeyID := genKeyID, flags.Changed("key-id")

	if loadedConfig != nil {
		d := loadedConfig.Generate
		if !flags.Changed("algorithm") && d.Algorithm != "" {
			algName = d.Algorithm
		}
		if !flags.Changed("curve") && d.Curve != "" {
			curveName = d.Curve
		}
		if !flags.Changed("rsa-digest-size") && d.RSADigestSize != "" {
			digestName = d.RSADigestSize
		}
		if !flags.Changed("rsa-key-size") && d.RSAKeySize != 0 {
			keySize = d.RSAKeySize
		}
		if !hasKeyID && d.KeyID != nil {
			keyID, hasKeyID = *d.KeyID, true
		}
	}

	alg, err := keygen.ParseAlgorithm(algName)
	if err != nil {
		return keygen.Request{}, err
	}
	curve, err := keygen.ParseCurve(curveName)
	if err != nil {
		return keygen.Request{}, err
	}
	digest, err := keygen.ParseDigestSize(digestName)
	if err != nil {
		return keygen.Request{}, err
	}
	if keySize <= 0 || keySize > keygen.MaxRSAKeySize {
		return keygen.Request{}, fmt.Errorf("invalid RSA key size %d (must be between 1 and %d)", keySize, keygen.MaxRSAKeySize)
	}

	opts := []keygen.Option{
		keygen.WithAlgorithm(alg),
		keygen.WithCurve(curve),
		keygen.WithRSAKeySize(keySize),
		keygen.WithRSADigestSize(digest),
	}
	if hasKeyID {
		opts = append(opts, keygen.WithKeyID(keyID))
	}
	return keygen.NewRequest(opts...), nil
}

// generateKeyPair generates the key pair for req and stamps its key id.
func generateKeyPair(req keygen.Request, format string) (*keygen.KeyPair, error) {
	kp, err := keygen.Generate(req)
	if err != nil {
		return nil, auditFailure(req, format, err)
	}

	if kid, ok := req.KeyID(); ok {
		kp.SetKeyID(kid)
	}
	return kp, nil
}

// auditFailure records a failed generation and returns err.
func auditFailure(req keygen.Request, format string, err error) error {
	kid, _ := req.KeyID()
	if aerr := audit.LogKeyGenerated(req.Describe(), format, kid, "", false, err.Error()); aerr != nil {
		return fmt.Errorf("%w (%v)", err, aerr)
	}
	return err
}

func runGenerateJWK(cmd *cobra.Command, args []string) error {
	req, err := buildRequest(cmd.Flags())
	if err != nil {
		return err
	}

	kp, err := generateKeyPair(req, formatJWK)
	if err != nil {
		return err
	}

	key, err := jwk.Encode(kp)
	if err != nil {
		return auditFailure(req, formatJWK, err)
	}
	out, err := jwk.Render(key)
	if err != nil {
		return auditFailure(req, formatJWK, err)
	}

	kid, _ := kp.KeyID()
	if err := audit.LogKeyGenerated(req.Describe(), formatJWK, kid, string(key.KeyType()), true, ""); err != nil {
		return err
	}

	_, err = cmd.OutOrStdout().Write(out)
	return err
}

func runGenerateCOSEKey(cmd *cobra.Command, args []string) error {
	req, err := buildRequest(cmd.Flags())
	if err != nil {
		return err
	}

	kp, err := generateKeyPair(req, formatCOSEKey)
	if err != nil {
		return err
	}

	data, err := cosekey.Marshal(kp)
	if err != nil {
		return auditFailure(req, formatCOSEKey, err)
	}

	out := data
	if !genCOSERaw {
		out = []byte(hex.EncodeToString(data) + "\n")
	}

	kid, _ := kp.KeyID()
	if err := audit.LogKeyGenerated(req.Describe(), formatCOSEKey, kid, keyTypeName(kp.Algorithm), true, ""); err != nil {
		return err
	}

	_, err = cmd.OutOrStdout().Write(out)
	return err
}

// keyTypeName returns the JOSE key type for an algorithm.
func keyTypeName(alg keygen.Algorithm) string {
	switch alg {
	case keygen.AlgEdDSA:
		return "OKP"
	case keygen.AlgRSA:
		return "RSA"
	default:
		return ""
	}
}
