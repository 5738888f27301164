package keygen

import (
	"crypto"
	"crypto/ed25519"
	"crypto/rand"
	"crypto/rsa"
	"fmt"
	"io"

	"github.com/cloudflare/circl/sign/ed448"
)

// JWS signature algorithm names a generated key is tagged with (RFC 7518, RFC 8037).
const (
	SigEdDSA = "EdDSA"
	SigRS256 = "RS256"
	SigRS384 = "RS384"
	SigRS512 = "RS512"
)

// KeyPair holds a freshly generated public/private key pair.
//
// PrivateKey is one of ed25519.PrivateKey, ed448.PrivateKey or
// *rsa.PrivateKey. Curve is only meaningful for EdDSA pairs.
type KeyPair struct {
	Algorithm  Algorithm
	Curve      Curve
	Signature  string
	PrivateKey crypto.PrivateKey
	PublicKey  crypto.PublicKey

	keyID    string
	hasKeyID bool
}

// SetKeyID stamps a key id on the pair.
func (kp *KeyPair) SetKeyID(kid string) {
	kp.keyID = kid
	kp.hasKeyID = true
}

// KeyID returns the key id and whether one was set.
func (kp *KeyPair) KeyID() (string, bool) {
	return kp.keyID, kp.hasKeyID
}

// GenerationError reports a failure of the underlying key pair generator.
type GenerationError struct {
	Algorithm Algorithm
	Detail    string
	Err       error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("failed to generate %s key pair (%s): %v", e.Algorithm, e.Detail, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// Generate generates the key pair described by req using crypto/rand.
//
// Example:
//
//	kp, err := keygen.Generate(keygen.NewRequest(keygen.WithAlgorithm(keygen.AlgRSA)))
//	if err != nil {
//	    return err
//	}
func Generate(req Request) (*KeyPair, error) {
	return GenerateWithRand(rand.Reader, req)
}

// GenerateWithRand generates a key pair using the provided random source.
// Callers other than tests should use Generate. The request's key id is not
// applied; use KeyPair.SetKeyID.
func GenerateWithRand(random io.Reader, req Request) (*KeyPair, error) {
	var (
		kp  *KeyPair
		err error
	)

	switch req.Algorithm() {
	case AlgEdDSA:
		kp, err = generateEdDSA(random, req.Curve())
	case AlgRSA:
		kp, err = generateRSA(random, req.RSAKeySize(), req.RSADigestSize())
	default:
		return nil, &GenerationError{
			Algorithm: req.Algorithm(),
			Detail:    "unsupported",
			Err:       fmt.Errorf("no generator for %s", req.Algorithm()),
		}
	}
	if err != nil {
		return nil, err
	}
	return kp, nil
}

// generateEdDSA generates an EdDSA key pair on the given curve.
func generateEdDSA(random io.Reader, curve Curve) (*KeyPair, error) {
	var (
		priv crypto.PrivateKey
		pub  crypto.PublicKey
		err  error
	)

	switch curve {
	case CurveEd25519:
		var p ed25519.PublicKey
		var k ed25519.PrivateKey
		p, k, err = ed25519.GenerateKey(random)
		priv, pub = k, p
	case CurveEd448:
		var p ed448.PublicKey
		var k ed448.PrivateKey
		p, k, err = ed448.GenerateKey(random)
		priv, pub = k, p
	default:
		err = fmt.Errorf("unsupported curve %s", curve)
	}
	if err != nil {
		return nil, &GenerationError{Algorithm: AlgEdDSA, Detail: "curve " + curve.String(), Err: err}
	}

	return &KeyPair{
		Algorithm:  AlgEdDSA,
		Curve:      curve,
		Signature:  SigEdDSA,
		PrivateKey: priv,
		PublicKey:  pub,
	}, nil
}

// generateRSA generates an RSA key pair tagged with the signature variant
// selected by digest.
func generateRSA(random io.Reader, bits int, digest DigestSize) (*KeyPair, error) {
	detail := fmt.Sprintf("%d bits, digest %s", bits, digest)

	sig := rsaSignatureName(digest)
	if sig == "" {
		return nil, &GenerationError{Algorithm: AlgRSA, Detail: detail, Err: fmt.Errorf("unsupported digest size %s", digest)}
	}
	if bits <= 0 {
		return nil, &GenerationError{Algorithm: AlgRSA, Detail: detail, Err: fmt.Errorf("key size must be positive")}
	}

	priv, err := rsa.GenerateKey(random, bits)
	if err != nil {
		return nil, &GenerationError{Algorithm: AlgRSA, Detail: detail, Err: err}
	}

	return &KeyPair{
		Algorithm:  AlgRSA,
		Signature:  sig,
		PrivateKey: priv,
		PublicKey:  &priv.PublicKey,
	}, nil
}

// rsaSignatureName maps a digest size to its RSASSA-PKCS1-v1_5 JWS name.
func rsaSignatureName(d DigestSize) string {
	switch d {
	case Digest256:
		return SigRS256
	case Digest384:
		return SigRS384
	case Digest512:
		return SigRS512
	default:
		return ""
	}
}
