// Package keygen describes which key pair to generate and generates it.
// It supports EdDSA (Ed25519, Ed448) and RSA key pairs intended for JOSE
// signing workflows.
package keygen

import (
	"fmt"
	"strings"
)

// Algorithm identifies the family of key pair to generate.
type Algorithm int

const (
	AlgEdDSA Algorithm = iota
	AlgRSA
)

// Curve identifies the Edwards curve used for EdDSA key pairs.
type Curve int

const (
	CurveEd25519 Curve = iota
	CurveEd448
)

// DigestSize selects the RSASSA-PKCS1-v1_5 variant an RSA key is tagged with.
// It does not change the key material.
type DigestSize int

const (
	Digest256 DigestSize = iota
	Digest384
	Digest512
)

// Defaults applied by NewRequest.
const (
	DefaultAlgorithm  = AlgEdDSA
	DefaultCurve      = CurveEd25519
	DefaultDigestSize = Digest256
	DefaultRSAKeySize = 2048
)

// MaxRSAKeySize is the largest RSA modulus accepted from the command line.
const MaxRSAKeySize = 65535

var algorithmNames = map[Algorithm]string{
	AlgEdDSA: "eddsa",
	AlgRSA:   "rsa",
}

var curveNames = map[Curve]string{
	CurveEd25519: "ed25519",
	CurveEd448:   "ed448",
}

var digestNames = map[DigestSize]string{
	Digest256: "256",
	Digest384: "384",
	Digest512: "512",
}

// String returns the command-line name of the algorithm.
func (a Algorithm) String() string {
	if name, ok := algorithmNames[a]; ok {
		return name
	}
	return fmt.Sprintf("algorithm(%d)", int(a))
}

// String returns the command-line name of the curve.
func (c Curve) String() string {
	if name, ok := curveNames[c]; ok {
		return name
	}
	return fmt.Sprintf("curve(%d)", int(c))
}

// JWKName returns the "crv" value registered for the curve (RFC 8037).
func (c Curve) JWKName() string {
	switch c {
	case CurveEd25519:
		return "Ed25519"
	case CurveEd448:
		return "Ed448"
	default:
		return ""
	}
}

// String returns the command-line name of the digest size.
func (d DigestSize) String() string {
	if name, ok := digestNames[d]; ok {
		return name
	}
	return fmt.Sprintf("digest(%d)", int(d))
}

// Bits returns the digest output length in bits.
func (d DigestSize) Bits() int {
	switch d {
	case Digest256:
		return 256
	case Digest384:
		return 384
	case Digest512:
		return 512
	default:
		return 0
	}
}

// ParseAlgorithm parses a command-line algorithm name. Names match exactly.
func ParseAlgorithm(s string) (Algorithm, error) {
	for alg, n := range algorithmNames {
		if n == s {
			return alg, nil
		}
	}
	return 0, fmt.Errorf("invalid algorithm %q (valid: %s)", s, validNames(algorithmNames, AlgEdDSA, AlgRSA))
}

// ParseCurve parses a command-line curve name.
func ParseCurve(s string) (Curve, error) {
	for c, n := range curveNames {
		if n == s {
			return c, nil
		}
	}
	return 0, fmt.Errorf("invalid curve %q (valid: %s)", s, validNames(curveNames, CurveEd25519, CurveEd448))
}

// ParseDigestSize parses a command-line RSA digest size.
func ParseDigestSize(s string) (DigestSize, error) {
	for d, n := range digestNames {
		if n == s {
			return d, nil
		}
	}
	return 0, fmt.Errorf("invalid RSA digest size %q (valid: %s)", s, validNames(digestNames, Digest256, Digest384, Digest512))
}

// validNames lists names in the given order for error messages.
func validNames[K comparable](names map[K]string, order ...K) string {
	out := make([]string, 0, len(order))
	for _, k := range order {
		out = append(out, names[k])
	}
	return strings.Join(out, ", ")
}
