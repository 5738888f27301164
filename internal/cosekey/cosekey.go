// Package cosekey encodes generated key pairs as COSE_Key structures
// (RFC 9052 section 7, RFC 9053 for OKP, RFC 8230 for RSA).
package cosekey

import (
	"crypto/ed25519"
	"crypto/rsa"
	"fmt"
	"math/big"

	"github.com/cloudflare/circl/sign/ed448"
	"github.com/fxamacker/cbor/v2"
	gocose "github.com/veraison/go-cose"

	"github.com/rswa-project/rswa/internal/keygen"
)

// Common COSE_Key labels.
const (
	LabelKty int64 = 1
	LabelKid int64 = 2
	LabelAlg int64 = 3
)

// OKP key parameters.
const (
	LabelOKPCrv int64 = -1
	LabelOKPX   int64 = -2
	LabelOKPD   int64 = -4
)

// RSA key parameters (RFC 8230).
const (
	LabelRSAN    int64 = -1
	LabelRSAE    int64 = -2
	LabelRSAD    int64 = -3
	LabelRSAP    int64 = -4
	LabelRSAQ    int64 = -5
	LabelRSADP   int64 = -6
	LabelRSADQ   int64 = -7
	LabelRSAQInv int64 = -8
)

// Key types.
const (
	KeyTypeOKP int64 = 1
	KeyTypeRSA int64 = 3
)

// Elliptic curves.
const (
	CurveEd25519 int64 = 6
	CurveEd448   int64 = 7
)

// COSE algorithm identifiers from the IANA registry.
const (
	AlgEdDSA gocose.Algorithm = -8
	AlgRS256 gocose.Algorithm = -257
	AlgRS384 gocose.Algorithm = -258
	AlgRS512 gocose.Algorithm = -259
)

// EncodingError reports a failure to build or serialize a COSE_Key.
type EncodingError struct {
	Err error
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("unable to encode COSE_Key: %v", e.Err)
}

func (e *EncodingError) Unwrap() error {
	return e.Err
}

// AlgorithmFor returns the COSE algorithm matching a JWS algorithm name.
func AlgorithmFor(jwsAlg string) (gocose.Algorithm, error) {
	switch jwsAlg {
	case keygen.SigEdDSA:
		return AlgEdDSA, nil
	case keygen.SigRS256:
		return AlgRS256, nil
	case keygen.SigRS384:
		return AlgRS384, nil
	case keygen.SigRS512:
		return AlgRS512, nil
	default:
		return 0, fmt.Errorf("unsupported algorithm for COSE: %s", jwsAlg)
	}
}

// Encode builds the COSE_Key map for kp.
func Encode(kp *keygen.KeyPair) (map[int64]interface{}, error) {
	if kp == nil {
		return nil, &EncodingError{Err: fmt.Errorf("nil key pair")}
	}

	alg, err := AlgorithmFor(kp.Signature)
	if err != nil {
		return nil, &EncodingError{Err: err}
	}

	m := map[int64]interface{}{
		LabelAlg: alg,
	}

	switch priv := kp.PrivateKey.(type) {
	case ed25519.PrivateKey:
		m[LabelKty] = KeyTypeOKP
		m[LabelOKPCrv] = CurveEd25519
		m[LabelOKPX] = []byte(priv.Public().(ed25519.PublicKey))
		m[LabelOKPD] = priv.Seed()
	case ed448.PrivateKey:
		m[LabelKty] = KeyTypeOKP
		m[LabelOKPCrv] = CurveEd448
		m[LabelOKPX] = []byte(priv.Public().(ed448.PublicKey))
		m[LabelOKPD] = priv.Seed()
	case *rsa.PrivateKey:
		if len(priv.Primes) != 2 {
			return nil, &EncodingError{Err: fmt.Errorf("multi-prime RSA keys are not supported")}
		}
		if priv.Precomputed.Dp == nil {
			priv.Precompute()
		}
		m[LabelKty] = KeyTypeRSA
		m[LabelRSAN] = priv.N.Bytes()
		m[LabelRSAE] = big.NewInt(int64(priv.E)).Bytes()
		m[LabelRSAD] = priv.D.Bytes()
		m[LabelRSAP] = priv.Primes[0].Bytes()
		m[LabelRSAQ] = priv.Primes[1].Bytes()
		m[LabelRSADP] = priv.Precomputed.Dp.Bytes()
		m[LabelRSADQ] = priv.Precomputed.Dq.Bytes()
		m[LabelRSAQInv] = priv.Precomputed.Qinv.Bytes()
	default:
		return nil, &EncodingError{Err: fmt.Errorf("unsupported private key type %T", kp.PrivateKey)}
	}

	if kid, ok := kp.KeyID(); ok {
		m[LabelKid] = []byte(kid)
	}

	return m, nil
}

// Marshal encodes kp as a COSE_Key using canonical CBOR.
func Marshal(kp *keygen.KeyPair) ([]byte, error) {
	m, err := Encode(kp)
	if err != nil {
		return nil, err
	}

	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		return nil, &EncodingError{Err: fmt.Errorf("failed to create CBOR encoder: %w", err)}
	}
	data, err := em.Marshal(m)
	if err != nil {
		return nil, &EncodingError{Err: err}
	}
	return data, nil
}
