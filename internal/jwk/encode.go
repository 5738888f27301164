// Package jwk converts generated key pairs into JSON Web Keys (RFC 7517,
// RFC 7518, RFC 8037) and renders them as JSON.
package jwk

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/cloudflare/circl/sign/ed448"
	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwk"

	"github.com/rswa-project/rswa/internal/keygen"
)

// EncodingError reports a failure to turn a key pair into a JWK document.
type EncodingError struct {
	Stage string
	Err   error
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("unable to %s: %v", e.Stage, e.Err)
}

func (e *EncodingError) Unwrap() error {
	return e.Err
}

// Encode builds the private JWK for kp. The "alg" member carries the JWS
// algorithm the key was generated for, and "kid" is added last when kp
// carries a key id.
func Encode(kp *keygen.KeyPair) (jwk.Key, error) {
	if kp == nil {
		return nil, &EncodingError{Stage: "convert key pair to jwk", Err: fmt.Errorf("nil key pair")}
	}

	var (
		key jwk.Key
		err error
	)
	switch priv := kp.PrivateKey.(type) {
	case ed448.PrivateKey:
		key, err = fromEd448(priv)
	default:
		key, err = jwk.FromRaw(priv)
	}
	if err != nil {
		return nil, &EncodingError{Stage: "convert key pair to jwk", Err: err}
	}

	if err := checkKeyType(kp, key); err != nil {
		return nil, &EncodingError{Stage: "convert key pair to jwk", Err: err}
	}

	if err := key.Set(jwk.AlgorithmKey, jwa.SignatureAlgorithm(kp.Signature)); err != nil {
		return nil, &EncodingError{Stage: "set jwk algorithm", Err: err}
	}

	if kid, ok := kp.KeyID(); ok {
		if err := key.Set(jwk.KeyIDKey, kid); err != nil {
			return nil, &EncodingError{Stage: "set jwk key id", Err: err}
		}
	}

	return key, nil
}

// fromEd448 parses an OKP document built from the raw key; jwx has no raw
// Ed448 key type.
func fromEd448(priv ed448.PrivateKey) (jwk.Key, error) {
	pub, ok := priv.Public().(ed448.PublicKey)
	if !ok {
		return nil, fmt.Errorf("unexpected Ed448 public key type %T", priv.Public())
	}

	doc, err := json.Marshal(map[string]string{
		"kty": string(jwa.OKP),
		"crv": jwa.Ed448.String(),
		"x":   base64.RawURLEncoding.EncodeToString(pub),
		"d":   base64.RawURLEncoding.EncodeToString(priv.Seed()),
	})
	if err != nil {
		return nil, err
	}
	return jwk.ParseKey(doc)
}

// checkKeyType guards against field leakage between algorithms.
func checkKeyType(kp *keygen.KeyPair, key jwk.Key) error {
	var want jwa.KeyType
	switch kp.Algorithm {
	case keygen.AlgEdDSA:
		want = jwa.OKP
	case keygen.AlgRSA:
		want = jwa.RSA
	default:
		return fmt.Errorf("unsupported algorithm %s", kp.Algorithm)
	}
	if key.KeyType() != want {
		return fmt.Errorf("key type %s does not match algorithm %s", key.KeyType(), kp.Algorithm)
	}
	return nil
}

// Render serializes key as two-space indented JSON followed by a newline.
func Render(key jwk.Key) ([]byte, error) {
	data, err := json.Marshal(key)
	if err != nil {
		return nil, &EncodingError{Stage: "serialize jwk to json", Err: err}
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "  "); err != nil {
		return nil, &EncodingError{Stage: "serialize jwk to json", Err: err}
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}
