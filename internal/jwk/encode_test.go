package jwk

import (
	"crypto/ed25519"
	"encoding/base64"
	"encoding/json"
	"errors"
	"math/big"
	"sort"
	"strings"
	"testing"

	"github.com/cloudflare/circl/sign/ed448"
	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwk"

	"github.com/rswa-project/rswa/internal/keygen"
)

// renderToMap encodes kp and decodes the rendered JSON back into a map.
func renderToMap(t *testing.T, kp *keygen.KeyPair) (map[string]interface{}, []byte) {
	t.Helper()
	key, err := Encode(kp)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	data, err := Render(key)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	var doc map[string]interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("rendered document is not valid JSON: %v\n%s", err, data)
	}
	return doc, data
}

func generate(t *testing.T, opts ...keygen.Option) *keygen.KeyPair {
	t.Helper()
	kp, err := keygen.Generate(keygen.NewRequest(opts...))
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	return kp
}

func fieldNames(doc map[string]interface{}) []string {
	names := make([]string, 0, len(doc))
	for k := range doc {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func decodeField(t *testing.T, doc map[string]interface{}, name string) []byte {
	t.Helper()
	s, ok := doc[name].(string)
	if !ok {
		t.Fatalf("field %q missing or not a string", name)
	}
	b, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		t.Fatalf("field %q is not base64url: %v", name, err)
	}
	return b
}

// =============================================================================
// [Unit] Encode Tests
// =============================================================================

func TestU_Encode_FieldSets(t *testing.T) {
	okpFields := []string{"alg", "crv", "d", "kty", "x"}
	rsaFields := []string{"alg", "d", "dp", "dq", "e", "kty", "n", "p", "q", "qi"}

	tests := []struct {
		name   string
		opts   []keygen.Option
		kty    string
		alg    string
		fields []string
	}{
		{"[Unit] Encode: Ed25519", nil, "OKP", "EdDSA", okpFields},
		{"[Unit] Encode: Ed448", []keygen.Option{keygen.WithCurve(keygen.CurveEd448)}, "OKP", "EdDSA", okpFields},
		{"[Unit] Encode: RSA RS256", []keygen.Option{keygen.WithAlgorithm(keygen.AlgRSA)}, "RSA", "RS256", rsaFields},
		{"[Unit] Encode: RSA RS384", []keygen.Option{keygen.WithAlgorithm(keygen.AlgRSA), keygen.WithRSADigestSize(keygen.Digest384)}, "RSA", "RS384", rsaFields},
		{"[Unit] Encode: RSA RS512", []keygen.Option{keygen.WithAlgorithm(keygen.AlgRSA), keygen.WithRSADigestSize(keygen.Digest512)}, "RSA", "RS512", rsaFields},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, _ := renderToMap(t, generate(t, tt.opts...))

			if doc["kty"] != tt.kty {
				t.Errorf("kty = %v, want %s", doc["kty"], tt.kty)
			}
			if doc["alg"] != tt.alg {
				t.Errorf("alg = %v, want %s", doc["alg"], tt.alg)
			}
			got := fieldNames(doc)
			if strings.Join(got, ",") != strings.Join(tt.fields, ",") {
				t.Errorf("fields = %v, want %v", got, tt.fields)
			}
		})
	}
}

func TestU_Encode_Ed25519Material(t *testing.T) {
	kp := generate(t)
	doc, _ := renderToMap(t, kp)

	if doc["crv"] != "Ed25519" {
		t.Errorf("crv = %v, want Ed25519", doc["crv"])
	}

	x := decodeField(t, doc, "x")
	if string(x) != string(kp.PublicKey.(ed25519.PublicKey)) {
		t.Error("x does not match the generated public key")
	}
	d := decodeField(t, doc, "d")
	if string(d) != string(kp.PrivateKey.(ed25519.PrivateKey).Seed()) {
		t.Error("d does not match the generated seed")
	}
}

func TestU_Encode_Ed448Material(t *testing.T) {
	kp := generate(t, keygen.WithCurve(keygen.CurveEd448))
	doc, _ := renderToMap(t, kp)

	if doc["crv"] != "Ed448" {
		t.Errorf("crv = %v, want Ed448", doc["crv"])
	}

	x := decodeField(t, doc, "x")
	if len(x) != ed448.PublicKeySize {
		t.Errorf("len(x) = %d, want %d", len(x), ed448.PublicKeySize)
	}
	if string(x) != string(kp.PublicKey.(ed448.PublicKey)) {
		t.Error("x does not match the generated public key")
	}
	d := decodeField(t, doc, "d")
	if len(d) != ed448.SeedSize {
		t.Errorf("len(d) = %d, want %d", len(d), ed448.SeedSize)
	}
	if string(ed448.NewKeyFromSeed(d).Public().(ed448.PublicKey)) != string(x) {
		t.Error("d does not derive x")
	}
}

func TestU_Encode_RSAModulus(t *testing.T) {
	doc, _ := renderToMap(t, generate(t, keygen.WithAlgorithm(keygen.AlgRSA)))

	n := new(big.Int).SetBytes(decodeField(t, doc, "n"))
	if n.BitLen() != 2048 {
		t.Errorf("modulus = %d bits, want 2048", n.BitLen())
	}
	e := new(big.Int).SetBytes(decodeField(t, doc, "e"))
	if e.Int64() != 65537 {
		t.Errorf("e = %d, want 65537", e.Int64())
	}
}

func TestU_Encode_KeyID(t *testing.T) {
	tests := []struct {
		name string
		opts []keygen.Option
	}{
		{"[Unit] Encode kid: EdDSA", nil},
		{"[Unit] Encode kid: RSA", []keygen.Option{keygen.WithAlgorithm(keygen.AlgRSA)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kp := generate(t, tt.opts...)
			doc, _ := renderToMap(t, kp)
			if _, ok := doc["kid"]; ok {
				t.Error("kid should be absent when no key id was set")
			}

			kp.SetKeyID("foo")
			doc, _ = renderToMap(t, kp)
			if doc["kid"] != "foo" {
				t.Errorf("kid = %v, want foo", doc["kid"])
			}
		})
	}
}

func TestU_Encode_NilKeyPair(t *testing.T) {
	_, err := Encode(nil)
	var encErr *EncodingError
	if !errors.As(err, &encErr) {
		t.Fatalf("error = %v, want *EncodingError", err)
	}
}

func TestU_Encode_UnsupportedKeyMaterial(t *testing.T) {
	kp := &keygen.KeyPair{
		Algorithm:  keygen.AlgEdDSA,
		Signature:  keygen.SigEdDSA,
		PrivateKey: "not a key",
	}
	_, err := Encode(kp)
	var encErr *EncodingError
	if !errors.As(err, &encErr) {
		t.Fatalf("error = %v, want *EncodingError", err)
	}
}

func TestU_Encode_MismatchedAlgorithm(t *testing.T) {
	kp := generate(t)
	kp.Algorithm = keygen.AlgRSA

	if _, err := Encode(kp); err == nil {
		t.Error("Encode() should reject OKP material labelled as RSA")
	}
}

// =============================================================================
// [Unit] Render Tests
// =============================================================================

func TestU_Render_Layout(t *testing.T) {
	kp := generate(t)
	kp.SetKeyID("layout")
	_, data := renderToMap(t, kp)

	text := string(data)
	if !strings.HasPrefix(text, "{\n  \"") {
		t.Errorf("document should start with a two-space indented object, got %q", text[:8])
	}
	if !strings.HasSuffix(text, "}\n") {
		t.Error("document should end with a closing brace and newline")
	}
	if strings.Count(text, "\n") != 8 {
		t.Errorf("expected one line per member plus braces, got:\n%s", text)
	}
}

func TestU_Render_Deterministic(t *testing.T) {
	kp := generate(t, keygen.WithCurve(keygen.CurveEd448))
	key, err := Encode(kp)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	first, err := Render(key)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	second, err := Render(key)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if string(first) != string(second) {
		t.Error("rendering the same key twice should produce identical text")
	}
}

func TestU_Render_FreshKeysDiffer(t *testing.T) {
	doc1, _ := renderToMap(t, generate(t))
	doc2, _ := renderToMap(t, generate(t))

	if strings.Join(fieldNames(doc1), ",") != strings.Join(fieldNames(doc2), ",") {
		t.Error("documents should share the same field set")
	}
	if doc1["x"] == doc2["x"] {
		t.Error("documents should carry different key material")
	}
}

func TestU_Encode_Ed448Key(t *testing.T) {
	kp := generate(t, keygen.WithCurve(keygen.CurveEd448))
	kp.SetKeyID("edge-1")

	key, err := Encode(kp)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if key.KeyType() != jwa.OKP {
		t.Errorf("KeyType() = %s, want OKP", key.KeyType())
	}
	if key.Algorithm().String() != keygen.SigEdDSA {
		t.Errorf("Algorithm() = %s, want EdDSA", key.Algorithm())
	}
	if key.KeyID() != "edge-1" {
		t.Errorf("KeyID() = %q, want edge-1", key.KeyID())
	}

	crv, ok := key.Get(jwk.OKPCrvKey)
	if !ok || crv != jwa.Ed448 {
		t.Errorf("crv = %v, want Ed448", crv)
	}
}
