package keygen

import "strconv"

// Request describes the key pair to generate. It is immutable once built.
//
// Fields that only apply to one algorithm are kept but never read when the
// other algorithm is selected.
type Request struct {
	algorithm  Algorithm
	curve      Curve
	rsaKeySize int
	rsaDigest  DigestSize
	keyID      string
	hasKeyID   bool
}

// Option sets one field of a Request during construction.
type Option func(*Request)

// WithAlgorithm selects the key algorithm.
func WithAlgorithm(alg Algorithm) Option {
	return func(r *Request) { r.algorithm = alg }
}

// WithCurve selects the EdDSA curve.
func WithCurve(c Curve) Option {
	return func(r *Request) { r.curve = c }
}

// WithRSAKeySize sets the RSA modulus length in bits.
func WithRSAKeySize(bits int) Option {
	return func(r *Request) { r.rsaKeySize = bits }
}

// WithRSADigestSize selects the RSA signature variant.
func WithRSADigestSize(d DigestSize) Option {
	return func(r *Request) { r.rsaDigest = d }
}

// WithKeyID assigns a key id. Any string is accepted, including "".
func WithKeyID(kid string) Option {
	return func(r *Request) {
		r.keyID = kid
		r.hasKeyID = true
	}
}

// DefaultRequest returns a request holding every documented default.
func DefaultRequest() Request {
	return Request{
		algorithm:  DefaultAlgorithm,
		curve:      DefaultCurve,
		rsaKeySize: DefaultRSAKeySize,
		rsaDigest:  DefaultDigestSize,
	}
}

// NewRequest starts from DefaultRequest and applies opts in order.
func NewRequest(opts ...Option) Request {
	r := DefaultRequest()
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

func (r Request) Algorithm() Algorithm      { return r.algorithm }
func (r Request) Curve() Curve              { return r.curve }
func (r Request) RSAKeySize() int           { return r.rsaKeySize }
func (r Request) RSADigestSize() DigestSize { return r.rsaDigest }

// KeyID returns the key id and whether one was supplied.
func (r Request) KeyID() (string, bool) { return r.keyID, r.hasKeyID }

// Describe returns a short summary of the parameters that apply to the
// selected algorithm, e.g. "eddsa/ed25519" or "rsa-2048/RS256".
func (r Request) Describe() string {
	switch r.algorithm {
	case AlgEdDSA:
		return r.algorithm.String() + "/" + r.curve.String()
	case AlgRSA:
		return r.algorithm.String() + "-" + strconv.Itoa(r.rsaKeySize) + "/" + rsaSignatureName(r.rsaDigest)
	default:
		return r.algorithm.String()
	}
}
