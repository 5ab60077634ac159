package callbacksig

import "context"

// TrustAnchor is a long-lived root public key published by the protocol
// authority. Root keys are used only to certify intermediate signing keys,
// never to sign messages directly.
type TrustAnchor struct {

	// PublicKeyBase64 is the root public key in base64
	// SubjectPublicKeyInfo form.
	PublicKeyBase64 string
}

// TrustAnchorSet is an immutable snapshot of the currently published root
// keys, in publication order.
//
// The verifier treats the set as opaque input and never mutates or
// refreshes it - freshness is the fetch collaborator's responsibility
// (see the keyfetch package). An empty set matches no intermediate key,
// so fetch failures upstream naturally surface as
// FailureUntrustedIntermediateKey.
type TrustAnchorSet []TrustAnchor

// TrustAnchorSource supplies the current trust-anchor snapshot.
//
// Implementations own fetch, caching and refresh policy; every call must
// return one consistent, immutable snapshot.
type TrustAnchorSource interface {
	TrustAnchors(ctx context.Context) (TrustAnchorSet, error)
}

// PayloadDecoder decodes a raw callback payload into a SignedEnvelope.
//
// The default implementation is JSONDecoder; the interface exists so the
// service can be exercised against alternative wire framings in tests.
type PayloadDecoder interface {
	DecodeEnvelope(data []byte) (*SignedEnvelope, error)
}

// JSONDecoder is the standard PayloadDecoder for the JSON wire format.
type JSONDecoder struct{}

func (JSONDecoder) DecodeEnvelope(data []byte) (*SignedEnvelope, error) {
	return DecodeEnvelope(data)
}
