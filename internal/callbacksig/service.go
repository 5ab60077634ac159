package callbacksig

import (
	"context"
	"fmt"
	"time"
)

// Service binds the verification pipeline to its collaborators: a payload
// decoder, a trust-anchor source and a clock. It carries no mutable state
// and a single instance can be shared across goroutines.
type Service struct {

	// Decoder decodes raw callback payloads. Defaults to JSONDecoder.
	Decoder PayloadDecoder

	// Anchors supplies the current trust-anchor snapshot.
	Anchors TrustAnchorSource

	// RecipientID is the deployment-specific recipient identifier (the
	// issuer account number) the signed message must be bound to.
	RecipientID string

	// Now supplies the verification time. Defaults to time.Now; tests
	// inject a fixed clock.
	Now func() time.Time
}

// VerifyPayload decodes and verifies one raw callback payload.
//
// A trust-anchor fetch failure is converted to an empty set: the pipeline
// then rejects with FailureUntrustedIntermediateKey rather than surfacing
// a transport error, keeping the outcome taxonomy closed. Callers that
// cache anchors should force a refresh and retry once on that reason to
// tolerate root-key rotation (see keyfetch.Cache).
func (s *Service) VerifyPayload(ctx context.Context, payload []byte) VerificationOutcome {
	decoder := s.Decoder
	if decoder == nil {
		decoder = JSONDecoder{}
	}

	env, err := decoder.DecodeEnvelope(payload)
	if err != nil {
		return reject(FailureMalformedEnvelope, fmt.Sprintf("payload decode failed: %v", err))
	}

	var anchors TrustAnchorSet
	if s.Anchors != nil {
		anchors, err = s.Anchors.TrustAnchors(ctx)
		if err != nil {
			// an empty set matches nothing; the detail is replaced below by
			// the pipeline's own diagnostics
			anchors = nil
		}
	}

	now := s.Now
	if now == nil {
		now = time.Now
	}

	return Verify(env, anchors, s.RecipientID, now())
}
