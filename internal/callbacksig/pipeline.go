package callbacksig

// pipeline.go implements the full accept/reject decision for one callback
// envelope.
//
// # Check ordering
//
// The checks run strictly in order and short-circuit on first failure:
//
//	1. protocol version
//	2. recipient binding
//	3. message expiry
//	4. intermediate key expiry
//	5. intermediate key certified by a trust anchor
//	6. message signature under the intermediate key
//
// The ordering matters twice over: cheap structural checks run before the
// cryptographic ones, and the intermediate key's expiry is enforced before
// the key is trusted for anything - an expired intermediate key must never
// be used to verify the message signature, even when its chain to a root
// key is otherwise valid.
//
// Failures are always reported as a tagged VerificationOutcome, never
// retried and never raised as errors or panics past this boundary. Retry
// of the upstream trust-anchor fetch belongs to the fetch collaborator.

import (
	"fmt"
	"time"
)

const (
	// senderID identifies the issuing authority in every canonical signing
	// string. It is a constant of the trust domain, not configuration:
	// making it caller-overridable would let an attacker-supplied value
	// substitute into the signed bytes.
	senderID = "GooglePayPasses"

	// ProtocolSigningOnly is the only protocol version this verifier
	// accepts. The encrypted ECv2 variant is out of scope.
	ProtocolSigningOnly = "ECv2SigningOnly"
)

// FailureKind is the machine-readable reason a payload was rejected.
type FailureKind string

const (
	// FailureMalformedEnvelope: the payload failed structural decoding
	// before any trust decision could be made.
	FailureMalformedEnvelope FailureKind = "malformed_envelope"

	// FailureUnsupportedProtocol: protocolVersion is not ECv2SigningOnly.
	FailureUnsupportedProtocol FailureKind = "unsupported_protocol"

	// FailureRecipientMismatch: neither classId nor objectId is bound to
	// the expected recipient ID.
	FailureRecipientMismatch FailureKind = "recipient_mismatch"

	// FailureMessageExpired: the signed message's expTimeMillis is not
	// strictly in the future.
	FailureMessageExpired FailureKind = "message_expired"

	// FailureMalformedIntermediateKey: the signedKey text could not be
	// parsed into key material.
	FailureMalformedIntermediateKey FailureKind = "malformed_intermediate_key"

	// FailureIntermediateKeyExpired: the intermediate key's keyExpiration
	// is not strictly in the future.
	FailureIntermediateKeyExpired FailureKind = "intermediate_key_expired"

	// FailureUntrustedIntermediateKey: no (trust anchor, signature) pair
	// certifies the intermediate key. Also produced when the trust-anchor
	// set is empty (e.g. the upstream fetch failed).
	FailureUntrustedIntermediateKey FailureKind = "untrusted_intermediate_key"

	// FailureInvalidMessageSignature: the message signature does not
	// verify under the certified intermediate key.
	FailureInvalidMessageSignature FailureKind = "invalid_message_signature"
)

// VerificationOutcome is the terminal result of a verification call. It
// is always a value, never an error: rejection is a normal result, not an
// exceptional one.
type VerificationOutcome struct {

	// Accepted is true only when every check passed.
	Accepted bool

	// Reason tags the first failed check when not accepted.
	Reason FailureKind `json:",omitempty"`

	// Detail carries operator-facing diagnostics for rejected payloads.
	// It must never reach the sender of the payload - the reason code is
	// the only information the protocol permits to leak.
	Detail string `json:",omitempty"`
}

func accept() VerificationOutcome {
	return VerificationOutcome{Accepted: true}
}

func reject(reason FailureKind, detail string) VerificationOutcome {
	return VerificationOutcome{Reason: reason, Detail: detail}
}

// Verify runs the full trust-chain decision for one decoded envelope.
//
// It is a pure function of its inputs: no I/O, no clock reads (the caller
// supplies now), no shared state. A nil or structurally incomplete
// envelope rejects with FailureMalformedEnvelope.
func Verify(env *SignedEnvelope, anchors TrustAnchorSet, recipientID string, now time.Time) VerificationOutcome {
	if env == nil ||
		len(env.Signature) == 0 ||
		env.SignedMessage == "" ||
		env.Intermediate.SignedKey == "" ||
		len(env.Intermediate.Signatures) == 0 {
		return reject(FailureMalformedEnvelope, "envelope is missing required fields")
	}

	// Step 1: protocol version. Runs before any parsing or cryptographic
	// work so unsupported variants are turned away at the door.
	if env.ProtocolVersion != ProtocolSigningOnly {
		return reject(FailureUnsupportedProtocol,
			fmt.Sprintf("unsupported protocol version %q, want %q", env.ProtocolVersion, ProtocolSigningOnly))
	}

	fields, err := parseSignedMessageFields(env.SignedMessage)
	if err != nil {
		return reject(FailureMalformedEnvelope, fmt.Sprintf("signedMessage parse failed: %v", err))
	}

	// Step 2: recipient binding.
	if !recipientBound(recipientID, fields.ClassID, fields.ObjectID) {
		return reject(FailureRecipientMismatch,
			fmt.Sprintf("neither classId %q nor objectId %q is bound to recipient %q", fields.ClassID, fields.ObjectID, recipientID))
	}

	// Step 3: message expiry.
	if !isFuture(fields.ExpirationEpochMillis, now) {
		return reject(FailureMessageExpired,
			fmt.Sprintf("message expired at %d", fields.ExpirationEpochMillis))
	}

	// Step 4: intermediate key material and expiry. The expiry check must
	// precede the signature checks - see the package ordering note above.
	material, err := parseIntermediateKeyMaterial(env.Intermediate.SignedKey)
	if err != nil {
		return reject(FailureMalformedIntermediateKey, fmt.Sprintf("signedKey parse failed: %v", err))
	}
	if !isFuture(material.ExpirationEpochMillis, now) {
		return reject(FailureIntermediateKeyExpired,
			fmt.Sprintf("intermediate key expired at %d", material.ExpirationEpochMillis))
	}

	// Step 5: the intermediate key must chain to a trust anchor. The
	// signed-key canonical bytes cover the sender ID, the protocol version
	// and the verbatim signedKey text.
	keyBytes, err := CanonicalSigningBytes(senderID, ProtocolSigningOnly, env.Intermediate.SignedKey)
	if err != nil {
		return reject(FailureMalformedIntermediateKey, fmt.Sprintf("signedKey canonical encoding failed: %v", err))
	}

	// Every (anchor, signature) pair is checked without an early exit, so
	// a mismatch walks the same path as a match. Both sets are single-digit
	// in practice - the cross product is not a performance concern.
	trusted := false
	for _, anchor := range anchors {
		for _, sig := range env.Intermediate.Signatures {
			if verifySignature(anchor.PublicKeyBase64, keyBytes, sig) {
				trusted = true
			}
		}
	}
	if !trusted {
		return reject(FailureUntrustedIntermediateKey,
			fmt.Sprintf("no signature chain to any of the %d trust anchors", len(anchors)))
	}

	// Step 6: message signature under the now-trusted intermediate key.
	// The message canonical bytes additionally cover the recipient ID, so
	// a payload signed for a different recipient can never verify here.
	msgBytes, err := CanonicalSigningBytes(senderID, recipientID, ProtocolSigningOnly, env.SignedMessage)
	if err != nil {
		return reject(FailureMalformedEnvelope, fmt.Sprintf("signedMessage canonical encoding failed: %v", err))
	}
	if !verifySignature(material.PublicKeyBase64, msgBytes, env.Signature) {
		return reject(FailureInvalidMessageSignature, "message signature does not verify under the intermediate key")
	}

	return accept()
}
