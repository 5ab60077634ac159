package callbackapi

import "github.com/issuer-networks/wallet-callback/internal/callbacksig"

// CallbackVerificationResponse is the body returned for every verified
// callback, accepted or rejected.
//
// Rejections deliberately expose only the reason tag: the Detail field of
// the underlying outcome is operator-facing and is logged server-side,
// never returned to the caller.
type CallbackVerificationResponse struct {

	// VerificationID is a server-generated correlation ID for this
	// verification, echoed in the server logs.
	VerificationID string `json:"verificationId"`

	// Accepted is true when the full trust chain verified.
	Accepted bool `json:"accepted"`

	// Reason tags the failed check for rejected payloads, empty when
	// accepted.
	Reason callbacksig.FailureKind `json:"reason,omitempty"`
}
