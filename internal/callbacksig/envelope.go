package callbacksig

// envelope.go defines the decoded form of the callback wire payload and
// the parsers for the two embedded JSON texts (the intermediate signing
// key and the signed message).
//
// The critical contract: the signedKey and signedMessage wire fields are
// consumed twice - once parsed for their fields, and once verbatim as
// input to canonical encoding. Both are therefore retained as the exact
// original text; re-serializing them would change the signed bytes and
// break verification.

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strconv"
)

// SignedEnvelope is the decoded callback payload.
type SignedEnvelope struct {

	// Signature is the DER-encoded ECDSA signature over the canonical
	// message bytes, made with the intermediate signing key.
	Signature []byte

	// Intermediate carries the short-lived signing key and the root-key
	// signatures that certify it.
	Intermediate IntermediateKeyEnvelope

	// ProtocolVersion must equal ProtocolSigningOnly for this verifier.
	ProtocolVersion string

	// SignedMessage is the byte-for-byte original text of the signedMessage
	// wire field.
	SignedMessage string
}

// IntermediateKeyEnvelope holds the serialized intermediate key and its
// certifying signatures.
type IntermediateKeyEnvelope struct {

	// SignedKey is the byte-for-byte original text of the signedKey wire
	// field (a JSON document with keyValue and keyExpiration).
	SignedKey string

	// Signatures are DER-encoded ECDSA signatures by root keys over the
	// canonical signed-key bytes, in wire order. More than one may be
	// present during root-key rotation; any one verifying against a
	// current trust anchor is sufficient.
	Signatures [][]byte
}

// IntermediateKeyMaterial is the content of the signedKey text.
type IntermediateKeyMaterial struct {

	// PublicKeyBase64 is the intermediate public key in base64
	// SubjectPublicKeyInfo form.
	PublicKeyBase64 string

	// ExpirationEpochMillis is when the intermediate key stops being
	// valid, in milliseconds since the epoch.
	ExpirationEpochMillis int64
}

// SignedMessageFields is the content of the signedMessage text.
//
// At least one of ClassID/ObjectID must be present and bound to the
// expected recipient for the payload to be accepted.
type SignedMessageFields struct {
	ClassID               string
	ObjectID              string
	EventType             string
	ExpirationEpochMillis int64
	Count                 int64
	Nonce                 string
}

// epochMillis decodes a millisecond epoch value that may arrive either as
// a JSON number or as a decimal string (the issuer API sends strings).
type epochMillis int64

func (m *epochMillis) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid millisecond value %q", s)
		}
		*m = epochMillis(v)
		return nil
	}

	var v int64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*m = epochMillis(v)
	return nil
}

// Wire field names are fixed by the callback protocol.
type wireEnvelope struct {
	Signature              string              `json:"signature"`
	IntermediateSigningKey wireIntermediateKey `json:"intermediateSigningKey"`
	ProtocolVersion        string              `json:"protocolVersion"`
	SignedMessage          string              `json:"signedMessage"`
}

type wireIntermediateKey struct {
	SignedKey  string   `json:"signedKey"`
	Signatures []string `json:"signatures"`
}

// DecodeEnvelope decodes the raw callback payload into a SignedEnvelope.
//
// Base64 signature fields are decoded here so that the pipeline works on
// raw bytes; the signedKey and signedMessage texts are carried through
// verbatim. Structural failures (invalid JSON, missing fields, bad
// base64) return a validation error - the caller maps these to the
// MalformedEnvelope reject outcome.
func DecodeEnvelope(data []byte) (*SignedEnvelope, error) {
	var wire wireEnvelope
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, WrapValidationError(err, "payload is not valid JSON")
	}

	if wire.Signature == "" {
		return nil, NewValidationError("signature is required")
	}
	if wire.ProtocolVersion == "" {
		return nil, NewValidationError("protocolVersion is required")
	}
	if wire.SignedMessage == "" {
		return nil, NewValidationError("signedMessage is required")
	}
	if wire.IntermediateSigningKey.SignedKey == "" {
		return nil, NewValidationError("intermediateSigningKey.signedKey is required")
	}
	if len(wire.IntermediateSigningKey.Signatures) == 0 {
		return nil, NewValidationError("intermediateSigningKey.signatures must contain at least one entry")
	}

	signature, err := base64.StdEncoding.DecodeString(wire.Signature)
	if err != nil {
		return nil, WrapValidationError(err, "signature is not valid base64")
	}

	sigs := make([][]byte, len(wire.IntermediateSigningKey.Signatures))
	for i, s := range wire.IntermediateSigningKey.Signatures {
		decoded, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			return nil, WrapValidationError(err, fmt.Sprintf("intermediateSigningKey.signatures[%d] is not valid base64", i))
		}
		sigs[i] = decoded
	}

	return &SignedEnvelope{
		Signature: signature,
		Intermediate: IntermediateKeyEnvelope{
			SignedKey:  wire.IntermediateSigningKey.SignedKey,
			Signatures: sigs,
		},
		ProtocolVersion: wire.ProtocolVersion,
		SignedMessage:   wire.SignedMessage,
	}, nil
}

// parseIntermediateKeyMaterial parses the signedKey text.
func parseIntermediateKeyMaterial(signedKey string) (*IntermediateKeyMaterial, error) {
	var wire struct {
		KeyValue      string      `json:"keyValue"`
		KeyExpiration epochMillis `json:"keyExpiration"`
	}
	if err := json.Unmarshal([]byte(signedKey), &wire); err != nil {
		return nil, WrapValidationError(err, "signedKey is not valid JSON")
	}
	if wire.KeyValue == "" {
		return nil, NewValidationError("signedKey.keyValue is required")
	}
	if wire.KeyExpiration == 0 {
		return nil, NewValidationError("signedKey.keyExpiration is required")
	}

	return &IntermediateKeyMaterial{
		PublicKeyBase64:       wire.KeyValue,
		ExpirationEpochMillis: int64(wire.KeyExpiration),
	}, nil
}

// parseSignedMessageFields parses the signedMessage text.
func parseSignedMessageFields(signedMessage string) (*SignedMessageFields, error) {
	var wire struct {
		ClassID       string      `json:"classId"`
		ObjectID      string      `json:"objectId"`
		EventType     string      `json:"eventType"`
		ExpTimeMillis epochMillis `json:"expTimeMillis"`
		Count         epochMillis `json:"count"`
		Nonce         string      `json:"nonce"`
	}
	if err := json.Unmarshal([]byte(signedMessage), &wire); err != nil {
		return nil, WrapValidationError(err, "signedMessage is not valid JSON")
	}
	if wire.ClassID == "" && wire.ObjectID == "" {
		return nil, NewValidationError("signedMessage must carry a classId or an objectId")
	}

	return &SignedMessageFields{
		ClassID:               wire.ClassID,
		ObjectID:              wire.ObjectID,
		EventType:             wire.EventType,
		ExpirationEpochMillis: int64(wire.ExpTimeMillis),
		Count:                 int64(wire.Count),
		Nonce:                 wire.Nonce,
	}, nil
}
