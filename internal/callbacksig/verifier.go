// verifier.go implements single-signature ECDSA verification for the
// ECv2 protocol: NIST P-256 keys in base64 X.509 SubjectPublicKeyInfo
// form, SHA-256 digests, DER (ASN.1) encoded signatures.
package callbacksig

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"fmt"
)

// ParsePublicKey decodes a base64-encoded X.509 SubjectPublicKeyInfo
// string into a P-256 ECDSA public key. Keys on any other curve, or of
// any other algorithm, are rejected.
func ParsePublicKey(publicKeyBase64 string) (*ecdsa.PublicKey, error) {
	der, err := base64.StdEncoding.DecodeString(publicKeyBase64)
	if err != nil {
		return nil, WrapValidationError(err, "public key is not valid base64")
	}

	pub, err := x509.ParsePKIXPublicKey(der)
	if err != nil {
		return nil, WrapValidationError(err, "public key is not valid SubjectPublicKeyInfo")
	}

	ecKey, ok := pub.(*ecdsa.PublicKey)
	if !ok {
		return nil, NewValidationError(fmt.Sprintf("expected an ECDSA public key, got %T", pub))
	}

	if ecKey.Curve != elliptic.P256() {
		return nil, NewValidationError(fmt.Sprintf("public key is on curve %s, want P-256", ecKey.Curve.Params().Name))
	}

	return ecKey, nil
}

// verifySignature checks a DER-encoded ECDSA signature over message under
// the given base64 public key.
//
// This function is a boolean oracle only: malformed keys, malformed
// signatures and cryptographic mismatches all report false. Callers must
// learn accept/reject and nothing else - distinguishing "malformed" from
// "wrong" here would hand an attacker extra information. The surrounding
// pipeline attaches operator diagnostics at a coarser granularity.
func verifySignature(publicKeyBase64 string, message, signature []byte) bool {
	key, err := ParsePublicKey(publicKeyBase64)
	if err != nil {
		return false
	}

	digest := sha256.Sum256(message)
	return ecdsa.VerifyASN1(key, digest[:], signature)
}
