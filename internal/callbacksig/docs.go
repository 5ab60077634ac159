// Package callbacksig verifies issuer callback payloads signed under the
// two-tier ECv2SigningOnly scheme used by wallet pass issuer APIs.
//
// The issuer publishes long-lived root public keys (trust anchors). Each
// callback carries a short-lived intermediate signing key certified by a
// root key, plus a message signature made with the intermediate key. A
// payload is accepted only when the whole chain checks out: supported
// protocol version, recipient binding, message and intermediate-key expiry,
// intermediate key certified by a current trust anchor, and message
// signature valid under that intermediate key.
//
// Verification is a pure function of (envelope, trust anchors, recipient ID,
// clock) - the package holds no state and is safe for concurrent use.
// Fetching and caching the trust anchors is the caller's responsibility
// (see the keyfetch package).
package callbacksig
