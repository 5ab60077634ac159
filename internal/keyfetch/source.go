// Package keyfetch retrieves and caches the trust-anchor sets the
// callback verifier checks intermediate signing keys against.
//
// Two upstream formats are supported:
//   - the issuer's native root-key document (HTTPSource), a JSON body of
//     the form {"keys":[{"keyValue":..., "protocolVersion":...}]}
//   - a standard JWKS endpoint (JWKSSource), for deployments that
//     republish the root keys as a JWK set
//
// Both produce callbacksig.TrustAnchorSet snapshots. Freshness policy
// lives here, not in the verifier: wrap either source in a Cache to get
// TTL-based refresh plus ForceRefresh for rotation recovery.
package keyfetch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/issuer-networks/wallet-callback/internal/callbacksig"
)

// maxAnchorResponseBytes bounds how much of the upstream response body is
// read. Real root-key documents are a few kilobytes.
const maxAnchorResponseBytes = 1 << 20

// rootKeyDocument is the issuer's published root-key JSON format.
type rootKeyDocument struct {
	Keys []struct {
		KeyValue        string `json:"keyValue"`
		ProtocolVersion string `json:"protocolVersion"`
	} `json:"keys"`
}

// ParseTrustAnchors parses the issuer root-key document, keeping only the
// keys published for the signing-only protocol. Keys for other protocol
// versions routinely appear in the same document and are skipped, not
// rejected.
func ParseTrustAnchors(data []byte) (callbacksig.TrustAnchorSet, error) {
	var doc rootKeyDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, WrapParseError(err, "root-key document is not valid JSON")
	}
	if len(doc.Keys) == 0 {
		return nil, NewParseError("root-key document contains no keys")
	}

	var anchors callbacksig.TrustAnchorSet
	for _, key := range doc.Keys {
		if key.ProtocolVersion != callbacksig.ProtocolSigningOnly {
			continue
		}
		if key.KeyValue == "" {
			return nil, NewParseError("root-key entry is missing keyValue")
		}
		anchors = append(anchors, callbacksig.TrustAnchor{PublicKeyBase64: key.KeyValue})
	}
	if len(anchors) == 0 {
		return nil, NewParseError(fmt.Sprintf("root-key document has no keys for protocol %s", callbacksig.ProtocolSigningOnly))
	}

	return anchors, nil
}

// HTTPSource fetches the issuer root-key document over HTTPS on every
// TrustAnchors call. Wrap it in a Cache for production use.
type HTTPSource struct {
	url    string
	client *http.Client
	logger *slog.Logger
}

// NewHTTPSource creates an HTTPSource for the given root-key URL.
func NewHTTPSource(url string, timeout time.Duration, logger *slog.Logger) (*HTTPSource, error) {
	if url == "" {
		return nil, NewConfigError("root-key URL is required")
	}
	if timeout == 0 {
		return nil, NewConfigError("HTTP timeout is required")
	}
	if logger == nil {
		return nil, NewConfigError("logger cannot be nil")
	}

	return &HTTPSource{
		url:    url,
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}, nil
}

// TrustAnchors implements callbacksig.TrustAnchorSource.
func (s *HTTPSource) TrustAnchors(ctx context.Context) (callbacksig.TrustAnchorSet, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, WrapFetchError(err, "failed to build root-key request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, WrapFetchError(err, "root-key fetch failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, NewFetchError(fmt.Sprintf("root-key endpoint returned status %d", resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxAnchorResponseBytes))
	if err != nil {
		return nil, WrapFetchError(err, "failed to read root-key response")
	}

	anchors, err := ParseTrustAnchors(body)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("fetched trust anchors",
		slog.String("url", s.url),
		slog.Int("anchors", len(anchors)))

	return anchors, nil
}
