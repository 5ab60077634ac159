package keyfetch

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/x509"
	"encoding/base64"
	"log/slog"
	"time"

	"github.com/lestrrat-go/httprc/v3"
	"github.com/lestrrat-go/jwx/v3/jwk"

	"github.com/issuer-networks/wallet-callback/internal/callbacksig"
)

// JWKSSource serves trust anchors from a JWKS endpoint, for deployments
// that republish the issuer root keys as a JWK set. The jwk cache
// refreshes the set in the background between the configured intervals.
type JWKSSource struct {
	url    string
	cache  *jwk.Cache
	logger *slog.Logger
}

// NewJWKSSource creates a JWKSSource and registers the endpoint for
// background refresh. The first fetch happens asynchronously; until it
// completes TrustAnchors returns a fetch error.
func NewJWKSSource(ctx context.Context, url string, minInterval, maxInterval time.Duration, logger *slog.Logger) (*JWKSSource, error) {
	if url == "" {
		return nil, NewConfigError("JWKS URL is required")
	}
	if logger == nil {
		return nil, NewConfigError("logger cannot be nil")
	}

	cache, err := jwk.NewCache(ctx, httprc.NewClient())
	if err != nil {
		return nil, WrapFetchError(err, "failed to create JWK cache")
	}

	if err := cache.Register(ctx, url,
		jwk.WithMinInterval(minInterval),
		jwk.WithMaxInterval(maxInterval),
		jwk.WithWaitReady(false), // don't block startup on the first fetch
	); err != nil {
		return nil, WrapFetchError(err, "failed to register JWKS endpoint")
	}

	logger.Info("registered JWKS endpoint for background refresh",
		slog.String("jwks_url", url))

	return &JWKSSource{url: url, cache: cache, logger: logger}, nil
}

// TrustAnchors implements callbacksig.TrustAnchorSource.
func (s *JWKSSource) TrustAnchors(ctx context.Context) (callbacksig.TrustAnchorSet, error) {
	set, err := s.cache.Lookup(ctx, s.url)
	if err != nil {
		return nil, WrapFetchError(err, "JWKS lookup failed")
	}
	return anchorsFromJWKSet(set, s.logger)
}

// anchorsFromJWKSet converts the EC P-256 keys of a JWK set into trust
// anchors in base64 SubjectPublicKeyInfo form, the representation the
// verifier consumes. Keys of other types or curves are skipped with a
// log line; a set yielding no usable key is an error.
func anchorsFromJWKSet(set jwk.Set, logger *slog.Logger) (callbacksig.TrustAnchorSet, error) {
	var anchors callbacksig.TrustAnchorSet

	for i := 0; i < set.Len(); i++ {
		key, ok := set.Key(i)
		if !ok {
			continue
		}

		var raw any
		if err := jwk.Export(key, &raw); err != nil {
			logger.Warn("skipping JWK that failed to export", slog.String("error", err.Error()))
			continue
		}

		pub, ok := raw.(*ecdsa.PublicKey)
		if !ok {
			logger.Debug("skipping non-EC JWK")
			continue
		}
		if pub.Curve != elliptic.P256() {
			logger.Debug("skipping EC JWK on unsupported curve",
				slog.String("curve", pub.Curve.Params().Name))
			continue
		}

		der, err := x509.MarshalPKIXPublicKey(pub)
		if err != nil {
			logger.Warn("skipping JWK that failed PKIX encoding", slog.String("error", err.Error()))
			continue
		}

		anchors = append(anchors, callbacksig.TrustAnchor{
			PublicKeyBase64: base64.StdEncoding.EncodeToString(der),
		})
	}

	if len(anchors) == 0 {
		return nil, NewParseError("JWK set contains no usable P-256 keys")
	}

	return anchors, nil
}
