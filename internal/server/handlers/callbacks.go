package handlers

// callbacks.go implements the POST /v1/callbacks endpoint

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/issuer-networks/wallet-callback/internal/callbackapi"
	"github.com/issuer-networks/wallet-callback/internal/callbacksig"
	"github.com/issuer-networks/wallet-callback/internal/logger"
)

// AnchorRefresher forces a trust-anchor refetch, bypassing cache
// freshness. Implemented by keyfetch.Cache.
type AnchorRefresher interface {
	ForceRefresh(ctx context.Context) (callbacksig.TrustAnchorSet, error)
}

// CallbackHandler handles POST /v1/callbacks requests.
type CallbackHandler struct {
	service *callbacksig.Service

	// refresher, when set, is used to refetch trust anchors and retry
	// once after an untrusted-intermediate-key rejection. A rejection on
	// a stale anchor snapshot right after a root-key rotation is
	// otherwise indistinguishable from a forgery.
	refresher AnchorRefresher
}

// NewCallbackHandler creates a handler for callback verification
// requests. refresher may be nil when the anchor source has no cache to
// bypass.
func NewCallbackHandler(service *callbacksig.Service, refresher AnchorRefresher) *CallbackHandler {
	return &CallbackHandler{
		service:   service,
		refresher: refresher,
	}
}

// HandleCallback godoc
//
//	@Summary		Verify a wallet callback payload
//	@Description	Verifies the signature chain, expiry and recipient binding of a
//	@Description	signed callback payload and reports the outcome.
//	@Description
//	@Description	The response always carries a verificationId for correlation with the
//	@Description	server logs. Rejected payloads get a 400 with a machine-readable
//	@Description	reason tag; no further diagnostic detail is exposed to the caller.
//	@Tags			Callbacks
//	@Accept			json
//	@Produce		json
//	@Success		200	{object}	callbackapi.CallbackVerificationResponse	"Payload accepted"
//	@Failure		400	{object}	callbackapi.CallbackVerificationResponse	"Payload rejected"
//	@Failure		413	{object}	callbackapi.ErrorResponse					"Request too large"
//	@Failure		429	{object}	callbackapi.ErrorResponse					"Rate limit exceeded"
//	@Router			/v1/callbacks [post]
func (h *CallbackHandler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	reqLogger := logger.ContextRequestLogger(r.Context())

	payload, err := io.ReadAll(r.Body)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			callbackapi.RespondWithErrorResponse(w, r,
				callbackapi.NewRequestTooLargeError("Request body exceeds the maximum allowed size"))
			return
		}
		callbackapi.RespondWithErrorResponse(w, r,
			callbackapi.WrapMalformedRequestError(err, "failed to read request body"))
		return
	}

	verificationID := uuid.NewString()
	logger.ContextWithLogAttrs(r.Context(),
		slog.String("verification_id", verificationID),
	)

	outcome := h.service.VerifyPayload(r.Context(), payload)

	// One retry after a forced anchor refresh: the issuer may have
	// rotated root keys since the cached snapshot was taken.
	if !outcome.Accepted && outcome.Reason == callbacksig.FailureUntrustedIntermediateKey && h.refresher != nil {
		reqLogger.Info("intermediate key not trusted by cached anchors, forcing refresh",
			slog.String("verification_id", verificationID))

		if _, err := h.refresher.ForceRefresh(r.Context()); err != nil {
			reqLogger.Warn("forced trust-anchor refresh failed",
				slog.String("verification_id", verificationID),
				slog.String("error", err.Error()))
		} else {
			outcome = h.service.VerifyPayload(r.Context(), payload)
		}
	}

	response := callbackapi.CallbackVerificationResponse{
		VerificationID: verificationID,
		Accepted:       outcome.Accepted,
		Reason:         outcome.Reason,
	}

	if outcome.Accepted {
		reqLogger.Info("callback accepted",
			slog.String("verification_id", verificationID))
		callbackapi.RespondWithJSONPayload(w, http.StatusOK, response)
		return
	}

	// Detail is operator-facing and stays in the logs
	reqLogger.Warn("callback rejected",
		slog.String("verification_id", verificationID),
		slog.String("reason", string(outcome.Reason)),
		slog.String("detail", outcome.Detail))
	logger.ContextWithLogAttrs(r.Context(),
		slog.String("reject_reason", string(outcome.Reason)),
	)

	callbackapi.RespondWithJSONPayload(w, http.StatusBadRequest, response)
}
