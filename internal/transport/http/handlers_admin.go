package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"flightsurety/pkg/domain"
	"flightsurety/pkg/platform/httputil"
	request "flightsurety/pkg/platform/middleware/request"
)

// TokenIssuer signs caller tokens.
type TokenIssuer interface {
	GenerateCallerToken(caller domain.CallerID, expiresIn time.Duration) (string, error)
}

// AdminHandler issues caller tokens to operators holding the admin token.
type AdminHandler struct {
	issuer     TokenIssuer
	defaultTTL time.Duration
	logger     *slog.Logger
}

func NewAdminHandler(issuer TokenIssuer, defaultTTL time.Duration, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{issuer: issuer, defaultTTL: defaultTTL, logger: logger}
}

func (h *AdminHandler) Register(r chi.Router) {
	r.Post("/tokens", h.handleIssueToken)
}

func (h *AdminHandler) handleIssueToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req IssueTokenRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	caller, ttl, err := req.Parse(h.defaultTTL)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	token, err := h.issuer.GenerateCallerToken(caller, ttl)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to issue caller token",
			"request_id", request.GetRequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	h.logger.InfoContext(ctx, "caller token issued",
		"caller", caller.String(),
		"ttl", ttl.String(),
		"request_id", request.GetRequestID(ctx),
	)
	httputil.WriteJSON(w, http.StatusCreated, map[string]any{
		"access_token": token,
		"token_type":   "Bearer",
		"expires_in":   int64(ttl.Seconds()),
	})
}
