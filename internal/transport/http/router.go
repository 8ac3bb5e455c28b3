package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"flightsurety/internal/platform/metrics"
	"flightsurety/pkg/platform/httputil"
	"flightsurety/pkg/platform/middleware/admin"
	"flightsurety/pkg/platform/middleware/auth"
	"flightsurety/pkg/platform/middleware/metadata"
	request "flightsurety/pkg/platform/middleware/request"
	"flightsurety/pkg/platform/middleware/requesttime"
)

// RouterDeps are the collaborators of the HTTP boundary.
type RouterDeps struct {
	Ledger     LedgerService
	Balances   BalanceReader
	Events     EventReader
	Validator  auth.JWTValidator
	Issuer     TokenIssuer
	AdminToken string
	TokenTTL   time.Duration
	Metrics    *metrics.Metrics
	Logger     *slog.Logger
	ReqTimeout time.Duration
}

// NewRouter wires every public endpoint. Handlers stay thin and delegate to
// the ledger so transport concerns remain isolated.
func NewRouter(deps RouterDeps) http.Handler {
	timeout := deps.ReqTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	r := chi.NewRouter()
	r.Use(request.Recovery(deps.Logger))
	r.Use(request.RequestID)
	r.Use(request.Logger(deps.Logger))
	r.Use(metadata.ClientMetadata)
	r.Use(requesttime.Middleware)
	r.Use(request.Timeout(timeout))
	r.Use(request.ContentTypeJSON)
	if deps.Metrics != nil {
		r.Use(request.Latency(deps.Metrics))
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	ledgerHandler := NewLedgerHandler(deps.Ledger, deps.Balances, deps.Logger)
	r.Route("/v1", func(v1 chi.Router) {
		ledgerHandler.RegisterPublic(v1)
		KeysHandler{}.Register(v1)
		if deps.Events != nil {
			EventsHandler{events: deps.Events}.Register(v1)
		}
		v1.Group(func(authed chi.Router) {
			authed.Use(auth.RequireCaller(deps.Validator, deps.Logger))
			ledgerHandler.RegisterAuthenticated(authed)
		})
	})

	if deps.Issuer != nil {
		adminHandler := NewAdminHandler(deps.Issuer, deps.TokenTTL, deps.Logger)
		r.Route("/admin", func(ar chi.Router) {
			ar.Use(admin.RequireAdminToken(deps.AdminToken, deps.Logger))
			adminHandler.Register(ar)
		})
	}

	return r
}
