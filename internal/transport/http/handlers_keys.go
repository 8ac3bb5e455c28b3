package httptransport

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"flightsurety/internal/identity"
	"flightsurety/pkg/domain"
	"flightsurety/pkg/platform/httputil"
)

// KeysHandler derives record keys without touching ledger state, so
// collaborators can address records they have not yet seen.
type KeysHandler struct{}

func (h KeysHandler) Register(r chi.Router) {
	r.Post("/keys/flight", h.handleFlightKey)
	r.Post("/keys/insurance", h.handleInsuranceKey)
}

func (h KeysHandler) handleFlightKey(w http.ResponseWriter, r *http.Request) {
	var req FlightKeyRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	airline, flight, err := req.Parse()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	key := identity.FlightKey(airline, flight, req.Departure)
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"flight_key": key.String()})
}

func (h KeysHandler) handleInsuranceKey(w http.ResponseWriter, r *http.Request) {
	var req InsuranceKeyRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	flight, err := domain.ParseFlightKey(req.FlightKey)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	key := identity.InsuranceKey(flight, req.TicketNumber)
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"insurance_key": key.String()})
}
