package drivers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"ridehail/pkg/apperr"
	"ridehail/pkg/jwt"
)

// Handler exposes driver presence HTTP endpoints.
type Handler struct{ svc *Service }

// NewHandler wires a handler to the driver service.
func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

// Routes returns a chi.Router with all driver routes.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(jwt.RequireAuth)

	r.Post("/heartbeat", h.Heartbeat)
	r.Post("/vehicle", h.SelectVehicle)
	r.Post("/offline", h.GoOffline)
	r.Get("/{id}", h.GetDetail)

	return r
}

func (h *Handler) Heartbeat(w http.ResponseWriter, r *http.Request) {
	claims := jwt.GetClaims(r.Context())
	if claims.Role != jwt.RoleDriver {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "drivers only"})
		return
	}

	var req HeartbeatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body"})
		return
	}
	if err := h.svc.Heartbeat(r.Context(), claims.UserID, req.Lat, req.Lng); err != nil {
		writeJSON(w, apperr.StatusCode(err), apperr.Body(err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "online"})
}

func (h *Handler) SelectVehicle(w http.ResponseWriter, r *http.Request) {
	claims := jwt.GetClaims(r.Context())

	var req SelectVehicleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body"})
		return
	}
	if err := h.svc.SelectVehicle(r.Context(), claims.UserID, req.VehicleID); err != nil {
		writeJSON(w, apperr.StatusCode(err), apperr.Body(err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "vehicle_selected"})
}

func (h *Handler) GoOffline(w http.ResponseWriter, r *http.Request) {
	claims := jwt.GetClaims(r.Context())
	if err := h.svc.GoOffline(r.Context(), claims.UserID); err != nil {
		writeJSON(w, apperr.StatusCode(err), apperr.Body(err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "offline"})
}

func (h *Handler) GetDetail(w http.ResponseWriter, r *http.Request) {
	d, err := h.svc.GetDetail(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, apperr.StatusCode(err), apperr.Body(err))
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
