package vehicles

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"ridehail/pkg/apperr"
	"ridehail/pkg/jwt"
)

// Handler exposes vehicle HTTP endpoints.
type Handler struct{ svc *Service }

// NewHandler wires a handler to the vehicle service.
func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

// Routes returns a chi.Router with all vehicle routes.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(jwt.RequireAuth)

	r.Post("/", h.Register)
	r.Get("/", h.ListMine)
	r.Get("/{id}", h.GetByID)
	r.Patch("/{id}/review", h.Review)
	r.Delete("/{id}", h.Delete)

	return r
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	claims := jwt.GetClaims(r.Context())
	if claims.Role != jwt.RoleDriver {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "only drivers register vehicles"})
		return
	}

	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body"})
		return
	}
	v, err := h.svc.Register(r.Context(), claims.UserID, req)
	if err != nil {
		writeJSON(w, apperr.StatusCode(err), apperr.Body(err))
		return
	}
	writeJSON(w, http.StatusCreated, v)
}

func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	claims := jwt.GetClaims(r.Context())
	vs, err := h.svc.ListByDriver(r.Context(), claims.UserID)
	if err != nil {
		writeJSON(w, apperr.StatusCode(err), apperr.Body(err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"vehicles": vs})
}

func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	v, err := h.svc.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, apperr.StatusCode(err), apperr.Body(err))
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (h *Handler) Review(w http.ResponseWriter, r *http.Request) {
	claims := jwt.GetClaims(r.Context())

	var req ReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body"})
		return
	}
	v, err := h.svc.Review(r.Context(), claims.UserID, chi.URLParam(r, "id"), req)
	if err != nil {
		writeJSON(w, apperr.StatusCode(err), apperr.Body(err))
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	claims := jwt.GetClaims(r.Context())
	if err := h.svc.Delete(r.Context(), claims.UserID, chi.URLParam(r, "id")); err != nil {
		writeJSON(w, apperr.StatusCode(err), apperr.Body(err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
