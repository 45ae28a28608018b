package trips

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"ridehail/pkg/apperr"
	"ridehail/pkg/jwt"
)

// Handler exposes trip HTTP endpoints.
type Handler struct{ svc *Service }

// NewHandler wires a handler to the trip service.
func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

// Routes returns a chi.Router with all trip routes.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(jwt.RequireAuth) // all trip endpoints need auth

	r.Post("/quote", h.Quote)
	r.Post("/", h.Create)
	r.Get("/", h.ListMine)
	r.Get("/settlements", h.Settlements)
	r.Get("/{id}", h.GetByID)
	r.Post("/{id}/accept", h.Accept)
	r.Post("/{id}/verify-pickup", h.VerifyPickup)
	r.Post("/{id}/complete", h.Complete)
	r.Post("/{id}/cancel", h.Cancel)
	r.Post("/{id}/feedback", h.Feedback)

	return r
}

func actorFrom(r *http.Request) Actor {
	c := jwt.GetClaims(r.Context())
	return Actor{ID: c.UserID, Role: c.Role}
}

func (h *Handler) Quote(w http.ResponseWriter, r *http.Request) {
	var req QuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body"})
		return
	}
	resp, err := h.svc.Quote(r.Context(), req)
	if err != nil {
		writeJSON(w, apperr.StatusCode(err), apperr.Body(err))
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body"})
		return
	}
	t, err := h.svc.Create(r.Context(), actorFrom(r), req)
	if err != nil {
		writeJSON(w, apperr.StatusCode(err), apperr.Body(err))
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	t, err := h.svc.Get(r.Context(), actorFrom(r), chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, apperr.StatusCode(err), apperr.Body(err))
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	ts, err := h.svc.ListMine(r.Context(), actorFrom(r))
	if err != nil {
		writeJSON(w, apperr.StatusCode(err), apperr.Body(err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"trips": ts})
}

func (h *Handler) Settlements(w http.ResponseWriter, r *http.Request) {
	sts, err := h.svc.Settlements(r.Context(), actorFrom(r))
	if err != nil {
		writeJSON(w, apperr.StatusCode(err), apperr.Body(err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"settlements": sts})
}

func (h *Handler) Accept(w http.ResponseWriter, r *http.Request) {
	resp, err := h.svc.Accept(r.Context(), actorFrom(r), chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, apperr.StatusCode(err), apperr.Body(err))
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) VerifyPickup(w http.ResponseWriter, r *http.Request) {
	var req VerifyPickupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body"})
		return
	}
	t, err := h.svc.VerifyPickup(r.Context(), actorFrom(r), chi.URLParam(r, "id"), req.Code)
	if err != nil {
		writeJSON(w, apperr.StatusCode(err), apperr.Body(err))
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (h *Handler) Complete(w http.ResponseWriter, r *http.Request) {
	t, err := h.svc.Complete(r.Context(), actorFrom(r), chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, apperr.StatusCode(err), apperr.Body(err))
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	var req CancelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body"})
		return
	}
	t, err := h.svc.Cancel(r.Context(), actorFrom(r), chi.URLParam(r, "id"), req.Reason)
	if err != nil {
		writeJSON(w, apperr.StatusCode(err), apperr.Body(err))
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (h *Handler) Feedback(w http.ResponseWriter, r *http.Request) {
	var req FeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body"})
		return
	}
	if err := h.svc.Feedback(r.Context(), actorFrom(r), chi.URLParam(r, "id"), req); err != nil {
		writeJSON(w, apperr.StatusCode(err), apperr.Body(err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "feedback_recorded"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
