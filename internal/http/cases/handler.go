package cases

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/auditcase/internal/cases"
	"github.com/MrJamesThe3rd/auditcase/internal/engine"
	"github.com/MrJamesThe3rd/auditcase/internal/population"
	"github.com/MrJamesThe3rd/auditcase/internal/validation"
)

type Handler struct {
	svc *cases.Service
}

func NewHandler(svc *cases.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Post("/{id}/render", h.render)
	r.Get("/{id}/answer-keys", h.answerKeys)
}

type createCaseRequest struct {
	Seed      string           `json:"seed"`
	Overrides overridesPayload `json:"overrides"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createCaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if strings.TrimSpace(req.Seed) == "" {
		http.Error(w, "seed is required", http.StatusBadRequest)
		return
	}

	o := engine.Overrides{
		DisbursementCount: req.Overrides.DisbursementCount,
		VendorCount:       req.Overrides.VendorCount,
		InvoicesPerVendor: req.Overrides.InvoicesPerVendor,
	}

	if req.Overrides.YearEnd != nil {
		o.YearEnd = new(req.Overrides.YearEnd.Time)
	}

	c, err := h.svc.Create(r.Context(), req.Seed, o)
	if err != nil {
		var exhausted *engine.ExhaustedError

		switch {
		case errors.As(err, &exhausted):
			slog.Error("case generation exhausted", "seed", req.Seed, "attempts", exhausted.Attempts,
				"codes", validation.Codes(exhausted.Issues))
			writeJSON(w, http.StatusUnprocessableEntity, exhaustedResponse{
				Error:    engine.ErrValidationExhausted.Error(),
				Attempts: exhausted.Attempts,
				Codes:    validation.Codes(exhausted.Issues),
				Issues:   exhausted.Issues,
			})
		case errors.Is(err, population.ErrInvalidOptions):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			slog.Error("failed to create case", "seed", req.Seed, "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
		}

		return
	}

	writeJSON(w, http.StatusCreated, toResponse(c))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	cs, err := h.svc.List(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, toSummaryList(cs))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	c, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeLookupError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toResponse(c))
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	c, err := h.svc.Render(r.Context(), id)
	if err != nil && c == nil {
		writeLookupError(w, err)
		return
	}

	status := http.StatusOK
	if err != nil {
		slog.Error("rendering incomplete", "case_id", id, "error", err)

		status = http.StatusBadGateway
	}

	writeJSON(w, status, toResponse(c))
}

func (h *Handler) answerKeys(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	keys, err := h.svc.AnswerKeys(r.Context(), id)
	if err != nil {
		writeLookupError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, keys)
}

func parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return uuid.Nil, false
	}

	return id, true
}

func writeLookupError(w http.ResponseWriter, err error) {
	if errors.Is(err, cases.ErrNotFound) {
		http.Error(w, "case not found", http.StatusNotFound)
		return
	}

	slog.Error("failed to load case", "error", err)
	http.Error(w, "internal error", http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
