package export

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/auditcase/internal/cases"
	"github.com/MrJamesThe3rd/auditcase/internal/export"
)

type Handler struct {
	cases *cases.Service
	svc   *export.Service
}

func NewHandler(casesSvc *cases.Service, svc *export.Service) *Handler {
	return &Handler{cases: casesSvc, svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/{id}", h.download)
}

func (h *Handler) download(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	c, err := h.cases.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, cases.ErrNotFound) {
			http.Error(w, "case not found", http.StatusNotFound)
			return
		}

		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.ArchiveName(c.Plan)))

	if err := h.svc.Zip(w, c.Plan); err != nil {
		slog.Error("failed to create zip", "case_id", id, "error", err)
	}
}
