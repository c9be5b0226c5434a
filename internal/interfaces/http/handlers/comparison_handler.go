package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	domain "github.com/turtacn/policylens/internal/domain/comparison"
	"github.com/turtacn/policylens/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/policylens/pkg/errors"
	"github.com/turtacn/policylens/pkg/types/common"
)

// ComparisonService is the application-layer port the handler drives.
type ComparisonService interface {
	Create(ctx context.Context, doc1ID, doc2ID common.ID) (*domain.Comparison, error)
	Get(ctx context.Context, id common.ID) (*domain.Comparison, error)
	GetReport(ctx context.Context, id common.ID) (*domain.Report, error)
	List(ctx context.Context, filter domain.ListFilter) ([]*domain.Comparison, int64, error)
	Delete(ctx context.Context, id common.ID) error
}

// ComparisonHandler serves the /comparisons resource.
type ComparisonHandler struct {
	svc ComparisonService
	log logging.Logger
}

// NewComparisonHandler constructs the handler.
func NewComparisonHandler(svc ComparisonService, log logging.Logger) *ComparisonHandler {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &ComparisonHandler{svc: svc, log: log.Named("http.comparisons")}
}

type createComparisonRequest struct {
	Document1ID common.ID `json:"document1_id"`
	Document2ID common.ID `json:"document2_id"`
}

// Create handles POST /comparisons.  The comparison runs synchronously and
// the response carries the terminal comparison including its report.
func (h *ComparisonHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createComparisonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAppError(w, r, errors.Wrap(err, errors.ErrCodeBadRequest, "invalid request body"))
		return
	}

	c, err := h.svc.Create(r.Context(), req.Document1ID, req.Document2ID)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeData(w, r, http.StatusCreated, c)
}

// Get handles GET /comparisons/{id}.
func (h *ComparisonHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := common.ID(chi.URLParam(r, "id"))
	c, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeData(w, r, http.StatusOK, c)
}

// GetReport handles GET /comparisons/{id}/report.
func (h *ComparisonHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	id := common.ID(chi.URLParam(r, "id"))
	report, err := h.svc.GetReport(r.Context(), id)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeData(w, r, http.StatusOK, report)
}

// List handles GET /comparisons with optional document_id and status filters.
func (h *ComparisonHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := domain.ListFilter{
		DocumentID: common.ID(r.URL.Query().Get("document_id")),
		Status:     domain.Status(r.URL.Query().Get("status")),
		Pagination: parsePagination(r),
	}

	comparisons, total, err := h.svc.List(r.Context(), filter)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	if comparisons == nil {
		comparisons = []*domain.Comparison{}
	}
	writePage(w, r, comparisons, filter.Pagination, total)
}

// Delete handles DELETE /comparisons/{id}.
func (h *ComparisonHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := common.ID(chi.URLParam(r, "id"))
	if err := h.svc.Delete(r.Context(), id); err != nil {
		writeAppError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
