package handlers

import (
	"context"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/turtacn/policylens/internal/domain/document"
	"github.com/turtacn/policylens/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/policylens/pkg/errors"
	"github.com/turtacn/policylens/pkg/types/common"
)

// maxMultipartMemory bounds what of an upload is buffered in memory before
// spilling to disk.
const maxMultipartMemory = 8 << 20

// DocumentService is the application-layer port the handler drives.
type DocumentService interface {
	Upload(ctx context.Context, filename string, r io.Reader) (*document.Document, error)
	Get(ctx context.Context, id common.ID) (*document.Document, error)
	List(ctx context.Context, p common.Pagination) ([]*document.Document, int64, error)
	Delete(ctx context.Context, id common.ID) error
}

// DocumentHandler serves the /documents resource.
type DocumentHandler struct {
	svc DocumentService
	log logging.Logger
}

// NewDocumentHandler constructs the handler.
func NewDocumentHandler(svc DocumentService, log logging.Logger) *DocumentHandler {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &DocumentHandler{svc: svc, log: log.Named("http.documents")}
}

// Upload handles POST /documents with a multipart "file" field.
func (h *DocumentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		writeAppError(w, r, errors.Wrap(err, errors.ErrCodeBadRequest, "expected multipart form"))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeAppError(w, r, errors.Wrap(err, errors.ErrCodeBadRequest, "missing file field"))
		return
	}
	defer file.Close()

	doc, err := h.svc.Upload(r.Context(), header.Filename, file)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeData(w, r, http.StatusCreated, doc)
}

// Get handles GET /documents/{id}.
func (h *DocumentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := common.ID(chi.URLParam(r, "id"))
	doc, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeData(w, r, http.StatusOK, doc)
}

// List handles GET /documents.
func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	p := parsePagination(r)
	docs, total, err := h.svc.List(r.Context(), p)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	if docs == nil {
		docs = []*document.Document{}
	}
	writePage(w, r, docs, p, total)
}

// Delete handles DELETE /documents/{id}.
func (h *DocumentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := common.ID(chi.URLParam(r, "id"))
	if err := h.svc.Delete(r.Context(), id); err != nil {
		writeAppError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
