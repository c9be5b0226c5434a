package handlers

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/policylens/internal/domain/document"
	"github.com/turtacn/policylens/pkg/errors"
	"github.com/turtacn/policylens/pkg/types/common"
)

type stubDocumentService struct {
	doc          *document.Document
	list         []*document.Document
	lastFilename string
	lastContent  string
	err          error
}

func (s *stubDocumentService) Upload(_ context.Context, filename string, r io.Reader) (*document.Document, error) {
	s.lastFilename = filename
	data, _ := io.ReadAll(r)
	s.lastContent = string(data)
	return s.doc, s.err
}

func (s *stubDocumentService) Get(_ context.Context, _ common.ID) (*document.Document, error) {
	return s.doc, s.err
}

func (s *stubDocumentService) List(_ context.Context, _ common.Pagination) ([]*document.Document, int64, error) {
	return s.list, int64(len(s.list)), s.err
}

func (s *stubDocumentService) Delete(_ context.Context, _ common.ID) error {
	return s.err
}

func documentRouter(svc DocumentService) http.Handler {
	h := NewDocumentHandler(svc, nil)
	r := chi.NewRouter()
	r.Post("/documents", h.Upload)
	r.Get("/documents", h.List)
	r.Get("/documents/{id}", h.Get)
	r.Delete("/documents/{id}", h.Delete)
	return r
}

func multipartUpload(t *testing.T, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestDocumentHandler_Upload(t *testing.T) {
	stored, err := document.NewDocument("policy.txt", 21, "badge in daily please")
	require.NoError(t, err)
	svc := &stubDocumentService{doc: stored}
	router := documentRouter(svc)

	body, contentType := multipartUpload(t, "policy.txt", "badge in daily please")
	req := httptest.NewRequest("POST", "/documents", body)
	req.Header.Set("Content-Type", contentType)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "policy.txt", svc.lastFilename)
	assert.Equal(t, "badge in daily please", svc.lastContent)

	envelope := decodeEnvelope(t, rec.Body.String())
	data := envelope["data"].(map[string]interface{})
	assert.Equal(t, "policy.txt", data["filename"])
	// Extracted text is not part of the API representation.
	assert.NotContains(t, rec.Body.String(), "badge in daily please")
}

func TestDocumentHandler_Upload_MissingFileField(t *testing.T) {
	router := documentRouter(&stubDocumentService{})

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("other", "x"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest("POST", "/documents", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDocumentHandler_Upload_NotMultipart(t *testing.T) {
	router := documentRouter(&stubDocumentService{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("POST", "/documents", strings.NewReader("raw body")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDocumentHandler_Upload_UnsupportedType(t *testing.T) {
	svc := &stubDocumentService{err: errors.New(errors.ErrCodeDocumentTypeUnsupported, `unsupported document type ".docx"`)}
	router := documentRouter(svc)

	body, contentType := multipartUpload(t, "policy.docx", "x")
	req := httptest.NewRequest("POST", "/documents", body)
	req.Header.Set("Content-Type", contentType)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	envelope := decodeEnvelope(t, rec.Body.String())
	errDetail := envelope["error"].(map[string]interface{})
	assert.Equal(t, string(errors.ErrCodeDocumentTypeUnsupported), errDetail["code"])
}

func TestDocumentHandler_Get_NotFound(t *testing.T) {
	svc := &stubDocumentService{err: errors.New(errors.ErrCodeDocumentNotFound, "document missing")}
	router := documentRouter(svc)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/documents/"+string(common.NewID()), nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDocumentHandler_List_EmptyIsArray(t *testing.T) {
	router := documentRouter(&stubDocumentService{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/documents", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	envelope := decodeEnvelope(t, rec.Body.String())
	assert.Equal(t, []interface{}{}, envelope["data"])
	pagination := envelope["pagination"].(map[string]interface{})
	assert.Equal(t, float64(1), pagination["page"])
}

func TestDocumentHandler_Delete(t *testing.T) {
	router := documentRouter(&stubDocumentService{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("DELETE", "/documents/"+string(common.NewID()), nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
