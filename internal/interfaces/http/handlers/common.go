// Package handlers implements the HTTP handlers for the PolicyLens API.
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/turtacn/policylens/pkg/errors"
	"github.com/turtacn/policylens/pkg/types/common"
)

// parsePagination extracts page and page_size from query parameters.
func parsePagination(r *http.Request) common.Pagination {
	p := common.Pagination{Page: 1, PageSize: 20}
	if v := r.URL.Query().Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			p.Page = n
		}
	}
	if v := r.URL.Query().Get("page_size"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			p.PageSize = n
		}
	}
	return p
}

func writeJSON(w http.ResponseWriter, statusCode int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}

// writeData wraps payload in the standard success envelope.
func writeData(w http.ResponseWriter, r *http.Request, statusCode int, data interface{}) {
	writeJSON(w, statusCode, common.APIResponse[interface{}]{
		Success:   true,
		Data:      data,
		RequestID: chimw.GetReqID(r.Context()),
		Timestamp: time.Now().UTC(),
	})
}

// writePage wraps a listing in the success envelope with pagination.
func writePage(w http.ResponseWriter, r *http.Request, data interface{}, p common.Pagination, total int64) {
	p.Total = total
	writeJSON(w, http.StatusOK, common.APIResponse[interface{}]{
		Success:    true,
		Data:       data,
		Pagination: &p,
		RequestID:  chimw.GetReqID(r.Context()),
		Timestamp:  time.Now().UTC(),
	})
}

// writeAppError maps an application error onto the HTTP error envelope.
// Server-side failures are masked; the error code survives for clients.
func writeAppError(w http.ResponseWriter, r *http.Request, err error) {
	code := errors.GetCode(err)
	status := errors.HTTPStatusForCode(code)

	message := err.Error()
	if errors.IsServerError(code) {
		message = "internal server error"
	}
	writeJSON(w, status, common.APIResponse[interface{}]{
		Success: false,
		Error: &common.ErrorDetail{
			Code:    string(code),
			Message: message,
		},
		RequestID: chimw.GetReqID(r.Context()),
		Timestamp: time.Now().UTC(),
	})
}
