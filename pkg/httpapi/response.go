package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrymomot/tenantdb/pkg/tenantdb"
)

// Response is the JSON envelope for every endpoint.
type Response struct {
	Code    string         `json:"code,omitempty"`
	Message string         `json:"message,omitempty"`
	Data    any            `json:"data,omitempty"`
	Meta    map[string]any `json:"meta,omitempty"`
	Error   *ErrorDetail   `json:"error,omitempty"`
}

// ErrorDetail describes a failed request.
type ErrorDetail struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Context map[string]any `json:"context,omitempty"`
}

const (
	codeOK             = "ok"
	codeInvalidRequest = "INVALID_REQUEST"
	codeInternal       = "INTERNAL_ERROR"
)

// StatusFor maps an error to its HTTP status.
func StatusFor(err error) int {
	switch tenantdb.CodeOf(err) {
	case tenantdb.CodeNotInitialized:
		return http.StatusServiceUnavailable
	case tenantdb.CodeInvalidTenantID:
		return http.StatusBadRequest
	case tenantdb.CodeQueryExecutionFailed:
		return http.StatusUnprocessableEntity
	case tenantdb.CodeTenantAttachFailed, tenantdb.CodeTenantDetachFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, body Response) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeData(w http.ResponseWriter, data any, meta map[string]any) {
	writeJSON(w, http.StatusOK, Response{Code: codeOK, Data: data, Meta: meta})
}

func writeError(w http.ResponseWriter, err error) {
	status := StatusFor(err)

	detail := &ErrorDetail{Code: codeInternal, Message: http.StatusText(status)}
	var tErr *tenantdb.Error
	if errors.As(err, &tErr) {
		detail = &ErrorDetail{Code: string(tErr.Code), Message: tErr.Message, Context: tErr.Context}
	}

	writeJSON(w, status, Response{Code: detail.Code, Error: detail})
}

func writeBadRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, Response{
		Code:  codeInvalidRequest,
		Error: &ErrorDetail{Code: codeInvalidRequest, Message: message},
	})
}
