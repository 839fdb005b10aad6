package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"nepsereport/pkg/nepsereport"
)

// Response represents a successful API response with unified format.
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// ErrorResponse represents an error API response with structured information.
type ErrorResponse struct {
	Code      int    `json:"code"`
	Message   string `json:"message"`
	ErrorCode string `json:"error_code,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// writeSuccess writes a successful response with data.
func writeSuccess(w http.ResponseWriter, data interface{}) {
	writeJSON(w, http.StatusOK, Response{
		Code: 0,
		Data: data,
	})
}

// writeSuccessWithMessage writes a successful response with data and message.
func writeSuccessWithMessage(w http.ResponseWriter, message string, data interface{}) {
	writeJSON(w, http.StatusOK, Response{
		Code:    0,
		Message: message,
		Data:    data,
	})
}

// writeErrorResponse writes an error response. Structured errors choose
// their own status; httpStatus applies to everything else.
func writeErrorResponse(w http.ResponseWriter, r *http.Request, httpStatus int, err error) {
	response := ErrorResponse{
		Message: err.Error(),
	}

	var repErr *nepsereport.Error
	if errors.As(err, &repErr) {
		response.ErrorCode = string(repErr.Code)
		httpStatus = mapErrorCodeToHTTPStatus(repErr.Code)
	}
	response.Code = httpStatus
	if r != nil {
		response.RequestID = middleware.GetReqID(r.Context())
	}

	recordErrorMessage(w, response.Message)
	writeJSON(w, httpStatus, response)
}

// mapErrorCodeToHTTPStatus maps report error codes to HTTP status codes.
func mapErrorCodeToHTTPStatus(code nepsereport.ErrorCode) int {
	switch code {
	case nepsereport.ErrCodeInvalidInput, nepsereport.ErrCodeSchema, nepsereport.ErrCodeParse:
		return http.StatusBadRequest
	case nepsereport.ErrCodeNotFound, nepsereport.ErrCodeEmptyResult:
		return http.StatusNotFound
	case nepsereport.ErrCodeDataQuality:
		return http.StatusUnprocessableEntity
	case nepsereport.ErrCodeUnsupported:
		return http.StatusUnsupportedMediaType
	case nepsereport.ErrCodeInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
