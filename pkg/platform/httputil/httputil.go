// Package httputil translates domain errors into JSON HTTP responses.
package httputil

import (
	"encoding/json"
	"errors"
	"net/http"

	dErrors "github.com/sullis/logging-log4j-audit/pkg/domain-errors"
)

// errorResponse is the JSON envelope for all error responses.
type errorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}

// WriteJSON writes v as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError maps a domain error to an HTTP status and JSON envelope.
// Internal errors omit the description so infrastructure details never leak
// to clients.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeInternal
	var domainErr *dErrors.Error
	if errors.As(err, &domainErr) {
		code = domainErr.Code
	}

	resp := errorResponse{Error: string(code)}
	if code != dErrors.CodeInternal {
		resp.ErrorDescription = err.Error()
	}
	WriteJSON(w, statusFor(code), resp)
}

func statusFor(code dErrors.Code) int {
	switch code {
	case dErrors.CodeInvalidAttributes, dErrors.CodeBadRequest:
		return http.StatusBadRequest
	case dErrors.CodeUnauthorized:
		return http.StatusUnauthorized
	case dErrors.CodeUnknownEvent, dErrors.CodeNotFound:
		return http.StatusNotFound
	case dErrors.CodeMissingContext, dErrors.CodeInvalidContext:
		return http.StatusUnprocessableEntity
	case dErrors.CodeSinkFailure:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
