package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// responder writes JSON responses and logs failures to do so.
type responder struct {
	log *zap.Logger
}

// jsonResponse writes a JSON response
func (rs responder) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(data); err != nil {
		rs.log.Warn("failed to encode JSON response", zap.Error(err))
	}
}

// errorResponse writes an error JSON response
func (rs responder) errorResponse(w http.ResponseWriter, status int, message string) {
	rs.jsonResponse(w, status, map[string]string{"error": message})
}

// serviceError maps err to a status with HTTPStatus. Server errors are logged and
// reported without detail.
func (rs responder) serviceError(w http.ResponseWriter, r *http.Request, err error) {
	status := HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		rs.log.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		rs.errorResponse(w, status, "internal error")
		return
	}
	rs.errorResponse(w, status, err.Error())
}

// decodeBody decodes a JSON body into dst and runs its Validate method.
// It writes the 400 response itself and reports whether decoding succeeded.
func (rs responder) decodeBody(w http.ResponseWriter, r *http.Request, dst interface{ Validate() error }) bool {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			rs.errorResponse(w, http.StatusBadRequest, "Request body is required")
			return false
		}
		rs.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	if err := dst.Validate(); err != nil {
		rs.errorResponse(w, http.StatusBadRequest, extractValidationErrors(err))
		return false
	}
	return true
}

// extractValidationErrors extracts validation error messages from validator errors.
func extractValidationErrors(err error) string {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
		// first error only
		ve := validationErrors[0]
		return fmt.Sprintf("validation error: %s - %s", ve.Field(), ve.Tag())
	}
	return "validation error: invalid request"
}

// parseQueryInt parses an integer query parameter with default and max values
func parseQueryInt(r *http.Request, key string, defaultValue, maxValue int) int {
	valStr := r.URL.Query().Get(key)
	if valStr == "" {
		return defaultValue
	}
	val, err := strconv.Atoi(valStr)
	if err != nil || val < 0 {
		return defaultValue
	}
	if maxValue > 0 && val > maxValue {
		return maxValue
	}
	return val
}
