package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"

	"schallwerk/apperr"
	"schallwerk/logger"
)

var validate = validator.New()

// response is the uniform JSON envelope every endpoint answers with.
type response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(response{Success: true, Data: data}); err != nil {
		logger.Error("[HTTP] failed to encode response", logger.ErrorField(err))
	}
}

// writeError maps the error's kind to an HTTP status and its safe message to
// the envelope. Unclassified errors are logged with detail but answered
// generically.
func writeError(w http.ResponseWriter, err error) {
	kind := apperr.KindOf(err)
	status := apperr.HTTPStatus(kind)
	if status >= http.StatusInternalServerError {
		logger.Error("[HTTP] internal error", logger.ErrorField(err))
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if encErr := json.NewEncoder(w).Encode(response{Success: false, Error: apperr.Message(err)}); encErr != nil {
		logger.Error("[HTTP] failed to encode error response", logger.ErrorField(encErr))
	}
}

// decodeJSON parses and validates a request body into dst.
func decodeJSON(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperr.Wrap(apperr.KindInvalid, "Invalid request body", err)
	}
	if err := validate.Struct(dst); err != nil {
		return apperr.Wrap(apperr.KindInvalid, "Invalid request body", err)
	}
	return nil
}
