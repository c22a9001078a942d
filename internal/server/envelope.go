package server

import (
	"encoding/json"
	"net/http"
)

// dataEnvelope is the uniform success shape. data always serializes, even
// when empty, so list responses yield an empty array rather than a missing
// key.
type dataEnvelope struct {
	Data    []any  `json:"data"`
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// errorEnvelope is the uniform failure shape. The HTTP status mirrors code.
type errorEnvelope struct {
	Error   string `json:"error"`
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeData writes a success envelope wrapping the given items.
func writeData(w http.ResponseWriter, message string, items ...any) {
	if items == nil {
		items = []any{}
	}
	writeJSON(w, http.StatusOK, dataEnvelope{
		Data:    items,
		Code:    http.StatusOK,
		Message: message,
	})
}

// writeError writes a failure envelope.
func writeError(w http.ResponseWriter, code int, errText, message string) {
	writeJSON(w, code, errorEnvelope{
		Error:   errText,
		Code:    code,
		Message: message,
	})
}
