package devapi

import (
	"encoding/json"
	"net/http"
)

// errorEnvelope is the structured error body every failure response carries.
type errorEnvelope struct {
	Message    string `json:"message"`
	Error      string `json:"error"`
	StatusCode int    `json:"statusCode"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, label, message string) {
	writeJSON(w, code, errorEnvelope{
		Message:    message,
		Error:      label,
		StatusCode: code,
	})
}

func writeNotFound(w http.ResponseWriter) {
	writeError(w, http.StatusNotFound, "Not Found", "resource not found")
}

func writeBadRequest(w http.ResponseWriter, message string) {
	writeError(w, http.StatusBadRequest, "Bad Request", message)
}

// writeNoToken is the exact 401 shape clients recognize as a session
// invalidation signal.
func writeNoToken(w http.ResponseWriter) {
	writeError(w, http.StatusUnauthorized, "Unauthorized", "No token provided")
}

func writeUnauthorized(w http.ResponseWriter, message string) {
	writeError(w, http.StatusUnauthorized, "Unauthorized", message)
}

func writeForbidden(w http.ResponseWriter) {
	writeError(w, http.StatusForbidden, "Forbidden", "insufficient role")
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return false
	}
	return true
}
