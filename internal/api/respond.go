// internal/api/respond.go
package api

import (
	"encoding/json"
	"net/http"
)

func writeJSON(w http.ResponseWriter, v any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// respondError writes the standard failure envelope. The message is the
// stable client-facing string; full detail is logged before calling this.
func respondError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, map[string]any{"success": false, "error": msg}, status)
}

// respondText is for method-mismatch answers, which are plain text rather
// than the JSON envelope.
func respondText(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(msg))
}
