package handlers

import (
	"encoding/json"
	"net/http"
)

// respondOK writes the success envelope: {"status":"ok","data":...}.
func respondOK(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{
		"status": "ok",
		"data":   data,
	})
}

// respondError writes the error envelope: {"status":"error","reason":...}.
func respondError(w http.ResponseWriter, status int, reason string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{
		"status": "error",
		"reason": reason,
	})
}
