package handlers

import (
	"encoding/json"
	"net/http"
)

// HelpHandler serves the unauthenticated service description.
type HelpHandler struct{}

// NewHelpHandler creates a new HelpHandler.
func NewHelpHandler() *HelpHandler {
	return &HelpHandler{}
}

// Get returns a static status payload.
func (h *HelpHandler) Get(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"status": "ok",
		"help":   "This is a service to manage posts",
	})
}
