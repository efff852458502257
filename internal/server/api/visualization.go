package api

import (
	"encoding/json"
	"net/http"
)

// Toggle switches the hand visualization on and off.
type Toggle interface {
	Enabled() bool
	SetEnabled(enabled bool)
}

// VisualizationHandler exposes the visualization switch at
// /api/visualization.
type VisualizationHandler struct {
	toggle Toggle
}

// NewVisualizationHandler creates a new VisualizationHandler.
func NewVisualizationHandler(t Toggle) *VisualizationHandler {
	return &VisualizationHandler{toggle: t}
}

type visualizationRequest struct {
	Enabled *bool `json:"enabled"`
}

type visualizationResponse struct {
	Enabled bool `json:"enabled"`
}

// ServeHTTP handles GET and PUT.
func (h *VisualizationHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
	case http.MethodPut:
		var req visualizationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid JSON")
			return
		}
		if req.Enabled == nil {
			writeError(w, http.StatusBadRequest, "enabled is required")
			return
		}
		h.toggle.SetEnabled(*req.Enabled)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	writeJSON(w, http.StatusOK, visualizationResponse{Enabled: h.toggle.Enabled()})
}
