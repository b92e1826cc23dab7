package apihttp

import (
	"encoding/json"
	"net/http"
)

type queueConfigPatch struct {
	RemoveThresholdBytes *int64 `json:"removeThresholdBytes"`
	StopThresholdBytes   *int64 `json:"stopThresholdBytes"`
}

func (s *Server) handleQueueConfig(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, s.queue.Config())
	case http.MethodPatch, http.MethodPut:
		s.handleUpdateQueueConfig(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// handleUpdateQueueConfig merges the patch over the current config so clients
// may update one threshold without resending the other.
func (s *Server) handleUpdateQueueConfig(w http.ResponseWriter, r *http.Request) {
	var patch queueConfigPatch
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid json")
		return
	}

	cfg := s.queue.Config()
	if patch.RemoveThresholdBytes != nil {
		cfg.RemoveThresholdBytes = *patch.RemoveThresholdBytes
	}
	if patch.StopThresholdBytes != nil {
		cfg.StopThresholdBytes = *patch.StopThresholdBytes
	}

	if cfg.RemoveThresholdBytes < 0 || cfg.StopThresholdBytes < 0 {
		writeError(w, http.StatusBadRequest, "invalid_request", "thresholds must be >= 0")
		return
	}

	if err := s.queue.SetConfig(r.Context(), cfg); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.queue.Config())
}
