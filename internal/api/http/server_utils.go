package apihttp

import (
	"encoding/json"
	"errors"
	"net/http"

	"queuedremove/internal/domain"
)

type errorEnvelope struct {
	Error errorPayload `json:"error"`
}

type errorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeDomainError(w http.ResponseWriter, err error) {
	if errors.Is(err, domain.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not_found", "torrent not found")
		return
	}
	if errors.Is(err, domain.ErrInvalidSource) {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid torrent source")
		return
	}

	writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorEnvelope{Error: errorPayload{Code: code, Message: message}})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func toTorrentIDs(values []string) []domain.TorrentID {
	ids := make([]domain.TorrentID, 0, len(values))
	for _, value := range values {
		ids = append(ids, domain.TorrentID(value))
	}
	return ids
}
