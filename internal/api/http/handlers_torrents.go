package apihttp

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"queuedremove/internal/domain"
)

type addTorrentRequest struct {
	Magnet string `json:"magnet"`
}

func (s *Server) handleTorrents(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handleAddTorrent(w, r)
	case http.MethodGet:
		s.handleListTorrents(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleAddTorrent(w http.ResponseWriter, r *http.Request) {
	if s.addTorrent == nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "add torrent use case not configured")
		return
	}

	var body addTorrentRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid json")
		return
	}

	// Cap the handler execution time so we never block indefinitely.
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	record, err := s.addTorrent.Execute(ctx, strings.TrimSpace(body.Magnet))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, record)
}

func (s *Server) handleListTorrents(w http.ResponseWriter, r *http.Request) {
	if s.listTorrents == nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "list torrents use case not configured")
		return
	}

	records, err := s.listTorrents.Execute(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if records == nil {
		records = []domain.TorrentRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleTorrentByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/torrents/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusNotFound, "not_found", "torrent not found")
		return
	}

	if r.Method != http.MethodDelete {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if s.deleteTorrent == nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "delete torrent use case not configured")
		return
	}

	deleteFiles := true
	if value := strings.TrimSpace(r.URL.Query().Get("deleteFiles")); value != "" {
		deleteFiles = value != "false"
	}

	if err := s.deleteTorrent.Execute(r.Context(), domain.TorrentID(id), deleteFiles); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
