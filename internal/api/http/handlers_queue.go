package apihttp

import (
	"context"
	"encoding/json"
	"net/http"

	"queuedremove/internal/domain"
)

type queueChangeRequest struct {
	TorrentIDs []string `json:"torrentIds"`
}

type queueAddRequest struct {
	TorrentIDs []string `json:"torrentIds"`
	Ascend     bool     `json:"ascend"`
}

type queueSetRequest struct {
	TorrentIDs []string `json:"torrentIds"`
	Position   int      `json:"position"`
}

func (s *Server) handleQueue(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, s.queue.Snapshot())
}

func (s *Server) handleQueueAdd(w http.ResponseWriter, r *http.Request) {
	var body queueAddRequest
	if !decodeQueueBody(w, r, &body) {
		return
	}
	if len(body.TorrentIDs) == 0 {
		writeError(w, http.StatusBadRequest, "invalid_request", "torrentIds is required")
		return
	}
	if err := s.queue.Add(r.Context(), toTorrentIDs(body.TorrentIDs), body.Ascend); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.queue.Snapshot())
}

func (s *Server) handleQueueRemove(w http.ResponseWriter, r *http.Request) {
	s.handleQueueChange(w, r, s.queue.Remove)
}

func (s *Server) handleQueueTop(w http.ResponseWriter, r *http.Request) {
	s.handleQueueChange(w, r, s.queue.QueueTop)
}

func (s *Server) handleQueueBottom(w http.ResponseWriter, r *http.Request) {
	s.handleQueueChange(w, r, s.queue.QueueBottom)
}

func (s *Server) handleQueueForward(w http.ResponseWriter, r *http.Request) {
	s.handleQueueChange(w, r, s.queue.QueueForward)
}

func (s *Server) handleQueueBack(w http.ResponseWriter, r *http.Request) {
	s.handleQueueChange(w, r, s.queue.QueueBack)
}

func (s *Server) handleQueueSet(w http.ResponseWriter, r *http.Request) {
	var body queueSetRequest
	if !decodeQueueBody(w, r, &body) {
		return
	}
	if len(body.TorrentIDs) == 0 {
		writeError(w, http.StatusBadRequest, "invalid_request", "torrentIds is required")
		return
	}
	if body.Position < 0 {
		writeError(w, http.StatusBadRequest, "invalid_request", "position must be >= 0")
		return
	}
	if err := s.queue.QueueSet(r.Context(), toTorrentIDs(body.TorrentIDs), body.Position); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.queue.Snapshot())
}

func (s *Server) handleQueueChange(w http.ResponseWriter, r *http.Request, apply func(ctx context.Context, ids []domain.TorrentID) error) {
	var body queueChangeRequest
	if !decodeQueueBody(w, r, &body) {
		return
	}
	if len(body.TorrentIDs) == 0 {
		writeError(w, http.StatusBadRequest, "invalid_request", "torrentIds is required")
		return
	}
	if err := apply(r.Context(), toTorrentIDs(body.TorrentIDs)); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.queue.Snapshot())
}

func decodeQueueBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return false
	}
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid json")
		return false
	}
	return true
}
