package apihttp

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"queuedremove/internal/domain"
)

// QueueController is the queue surface exposed over HTTP. Implemented by
// queue.Manager.
type QueueController interface {
	Snapshot() domain.QueueSnapshot
	Config() domain.QueueConfig
	SetConfig(ctx context.Context, cfg domain.QueueConfig) error
	Add(ctx context.Context, ids []domain.TorrentID, ascend bool) error
	Remove(ctx context.Context, ids []domain.TorrentID) error
	QueueTop(ctx context.Context, ids []domain.TorrentID) error
	QueueBottom(ctx context.Context, ids []domain.TorrentID) error
	QueueForward(ctx context.Context, ids []domain.TorrentID) error
	QueueBack(ctx context.Context, ids []domain.TorrentID) error
	QueueSet(ctx context.Context, ids []domain.TorrentID, position int) error
}

type AddTorrentUseCase interface {
	Execute(ctx context.Context, magnet string) (domain.TorrentRecord, error)
}

type ListTorrentsUseCase interface {
	Execute(ctx context.Context) ([]domain.TorrentRecord, error)
}

type DeleteTorrentUseCase interface {
	Execute(ctx context.Context, id domain.TorrentID, deleteFiles bool) error
}

type Server struct {
	queue          QueueController
	addTorrent     AddTorrentUseCase
	listTorrents   ListTorrentsUseCase
	deleteTorrent  DeleteTorrentUseCase
	allowedOrigins []string
	logger         *slog.Logger
	handler        http.Handler
	wsHub          *wsHub
}

type ServerOption func(*Server)

func WithAddTorrent(uc AddTorrentUseCase) ServerOption {
	return func(s *Server) {
		s.addTorrent = uc
	}
}

func WithListTorrents(uc ListTorrentsUseCase) ServerOption {
	return func(s *Server) {
		s.listTorrents = uc
	}
}

func WithDeleteTorrent(uc DeleteTorrentUseCase) ServerOption {
	return func(s *Server) {
		s.deleteTorrent = uc
	}
}

// WithAllowedOrigins configures the CORS allowed origins whitelist.
// When empty (default), any origin is permitted (development mode).
func WithAllowedOrigins(origins []string) ServerOption {
	return func(s *Server) {
		s.allowedOrigins = origins
	}
}

func WithLogger(logger *slog.Logger) ServerOption {
	return func(s *Server) {
		s.logger = logger
	}
}

func NewServer(queue QueueController, opts ...ServerOption) *Server {
	s := &Server{queue: queue}
	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = slog.Default()
	}

	s.wsHub = newWSHub(s.logger)
	go s.wsHub.run()

	mux := http.NewServeMux()
	mux.HandleFunc("/queue", s.handleQueue)
	mux.HandleFunc("/queue/config", s.handleQueueConfig)
	mux.HandleFunc("/queue/add", s.handleQueueAdd)
	mux.HandleFunc("/queue/remove", s.handleQueueRemove)
	mux.HandleFunc("/queue/top", s.handleQueueTop)
	mux.HandleFunc("/queue/bottom", s.handleQueueBottom)
	mux.HandleFunc("/queue/forward", s.handleQueueForward)
	mux.HandleFunc("/queue/back", s.handleQueueBack)
	mux.HandleFunc("/queue/set", s.handleQueueSet)
	mux.HandleFunc("/torrents", s.handleTorrents)
	mux.HandleFunc("/torrents/", s.handleTorrentByID)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/ws", s.handleWS)

	traced := otelhttp.NewHandler(loggingMiddleware(s.logger, mux), "queuedremove",
		otelhttp.WithFilter(func(r *http.Request) bool {
			return r.URL.Path != "/metrics"
		}),
	)
	s.handler = recoveryMiddleware(s.logger, rateLimitMiddleware(100, 200, metricsMiddleware(corsMiddleware(s.allowedOrigins, traced))))
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	if s.wsHub == nil {
		http.Error(w, "websocket not available", http.StatusServiceUnavailable)
		return
	}
	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("ws upgrade failed", slog.String("error", err.Error()))
		return
	}
	client := &wsClient{
		hub:  s.wsHub,
		conn: conn,
		send: make(chan []byte, 256),
	}
	s.wsHub.register <- client
	go client.writePump()
	go client.readPump()
}

// BroadcastQueue sends a queue snapshot to all connected WebSocket clients.
func (s *Server) BroadcastQueue(snapshot domain.QueueSnapshot) {
	if s.wsHub != nil {
		s.wsHub.Broadcast("queue", snapshot)
	}
}

// Close shuts down the WebSocket hub, disconnecting all clients.
func (s *Server) Close() {
	if s.wsHub != nil {
		s.wsHub.Close()
	}
}
