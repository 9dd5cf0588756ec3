package httpserver

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	packetservice "redpacket/contexts/finance-core/packet-service"

	"github.com/sethvargo/go-limiter"
	"github.com/sethvargo/go-limiter/memorystore"
	httpSwagger "github.com/swaggo/http-swagger"
	_ "redpacket/internal/platform/httpserver/docs"
)

type Server struct {
	mux          *http.ServeMux
	logger       *slog.Logger
	addr         string
	packets      packetservice.Module
	claimLimiter limiter.Store
}

type Options struct {
	// ClaimRateLimitPerMinute bounds claim attempts per principal; zero disables it.
	ClaimRateLimitPerMinute int
}

func New(
	packets packetservice.Module,
	logger *slog.Logger,
	addr string,
	options Options,
) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		mux:     http.NewServeMux(),
		logger:  logger,
		addr:    addr,
		packets: packets,
	}
	if options.ClaimRateLimitPerMinute > 0 {
		store, err := memorystore.New(&memorystore.Config{
			Tokens:   uint64(options.ClaimRateLimitPerMinute),
			Interval: time.Minute,
		})
		if err != nil {
			return nil, err
		}
		s.claimLimiter = store
	}
	s.registerRoutes()
	return s, nil
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	return http.ListenAndServe(s.addr, s.mux)
}

func (s *Server) Close(ctx context.Context) error {
	if s.claimLimiter != nil {
		return s.claimLimiter.Close(ctx)
	}
	return nil
}

func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) registerRoutes() {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	s.mux.HandleFunc("POST /v1/packets", s.handleCreatePacket)
	s.mux.HandleFunc("GET /v1/packets", s.handleListPackets)
	s.mux.HandleFunc("GET /v1/packets/{packet_id}", s.handleGetPacket)
	s.mux.HandleFunc("GET /v1/packets/{packet_id}/claims", s.handleListPacketClaims)
	s.mux.HandleFunc("POST /v1/packets/{packet_id}/claim", s.handleClaimPacket)
	s.mux.HandleFunc("POST /v1/packets/{packet_id}/reclaim", s.handleReclaimPacket)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
