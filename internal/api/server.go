package api

import (
	"log"
	"net/http"

	"github.com/teambeat/standupbot/internal/services"
)

// Server exposes a small read-only JSON API over the standup data. It is
// only started when an API port is configured.
type Server struct {
	Coordinator *services.StandupCoordinator
	Secret      string
}

func NewServer(coordinator *services.StandupCoordinator, secret string) *Server {
	return &Server{Coordinator: coordinator, Secret: secret}
}

func (s *Server) Routes() {
	http.HandleFunc("/api/standups/history", s.AuthMiddleware(s.HandleGetHistory))
	http.HandleFunc("/api/standups/group", s.AuthMiddleware(s.HandleGetGroup))
}

func (s *Server) Start(port string) {
	s.Routes()
	log.Printf("🌐 API Server running on http://localhost%s", port)
	if err := http.ListenAndServe(port, nil); err != nil {
		log.Fatalf("HTTP server crashed: %v", err)
	}
}
