// Package server exposes the Retrieval/Inference Engine over HTTP, routing
// the two endpoints spec.md §6 and the original's server/launch.rs fix:
// POST /conversation (buffered) and POST /streaming_conversation
// (server-sent events), grounded on peer-db's httprouter-based Service.
package server

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/rs/zerolog"

	"gitlab.com/wikidex/wikidex/internal/engine"
)

// Server wires one Engine to a set of HTTP handlers.
type Server struct {
	engine *engine.Engine
	logger zerolog.Logger
}

func New(engine *engine.Engine, logger zerolog.Logger) *Server {
	return &Server{engine: engine, logger: logger}
}

// Router builds the complete handler, with permissive CORS matching the
// original's tower-http CorsLayer::new().allow_methods(Any).allow_origin(Any).
func (s *Server) Router() http.Handler {
	router := httprouter.New()
	router.POST("/conversation", s.handleConversation)
	router.POST("/streaming_conversation", s.handleStreamingConversation)
	return corsMiddleware(router)
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "*")
		w.Header().Set("Access-Control-Allow-Headers", "*")
		if req.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, req)
	})
}
