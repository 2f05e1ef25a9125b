package http

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"geo-quiz-service/internal/app"
	"geo-quiz-service/internal/auth"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/swaggest/swgui/v5emb"
	"go.uber.org/zap"
)

// Deps are the collaborators the HTTP surface needs.
type Deps struct {
	Service    *app.GameService
	Tokens     *auth.Issuer
	Logger     *zap.Logger
	Checks     map[string]Checker
	DefaultSet string
}

// NewRouter wires middleware and every route.
func NewRouter(d Deps) http.Handler {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	rest := NewRESTHandler(d.Service, d.Tokens, d.DefaultSet, logger)
	ws := NewWSHandler(d.Service, logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)

	r.Get("/openapi.json", handleOpenAPI())
	r.Mount("/docs", v5emb.New("Geo Quiz API", "/openapi.json", "/docs"))
	r.Get("/healthz", handleHealth(logger, d.Checks))

	r.Get("/api/question-sets/{setID}", rest.getQuestionSet)
	r.Get("/api/question-sets/{setID}/leaderboard", rest.getLeaderboard)
	r.Post("/api/sessions", rest.createSession)

	r.Route("/api/sessions/{sessionID}", func(r chi.Router) {
		r.Use(sessionAuth(d.Tokens))
		r.Get("/", rest.getSession)
		r.Delete("/", rest.deleteSession)
		r.Get("/overlay", rest.getOverlay)
		r.Post("/start", rest.startSession)
		r.Post("/guesses", rest.postGuess)
		r.Get("/ws", ws.ServeWS)
	})

	return r
}

// Server owns the listener lifecycle.
type Server struct {
	srv    *http.Server
	logger *zap.Logger
}

func NewServer(addr string, handler http.Handler, logger *zap.Logger) *Server {
	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
		logger: logger,
	}
}

func (s *Server) Run(_ context.Context) error {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.srv.Addr, err)
	}
	s.logger.Info("starting quiz service", zap.String("addr", s.srv.Addr))

	err = s.srv.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return s.srv.Shutdown(ctx)
}
