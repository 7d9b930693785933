// Package server exposes the REST boundary over the core service.
//
// Routes mirror the product API: POST /session ingests an interaction,
// POST /match returns ranked mentor suggestions, GET /graph dumps profile
// graphs for observability, GET /healthz reports liveness. CORS is wide
// open; authentication is out of scope.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/mentorgraph/mentorgraph/internal/embed"
	"github.com/mentorgraph/mentorgraph/internal/models"
	"github.com/mentorgraph/mentorgraph/internal/service"
	"github.com/mentorgraph/mentorgraph/internal/vecstore"
)

// defaultTopK applies when a match request omits top_k entirely.
const defaultTopK = 3

// Server hosts the HTTP boundary.
type Server struct {
	echo *echo.Echo
	svc  *service.Service
	log  *slog.Logger
}

// New builds the server and registers all routes.
func New(svc *service.Service, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{"*"},
	}))

	s := &Server{echo: e, svc: svc, log: log}

	e.GET("/", s.handleRoot)
	e.GET("/healthz", s.handleHealth)
	e.POST("/session", s.handleSession)
	e.POST("/match", s.handleMatch)
	e.GET("/graph", s.handleGraph)

	return s
}

// Start listens on addr until Shutdown or a listener error.
func (s *Server) Start(addr string) error {
	return s.echo.Start(addr)
}

// Shutdown drains in-flight requests and stops the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// Handler exposes the underlying handler for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) handleRoot(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"message": "mentorgraph API is running",
	})
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "mentorgraph",
	})
}

func (s *Server) handleSession(c echo.Context) error {
	var session models.Session
	if err := c.Bind(&session); err != nil {
		return s.jsonError(c, http.StatusBadRequest, "malformed session payload")
	}

	session, err := s.svc.IngestSession(c.Request().Context(), session)
	if err != nil {
		return s.mapError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message":    "session processed successfully",
		"session_id": session.SessionID,
	})
}

func (s *Server) handleMatch(c echo.Context) error {
	var req models.MatchRequest
	if err := c.Bind(&req); err != nil {
		return s.jsonError(c, http.StatusBadRequest, "malformed match payload")
	}
	if req.TopK == 0 {
		req.TopK = defaultTopK
	}

	results, err := s.svc.Match(c.Request().Context(), req)
	if err != nil {
		return s.mapError(c, err)
	}
	return c.JSON(http.StatusOK, results)
}

func (s *Server) handleGraph(c echo.Context) error {
	userID := c.QueryParam("user_id")
	anonymize := c.QueryParam("anonymize") == "1" || c.QueryParam("anonymize") == "true"

	exp, ok := s.svc.ExportGraph(userID, anonymize)
	if !ok {
		return s.jsonError(c, http.StatusNotFound, "user not found")
	}
	return c.JSON(http.StatusOK, exp)
}

// mapError translates the core error taxonomy onto HTTP statuses.
func (s *Server) mapError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, models.ErrInvalidRequest):
		return s.jsonError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, embed.ErrUnavailable):
		s.log.Error("encoder unavailable", "error", err)
		return s.jsonError(c, http.StatusBadGateway, "embedding backend unavailable")
	case errors.Is(err, vecstore.ErrDimensionMismatch):
		s.log.Error("vector dimension mismatch", "error", err)
		return s.jsonError(c, http.StatusInternalServerError, "vector dimension mismatch")
	default:
		s.log.Error("request failed", "error", err)
		return s.jsonError(c, http.StatusInternalServerError, "internal error")
	}
}

func (s *Server) jsonError(c echo.Context, status int, detail string) error {
	return c.JSON(status, map[string]string{"detail": detail})
}
