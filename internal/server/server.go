// Package server exposes the HTTP surface of the chatbot backend.
package server

import (
	"encoding/base64"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"

	"github.com/a6arsh/Chatbot-yellow/internal/chat"
	"github.com/a6arsh/Chatbot-yellow/internal/config"
	"github.com/a6arsh/Chatbot-yellow/internal/logger"
)

const serviceName = "ChatBot Backend"

type chatRequest struct {
	Message   *string `json:"message"`
	Image     string  `json:"image"`
	SessionID string  `json:"session_id"`
	UserID    string  `json:"user_id"`
}

type chatResponse struct {
	Response  string `json:"response"`
	SessionID string `json:"session_id"`
	Timestamp string `json:"timestamp"`
	Status    string `json:"status"`
	Error     string `json:"error,omitempty"`
}

type clearRequest struct {
	SessionID string `json:"session_id"`
}

// Server wires the chat service into echo routes.
type Server struct {
	cfg  *config.Config
	svc  *chat.Service
	echo *echo.Echo
}

func New(cfg *config.Config, svc *chat.Service) *Server {
	s := &Server{cfg: cfg, svc: svc, echo: echo.New()}

	// Restrict origins in debug; production allows all, matching the
	// paired front-end's deployment.
	origins := []string{"*"}
	if cfg.Debug {
		origins = cfg.AllowedOrigins
	}
	s.echo.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: origins,
	}))
	s.echo.Use(middleware.Recover())

	s.echo.GET("/health", s.handleHealth)
	s.echo.POST("/api/chat", s.handleChat)
	s.echo.POST("/api/clear-chat", s.handleClearChat)
	s.echo.GET("/api/sessions", s.handleSessions)
	s.echo.POST("/api/upload-image", s.handleUploadImage)

	return s
}

// Handler returns the root HTTP handler, for serving and for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start serves until the listener fails.
func (s *Server) Start(addr string) error {
	logger.L.Info("starting server", "address", addr)
	srv := &http.Server{Addr: addr, Handler: s.echo}
	return srv.ListenAndServe()
}

func (s *Server) handleHealth(c *echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"service":   serviceName,
	})
}

func (s *Server) handleChat(c *echo.Context) error {
	requestID := uuid.NewString()

	var req chatRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": chat.ErrMessageMissing.Error()})
	}

	result, err := s.svc.Chat(c.Request().Context(), chat.Request{
		Message:   req.Message,
		Image:     req.Image,
		SessionID: req.SessionID,
		UserID:    req.UserID,
	})
	switch {
	case err == chat.ErrMessageMissing, err == chat.ErrEmptyTurn:
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	case err != nil:
		logger.L.Error("chat endpoint error", "request_id", requestID, "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error":   "Internal server error",
			"message": "Something went wrong processing your request",
		})
	}

	resp := chatResponse{
		Response:  result.Reply,
		SessionID: result.SessionID,
		Timestamp: time.Now().Format(time.RFC3339),
		Status:    result.Status,
	}
	if result.Status == chat.StatusFallback {
		resp.Error = "AI service temporarily unavailable"
	}
	logger.L.Info("chat turn served", "request_id", requestID, "session", result.SessionID, "status", result.Status)
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) handleClearChat(c *echo.Context) error {
	var req clearRequest
	// An empty or malformed body clears the default session.
	_ = c.Bind(&req)

	sessionID := s.svc.Clear(req.SessionID)
	return c.JSON(http.StatusOK, map[string]string{
		"status":     "success",
		"message":    "Chat history cleared",
		"session_id": sessionID,
	})
}

func (s *Server) handleSessions(c *echo.Context) error {
	ids := s.svc.Sessions()
	return c.JSON(http.StatusOK, map[string]any{
		"sessions": ids,
		"count":    len(ids),
	})
}

func (s *Server) handleUploadImage(c *echo.Context) error {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "No image file provided"})
	}
	if fileHeader.Filename == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "No image selected"})
	}

	file, err := fileHeader.Open()
	if err != nil {
		logger.L.Error("image upload open error", "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to process image"})
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		logger.L.Error("image upload read error", "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to process image"})
	}

	return c.JSON(http.StatusOK, map[string]string{
		"image_data": base64.StdEncoding.EncodeToString(data),
		"filename":   fileHeader.Filename,
		"status":     "success",
	})
}
