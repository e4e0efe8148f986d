package main

import (
	"net"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/a6arsh/Chatbot-yellow/internal/chat"
	"github.com/a6arsh/Chatbot-yellow/internal/config"
	"github.com/a6arsh/Chatbot-yellow/internal/fallback"
	"github.com/a6arsh/Chatbot-yellow/internal/gateway"
	"github.com/a6arsh/Chatbot-yellow/internal/history"
	"github.com/a6arsh/Chatbot-yellow/internal/llm"
	"github.com/a6arsh/Chatbot-yellow/internal/logger"
	"github.com/a6arsh/Chatbot-yellow/internal/server"
	"github.com/a6arsh/Chatbot-yellow/internal/session"
)

func main() {
	// Local development keeps credentials in a .env file.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logger.L.Warn("failed to load .env", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		logger.L.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	logger.Setup(cfg.Debug)

	var primary, secondary *gateway.Tier
	if cfg.Primary.Configured() {
		primary = &gateway.Tier{
			Client:  llm.NewClient(cfg.Primary),
			Model:   cfg.Primary.Model,
			Timeout: time.Duration(cfg.Primary.TimeoutSeconds) * time.Second,
		}
		logger.L.Info("primary provider initialized", "model", cfg.Primary.Model)
	} else {
		logger.L.Warn("no valid primary API key found; chat will use fallback responses")
	}
	if cfg.Secondary.Configured() {
		secondary = &gateway.Tier{
			Client:  llm.NewClient(cfg.Secondary),
			Model:   cfg.Secondary.Model,
			Timeout: time.Duration(cfg.Secondary.TimeoutSeconds) * time.Second,
		}
		logger.L.Info("secondary provider initialized for vision support", "model", cfg.Secondary.Model)
	} else {
		logger.L.Info("no secondary API key; vision will use the primary provider only")
	}

	svc := chat.NewService(
		session.NewStore(),
		gateway.New(primary, secondary),
		fallback.New(),
		history.NewRecorder(cfg.HistoryDBPath),
	)

	srv := server.New(cfg, svc)
	addr := net.JoinHostPort(cfg.Server.Host, cfg.Server.Port)
	logger.L.Info("starting chatbot backend", "address", addr, "cors", cfg.AllowedOrigins, "debug", cfg.Debug)
	if err := srv.Start(addr); err != nil {
		logger.L.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
