// Package api exposes a small status endpoint, mainly for uptime monitoring.
package api

import (
	"context"
	"log/slog"

	"haru/app/config"
	"haru/app/store"

	"github.com/gofiber/fiber/v2"
	"github.com/samber/do"
)

type Server struct {
	cfg   *config.Config
	store *store.Store
	app   *fiber.App
}

func New(di *do.Injector) (*Server, error) {
	s := &Server{
		cfg:   do.MustInvoke[*config.Config](di),
		store: do.MustInvoke[*store.Store](di),
	}

	s.app = fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})
	s.app.Get("/health", s.handleHealth)
	s.app.Get("/stats", s.handleStats)

	return s, nil
}

// Run serves until ctx is cancelled. No-op when no listen address is set.
func (s *Server) Run(ctx context.Context) {
	if s.cfg.API.Listen == "" {
		return
	}

	go func() {
		<-ctx.Done()

		if err := s.app.Shutdown(); err != nil {
			slog.Error("Failed to shut down api server", "error", err)
		}
	}()

	slog.Info("API server listening", "addr", s.cfg.API.Listen)

	if err := s.app.Listen(s.cfg.API.Listen); err != nil {
		slog.Error("API server stopped", "error", err)
	}
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	if err := s.store.Ping(); err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status": "down",
			"error":  err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"status": "ok",
	})
}

func (s *Server) handleStats(c *fiber.Ctx) error {
	pending, err := s.store.CountPendingReminders(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	turns, err := s.store.CountAllTurns(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"pending_reminders": pending,
		"total_turns":       turns,
	})
}
