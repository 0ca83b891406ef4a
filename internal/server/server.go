// Package server exposes the controller over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"seo-cluster/internal/config"
	"seo-cluster/internal/handler"
	"seo-cluster/internal/service"
	"seo-cluster/pkg/api"
	"seo-cluster/pkg/logger"
	"seo-cluster/pkg/report"
	"seo-cluster/pkg/storage"
)

type Server struct {
	app *fiber.App
	svc service.Service
	cfg config.ServerConfig
	log *logger.Logger
}

func New(svc service.Service, cfg config.ServerConfig) *Server {
	s := &Server{
		svc: svc,
		cfg: cfg,
		log: logger.GetLogger().WithField("component", "http_server"),
	}
	s.app = fiber.New(fiber.Config{
		AppName:               "seo-cluster",
		DisableStartupMessage: true,
		UnescapePath:          true,
		ReadTimeout:           30 * time.Second,
		// clustering and fetch requests can run for minutes
		WriteTimeout: 10 * time.Minute,
		ErrorHandler: s.handleError,
	})
	s.app.Use(recover.New())
	s.app.Use(requestid.New())
	s.app.Use(s.logRequests)
	s.routes()
	return s
}

// App returns the underlying fiber app, mainly for app.Test.
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) Addr() string {
	return net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))
}

// Listen blocks until the server stops.
func (s *Server) Listen() error {
	s.log.WithField("addr", s.Addr()).Info("HTTP server listening")
	return s.app.Listen(s.Addr())
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func (s *Server) routes() {
	s.app.Get("/health", s.health)

	v1 := s.app.Group("/api/v1")
	v1.Get("/status", s.status)
	v1.Post("/fetch", s.fetch)
	v1.Post("/cluster", s.cluster)
	v1.Get("/cache/*", s.inspect)
	v1.Delete("/cache", s.clearCache)
}

func (s *Server) logRequests(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()

	status := c.Response().StatusCode()
	if err != nil {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			status = fe.Code
		}
	}
	s.log.WithFields(map[string]interface{}{
		"method":     c.Method(),
		"path":       c.Path(),
		"status":     status,
		"duration":   time.Since(start).String(),
		"request_id": c.GetRespHeader(fiber.HeaderXRequestID),
	}).Debug("HTTP request")
	return err
}

func (s *Server) health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

func (s *Server) status(c *fiber.Ctx) error {
	st, err := s.svc.Status(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(st)
}

func (s *Server) fetch(c *fiber.Ctx) error {
	var req service.FetchRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body: "+err.Error())
	}
	resp, err := s.svc.Fetch(c.UserContext(), req)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// cluster answers with JSON unless ?format=csv|yaml|table asks otherwise.
func (s *Server) cluster(c *fiber.Ctx) error {
	var req service.ClusterRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body: "+err.Error())
	}
	format, err := report.ParseFormat(c.Query("format", string(report.FormatJSON)))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	rep, err := s.svc.Cluster(c.UserContext(), req)
	if err != nil {
		return err
	}

	switch format {
	case report.FormatJSON:
		return c.JSON(rep)
	case report.FormatCSV:
		c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
		c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="clusters-%s.csv"`, rep.RunID))
	case report.FormatYAML:
		c.Set(fiber.HeaderContentType, "application/yaml")
	default:
		c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
	}
	return rep.Write(c, format)
}

func (s *Server) inspect(c *fiber.Ctx) error {
	key := c.Params("*")
	if key == "" {
		return fiber.NewError(fiber.StatusBadRequest, "cache key is required")
	}
	entry, err := s.svc.Inspect(c.UserContext(), key)
	if err != nil {
		return err
	}
	return c.JSON(entry)
}

func (s *Server) clearCache(c *fiber.Ctx) error {
	n, err := s.svc.ClearCache(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"cleared": n})
}

func (s *Server) handleError(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	body := fiber.Map{"error": err.Error()}

	var (
		fe      *fiber.Error
		missing *handler.MissingDataError
	)
	switch {
	case errors.As(err, &fe):
		code = fe.Code
	case errors.As(err, &missing):
		code = fiber.StatusUnprocessableEntity
		body["missing"] = missing.Keywords
	case errors.Is(err, handler.ErrNoKeywords), errors.Is(err, config.ErrInvalid):
		code = fiber.StatusBadRequest
	case errors.Is(err, storage.ErrNotFound):
		code = fiber.StatusNotFound
	case errors.Is(err, api.ErrNoCredentials):
		code = fiber.StatusServiceUnavailable
	}

	if code >= fiber.StatusInternalServerError {
		s.log.WithError(err).WithField("path", c.Path()).Error("Request failed")
	}
	return c.Status(code).JSON(body)
}
