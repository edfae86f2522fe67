// Package api exposes statement analysis over HTTP.
package api

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/insightdelivered/statement-intelligence/internal/parser"
	"github.com/insightdelivered/statement-intelligence/internal/rules"
	"github.com/insightdelivered/statement-intelligence/internal/scheduler"
)

// maxUpload caps statement uploads (32MB).
const maxUpload = 32 << 20

// Response is the JSON envelope returned by every endpoint.
type Response struct {
	Success bool           `json:"success"`
	Error   string         `json:"error,omitempty"`
	Run     *scheduler.Run `json:"run,omitempty"`
}

// Handler holds the HTTP handlers for the API.
type Handler struct {
	Scheduler *scheduler.Scheduler
	Rules     *rules.RuleSet
	OwnerID   string // used when a request names no owner
	Version   string
	Log       zerolog.Logger
}

// NewApp returns a fiber app with the API routes registered.
func NewApp(h *Handler) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "statement-intel",
		BodyLimit:    maxUpload,
		Immutable:    true, // session ids outlive the request
		ErrorHandler: h.handleError,
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,DELETE,OPTIONS",
		AllowHeaders: "Content-Type",
	}))
	h.RegisterRoutes(app)
	return app
}

// RegisterRoutes sets up the HTTP routes.
func (h *Handler) RegisterRoutes(app *fiber.App) {
	api := app.Group("/api")
	api.Get("/health", h.HandleHealth)
	api.Post("/analyze", h.HandleAnalyze)
	api.Get("/sessions/:id", h.HandleGetSession)
	api.Delete("/sessions/:id", h.HandleCancelSession)
}

// HandleHealth reports liveness.
func (h *Handler) HandleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"engine":  "fiber",
		"version": h.Version,
	})
}

// HandleAnalyze schedules a statement for processing. The statement is the
// multipart field "file" or the raw request body. With ?wait=true the
// request blocks until the run finishes; otherwise it returns 202 at once.
func (h *Handler) HandleAnalyze(c *fiber.Ctx) error {
	data, err := readStatement(c)
	if err != nil {
		return err
	}

	bank, err := parser.ParseBankType(formOrQuery(c, "bank"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	req := scheduler.Request{
		SessionID: formOrQuery(c, "session"),
		OwnerID:   formOrQuery(c, "owner"),
		Bank:      bank,
		Data:      data,
		Rules:     h.Rules,
	}
	if req.SessionID == "" {
		req.SessionID = uuid.New().String()
	}
	if req.OwnerID == "" {
		req.OwnerID = h.OwnerID
	}

	if c.QueryBool("wait") {
		run, err := h.Scheduler.Run(c.UserContext(), req)
		if err != nil {
			return schedulingError(err)
		}
		status := fiber.StatusOK
		if run.Status != scheduler.StatusCompleted {
			status = fiber.StatusUnprocessableEntity
		}
		return c.Status(status).JSON(Response{Success: status == fiber.StatusOK, Error: run.Error, Run: &run})
	}

	run, err := h.Scheduler.Start(c.UserContext(), req)
	if err != nil {
		return schedulingError(err)
	}
	return c.Status(fiber.StatusAccepted).JSON(Response{Success: true, Run: &run})
}

// HandleGetSession returns the latest run of a session.
func (h *Handler) HandleGetSession(c *fiber.Ctx) error {
	run, err := h.Scheduler.Get(c.Params("id"))
	if err != nil {
		return schedulingError(err)
	}
	return c.JSON(Response{Success: true, Run: &run})
}

// HandleCancelSession asks a running session to stop.
func (h *Handler) HandleCancelSession(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.Scheduler.Cancel(id); err != nil {
		return schedulingError(err)
	}
	run, err := h.Scheduler.Get(id)
	if err != nil {
		return schedulingError(err)
	}
	return c.Status(fiber.StatusAccepted).JSON(Response{Success: true, Run: &run})
}

func (h *Handler) handleError(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	if code >= fiber.StatusInternalServerError {
		h.Log.Error().Err(err).Str("path", c.Path()).Msg("request failed")
	}
	return c.Status(code).JSON(Response{Success: false, Error: err.Error()})
}

func readStatement(c *fiber.Ctx) ([]byte, error) {
	if strings.HasPrefix(string(c.Request().Header.ContentType()), fiber.MIMEMultipartForm) {
		header, err := c.FormFile("file")
		if err != nil {
			return nil, fiber.NewError(fiber.StatusBadRequest, "No file uploaded. Use form field 'file'.")
		}
		f, err := header.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open upload: %w", err)
		}
		defer f.Close()
		data, err := io.ReadAll(f)
		if err != nil {
			return nil, fmt.Errorf("failed to read upload: %w", err)
		}
		if len(data) == 0 {
			return nil, fiber.NewError(fiber.StatusBadRequest, "Uploaded file is empty.")
		}
		return data, nil
	}

	body := c.Body()
	if len(body) == 0 {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Request body is empty. Send a statement as the body or form field 'file'.")
	}
	// fasthttp reuses the body buffer once the handler returns
	return append([]byte(nil), body...), nil
}

func formOrQuery(c *fiber.Ctx, key string) string {
	if v := c.Query(key); v != "" {
		return v
	}
	if strings.HasPrefix(string(c.Request().Header.ContentType()), fiber.MIMEMultipartForm) {
		return c.FormValue(key)
	}
	return ""
}

func schedulingError(err error) error {
	switch {
	case errors.Is(err, scheduler.ErrAlreadyRunning):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	case errors.Is(err, scheduler.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	}
	return fiber.NewError(fiber.StatusBadRequest, err.Error())
}
