package syncjob

import (
	"github.com/Timothykessler87/hardcover-sync-calibre-plugin/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for sync runs.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the sync routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/api")
	group.Post("/sync", h.HandleStartSync)
	group.Get("/sync/:id", h.HandleGetSync)
	group.Get("/health", h.HandleHealth)
}

// startSyncRequest is the optional body for starting a run.
type startSyncRequest struct {
	// IDs restricts the run to these Calibre book IDs. Empty means the
	// whole library.
	IDs []int64 `json:"ids"`
}

// runResponse is the polled representation of one run.
type runResponse struct {
	RunID    string `json:"run_id"`
	State    string `json:"state"`
	Progress int    `json:"progress"`
	Status   string `json:"status"`
	Done     bool   `json:"done"`
	Result   any    `json:"result,omitempty"`
	Error    string `json:"error,omitempty"`
}

// HandleStartSync starts a new background sync run.
func (h *Handler) HandleStartSync(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	var req startSyncRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid request body",
			})
		}
	}

	runner, err := h.service.StartRun(c.Context(), req.IDs)
	if err != nil {
		l.Error("Failed to start sync run", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	l.Info("Sync run started", zap.String("run_id", runner.ID()))
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"run_id": runner.ID(),
	})
}

// HandleGetSync returns progress for a run, including the final result once
// the run has completed.
func (h *Handler) HandleGetSync(c *fiber.Ctx) error {
	runner, ok := h.service.GetRun(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "unknown run id",
		})
	}

	resp := runResponse{
		RunID:    runner.ID(),
		State:    string(runner.State()),
		Progress: runner.Progress(),
		Status:   runner.Status(),
	}

	select {
	case <-runner.Done():
		resp.Done = true
		resp.Result = runner.Result()
		if err := runner.Err(); err != nil {
			resp.Error = err.Error()
		}
	default:
	}

	return c.JSON(resp)
}

// HandleHealth runs the pre-flight connection test.
func (h *Handler) HandleHealth(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	if !h.service.TestConnection(c.Context()) {
		l.Warn("Connection test failed")
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status": "unreachable",
		})
	}

	return c.JSON(fiber.Map{"status": "ok"})
}
