package server

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/DenisMSouza/abtest-sub000/internal/logger"
	"github.com/DenisMSouza/abtest-sub000/types"
)

// Handler handles the backend's HTTP requests.
type Handler struct {
	store  Store
	logger types.Logger
}

// NewHandler creates a new handler.
//
// Parameters:
//   - store: Backing store
//   - l: Logger, nil for none
//
// Returns:
//   - *Handler: Initialized handler
func NewHandler(store Store, l types.Logger) *Handler {
	if l == nil {
		l = logger.NewNop()
	}

	return &Handler{store: store, logger: l}
}

// RegisterRoutes registers routes with the echo server.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	// Internal API (for the client engine)
	e.GET("/internal/experiments/:id/variation", h.GetVariation)
	e.POST("/internal/experiments/:id/variation", h.CreateVariation)

	// Public API
	e.GET("/experiments/:id", h.GetExperiment)
	e.PUT("/experiments/:id", h.PutExperiment)
	e.POST("/experiments/:id/success", h.TrackSuccess)

	e.GET("/health", h.Health)
}

// visitorID extracts the visitor key from the identity query parameters.
// Exactly one of userId/sessionId must be set.
func visitorID(c echo.Context) (string, error) {
	userID := c.QueryParam("userId")
	sessionID := c.QueryParam("sessionId")

	switch {
	case userID != "" && sessionID != "":
		return "", types.ErrAmbiguousIdentity
	case userID != "":
		// Namespace the two identity kinds so they can never collide.
		return "u:" + userID, nil
	case sessionID != "":
		return "s:" + sessionID, nil
	default:
		return "", errors.New("userId or sessionId is required")
	}
}

// GetVariation returns the zero-or-one assignment for a visitor.
//
// The response is always a JSON array: empty when no assignment exists,
// a single record otherwise.
func (h *Handler) GetVariation(c echo.Context) error {
	ctx := c.Request().Context()
	experimentID := c.Param("id")

	visitor, err := visitorID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	assignment, err := h.store.GetAssignment(ctx, experimentID, visitor)
	if err != nil {
		h.logger.Error("failed to load assignment", "experiment", experimentID, "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to load assignment"})
	}

	if assignment == nil {
		return c.JSON(http.StatusOK, []types.Assignment{})
	}

	return c.JSON(http.StatusOK, []types.Assignment{*assignment})
}

// CreateVariationRequest is the write-assignment request body.
type CreateVariationRequest struct {
	ExperimentID string `json:"experimentId"`
	Variation    string `json:"variation"`
}

// CreateVariation persists an assignment unless one already exists for the
// visitor. The first write wins; duplicates are acknowledged, never
// overwritten.
func (h *Handler) CreateVariation(c echo.Context) error {
	ctx := c.Request().Context()
	experimentID := c.Param("id")

	visitor, err := visitorID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	var req CreateVariationRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if req.Variation == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "variation is required"})
	}

	assignment, created, err := h.store.CreateAssignment(ctx, experimentID, visitor, req.Variation)
	if err != nil {
		h.logger.Error("failed to create assignment", "experiment", experimentID, "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to create assignment"})
	}

	if !created {
		return c.JSON(http.StatusOK, map[string]string{"message": "already exists"})
	}

	return c.JSON(http.StatusCreated, assignment)
}

// GetExperiment returns an experiment definition.
func (h *Handler) GetExperiment(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")

	exp, err := h.store.GetExperiment(ctx, id)
	if err != nil {
		if errors.Is(err, types.ErrExperimentNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "experiment not found"})
		}
		h.logger.Error("failed to load experiment", "experiment", id, "error", err)

		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to load experiment"})
	}

	return c.JSON(http.StatusOK, exp)
}

// PutExperiment creates or replaces an experiment definition.
func (h *Handler) PutExperiment(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")

	var exp types.Experiment
	if err := c.Bind(&exp); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	exp.ID = id

	if len(exp.Variants) == 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "at least one variation is required"})
	}

	if err := h.store.PutExperiment(ctx, exp); err != nil {
		h.logger.Error("failed to store experiment", "experiment", id, "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to store experiment"})
	}

	return c.JSON(http.StatusOK, exp)
}

// TrackSuccess records a success event for an experiment.
func (h *Handler) TrackSuccess(c echo.Context) error {
	ctx := c.Request().Context()
	experimentID := c.Param("id")

	var event types.SuccessEvent
	if err := c.Bind(&event); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if event.Event == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "event is required"})
	}

	if err := h.store.RecordSuccess(ctx, experimentID, event); err != nil {
		h.logger.Error("failed to record success event", "experiment", experimentID, "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to record event"})
	}

	return c.JSON(http.StatusAccepted, map[string]string{"status": "recorded"})
}

// Health returns health status.
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "healthy"})
}
