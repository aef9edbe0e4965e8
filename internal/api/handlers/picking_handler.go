package handlers

import (
	"io"

	"github.com/gin-gonic/gin"

	"github.com/wms-platform/handy-terminal/internal/application/picking"
	"github.com/wms-platform/handy-terminal/pkg/api"
	"github.com/wms-platform/handy-terminal/pkg/contracts/schema"
	"github.com/wms-platform/handy-terminal/pkg/logging"
	"github.com/wms-platform/handy-terminal/pkg/middleware"
)

// PickingHandler exposes the outbound picking task board
type PickingHandler struct {
	board  *picking.Board
	logger *logging.Logger
	docs   documentWriter
}

// NewPickingHandler creates a new picking handler. documents may be nil.
func NewPickingHandler(board *picking.Board, logger *logging.Logger, documents *schema.DocumentValidator) *PickingHandler {
	return &PickingHandler{
		board:  board,
		logger: logger,
		docs:   documentWriter{validator: documents, logger: logger},
	}
}

// RegisterRoutes registers the picking routes
func (h *PickingHandler) RegisterRoutes(r *gin.RouterGroup) {
	p := r.Group("/picking")
	{
		p.GET("/tasks", h.GetTasks)
		p.GET("/stream", h.Stream)
		p.PUT("/tab", middleware.WrapHandler(h.SelectTab))
		p.POST("/refresh", h.Refresh)
	}
}

type tabSelection struct {
	Tab string `json:"tab" validate:"required,oneof=MY_AREA ALL_COURSES"`
}

// GetTasks handles GET /picking/tasks, loading the active tab on first use
func (h *PickingHandler) GetTasks(c *gin.Context) {
	h.docs.write(c, schema.PickingBoard, h.board.Open(c.Request.Context()))
}

// Stream handles GET /picking/stream, sending a "state" event per change
func (h *PickingHandler) Stream(c *gin.Context) {
	id, states := h.board.Subscribe()
	defer h.board.Unsubscribe(id)

	h.logger.WithContext(c.Request.Context()).Debug("Picking stream opened", "subscriber", id)

	c.Stream(func(w io.Writer) bool {
		select {
		case st, ok := <-states:
			if !ok {
				return false
			}
			c.SSEvent("state", st)
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}

// SelectTab handles PUT /picking/tab
func (h *PickingHandler) SelectTab(c *gin.Context) error {
	var req tabSelection
	if appErr := api.BindAndValidate(c, &req); appErr != nil {
		return appErr
	}
	tab, _ := picking.ParseTab(req.Tab)
	h.docs.write(c, schema.PickingBoard, h.board.SelectTab(c.Request.Context(), tab))
	return nil
}

// Refresh handles POST /picking/refresh
func (h *PickingHandler) Refresh(c *gin.Context) {
	h.docs.write(c, schema.PickingBoard, h.board.Refresh(c.Request.Context()))
}
