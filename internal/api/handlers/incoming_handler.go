package handlers

import (
	"io"

	"github.com/gin-gonic/gin"

	"github.com/wms-platform/handy-terminal/internal/application/incoming"
	"github.com/wms-platform/handy-terminal/pkg/api"
	"github.com/wms-platform/handy-terminal/pkg/contracts/schema"
	"github.com/wms-platform/handy-terminal/pkg/logging"
	"github.com/wms-platform/handy-terminal/pkg/middleware"
)

// IncomingHandler exposes the incoming engine's intents over HTTP. Every
// intent responds with the state document as it stands after the intent.
type IncomingHandler struct {
	engine *incoming.Engine
	logger *logging.Logger
	docs   documentWriter
}

// NewIncomingHandler creates a new incoming handler. documents may be nil.
func NewIncomingHandler(engine *incoming.Engine, logger *logging.Logger, documents *schema.DocumentValidator) *IncomingHandler {
	return &IncomingHandler{
		engine: engine,
		logger: logger,
		docs:   documentWriter{validator: documents, logger: logger},
	}
}

// RegisterRoutes registers the incoming routes
func (h *IncomingHandler) RegisterRoutes(r *gin.RouterGroup) {
	in := r.Group("/incoming")
	{
		in.GET("/state", h.GetState)
		in.GET("/stream", h.Stream)

		in.POST("/warehouses/load", h.LoadWarehouses)
		in.PUT("/warehouse", middleware.WrapHandler(h.SelectWarehouse))

		in.POST("/products/load", h.LoadProducts)
		in.PUT("/search", middleware.WrapHandler(h.SetSearchQuery))
		in.PUT("/product", middleware.WrapHandler(h.SelectProduct))
		in.PUT("/schedule", middleware.WrapHandler(h.SelectSchedule))

		in.PUT("/input/quantity", middleware.WrapHandler(h.SetQuantityInput))
		in.PUT("/input/expiration-date", middleware.WrapHandler(h.SetExpirationDate))
		in.PUT("/input/location-query", middleware.WrapHandler(h.SetLocationQuery))
		in.PUT("/input/location", middleware.WrapHandler(h.SelectLocation))

		in.POST("/submit", h.Submit)
		in.POST("/work/cancel", middleware.WrapHandler(h.CancelWork))

		in.POST("/history/load", h.LoadHistory)
		in.PUT("/history/selection", middleware.WrapHandler(h.SelectHistoryItem))
		in.POST("/history/schedule/load", middleware.WrapHandler(h.LoadEditSchedule))

		in.DELETE("/error", h.ClearError)
		in.DELETE("/success", h.ClearSuccessMessage)
	}
}

type warehouseSelection struct {
	WarehouseID int `json:"warehouseId" validate:"required,gt=0"`
}

type productSelection struct {
	ItemID int `json:"itemId" validate:"required,gt=0"`
}

type scheduleSelection struct {
	ScheduleID int `json:"scheduleId" validate:"required,gt=0"`
}

type locationSelection struct {
	LocationID int `json:"locationId" validate:"required,gt=0"`
}

type historySelection struct {
	WorkItemID int `json:"workItemId" validate:"required,gt=0"`
}

type queryInput struct {
	Query string `json:"query" validate:"max=100"`
}

type valueInput struct {
	Value string `json:"value" validate:"max=20"`
}

func (h *IncomingHandler) respond(c *gin.Context) {
	h.docs.write(c, schema.IncomingState, NewIncomingDocument(h.engine.State()))
}

// GetState handles GET /incoming/state
func (h *IncomingHandler) GetState(c *gin.Context) {
	h.respond(c)
}

// Stream handles GET /incoming/stream, sending a "state" event per change
func (h *IncomingHandler) Stream(c *gin.Context) {
	id, states := h.engine.Subscribe()
	defer h.engine.Unsubscribe(id)

	h.logger.WithContext(c.Request.Context()).Debug("State stream opened", "subscriber", id)

	c.Stream(func(w io.Writer) bool {
		select {
		case st, ok := <-states:
			if !ok {
				return false
			}
			c.SSEvent("state", NewIncomingDocument(st))
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}

// LoadWarehouses handles POST /incoming/warehouses/load
func (h *IncomingHandler) LoadWarehouses(c *gin.Context) {
	h.engine.LoadWarehouses(c.Request.Context())
	h.respond(c)
}

// SelectWarehouse handles PUT /incoming/warehouse
func (h *IncomingHandler) SelectWarehouse(c *gin.Context) error {
	var req warehouseSelection
	if appErr := api.BindAndValidate(c, &req); appErr != nil {
		return appErr
	}
	if err := h.engine.SelectWarehouseByID(req.WarehouseID); err != nil {
		return err
	}
	h.respond(c)
	return nil
}

// LoadProducts handles POST /incoming/products/load
func (h *IncomingHandler) LoadProducts(c *gin.Context) {
	h.engine.LoadProducts(c.Request.Context())
	h.respond(c)
}

// SetSearchQuery handles PUT /incoming/search. The search itself runs after
// the debounce period and arrives on the stream.
func (h *IncomingHandler) SetSearchQuery(c *gin.Context) error {
	var req queryInput
	if appErr := api.BindAndValidate(c, &req); appErr != nil {
		return appErr
	}
	h.engine.SetSearchQuery(req.Query)
	h.respond(c)
	return nil
}

// SelectProduct handles PUT /incoming/product
func (h *IncomingHandler) SelectProduct(c *gin.Context) error {
	var req productSelection
	if appErr := api.BindAndValidate(c, &req); appErr != nil {
		return appErr
	}
	if err := h.engine.SelectProductByID(req.ItemID); err != nil {
		return err
	}
	h.respond(c)
	return nil
}

// SelectSchedule handles PUT /incoming/schedule
func (h *IncomingHandler) SelectSchedule(c *gin.Context) error {
	var req scheduleSelection
	if appErr := api.BindAndValidate(c, &req); appErr != nil {
		return appErr
	}
	if err := h.engine.SelectScheduleByID(req.ScheduleID); err != nil {
		return err
	}
	h.respond(c)
	return nil
}

// SetQuantityInput handles PUT /incoming/input/quantity. Non-digit input
// leaves the buffer as it was.
func (h *IncomingHandler) SetQuantityInput(c *gin.Context) error {
	var req valueInput
	if appErr := api.BindAndValidate(c, &req); appErr != nil {
		return appErr
	}
	h.engine.SetQuantityInput(req.Value)
	h.respond(c)
	return nil
}

// SetExpirationDate handles PUT /incoming/input/expiration-date
func (h *IncomingHandler) SetExpirationDate(c *gin.Context) error {
	var req valueInput
	if appErr := api.BindAndValidate(c, &req); appErr != nil {
		return appErr
	}
	h.engine.SetExpirationDate(req.Value)
	h.respond(c)
	return nil
}

// SetLocationQuery handles PUT /incoming/input/location-query
func (h *IncomingHandler) SetLocationQuery(c *gin.Context) error {
	var req queryInput
	if appErr := api.BindAndValidate(c, &req); appErr != nil {
		return appErr
	}
	h.engine.SetLocationQuery(req.Query)
	h.respond(c)
	return nil
}

// SelectLocation handles PUT /incoming/input/location
func (h *IncomingHandler) SelectLocation(c *gin.Context) error {
	var req locationSelection
	if appErr := api.BindAndValidate(c, &req); appErr != nil {
		return appErr
	}
	if err := h.engine.SelectLocationByID(req.LocationID); err != nil {
		return err
	}
	h.respond(c)
	return nil
}

// Submit handles POST /incoming/submit
func (h *IncomingHandler) Submit(c *gin.Context) {
	h.engine.Submit(c.Request.Context())
	h.respond(c)
}

// CancelWork handles POST /incoming/work/cancel
func (h *IncomingHandler) CancelWork(c *gin.Context) error {
	if err := h.engine.CancelWork(c.Request.Context()); err != nil {
		return err
	}
	h.respond(c)
	return nil
}

// LoadHistory handles POST /incoming/history/load
func (h *IncomingHandler) LoadHistory(c *gin.Context) {
	h.engine.LoadHistory(c.Request.Context())
	h.respond(c)
}

// SelectHistoryItem handles PUT /incoming/history/selection
func (h *IncomingHandler) SelectHistoryItem(c *gin.Context) error {
	var req historySelection
	if appErr := api.BindAndValidate(c, &req); appErr != nil {
		return appErr
	}
	if err := h.engine.SelectHistoryItemByID(req.WorkItemID); err != nil {
		return err
	}
	h.respond(c)
	return nil
}

// LoadEditSchedule handles POST /incoming/history/schedule/load
func (h *IncomingHandler) LoadEditSchedule(c *gin.Context) error {
	if err := h.engine.LoadEditSchedule(c.Request.Context()); err != nil {
		return err
	}
	h.respond(c)
	return nil
}

// ClearError handles DELETE /incoming/error
func (h *IncomingHandler) ClearError(c *gin.Context) {
	h.engine.ClearError()
	h.respond(c)
}

// ClearSuccessMessage handles DELETE /incoming/success
func (h *IncomingHandler) ClearSuccessMessage(c *gin.Context) {
	h.engine.ClearSuccessMessage()
	h.respond(c)
}
