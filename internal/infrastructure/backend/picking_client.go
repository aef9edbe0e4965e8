package backend

import (
	"context"
	"net/http"
	"net/url"

	"github.com/wms-platform/handy-terminal/internal/domain"
)

// PickingClient implements domain.PickingGateway over the backend REST API
type PickingClient struct {
	client *Client
}

var _ domain.PickingGateway = (*PickingClient)(nil)

// NewPickingClient creates a picking gateway on top of client
func NewPickingClient(client *Client) *PickingClient {
	return &PickingClient{client: client}
}

// ListPickingTasks retrieves picking tasks in a warehouse, optionally only
// those assigned to a picker
func (g *PickingClient) ListPickingTasks(ctx context.Context, warehouseID int, pickerID *int) ([]domain.PickingTask, error) {
	query := url.Values{"warehouse_id": {itoa(warehouseID)}}
	if pickerID != nil {
		query.Set("picker_id", itoa(*pickerID))
	}

	resp, err := call[[]pickingTaskResponse](ctx, g.client, request{
		operation: "listPickingTasks",
		method:    http.MethodGet,
		path:      "/api/picking/tasks",
		query:     query,
		fallback:  g.client.fallbacks.PickingTasks,
	})
	if err != nil {
		return nil, err
	}
	return mapSlice(resp, pickingTaskResponse.toDomain), nil
}
