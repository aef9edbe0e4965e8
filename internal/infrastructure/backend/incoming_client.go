package backend

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/wms-platform/handy-terminal/internal/domain"
)

// IncomingClient implements domain.IncomingGateway over the backend REST API
type IncomingClient struct {
	client *Client
}

var _ domain.IncomingGateway = (*IncomingClient)(nil)

// NewIncomingClient creates an incoming gateway on top of client
func NewIncomingClient(client *Client) *IncomingClient {
	return &IncomingClient{client: client}
}

// ListWarehouses retrieves all warehouses
func (g *IncomingClient) ListWarehouses(ctx context.Context) ([]domain.Warehouse, error) {
	resp, err := call[[]warehouseResponse](ctx, g.client, request{
		operation: "listWarehouses",
		method:    http.MethodGet,
		path:      "/api/master/warehouses",
		fallback:  g.client.fallbacks.Warehouses,
	})
	if err != nil {
		return nil, err
	}
	return mapSlice(resp, warehouseResponse.toDomain), nil
}

// ListSchedules retrieves products with incoming schedules in a warehouse.
// A blank search is unfiltered.
func (g *IncomingClient) ListSchedules(ctx context.Context, warehouseID int, search string) ([]domain.Product, error) {
	query := url.Values{"warehouse_id": {itoa(warehouseID)}}
	if s := strings.TrimSpace(search); s != "" {
		query.Set("search", s)
	}

	resp, err := call[[]productResponse](ctx, g.client, request{
		operation: "listSchedules",
		method:    http.MethodGet,
		path:      "/api/incoming/schedules",
		query:     query,
		fallback:  g.client.fallbacks.Schedules,
	})
	if err != nil {
		return nil, err
	}
	return mapSlice(resp, productResponse.toDomain), nil
}

// GetSchedule retrieves a single schedule with its product
func (g *IncomingClient) GetSchedule(ctx context.Context, scheduleID int) (*domain.ScheduleDetail, error) {
	resp, err := call[scheduleDetailResponse](ctx, g.client, request{
		operation: "getSchedule",
		method:    http.MethodGet,
		path:      "/api/incoming/schedules/" + itoa(scheduleID),
		fallback:  g.client.fallbacks.Schedule,
	})
	if err != nil {
		return nil, err
	}
	detail := resp.toDomain()
	return &detail, nil
}

// ListWorkItems retrieves work items matching filter
func (g *IncomingClient) ListWorkItems(ctx context.Context, filter domain.WorkItemFilter) ([]domain.WorkItem, error) {
	query := url.Values{"warehouse_id": {itoa(filter.WarehouseID)}}
	if filter.PickerID != nil {
		query.Set("picker_id", itoa(*filter.PickerID))
	}
	if filter.Status != "" {
		query.Set("status", filter.Status)
	}
	if filter.FromDate != "" {
		query.Set("from_date", filter.FromDate)
	}
	if filter.ToDate != "" {
		query.Set("to_date", filter.ToDate)
	}
	if filter.Limit > 0 {
		query.Set("limit", itoa(filter.Limit))
	}

	resp, err := call[[]workItemResponse](ctx, g.client, request{
		operation: "listWorkItems",
		method:    http.MethodGet,
		path:      "/api/incoming/work-items",
		query:     query,
		fallback:  g.client.fallbacks.WorkItems,
	})
	if err != nil {
		return nil, err
	}
	return mapSlice(resp, workItemResponse.toDomain), nil
}

// StartWork creates a WORKING item against a schedule
func (g *IncomingClient) StartWork(ctx context.Context, cmd domain.StartWorkCommand) (*domain.WorkItem, error) {
	resp, err := call[workItemResponse](ctx, g.client, request{
		operation: "startWork",
		method:    http.MethodPost,
		path:      "/api/incoming/work-items",
		body: startWorkRequest{
			IncomingScheduleID: cmd.IncomingScheduleID,
			PickerID:           cmd.PickerID,
			WarehouseID:        cmd.WarehouseID,
		},
		fallback: g.client.fallbacks.StartWork,
	})
	if err != nil {
		return nil, err
	}
	item := resp.toDomain()
	return &item, nil
}

// UpdateWork records quantity, dates and location on a work item
func (g *IncomingClient) UpdateWork(ctx context.Context, workItemID int, cmd domain.UpdateWorkCommand) (*domain.WorkItem, error) {
	resp, err := call[workItemResponse](ctx, g.client, request{
		operation: "updateWork",
		method:    http.MethodPut,
		path:      "/api/incoming/work-items/" + itoa(workItemID),
		body: updateWorkRequest{
			WorkQuantity:       cmd.WorkQuantity,
			WorkArrivalDate:    cmd.WorkArrivalDate,
			WorkExpirationDate: cmd.WorkExpirationDate,
			LocationID:         cmd.LocationID,
		},
		fallback: g.client.fallbacks.UpdateWork,
	})
	if err != nil {
		return nil, err
	}
	item := resp.toDomain()
	return &item, nil
}

// CompleteWork finalizes a WORKING item
func (g *IncomingClient) CompleteWork(ctx context.Context, workItemID int) error {
	return exec(ctx, g.client, request{
		operation: "completeWork",
		method:    http.MethodPost,
		path:      "/api/incoming/work-items/" + itoa(workItemID) + "/complete",
		fallback:  g.client.fallbacks.CompleteWork,
	})
}

// CancelWork cancels a WORKING item
func (g *IncomingClient) CancelWork(ctx context.Context, workItemID int) error {
	return exec(ctx, g.client, request{
		operation: "cancelWork",
		method:    http.MethodDelete,
		path:      "/api/incoming/work-items/" + itoa(workItemID),
		fallback:  g.client.fallbacks.CancelWork,
	})
}

// SearchLocations looks up locations in a warehouse
func (g *IncomingClient) SearchLocations(ctx context.Context, warehouseID int, search string) ([]domain.Location, error) {
	query := url.Values{"warehouse_id": {itoa(warehouseID)}}
	if s := strings.TrimSpace(search); s != "" {
		query.Set("search", s)
	}

	resp, err := call[[]locationResponse](ctx, g.client, request{
		operation: "searchLocations",
		method:    http.MethodGet,
		path:      "/api/incoming/locations",
		query:     query,
		fallback:  g.client.fallbacks.Locations,
	})
	if err != nil {
		return nil, err
	}
	return mapSlice(resp, locationResponse.toDomain), nil
}
