package backend

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wms-platform/handy-terminal/internal/domain"
)

func TestIncomingClient_ListSchedules(t *testing.T) {
	fb := newFakeBackend(t)
	fb.router.GET("/api/incoming/schedules", func(c *gin.Context) {
		ok(c, []gin.H{{
			"item_id":                  101,
			"item_code":                "ITEM-101",
			"item_name":                "Green Tea",
			"search_code":              "GT",
			"jan_codes":                []string{"4901234567890"},
			"temperature_type":         "NORMAL",
			"total_expected_quantity":  100,
			"total_received_quantity":  50,
			"total_remaining_quantity": 50,
			"warehouses": []gin.H{{
				"warehouse_id": 1, "warehouse_code": "W1", "warehouse_name": "Tokyo",
				"expected_quantity": 100, "received_quantity": 50, "remaining_quantity": 50,
			}},
			"schedules": []gin.H{{
				"id": 7, "warehouse_id": 1, "warehouse_name": "Tokyo",
				"expected_quantity": 100, "received_quantity": 50, "remaining_quantity": 50,
				"quantity_type": "case", "expected_arrival_date": "2024-05-01", "status": "partial",
			}},
		}})
	})

	products, err := NewIncomingClient(fb.client(nil)).ListSchedules(context.Background(), 1, "  ")
	require.NoError(t, err)
	require.Len(t, products, 1)

	p := products[0]
	assert.Equal(t, 101, p.ItemID)
	assert.Equal(t, []string{"4901234567890"}, p.JANCodes)
	assert.Empty(t, p.Images)
	assert.NotNil(t, p.Images)
	assert.Nil(t, p.Volume)
	require.NotNil(t, p.TemperatureType)
	assert.Equal(t, "NORMAL", *p.TemperatureType)
	require.Len(t, p.Warehouses, 1)
	assert.Equal(t, "W1", p.Warehouses[0].WarehouseCode)

	s, found := p.Schedule(7)
	require.True(t, found)
	assert.Equal(t, domain.QuantityTypeCase, s.QuantityType)
	assert.Equal(t, domain.ScheduleStatusPartial, s.Status)
	assert.True(t, s.IsSelectable())

	reqs := fb.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "1", reqs[0].Query.Get("warehouse_id"))
	assert.False(t, reqs[0].Query.Has("search"), "blank search is unfiltered")
}

func TestIncomingClient_ListSchedulesWithSearch(t *testing.T) {
	fb := newFakeBackend(t)
	fb.router.GET("/api/incoming/schedules", func(c *gin.Context) { ok(c, []gin.H{}) })

	_, err := NewIncomingClient(fb.client(nil)).ListSchedules(context.Background(), 2, "4901234")
	require.NoError(t, err)

	reqs := fb.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "4901234", reqs[0].Query.Get("search"))
}

func TestIncomingClient_GetSchedule(t *testing.T) {
	fb := newFakeBackend(t)
	fb.router.GET("/api/incoming/schedules/:id", func(c *gin.Context) {
		ok(c, gin.H{
			"id": 7, "warehouse_id": 1, "warehouse_name": "Tokyo", "warehouse_code": "W1",
			"expected_quantity": 100, "received_quantity": 40, "remaining_quantity": 60,
			"quantity_type": "PIECE", "expected_arrival_date": "2024-05-01", "status": "PENDING",
			"item_id": 101, "item_code": "ITEM-101", "item_name": "Green Tea",
		})
	})

	detail, err := NewIncomingClient(fb.client(nil)).GetSchedule(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, 7, detail.ID)
	assert.Equal(t, 60, detail.RemainingQuantity)
	assert.Equal(t, "W1", detail.WarehouseCode)
	assert.Equal(t, "ITEM-101", detail.ItemCode)
	assert.Equal(t, []string{}, detail.JANCodes)

	reqs := fb.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "/api/incoming/schedules/7", reqs[0].Path)
}

func TestIncomingClient_ListWorkItems(t *testing.T) {
	fb := newFakeBackend(t)
	fb.router.GET("/api/incoming/work-items", func(c *gin.Context) {
		ok(c, []gin.H{{
			"id": 12, "incoming_schedule_id": 7, "picker_id": 3, "warehouse_id": 1,
			"location_id": 4,
			"location": gin.H{"id": 4, "code1": "A", "code2": "01", "code3": "1", "name": "A-01", "display_name": "A 01 1"},
			"work_quantity": 30, "work_arrival_date": "2024-05-01", "work_expiration_date": "2025-01-31",
			"status": "completed", "started_at": "2024-05-01T09:00:00+09:00",
			"schedule": gin.H{
				"id": 7, "item_id": 101, "item_code": "ITEM-101", "item_name": "Green Tea",
				"warehouse_id": 1, "warehouse_name": "Tokyo",
				"expected_quantity": 100, "received_quantity": 80, "remaining_quantity": 20,
				"quantity_type": "PIECE",
			},
		}})
	})

	picker := 3
	items, err := NewIncomingClient(fb.client(nil)).ListWorkItems(context.Background(), domain.WorkItemFilter{
		WarehouseID: 1,
		PickerID:    &picker,
		Status:      domain.WorkItemStatusAll,
		FromDate:    "2024-05-01",
		Limit:       50,
	})
	require.NoError(t, err)
	require.Len(t, items, 1)

	item := items[0]
	assert.Equal(t, domain.WorkItemStatusCompleted, item.Status)
	assert.True(t, item.IsEditable())
	assert.False(t, item.IsCancellable())
	require.NotNil(t, item.LocationID)
	assert.Equal(t, 4, *item.LocationID)
	require.NotNil(t, item.Location)
	assert.Equal(t, "A 01 1", item.Location.DisplayName)
	require.NotNil(t, item.WorkExpirationDate)
	assert.Equal(t, "2025-01-31", *item.WorkExpirationDate)
	require.NotNil(t, item.Schedule)
	assert.Equal(t, 20, item.Schedule.RemainingQuantity)

	reqs := fb.Requests()
	require.Len(t, reqs, 1)
	q := reqs[0].Query
	assert.Equal(t, "1", q.Get("warehouse_id"))
	assert.Equal(t, "3", q.Get("picker_id"))
	assert.Equal(t, "all", q.Get("status"))
	assert.Equal(t, "2024-05-01", q.Get("from_date"))
	assert.Equal(t, "50", q.Get("limit"))
	assert.False(t, q.Has("to_date"))
}

func TestIncomingClient_WorkLifecycle(t *testing.T) {
	fb := newFakeBackend(t)
	fb.router.POST("/api/incoming/work-items", func(c *gin.Context) {
		ok(c, gin.H{"id": 12, "incoming_schedule_id": 7, "picker_id": 3, "warehouse_id": 1, "status": "WORKING"})
	})
	fb.router.PUT("/api/incoming/work-items/:id", func(c *gin.Context) {
		ok(c, gin.H{"id": 12, "incoming_schedule_id": 7, "work_quantity": 30, "work_arrival_date": "2024-05-01", "status": "WORKING"})
	})
	fb.router.POST("/api/incoming/work-items/:id/complete", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"is_success": true, "result": gin.H{}})
	})
	fb.router.DELETE("/api/incoming/work-items/:id", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"is_success": true})
	})

	gateway := NewIncomingClient(fb.client(nil))
	ctx := context.Background()

	started, err := gateway.StartWork(ctx, domain.StartWorkCommand{IncomingScheduleID: 7, PickerID: 3, WarehouseID: 1})
	require.NoError(t, err)
	assert.Equal(t, 12, started.ID)
	assert.Equal(t, domain.WorkItemStatusWorking, started.Status)

	location := 4
	updated, err := gateway.UpdateWork(ctx, started.ID, domain.UpdateWorkCommand{
		WorkQuantity:    30,
		WorkArrivalDate: "2024-05-01",
		LocationID:      &location,
	})
	require.NoError(t, err)
	assert.Equal(t, 30, updated.WorkQuantity)

	require.NoError(t, gateway.CompleteWork(ctx, started.ID))
	require.NoError(t, gateway.CancelWork(ctx, started.ID))

	reqs := fb.Requests()
	require.Len(t, reqs, 4)

	assert.Equal(t, map[string]any{"incoming_schedule_id": float64(7), "picker_id": float64(3), "warehouse_id": float64(1)}, reqs[0].Body)

	assert.Equal(t, "/api/incoming/work-items/12", reqs[1].Path)
	assert.Equal(t, map[string]any{"work_quantity": float64(30), "work_arrival_date": "2024-05-01", "location_id": float64(4)}, reqs[1].Body)
	assert.NotContains(t, reqs[1].Body, "work_expiration_date")

	assert.Equal(t, http.MethodPost, reqs[2].Method)
	assert.Equal(t, "/api/incoming/work-items/12/complete", reqs[2].Path)
	assert.Equal(t, http.MethodDelete, reqs[3].Method)
}

func TestIncomingClient_SearchLocations(t *testing.T) {
	fb := newFakeBackend(t)
	fb.router.GET("/api/incoming/locations", func(c *gin.Context) {
		ok(c, []gin.H{{"id": 4, "code1": "A", "code2": "12", "code3": "1", "name": "A-12", "display_name": "A 12 1"}})
	})

	locations, err := NewIncomingClient(fb.client(nil)).SearchLocations(context.Background(), 1, "A12")
	require.NoError(t, err)
	assert.Equal(t, []domain.Location{{ID: 4, Code1: "A", Code2: "12", Code3: "1", Name: "A-12", DisplayName: "A 12 1"}}, locations)

	reqs := fb.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "A12", reqs[0].Query.Get("search"))
}

func TestPickingClient_ListPickingTasks(t *testing.T) {
	fb := newFakeBackend(t)
	fb.router.GET("/api/picking/tasks", func(c *gin.Context) {
		ok(c, []gin.H{{
			"course":       gin.H{"code": "C1", "name": "Course 1"},
			"picking_area": gin.H{"code": "PA", "name": "Area A"},
			"wave":         gin.H{"wms_picking_task_id": 55, "wms_wave_id": 9},
			"picking_list": []gin.H{
				{"wms_picking_item_result_id": 1, "item_id": 101, "item_name": "Green Tea", "planned_qty_type": "CASE", "planned_qty": "2.000", "picked_qty": "2", "slip_number": 1001},
				{"wms_picking_item_result_id": 2, "item_id": 102, "item_name": "Black Tea", "planned_qty_type": "bottle", "planned_qty": "5", "picked_qty": "n/a", "slip_number": 1002},
			},
		}})
	})

	picker := 3
	tasks, err := NewPickingClient(fb.client(nil)).ListPickingTasks(context.Background(), 1, &picker)
	require.NoError(t, err)
	require.Len(t, tasks, 1)

	task := tasks[0]
	assert.Equal(t, 55, task.TaskID)
	assert.Equal(t, 9, task.WaveID)
	assert.Equal(t, "Course 1", task.Course.Name)
	assert.Equal(t, "PA", task.Area.Code)
	assert.Equal(t, 2, task.TotalItems)
	assert.Equal(t, 1, task.CompletedItems)
	assert.True(t, task.IsInProgress())
	assert.Equal(t, "1/2", task.ProgressText())

	assert.True(t, task.Items[0].PlannedQty.Equal(decimal.NewFromInt(2)))
	assert.Equal(t, domain.QuantityTypePiece, task.Items[1].PlannedQtyType)
	assert.True(t, task.Items[1].PickedQty.IsZero())

	reqs := fb.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "3", reqs[0].Query.Get("picker_id"))
}

func TestPickingClient_AllCourses(t *testing.T) {
	fb := newFakeBackend(t)
	fb.router.GET("/api/picking/tasks", func(c *gin.Context) { ok(c, []gin.H{}) })

	tasks, err := NewPickingClient(fb.client(nil)).ListPickingTasks(context.Background(), 1, nil)
	require.NoError(t, err)
	assert.Empty(t, tasks)

	reqs := fb.Requests()
	require.Len(t, reqs, 1)
	assert.False(t, reqs[0].Query.Has("picker_id"))
}
