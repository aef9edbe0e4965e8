package domain

import "context"

// WorkItemFilter selects work items for ListWorkItems
type WorkItemFilter struct {
	WarehouseID int
	PickerID    *int
	// Status is a WorkItemStatus or WorkItemStatusAll; empty means no filter.
	Status   string
	FromDate string
	ToDate   string
	Limit    int
}

// StartWorkCommand creates a WORKING item against a schedule
type StartWorkCommand struct {
	IncomingScheduleID int
	PickerID           int
	WarehouseID        int
}

// UpdateWorkCommand records quantity, dates and location on a work item
type UpdateWorkCommand struct {
	WorkQuantity       int
	WorkArrivalDate    string
	WorkExpirationDate *string
	LocationID         *int
}

// IncomingGateway is the backend contract for the incoming flow. Expected
// failures are returned as *errors.AppError; a canceled context is returned
// as is.
type IncomingGateway interface {
	ListWarehouses(ctx context.Context) ([]Warehouse, error)
	ListSchedules(ctx context.Context, warehouseID int, search string) ([]Product, error)
	GetSchedule(ctx context.Context, scheduleID int) (*ScheduleDetail, error)
	ListWorkItems(ctx context.Context, filter WorkItemFilter) ([]WorkItem, error)
	StartWork(ctx context.Context, cmd StartWorkCommand) (*WorkItem, error)
	UpdateWork(ctx context.Context, workItemID int, cmd UpdateWorkCommand) (*WorkItem, error)
	CompleteWork(ctx context.Context, workItemID int) error
	CancelWork(ctx context.Context, workItemID int) error
	SearchLocations(ctx context.Context, warehouseID int, search string) ([]Location, error)
}

// PickingGateway is the backend contract for outbound picking tasks
type PickingGateway interface {
	ListPickingTasks(ctx context.Context, warehouseID int, pickerID *int) ([]PickingTask, error)
}

// Picker is the signed-in warehouse staff member
type Picker struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Session exposes the signed-in identity
type Session interface {
	Picker() (Picker, bool)
	DefaultWarehouseID() (int, bool)
}
