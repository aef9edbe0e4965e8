package domain

import "strings"

// QuantityType is the unit a quantity is counted in
type QuantityType string

const (
	QuantityTypeCase  QuantityType = "CASE"
	QuantityTypePiece QuantityType = "PIECE"
)

// ParseQuantityType is case-insensitive; unknown values count in pieces.
func ParseQuantityType(s string) QuantityType {
	switch QuantityType(strings.ToUpper(s)) {
	case QuantityTypeCase:
		return QuantityTypeCase
	default:
		return QuantityTypePiece
	}
}

// ScheduleStatus represents the status of an incoming schedule
type ScheduleStatus string

const (
	ScheduleStatusPending     ScheduleStatus = "PENDING"
	ScheduleStatusPartial     ScheduleStatus = "PARTIAL"
	ScheduleStatusConfirmed   ScheduleStatus = "CONFIRMED"
	ScheduleStatusTransmitted ScheduleStatus = "TRANSMITTED"
	ScheduleStatusCancelled   ScheduleStatus = "CANCELLED"
)

// ParseScheduleStatus is case-insensitive; unknown values are PENDING.
func ParseScheduleStatus(s string) ScheduleStatus {
	switch status := ScheduleStatus(strings.ToUpper(s)); status {
	case ScheduleStatusPending, ScheduleStatusPartial, ScheduleStatusConfirmed,
		ScheduleStatusTransmitted, ScheduleStatusCancelled:
		return status
	default:
		return ScheduleStatusPending
	}
}

// IsSelectable reports whether new work may start against the status
func (s ScheduleStatus) IsSelectable() bool {
	return s == ScheduleStatusPending || s == ScheduleStatusPartial
}

// Schedule is one expected-arrival lot of a product at a warehouse.
// received + remaining == expected is the server's business.
type Schedule struct {
	ID                  int            `json:"id"`
	WarehouseID         int            `json:"warehouseId"`
	WarehouseName       string         `json:"warehouseName"`
	ExpectedQuantity    int            `json:"expectedQuantity"`
	ReceivedQuantity    int            `json:"receivedQuantity"`
	RemainingQuantity   int            `json:"remainingQuantity"`
	QuantityType        QuantityType   `json:"quantityType"`
	ExpectedArrivalDate string         `json:"expectedArrivalDate"`
	Status              ScheduleStatus `json:"status"`
}

// IsSelectable reports whether new work may start against the schedule
func (s Schedule) IsSelectable() bool {
	return s.Status.IsSelectable()
}

// ScheduleDetail is a schedule fetched on its own, carrying its product
type ScheduleDetail struct {
	Schedule
	WarehouseCode string   `json:"warehouseCode"`
	ItemID        int      `json:"itemId"`
	ItemCode      string   `json:"itemCode"`
	ItemName      string   `json:"itemName"`
	SearchCode    string   `json:"searchCode"`
	JANCodes      []string `json:"janCodes"`
}

// WarehouseSummary aggregates a product's quantities in one warehouse
type WarehouseSummary struct {
	WarehouseID       int    `json:"warehouseId"`
	WarehouseCode     string `json:"warehouseCode"`
	WarehouseName     string `json:"warehouseName"`
	ExpectedQuantity  int    `json:"expectedQuantity"`
	ReceivedQuantity  int    `json:"receivedQuantity"`
	RemainingQuantity int    `json:"remainingQuantity"`
}

// Product is an item with pending incoming schedules
type Product struct {
	ItemID                 int                `json:"itemId"`
	ItemCode               string             `json:"itemCode"`
	ItemName               string             `json:"itemName"`
	SearchCode             string             `json:"searchCode"`
	JANCodes               []string           `json:"janCodes"`
	Volume                 *string            `json:"volume,omitempty"`
	TemperatureType        *string            `json:"temperatureType,omitempty"`
	Images                 []string           `json:"images"`
	TotalExpectedQuantity  int                `json:"totalExpectedQuantity"`
	TotalReceivedQuantity  int                `json:"totalReceivedQuantity"`
	TotalRemainingQuantity int                `json:"totalRemainingQuantity"`
	Warehouses             []WarehouseSummary `json:"warehouses"`
	Schedules              []Schedule         `json:"schedules"`
}

// Schedule returns the product's schedule with the given id
func (p Product) Schedule(id int) (Schedule, bool) {
	for _, s := range p.Schedules {
		if s.ID == id {
			return s, true
		}
	}
	return Schedule{}, false
}

// FindProduct returns the product with the given item id
func FindProduct(products []Product, itemID int) (Product, bool) {
	for _, p := range products {
		if p.ItemID == itemID {
			return p, true
		}
	}
	return Product{}, false
}

// WorkItemStatus represents the status of a work item
type WorkItemStatus string

const (
	WorkItemStatusWorking   WorkItemStatus = "WORKING"
	WorkItemStatusCompleted WorkItemStatus = "COMPLETED"
	WorkItemStatusCancelled WorkItemStatus = "CANCELLED"
)

// WorkItemStatusAll is the list filter matching every status
const WorkItemStatusAll = "all"

// ParseWorkItemStatus is case-insensitive; unknown values are WORKING.
func ParseWorkItemStatus(s string) WorkItemStatus {
	switch status := WorkItemStatus(strings.ToUpper(s)); status {
	case WorkItemStatusWorking, WorkItemStatusCompleted, WorkItemStatusCancelled:
		return status
	default:
		return WorkItemStatusWorking
	}
}

// WorkItemSchedule is the schedule snapshot embedded in a work item
type WorkItemSchedule struct {
	ID                int          `json:"id"`
	ItemID            int          `json:"itemId"`
	ItemCode          string       `json:"itemCode"`
	ItemName          string       `json:"itemName"`
	WarehouseID       int          `json:"warehouseId"`
	WarehouseName     string       `json:"warehouseName"`
	ExpectedQuantity  int          `json:"expectedQuantity"`
	ReceivedQuantity  int          `json:"receivedQuantity"`
	RemainingQuantity int          `json:"remainingQuantity"`
	QuantityType      QuantityType `json:"quantityType"`
}

// WorkItem is a picker's record of receiving against a schedule.
//
// COMPLETED items stay editable through updateWork; only CANCELLED is final.
type WorkItem struct {
	ID                 int               `json:"id"`
	IncomingScheduleID int               `json:"incomingScheduleId"`
	PickerID           int               `json:"pickerId"`
	WarehouseID        int               `json:"warehouseId"`
	LocationID         *int              `json:"locationId,omitempty"`
	Location           *Location         `json:"location,omitempty"`
	WorkQuantity       int               `json:"workQuantity"`
	WorkArrivalDate    string            `json:"workArrivalDate"`
	WorkExpirationDate *string           `json:"workExpirationDate,omitempty"`
	Status             WorkItemStatus    `json:"status"`
	StartedAt          string            `json:"startedAt"`
	Schedule           *WorkItemSchedule `json:"schedule,omitempty"`
}

// IsEditable reports whether the item may be opened for edit
func (w WorkItem) IsEditable() bool {
	return w.Status != WorkItemStatusCancelled
}

// IsCancellable reports whether the item may still be cancelled
func (w WorkItem) IsCancellable() bool {
	return w.Status == WorkItemStatusWorking
}

// FindWorkItem returns the work item with the given id
func FindWorkItem(items []WorkItem, id int) (WorkItem, bool) {
	for _, item := range items {
		if item.ID == id {
			return item, true
		}
	}
	return WorkItem{}, false
}

// Location is a storage slot inside a warehouse
type Location struct {
	ID          int    `json:"id"`
	Code1       string `json:"code1"`
	Code2       string `json:"code2"`
	Code3       string `json:"code3"`
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
}

// FindLocation returns the location with the given id
func FindLocation(locations []Location, id int) (Location, bool) {
	for _, l := range locations {
		if l.ID == id {
			return l, true
		}
	}
	return Location{}, false
}
