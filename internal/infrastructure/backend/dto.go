package backend

import (
	"github.com/shopspring/decimal"

	"github.com/wms-platform/handy-terminal/internal/domain"
)

type warehouseResponse struct {
	ID               int    `json:"id"`
	Code             string `json:"code"`
	Name             string `json:"name"`
	KanaName         string `json:"kana_name"`
	OutOfStockOption string `json:"out_of_stock_option"`
}

func (r warehouseResponse) toDomain() domain.Warehouse {
	option := domain.OutOfStockOption(r.OutOfStockOption)
	if option == "" {
		option = domain.OutOfStockIgnore
	}
	return domain.Warehouse{
		ID:               r.ID,
		Code:             r.Code,
		Name:             r.Name,
		KanaName:         r.KanaName,
		OutOfStockOption: option,
	}
}

type warehouseSummaryResponse struct {
	WarehouseID       int    `json:"warehouse_id"`
	WarehouseCode     string `json:"warehouse_code"`
	WarehouseName     string `json:"warehouse_name"`
	ExpectedQuantity  int    `json:"expected_quantity"`
	ReceivedQuantity  int    `json:"received_quantity"`
	RemainingQuantity int    `json:"remaining_quantity"`
}

type scheduleResponse struct {
	ID                  int    `json:"id"`
	WarehouseID         int    `json:"warehouse_id"`
	WarehouseName       string `json:"warehouse_name"`
	ExpectedQuantity    int    `json:"expected_quantity"`
	ReceivedQuantity    int    `json:"received_quantity"`
	RemainingQuantity   int    `json:"remaining_quantity"`
	QuantityType        string `json:"quantity_type"`
	ExpectedArrivalDate string `json:"expected_arrival_date"`
	Status              string `json:"status"`
}

func (r scheduleResponse) toDomain() domain.Schedule {
	return domain.Schedule{
		ID:                  r.ID,
		WarehouseID:         r.WarehouseID,
		WarehouseName:       r.WarehouseName,
		ExpectedQuantity:    r.ExpectedQuantity,
		ReceivedQuantity:    r.ReceivedQuantity,
		RemainingQuantity:   r.RemainingQuantity,
		QuantityType:        domain.ParseQuantityType(r.QuantityType),
		ExpectedArrivalDate: r.ExpectedArrivalDate,
		Status:              domain.ParseScheduleStatus(r.Status),
	}
}

type scheduleDetailResponse struct {
	scheduleResponse
	WarehouseCode string   `json:"warehouse_code"`
	ItemID        int      `json:"item_id"`
	ItemCode      string   `json:"item_code"`
	ItemName      string   `json:"item_name"`
	SearchCode    string   `json:"search_code"`
	JANCodes      []string `json:"jan_codes"`
}

func (r scheduleDetailResponse) toDomain() domain.ScheduleDetail {
	return domain.ScheduleDetail{
		Schedule:      r.scheduleResponse.toDomain(),
		WarehouseCode: r.WarehouseCode,
		ItemID:        r.ItemID,
		ItemCode:      r.ItemCode,
		ItemName:      r.ItemName,
		SearchCode:    r.SearchCode,
		JANCodes:      nonNil(r.JANCodes),
	}
}

type productResponse struct {
	ItemID                 int                        `json:"item_id"`
	ItemCode               string                     `json:"item_code"`
	ItemName               string                     `json:"item_name"`
	SearchCode             string                     `json:"search_code"`
	JANCodes               []string                   `json:"jan_codes"`
	Volume                 *string                    `json:"volume"`
	TemperatureType        *string                    `json:"temperature_type"`
	Images                 []string                   `json:"images"`
	TotalExpectedQuantity  int                        `json:"total_expected_quantity"`
	TotalReceivedQuantity  int                        `json:"total_received_quantity"`
	TotalRemainingQuantity int                        `json:"total_remaining_quantity"`
	Warehouses             []warehouseSummaryResponse `json:"warehouses"`
	Schedules              []scheduleResponse         `json:"schedules"`
}

func (r productResponse) toDomain() domain.Product {
	warehouses := make([]domain.WarehouseSummary, 0, len(r.Warehouses))
	for _, w := range r.Warehouses {
		warehouses = append(warehouses, domain.WarehouseSummary{
			WarehouseID:       w.WarehouseID,
			WarehouseCode:     w.WarehouseCode,
			WarehouseName:     w.WarehouseName,
			ExpectedQuantity:  w.ExpectedQuantity,
			ReceivedQuantity:  w.ReceivedQuantity,
			RemainingQuantity: w.RemainingQuantity,
		})
	}

	schedules := make([]domain.Schedule, 0, len(r.Schedules))
	for _, s := range r.Schedules {
		schedules = append(schedules, s.toDomain())
	}

	return domain.Product{
		ItemID:                 r.ItemID,
		ItemCode:               r.ItemCode,
		ItemName:               r.ItemName,
		SearchCode:             r.SearchCode,
		JANCodes:               nonNil(r.JANCodes),
		Volume:                 r.Volume,
		TemperatureType:        r.TemperatureType,
		Images:                 nonNil(r.Images),
		TotalExpectedQuantity:  r.TotalExpectedQuantity,
		TotalReceivedQuantity:  r.TotalReceivedQuantity,
		TotalRemainingQuantity: r.TotalRemainingQuantity,
		Warehouses:             warehouses,
		Schedules:              schedules,
	}
}

type workItemScheduleResponse struct {
	ID                int    `json:"id"`
	ItemID            int    `json:"item_id"`
	ItemCode          string `json:"item_code"`
	ItemName          string `json:"item_name"`
	WarehouseID       int    `json:"warehouse_id"`
	WarehouseName     string `json:"warehouse_name"`
	ExpectedQuantity  int    `json:"expected_quantity"`
	ReceivedQuantity  int    `json:"received_quantity"`
	RemainingQuantity int    `json:"remaining_quantity"`
	QuantityType      string `json:"quantity_type"`
}

type locationResponse struct {
	ID          int    `json:"id"`
	Code1       string `json:"code1"`
	Code2       string `json:"code2"`
	Code3       string `json:"code3"`
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
}

func (r locationResponse) toDomain() domain.Location {
	return domain.Location{
		ID:          r.ID,
		Code1:       r.Code1,
		Code2:       r.Code2,
		Code3:       r.Code3,
		Name:        r.Name,
		DisplayName: r.DisplayName,
	}
}

type workItemResponse struct {
	ID                 int                       `json:"id"`
	IncomingScheduleID int                       `json:"incoming_schedule_id"`
	PickerID           int                       `json:"picker_id"`
	WarehouseID        int                       `json:"warehouse_id"`
	LocationID         *int                      `json:"location_id"`
	Location           *locationResponse         `json:"location"`
	WorkQuantity       int                       `json:"work_quantity"`
	WorkArrivalDate    string                    `json:"work_arrival_date"`
	WorkExpirationDate *string                   `json:"work_expiration_date"`
	Status             string                    `json:"status"`
	StartedAt          string                    `json:"started_at"`
	Schedule           *workItemScheduleResponse `json:"schedule"`
}

func (r workItemResponse) toDomain() domain.WorkItem {
	item := domain.WorkItem{
		ID:                 r.ID,
		IncomingScheduleID: r.IncomingScheduleID,
		PickerID:           r.PickerID,
		WarehouseID:        r.WarehouseID,
		LocationID:         r.LocationID,
		WorkQuantity:       r.WorkQuantity,
		WorkArrivalDate:    r.WorkArrivalDate,
		WorkExpirationDate: r.WorkExpirationDate,
		Status:             domain.ParseWorkItemStatus(r.Status),
		StartedAt:          r.StartedAt,
	}

	if r.Location != nil {
		location := r.Location.toDomain()
		item.Location = &location
	}

	if r.Schedule != nil {
		item.Schedule = &domain.WorkItemSchedule{
			ID:                r.Schedule.ID,
			ItemID:            r.Schedule.ItemID,
			ItemCode:          r.Schedule.ItemCode,
			ItemName:          r.Schedule.ItemName,
			WarehouseID:       r.Schedule.WarehouseID,
			WarehouseName:     r.Schedule.WarehouseName,
			ExpectedQuantity:  r.Schedule.ExpectedQuantity,
			ReceivedQuantity:  r.Schedule.ReceivedQuantity,
			RemainingQuantity: r.Schedule.RemainingQuantity,
			QuantityType:      domain.ParseQuantityType(r.Schedule.QuantityType),
		}
	}

	return item
}

type startWorkRequest struct {
	IncomingScheduleID int `json:"incoming_schedule_id"`
	PickerID           int `json:"picker_id"`
	WarehouseID        int `json:"warehouse_id"`
}

type updateWorkRequest struct {
	WorkQuantity       int     `json:"work_quantity"`
	WorkArrivalDate    string  `json:"work_arrival_date"`
	WorkExpirationDate *string `json:"work_expiration_date,omitempty"`
	LocationID         *int    `json:"location_id,omitempty"`
}

type pickingTaskResponse struct {
	Course struct {
		Code string `json:"code"`
		Name string `json:"name"`
	} `json:"course"`
	PickingArea struct {
		Code string `json:"code"`
		Name string `json:"name"`
	} `json:"picking_area"`
	Wave struct {
		PickingTaskID int `json:"wms_picking_task_id"`
		WaveID        int `json:"wms_wave_id"`
	} `json:"wave"`
	PickingList []pickingItemResponse `json:"picking_list"`
}

type pickingItemResponse struct {
	ResultID       int    `json:"wms_picking_item_result_id"`
	ItemID         int    `json:"item_id"`
	ItemName       string `json:"item_name"`
	PlannedQtyType string `json:"planned_qty_type"`
	PlannedQty     string `json:"planned_qty"`
	PickedQty      string `json:"picked_qty"`
	SlipNumber     int    `json:"slip_number"`
}

func (r pickingTaskResponse) toDomain() domain.PickingTask {
	items := make([]domain.PickingTaskItem, 0, len(r.PickingList))
	for _, item := range r.PickingList {
		items = append(items, domain.PickingTaskItem{
			ID:             item.ResultID,
			ItemID:         item.ItemID,
			ItemName:       item.ItemName,
			PlannedQtyType: domain.ParseQuantityType(item.PlannedQtyType),
			PlannedQty:     parseQuantity(item.PlannedQty),
			PickedQty:      parseQuantity(item.PickedQty),
			SlipNumber:     item.SlipNumber,
		})
	}

	return domain.NewPickingTask(
		r.Wave.PickingTaskID,
		r.Wave.WaveID,
		domain.Course{Code: r.Course.Code, Name: r.Course.Name},
		domain.PickingArea{Code: r.PickingArea.Code, Name: r.PickingArea.Name},
		items,
	)
}

// parseQuantity reads a decimal quantity string; unparsable values count as zero.
func parseQuantity(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func mapSlice[R any, T any](in []R, fn func(R) T) []T {
	out := make([]T, 0, len(in))
	for _, r := range in {
		out = append(out, fn(r))
	}
	return out
}
