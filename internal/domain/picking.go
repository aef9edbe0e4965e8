package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Course is the delivery course a picking task belongs to
type Course struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// PickingArea is the area of the warehouse a picking task covers
type PickingArea struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// PickingTaskItem is one line of a picking list
type PickingTaskItem struct {
	ID             int             `json:"id"`
	ItemID         int             `json:"itemId"`
	ItemName       string          `json:"itemName"`
	PlannedQtyType QuantityType    `json:"plannedQtyType"`
	PlannedQty     decimal.Decimal `json:"plannedQty"`
	PickedQty      decimal.Decimal `json:"pickedQty"`
	SlipNumber     int             `json:"slipNumber"`
}

// IsCompleted reports whether the planned quantity has been picked
func (i PickingTaskItem) IsCompleted() bool {
	return i.PickedQty.GreaterThanOrEqual(i.PlannedQty)
}

// PickingTask groups picking lines by course and area within a wave
type PickingTask struct {
	TaskID         int               `json:"taskId"`
	WaveID         int               `json:"waveId"`
	Course         Course            `json:"course"`
	Area           PickingArea       `json:"pickingArea"`
	Items          []PickingTaskItem `json:"items"`
	TotalItems     int               `json:"totalItems"`
	CompletedItems int               `json:"completedItems"`
}

// NewPickingTask builds a task and its progress counters from its lines
func NewPickingTask(taskID, waveID int, course Course, area PickingArea, items []PickingTaskItem) PickingTask {
	completed := 0
	for _, item := range items {
		if item.IsCompleted() {
			completed++
		}
	}
	return PickingTask{
		TaskID:         taskID,
		WaveID:         waveID,
		Course:         course,
		Area:           area,
		Items:          items,
		TotalItems:     len(items),
		CompletedItems: completed,
	}
}

// IsCompleted reports whether every line is picked
func (t PickingTask) IsCompleted() bool {
	return t.TotalItems > 0 && t.CompletedItems == t.TotalItems
}

// IsInProgress reports whether some but not all lines are picked
func (t PickingTask) IsInProgress() bool {
	return t.CompletedItems > 0 && t.CompletedItems < t.TotalItems
}

// ProgressText renders progress as "done/total"
func (t PickingTask) ProgressText() string {
	return fmt.Sprintf("%d/%d", t.CompletedItems, t.TotalItems)
}
