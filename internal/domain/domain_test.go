package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestParseScheduleStatus(t *testing.T) {
	assert.Equal(t, ScheduleStatusPartial, ParseScheduleStatus("partial"))
	assert.Equal(t, ScheduleStatusTransmitted, ParseScheduleStatus("TRANSMITTED"))
	assert.Equal(t, ScheduleStatusPending, ParseScheduleStatus("ARCHIVED"))
	assert.Equal(t, ScheduleStatusPending, ParseScheduleStatus(""))
}

func TestScheduleIsSelectable(t *testing.T) {
	tests := []struct {
		status     ScheduleStatus
		selectable bool
	}{
		{ScheduleStatusPending, true},
		{ScheduleStatusPartial, true},
		{ScheduleStatusConfirmed, false},
		{ScheduleStatusTransmitted, false},
		{ScheduleStatusCancelled, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.selectable, Schedule{Status: tt.status}.IsSelectable())
		})
	}
}

func TestParseWorkItemStatus(t *testing.T) {
	assert.Equal(t, WorkItemStatusCompleted, ParseWorkItemStatus("completed"))
	assert.Equal(t, WorkItemStatusCancelled, ParseWorkItemStatus("Cancelled"))
	assert.Equal(t, WorkItemStatusWorking, ParseWorkItemStatus("PAUSED"))
}

func TestWorkItemPredicates(t *testing.T) {
	working := WorkItem{Status: WorkItemStatusWorking}
	completed := WorkItem{Status: WorkItemStatusCompleted}
	cancelled := WorkItem{Status: WorkItemStatusCancelled}

	assert.True(t, working.IsEditable())
	assert.True(t, completed.IsEditable(), "completed items reopen through updateWork")
	assert.False(t, cancelled.IsEditable())

	assert.True(t, working.IsCancellable())
	assert.False(t, completed.IsCancellable())
	assert.False(t, cancelled.IsCancellable())
}

func TestParseQuantityType(t *testing.T) {
	assert.Equal(t, QuantityTypeCase, ParseQuantityType("case"))
	assert.Equal(t, QuantityTypePiece, ParseQuantityType("PIECE"))
	assert.Equal(t, QuantityTypePiece, ParseQuantityType("PALLET"))
}

func TestPickingTaskProgress(t *testing.T) {
	item := func(planned, picked string) PickingTaskItem {
		return PickingTaskItem{
			PlannedQty: decimal.RequireFromString(planned),
			PickedQty:  decimal.RequireFromString(picked),
		}
	}

	task := NewPickingTask(1, 2, Course{Code: "C1"}, PickingArea{Code: "A"}, []PickingTaskItem{
		item("10", "10"),
		item("2.5", "3"),
		item("4", "0"),
	})

	assert.Equal(t, 3, task.TotalItems)
	assert.Equal(t, 2, task.CompletedItems)
	assert.Equal(t, "2/3", task.ProgressText())
	assert.True(t, task.IsInProgress())
	assert.False(t, task.IsCompleted())

	empty := NewPickingTask(1, 2, Course{}, PickingArea{}, nil)
	assert.False(t, empty.IsCompleted())
	assert.False(t, empty.IsInProgress())
	assert.Equal(t, "0/0", empty.ProgressText())

	done := NewPickingTask(1, 2, Course{}, PickingArea{}, []PickingTaskItem{item("1", "1")})
	assert.True(t, done.IsCompleted())
}

func TestProductSchedule(t *testing.T) {
	p := Product{ItemID: 1, Schedules: []Schedule{{ID: 7}, {ID: 9}}}

	s, ok := p.Schedule(9)
	assert.True(t, ok)
	assert.Equal(t, 9, s.ID)

	_, ok = p.Schedule(3)
	assert.False(t, ok)
}
