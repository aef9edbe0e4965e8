package incoming

import (
	"context"

	"github.com/wms-platform/handy-terminal/internal/domain"
)

// LoadHistory fetches today's work items of every status in the selected
// warehouse, limited to the signed-in picker when there is one.
func (e *Engine) LoadHistory(ctx context.Context) {
	st := e.State()
	if st.SelectedWarehouse == nil {
		e.recordIntent("loadHistory", outcomeSkipped)
		return
	}
	warehouseID := st.SelectedWarehouse.ID

	filter := domain.WorkItemFilter{
		WarehouseID: warehouseID,
		Status:      domain.WorkItemStatusAll,
		FromDate:    e.today(),
	}
	if picker, ok := e.picker(); ok {
		filter.PickerID = &picker.ID
	}

	e.logger.Intent(ctx, "loadHistory", map[string]any{"warehouseId": warehouseID, "fromDate": filter.FromDate})

	e.update(func(s *State) bool {
		s.IsLoadingHistory = true
		s.ErrorMessage = ""
		return true
	})

	items, err := e.gateway.ListWorkItems(ctx, filter)
	if err != nil {
		message, surfaced := e.failed(ctx, "loadHistory", err)
		e.update(func(s *State) bool {
			s.IsLoadingHistory = false
			if surfaced {
				s.ErrorMessage = message
			}
			return true
		})
		return
	}

	e.recordIntent("loadHistory", outcomeSuccess)
	e.update(func(s *State) bool {
		s.IsLoadingHistory = false
		if s.SelectedWarehouse == nil || s.SelectedWarehouse.ID != warehouseID {
			return true
		}
		s.History = items
		return true
	})
}

// SelectHistoryItem opens the work item for edit with the buffers filled
// from it. CANCELLED items are rejected; COMPLETED items stay editable.
func (e *Engine) SelectHistoryItem(item domain.WorkItem) error {
	if !item.IsEditable() {
		e.recordIntent("selectHistoryItem", outcomeRejected)
		return domain.ErrWorkItemNotEditable
	}

	e.locationSearch.supersede()
	e.update(func(s *State) bool {
		s.Target = EditWork{WorkItem: item}
		s.SelectedSchedule = nil
		s.resetInput()
		s.QuantityInput = itoa(item.WorkQuantity)
		if item.WorkExpirationDate != nil {
			s.ExpirationDateInput = *item.WorkExpirationDate
		}
		if item.LocationID != nil {
			id := *item.LocationID
			s.SelectedLocationID = &id
		}
		if item.Location != nil {
			location := *item.Location
			s.SelectedLocation = &location
			s.LocationQuery = location.DisplayName
		}
		return true
	})
	e.recordIntent("selectHistoryItem", outcomeSuccess)
	return nil
}

// SelectHistoryItemByID opens a work item from the loaded history
func (e *Engine) SelectHistoryItemByID(workItemID int) error {
	item, ok := domain.FindWorkItem(e.State().History, workItemID)
	if !ok {
		e.recordIntent("selectHistoryItem", outcomeRejected)
		return domain.ErrWorkItemNotFound
	}
	return e.SelectHistoryItem(item)
}

// LoadEditSchedule fetches the schedule of the work item being edited when
// the item carries no schedule snapshot.
func (e *Engine) LoadEditSchedule(ctx context.Context) error {
	edit, ok := e.State().Target.(EditWork)
	if !ok {
		e.recordIntent("loadEditSchedule", outcomeRejected)
		return domain.ErrNotEditing
	}
	if edit.WorkItem.Schedule != nil {
		e.recordIntent("loadEditSchedule", outcomeSkipped)
		return nil
	}

	workItemID := edit.WorkItem.ID
	e.logger.Intent(ctx, "loadEditSchedule", map[string]any{
		"workItemId": workItemID,
		"scheduleId": edit.WorkItem.IncomingScheduleID,
	})

	e.update(func(s *State) bool {
		s.IsLoadingEdit = true
		s.ErrorMessage = ""
		return true
	})

	detail, err := e.gateway.GetSchedule(ctx, edit.WorkItem.IncomingScheduleID)
	if err != nil {
		message, surfaced := e.failed(ctx, "loadEditSchedule", err)
		e.update(func(s *State) bool {
			s.IsLoadingEdit = false
			if surfaced {
				s.ErrorMessage = message
			}
			return true
		})
		return nil
	}

	e.recordIntent("loadEditSchedule", outcomeSuccess)
	e.update(func(s *State) bool {
		s.IsLoadingEdit = false
		if current, ok := s.Target.(EditWork); ok && current.WorkItem.ID == workItemID {
			current.Schedule = detail
			s.Target = current
		}
		return true
	})
	return nil
}
