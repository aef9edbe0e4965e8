package domain

import "errors"

var (
	ErrWarehouseNotSelected   = errors.New("warehouse is required")
	ErrPickerNotFound         = errors.New("picker is required")
	ErrWarehouseNotFound      = errors.New("warehouse not found")
	ErrProductNotFound        = errors.New("product not found")
	ErrScheduleNotFound       = errors.New("schedule not found")
	ErrScheduleNotSelectable  = errors.New("schedule is not selectable")
	ErrLocationNotFound       = errors.New("location not found")
	ErrWorkItemNotFound       = errors.New("work item not found")
	ErrWorkItemNotEditable    = errors.New("work item is not editable")
	ErrWorkItemNotCancellable = errors.New("work item is not cancellable")
	ErrNotEditing             = errors.New("work item is required")
	ErrSubmissionInProgress   = errors.New("submission in progress")
)
