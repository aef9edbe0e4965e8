package incoming

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/wms-platform/handy-terminal/internal/domain"
	"github.com/wms-platform/handy-terminal/pkg/logging"
	"github.com/wms-platform/handy-terminal/pkg/tracing"
)

const (
	flowNew  = "new"
	flowEdit = "edit"
)

// submission is the validated content of the input buffers
type submission struct {
	Quantity       int     `validate:"min=0"`
	ArrivalDate    string  `validate:"required,datetime=2006-01-02"`
	ExpirationDate *string `validate:"omitempty,datetime=2006-01-02"`
	LocationID     *int    `validate:"omitempty,min=1"`
}

func (s submission) command() domain.UpdateWorkCommand {
	return domain.UpdateWorkCommand{
		WorkQuantity:       s.Quantity,
		WorkArrivalDate:    s.ArrivalDate,
		WorkExpirationDate: s.ExpirationDate,
		LocationID:         s.LocationID,
	}
}

// Submit sends the input. New work runs start, update and complete in
// order and stops at the first failure, leaving an already started item
// WORKING. Edit work runs update only. Missing picker, warehouse, target or
// quantity makes it a no-op, as does a submission already in flight.
func (e *Engine) Submit(ctx context.Context) {
	picker, hasPicker := e.picker()

	var (
		target      Target
		warehouseID int
		sub         submission
		ready       bool
	)

	claimed := e.update(func(s *State) bool {
		if s.IsSubmitting || s.Target == nil || s.SelectedWarehouse == nil || !hasPicker {
			return false
		}
		quantity, err := strconv.Atoi(s.QuantityInput)
		if err != nil {
			return false
		}

		target = s.Target
		warehouseID = s.SelectedWarehouse.ID
		sub = submission{
			Quantity:    quantity,
			ArrivalDate: e.today(),
			LocationID:  s.SelectedLocationID,
		}
		if expiration := strings.TrimSpace(s.ExpirationDateInput); expiration != "" {
			sub.ExpirationDate = &expiration
		}

		if message := e.checkSubmission(target, sub); message != "" {
			s.ErrorMessage = message
			return true
		}

		ready = true
		s.IsSubmitting = true
		s.ErrorMessage = ""
		s.SuccessMessage = ""
		return true
	})

	if !ready {
		outcome := outcomeSkipped
		if claimed {
			outcome = outcomeRejected
		}
		e.recordIntent("submit", outcome)
		return
	}

	// A submission is not abandoned halfway when the caller goes away, only
	// when the engine closes.
	ctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	defer cancel()
	stop := context.AfterFunc(e.base, cancel)
	defer stop()

	ctx = logging.ContextWithCorrelationID(ctx, uuid.New().String())
	ctx = logging.ContextWithPickerID(ctx, picker.ID)

	switch t := target.(type) {
	case NewWork:
		e.submitNew(ctx, t, picker, warehouseID, sub)
	case EditWork:
		e.submitEdit(ctx, t, picker, sub)
	}
}

// checkSubmission validates the buffers and guards against a quantity that
// would drive the remaining quantity negative. It returns the message to
// surface, empty when the submission may go ahead.
func (e *Engine) checkSubmission(target Target, sub submission) string {
	if err := e.validate.Struct(sub); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 && fieldErrs[0].Field() == "ExpirationDate" {
			return e.messages.InvalidDate
		}
		return e.messages.Validation
	}

	switch t := target.(type) {
	case NewWork:
		if sub.Quantity > t.Schedule.RemainingQuantity {
			return e.messages.QuantityExceedsRemaining
		}
	case EditWork:
		remaining, known := t.remaining()
		if !known {
			return ""
		}
		if t.WorkItem.Status == domain.WorkItemStatusCompleted {
			remaining += t.WorkItem.WorkQuantity
		}
		if sub.Quantity > remaining {
			return e.messages.QuantityExceedsRemaining
		}
	}
	return ""
}

func (e *Engine) submitNew(ctx context.Context, target NewWork, picker domain.Picker, warehouseID int, sub submission) {
	start := time.Now()
	ctx, span := tracer.Start(ctx, "incoming.submit",
		trace.WithAttributes(
			attribute.String("incoming.flow", flowNew),
			attribute.Int("incoming.schedule_id", target.Schedule.ID),
			attribute.Int("incoming.quantity", sub.Quantity),
		),
	)
	defer span.End()

	e.logger.Intent(ctx, "submit", map[string]any{
		"flow":       flowNew,
		"scheduleId": target.Schedule.ID,
		"quantity":   sub.Quantity,
	})

	err := func() error {
		item, err := e.gateway.StartWork(ctx, domain.StartWorkCommand{
			IncomingScheduleID: target.Schedule.ID,
			PickerID:           picker.ID,
			WarehouseID:        warehouseID,
		})
		if err != nil {
			return err
		}
		span.SetAttributes(attribute.Int("incoming.work_item_id", item.ID))

		if _, err := e.gateway.UpdateWork(ctx, item.ID, sub.command()); err != nil {
			e.logger.WithContext(ctx).WithOperation("submit").Warn("Work item left WORKING after failed update", "workItemId", item.ID)
			return err
		}

		if err := e.gateway.CompleteWork(ctx, item.ID); err != nil {
			e.logger.WithContext(ctx).WithOperation("submit").Warn("Work item left WORKING after failed complete", "workItemId", item.ID)
			return err
		}

		e.logger.Audit(ctx, "incoming.complete", "work_item", strconv.Itoa(item.ID), strconv.Itoa(picker.ID), map[string]any{
			"scheduleId":  target.Schedule.ID,
			"warehouseId": warehouseID,
			"quantity":    sub.Quantity,
		})
		return nil
	}()
	tracing.RecordResult(span, err)

	e.finishSubmission(ctx, flowNew, start, err, e.messages.Submitted, nil)
}

func (e *Engine) submitEdit(ctx context.Context, target EditWork, picker domain.Picker, sub submission) {
	start := time.Now()
	ctx, span := tracer.Start(ctx, "incoming.submit",
		trace.WithAttributes(
			attribute.String("incoming.flow", flowEdit),
			attribute.Int("incoming.work_item_id", target.WorkItem.ID),
			attribute.Int("incoming.quantity", sub.Quantity),
		),
	)
	defer span.End()

	e.logger.Intent(ctx, "submit", map[string]any{
		"flow":       flowEdit,
		"workItemId": target.WorkItem.ID,
		"quantity":   sub.Quantity,
	})

	updated, err := e.gateway.UpdateWork(ctx, target.WorkItem.ID, sub.command())
	tracing.RecordResult(span, err)

	if err == nil {
		e.logger.Audit(ctx, "incoming.update", "work_item", strconv.Itoa(target.WorkItem.ID), strconv.Itoa(picker.ID), map[string]any{
			"status":   string(target.WorkItem.Status),
			"quantity": sub.Quantity,
		})
	}

	e.finishSubmission(ctx, flowEdit, start, err, e.messages.Updated, func(s *State) {
		edit, ok := s.Target.(EditWork)
		if !ok || edit.WorkItem.ID != target.WorkItem.ID || updated == nil {
			return
		}
		item := *updated
		// the update response may omit what the list response carried
		if item.Schedule == nil {
			item.Schedule = edit.WorkItem.Schedule
		}
		if item.Location == nil && item.LocationID != nil && edit.WorkItem.Location != nil && edit.WorkItem.Location.ID == *item.LocationID {
			item.Location = edit.WorkItem.Location
		}
		edit.WorkItem = item
		s.Target = edit
	})
}

// finishSubmission settles the submitting flag, surfaces the outcome and
// schedules the product refresh after a success.
func (e *Engine) finishSubmission(ctx context.Context, flow string, start time.Time, err error, successMessage string, onSuccess func(s *State)) {
	duration := time.Since(start)

	if err != nil {
		message, _ := e.failed(ctx, "submit", err)
		if message == "" {
			message = e.messages.FailureMessage(err)
		}
		if e.metrics != nil {
			e.metrics.RecordSubmission(flow, outcomeFailure, duration)
		}
		e.update(func(s *State) bool {
			s.IsSubmitting = false
			s.ErrorMessage = message
			return true
		})
		return
	}

	e.recordIntent("submit", outcomeSuccess)
	if e.metrics != nil {
		e.metrics.RecordSubmission(flow, outcomeSuccess, duration)
	}

	e.update(func(s *State) bool {
		s.IsSubmitting = false
		s.SuccessMessage = successMessage
		if onSuccess != nil {
			onSuccess(s)
		}
		return true
	})

	e.scheduleRefresh(successMessage)
}

// scheduleRefresh clears the success message after the display interval and
// reloads the products so remaining quantities are current.
func (e *Engine) scheduleRefresh(successMessage string) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.refreshes.Add(1)
	e.mu.Unlock()

	go func() {
		defer e.refreshes.Done()

		timer := time.NewTimer(e.successDisplay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-e.done:
			return
		}

		e.update(func(s *State) bool {
			if s.SuccessMessage != successMessage {
				return false
			}
			s.SuccessMessage = ""
			return true
		})

		e.refreshProducts(e.base)
	}()
}

// refreshProducts reloads the product list and re-associates the selected
// product and schedule by id. Failures are not surfaced.
func (e *Engine) refreshProducts(parent context.Context) {
	st := e.State()
	if st.SelectedWarehouse == nil {
		return
	}
	warehouseID := st.SelectedWarehouse.ID

	ctx, gen, cancel := e.productSearch.claim(parent)
	defer cancel()

	products, err := e.gateway.ListSchedules(ctx, warehouseID, strings.TrimSpace(st.SearchQuery))
	if err != nil {
		e.logger.WithContext(ctx).WithError(err).Debug("Products not refreshed after submit")
		// The claim may have superseded a load that raised the flag.
		e.update(func(s *State) bool {
			if !e.productSearch.isCurrent(gen) || !s.IsLoadingProducts {
				return false
			}
			s.IsLoadingProducts = false
			return true
		})
		return
	}

	e.update(func(s *State) bool {
		if !e.productSearch.isCurrent(gen) {
			return false
		}
		s.IsLoadingProducts = false
		if s.SelectedWarehouse == nil || s.SelectedWarehouse.ID != warehouseID {
			return true
		}
		s.Products = products

		if s.SelectedProduct == nil {
			return true
		}
		product, ok := domain.FindProduct(products, s.SelectedProduct.ItemID)
		if !ok {
			s.SelectedProduct = nil
			return true
		}
		s.SelectedProduct = &product

		if s.SelectedSchedule != nil {
			if schedule, ok := product.Schedule(s.SelectedSchedule.ID); ok {
				s.SelectedSchedule = &schedule
				if nw, ok := s.Target.(NewWork); ok && nw.Schedule.ID == schedule.ID {
					s.Target = NewWork{Schedule: schedule}
				}
			}
		}
		return true
	})

	e.loadWorkingScheduleIDs(parent, warehouseID)
}

// CancelWork cancels the WORKING item being edited, then clears the input
// and reloads the history. It is the recovery path for items left WORKING
// by a failed submission.
func (e *Engine) CancelWork(ctx context.Context) error {
	st := e.State()
	edit, ok := st.Target.(EditWork)
	if !ok {
		e.recordIntent("cancelWork", outcomeRejected)
		return domain.ErrNotEditing
	}
	if !edit.WorkItem.IsCancellable() {
		e.recordIntent("cancelWork", outcomeRejected)
		return domain.ErrWorkItemNotCancellable
	}

	claimed := e.update(func(s *State) bool {
		if s.IsSubmitting {
			return false
		}
		s.IsSubmitting = true
		s.ErrorMessage = ""
		return true
	})
	if !claimed {
		e.recordIntent("cancelWork", outcomeSkipped)
		return domain.ErrSubmissionInProgress
	}

	e.logger.Intent(ctx, "cancelWork", map[string]any{"workItemId": edit.WorkItem.ID})

	if err := e.gateway.CancelWork(ctx, edit.WorkItem.ID); err != nil {
		message, surfaced := e.failed(ctx, "cancelWork", err)
		e.update(func(s *State) bool {
			s.IsSubmitting = false
			if surfaced {
				s.ErrorMessage = message
			}
			return true
		})
		return nil
	}

	e.recordIntent("cancelWork", outcomeSuccess)
	if picker, ok := e.picker(); ok {
		e.logger.Audit(ctx, "incoming.cancel", "work_item", strconv.Itoa(edit.WorkItem.ID), strconv.Itoa(picker.ID), nil)
	}

	e.update(func(s *State) bool {
		s.IsSubmitting = false
		s.SuccessMessage = e.messages.Cancelled
		if current, ok := s.Target.(EditWork); ok && current.WorkItem.ID == edit.WorkItem.ID {
			s.Target = nil
			s.resetInput()
		}
		return true
	})

	e.LoadHistory(ctx)
	return nil
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
