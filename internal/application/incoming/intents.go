package incoming

import (
	"context"
	"strings"

	"github.com/wms-platform/handy-terminal/internal/domain"
)

// LoadWarehouses fetches the warehouse list. Retrying is calling it again.
func (e *Engine) LoadWarehouses(ctx context.Context) {
	e.logger.Intent(ctx, "loadWarehouses", nil)

	e.update(func(s *State) bool {
		s.IsLoadingWarehouses = true
		s.ErrorMessage = ""
		return true
	})

	warehouses, err := e.gateway.ListWarehouses(ctx)
	if err != nil {
		message, surfaced := e.failed(ctx, "loadWarehouses", err)
		e.update(func(s *State) bool {
			s.IsLoadingWarehouses = false
			if surfaced {
				s.ErrorMessage = message
			}
			return true
		})
		return
	}

	e.recordIntent("loadWarehouses", outcomeSuccess)
	e.update(func(s *State) bool {
		s.Warehouses = warehouses
		s.IsLoadingWarehouses = false
		return true
	})
}

// SelectWarehouse sets the warehouse and resets everything scoped to the
// previous one. Pending searches are dropped.
func (e *Engine) SelectWarehouse(w domain.Warehouse) {
	e.productSearch.supersede()
	e.locationSearch.supersede()

	e.update(func(s *State) bool {
		selected := w
		s.SelectedWarehouse = &selected
		s.resetWarehouseScope()
		return true
	})
	e.recordIntent("selectWarehouse", outcomeSuccess)
}

// SelectWarehouseByID selects a warehouse from the loaded list
func (e *Engine) SelectWarehouseByID(id int) error {
	w, ok := domain.FindWarehouse(e.State().Warehouses, id)
	if !ok {
		e.recordIntent("selectWarehouse", outcomeRejected)
		return domain.ErrWarehouseNotFound
	}
	e.SelectWarehouse(w)
	return nil
}

// LoadProducts fetches the products for the selected warehouse using the
// current search query, then refreshes which schedules the picker is
// working on. Without a selected warehouse it does nothing.
func (e *Engine) LoadProducts(ctx context.Context) {
	st := e.State()
	if st.SelectedWarehouse == nil {
		e.recordIntent("loadProducts", outcomeSkipped)
		return
	}
	warehouseID := st.SelectedWarehouse.ID

	e.logger.Intent(ctx, "loadProducts", map[string]any{"warehouseId": warehouseID})

	fetchCtx, gen, cancel := e.productSearch.claim(ctx)
	defer cancel()

	e.update(func(s *State) bool {
		s.IsLoadingProducts = true
		s.ErrorMessage = ""
		return true
	})

	e.fetchProducts(fetchCtx, "loadProducts", gen, warehouseID, st.SearchQuery)
	e.loadWorkingScheduleIDs(ctx, warehouseID)
}

// SetSearchQuery shows the query at once and sends it after the quiet
// period. A newer query supersedes the pending or in-flight one.
func (e *Engine) SetSearchQuery(query string) {
	e.update(func(s *State) bool {
		s.SearchQuery = query
		return true
	})

	e.productSearch.schedule(e.base, func(ctx context.Context, gen uint64) {
		st := e.State()
		if st.SelectedWarehouse == nil {
			return
		}

		e.logger.Intent(ctx, "searchProducts", map[string]any{"query": query})

		marked := e.update(func(s *State) bool {
			if !e.productSearch.isCurrent(gen) {
				return false
			}
			s.IsLoadingProducts = true
			return true
		})
		if !marked {
			return
		}

		e.fetchProducts(ctx, "searchProducts", gen, st.SelectedWarehouse.ID, query)
	})
}

// fetchProducts applies the product list for gen unless it was superseded
func (e *Engine) fetchProducts(ctx context.Context, intent string, gen uint64, warehouseID int, query string) {
	products, err := e.gateway.ListSchedules(ctx, warehouseID, strings.TrimSpace(query))

	if err != nil {
		message, surfaced := e.failed(ctx, intent, err)
		e.update(func(s *State) bool {
			if !e.productSearch.isCurrent(gen) {
				return false
			}
			s.IsLoadingProducts = false
			if surfaced {
				s.ErrorMessage = message
			}
			return true
		})
		return
	}

	applied := e.update(func(s *State) bool {
		if !e.productSearch.isCurrent(gen) {
			return false
		}
		s.Products = products
		s.IsLoadingProducts = false
		return true
	})

	if applied {
		e.recordIntent(intent, outcomeSuccess)
	} else {
		e.recordIntent(intent, outcomeSuperseded)
	}
}

// loadWorkingScheduleIDs marks schedules the picker already has WORKING
// items on. Failures only leave the previous marks in place.
func (e *Engine) loadWorkingScheduleIDs(ctx context.Context, warehouseID int) {
	picker, ok := e.picker()
	if !ok {
		return
	}

	items, err := e.gateway.ListWorkItems(ctx, domain.WorkItemFilter{
		WarehouseID: warehouseID,
		PickerID:    &picker.ID,
		Status:      string(domain.WorkItemStatusWorking),
	})
	if err != nil {
		e.logger.WithContext(ctx).WithError(err).Debug("Working schedules not refreshed")
		return
	}

	ids := workingScheduleIDs(items)
	e.update(func(s *State) bool {
		if s.SelectedWarehouse == nil || s.SelectedWarehouse.ID != warehouseID {
			return false
		}
		s.WorkingScheduleIDs = ids
		return true
	})
}

// SelectProduct sets the product whose schedules are shown
func (e *Engine) SelectProduct(p domain.Product) {
	e.update(func(s *State) bool {
		selected := p
		s.SelectedProduct = &selected
		return true
	})
	e.recordIntent("selectProduct", outcomeSuccess)
}

// SelectProductByID selects a product from the loaded list
func (e *Engine) SelectProductByID(itemID int) error {
	p, ok := domain.FindProduct(e.State().Products, itemID)
	if !ok {
		e.recordIntent("selectProduct", outcomeRejected)
		return domain.ErrProductNotFound
	}
	e.SelectProduct(p)
	return nil
}

// SelectSchedule starts new work input against the schedule. The quantity
// buffer is seeded with the remaining quantity and the location cleared.
func (e *Engine) SelectSchedule(schedule domain.Schedule) error {
	if !schedule.IsSelectable() {
		e.recordIntent("selectSchedule", outcomeRejected)
		return domain.ErrScheduleNotSelectable
	}

	e.locationSearch.supersede()
	e.update(func(s *State) bool {
		selected := schedule
		s.SelectedSchedule = &selected
		s.Target = NewWork{Schedule: schedule}
		s.resetInput()
		s.QuantityInput = itoa(schedule.RemainingQuantity)
		return true
	})
	e.recordIntent("selectSchedule", outcomeSuccess)
	return nil
}

// SelectScheduleByID selects a schedule of the selected product
func (e *Engine) SelectScheduleByID(scheduleID int) error {
	st := e.State()
	if st.SelectedProduct == nil {
		e.recordIntent("selectSchedule", outcomeRejected)
		return domain.ErrScheduleNotFound
	}
	schedule, ok := st.SelectedProduct.Schedule(scheduleID)
	if !ok {
		e.recordIntent("selectSchedule", outcomeRejected)
		return domain.ErrScheduleNotFound
	}
	return e.SelectSchedule(schedule)
}

// SetQuantityInput accepts an empty or all-digit buffer and reports whether
// it did. Anything else leaves the buffer unchanged.
func (e *Engine) SetQuantityInput(raw string) bool {
	if !isDigits(raw) {
		return false
	}
	e.update(func(s *State) bool {
		s.QuantityInput = raw
		return true
	})
	return true
}

// SetExpirationDate sets the free-form expiration date buffer; it is
// checked on submit.
func (e *Engine) SetExpirationDate(raw string) {
	e.update(func(s *State) bool {
		s.ExpirationDateInput = raw
		return true
	})
}

// SetLocationQuery shows the query at once, clears the chosen location and
// searches after the quiet period. A blank query empties the suggestions
// without a search.
func (e *Engine) SetLocationQuery(query string) {
	blank := strings.TrimSpace(query) == ""

	if blank {
		e.locationSearch.supersede()
	}

	e.update(func(s *State) bool {
		s.LocationQuery = query
		s.SelectedLocationID = nil
		s.SelectedLocation = nil
		if blank {
			s.LocationSuggestions = []domain.Location{}
			s.IsLoadingLocations = false
		}
		return true
	})

	if blank {
		return
	}

	e.locationSearch.schedule(e.base, func(ctx context.Context, gen uint64) {
		st := e.State()
		if st.SelectedWarehouse == nil {
			return
		}

		e.logger.Intent(ctx, "searchLocations", map[string]any{"query": query})

		marked := e.update(func(s *State) bool {
			if !e.locationSearch.isCurrent(gen) {
				return false
			}
			s.IsLoadingLocations = true
			return true
		})
		if !marked {
			return
		}

		locations, err := e.gateway.SearchLocations(ctx, st.SelectedWarehouse.ID, strings.TrimSpace(query))
		if err != nil {
			message, surfaced := e.failed(ctx, "searchLocations", err)
			e.update(func(s *State) bool {
				if !e.locationSearch.isCurrent(gen) {
					return false
				}
				s.IsLoadingLocations = false
				if surfaced {
					s.ErrorMessage = message
				}
				return true
			})
			return
		}

		applied := e.update(func(s *State) bool {
			if !e.locationSearch.isCurrent(gen) {
				return false
			}
			s.LocationSuggestions = locations
			s.IsLoadingLocations = false
			return true
		})
		if applied {
			e.recordIntent("searchLocations", outcomeSuccess)
		} else {
			e.recordIntent("searchLocations", outcomeSuperseded)
		}
	})
}

// SelectLocation picks a location and shows its display name as the query
func (e *Engine) SelectLocation(location domain.Location) {
	e.locationSearch.supersede()
	e.update(func(s *State) bool {
		selected := location
		id := location.ID
		s.SelectedLocationID = &id
		s.SelectedLocation = &selected
		s.LocationQuery = location.DisplayName
		s.LocationSuggestions = []domain.Location{}
		s.IsLoadingLocations = false
		return true
	})
	e.recordIntent("selectLocation", outcomeSuccess)
}

// SelectLocationByID picks a location from the current suggestions
func (e *Engine) SelectLocationByID(id int) error {
	location, ok := domain.FindLocation(e.State().LocationSuggestions, id)
	if !ok {
		e.recordIntent("selectLocation", outcomeRejected)
		return domain.ErrLocationNotFound
	}
	e.SelectLocation(location)
	return nil
}

// ClearError dismisses the error message
func (e *Engine) ClearError() {
	e.update(func(s *State) bool {
		s.ErrorMessage = ""
		return true
	})
}

// ClearSuccessMessage dismisses the success message
func (e *Engine) ClearSuccessMessage() {
	e.update(func(s *State) bool {
		s.SuccessMessage = ""
		return true
	})
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
