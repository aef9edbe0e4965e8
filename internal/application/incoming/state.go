package incoming

import (
	"sort"

	"github.com/wms-platform/handy-terminal/internal/domain"
)

// Target is what the input buffers will be submitted against: NewWork when
// reached from schedule selection, EditWork when reached from history.
type Target interface {
	isTarget()
}

// NewWork submits start, update and complete against a schedule
type NewWork struct {
	Schedule domain.Schedule
}

// EditWork submits update only against an existing work item
type EditWork struct {
	WorkItem domain.WorkItem
	// Schedule is fetched by LoadEditSchedule when the item carries no snapshot.
	Schedule *domain.ScheduleDetail
}

func (NewWork) isTarget()  {}
func (EditWork) isTarget() {}

// remaining returns the schedule's remaining quantity as last seen, if known
func (t EditWork) remaining() (int, bool) {
	switch {
	case t.WorkItem.Schedule != nil:
		return t.WorkItem.Schedule.RemainingQuantity, true
	case t.Schedule != nil:
		return t.Schedule.RemainingQuantity, true
	default:
		return 0, false
	}
}

// State is the incoming flow's session state. Snapshots handed out by the
// engine are read-only; slices are replaced, never modified in place.
type State struct {
	Picker *domain.Picker `json:"picker,omitempty"`

	Warehouses          []domain.Warehouse `json:"warehouses"`
	IsLoadingWarehouses bool               `json:"isLoadingWarehouses"`
	SelectedWarehouse   *domain.Warehouse  `json:"selectedWarehouse,omitempty"`

	Products           []domain.Product `json:"products"`
	IsLoadingProducts  bool             `json:"isLoadingProducts"`
	SearchQuery        string           `json:"searchQuery"`
	WorkingScheduleIDs []int            `json:"workingScheduleIds"`
	SelectedProduct    *domain.Product  `json:"selectedProduct,omitempty"`
	SelectedSchedule   *domain.Schedule `json:"selectedSchedule,omitempty"`

	Target              Target            `json:"-"`
	QuantityInput       string            `json:"quantityInput"`
	ExpirationDateInput string            `json:"expirationDateInput"`
	LocationQuery       string            `json:"locationQuery"`
	SelectedLocationID  *int              `json:"selectedLocationId,omitempty"`
	SelectedLocation    *domain.Location  `json:"selectedLocation,omitempty"`
	LocationSuggestions []domain.Location `json:"locationSuggestions"`
	IsLoadingLocations  bool              `json:"isLoadingLocations"`

	History          []domain.WorkItem `json:"history"`
	IsLoadingHistory bool              `json:"isLoadingHistory"`
	IsLoadingEdit    bool              `json:"isLoadingEditSchedule"`

	IsSubmitting   bool   `json:"isSubmitting"`
	ErrorMessage   string `json:"errorMessage,omitempty"`
	SuccessMessage string `json:"successMessage,omitempty"`
}

func initialState() State {
	return State{
		Warehouses:          []domain.Warehouse{},
		Products:            []domain.Product{},
		WorkingScheduleIDs:  []int{},
		LocationSuggestions: []domain.Location{},
		History:             []domain.WorkItem{},
	}
}

// IsFromHistory reports whether the input edits an existing work item
func (s State) IsFromHistory() bool {
	_, ok := s.Target.(EditWork)
	return ok
}

// IsWorking reports whether the picker has a WORKING item on the schedule
func (s State) IsWorking(scheduleID int) bool {
	i := sort.SearchInts(s.WorkingScheduleIDs, scheduleID)
	return i < len(s.WorkingScheduleIDs) && s.WorkingScheduleIDs[i] == scheduleID
}

// resetInput clears the input buffers and location suggestions
func (s *State) resetInput() {
	s.QuantityInput = ""
	s.ExpirationDateInput = ""
	s.LocationQuery = ""
	s.SelectedLocationID = nil
	s.SelectedLocation = nil
	s.LocationSuggestions = []domain.Location{}
	s.IsLoadingLocations = false
}

// resetWarehouseScope clears everything that belongs to the selected warehouse
func (s *State) resetWarehouseScope() {
	s.Products = []domain.Product{}
	s.IsLoadingProducts = false
	s.SearchQuery = ""
	s.WorkingScheduleIDs = []int{}
	s.SelectedProduct = nil
	s.SelectedSchedule = nil
	s.Target = nil
	s.History = []domain.WorkItem{}
	s.IsLoadingHistory = false
	s.IsLoadingEdit = false
	s.resetInput()
}

func workingScheduleIDs(items []domain.WorkItem) []int {
	seen := make(map[int]struct{}, len(items))
	ids := make([]int, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item.IncomingScheduleID]; ok {
			continue
		}
		seen[item.IncomingScheduleID] = struct{}{}
		ids = append(ids, item.IncomingScheduleID)
	}
	sort.Ints(ids)
	return ids
}
