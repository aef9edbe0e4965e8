package picking

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/wms-platform/handy-terminal/internal/domain"
	"github.com/wms-platform/handy-terminal/internal/i18n"
	apperrors "github.com/wms-platform/handy-terminal/pkg/errors"
	"github.com/wms-platform/handy-terminal/pkg/logging"
)

// Tab is a view of the picking task board
type Tab string

const (
	// TabMyArea lists the signed-in picker's tasks.
	TabMyArea Tab = "MY_AREA"
	// TabAllCourses lists every task in the warehouse.
	TabAllCourses Tab = "ALL_COURSES"
)

// ParseTab validates a tab name
func ParseTab(s string) (Tab, bool) {
	switch tab := Tab(s); tab {
	case TabMyArea, TabAllCourses:
		return tab, true
	default:
		return "", false
	}
}

// ListStatus is the load state of one tab
type ListStatus string

const (
	ListLoading ListStatus = "LOADING"
	ListEmpty   ListStatus = "EMPTY"
	ListLoaded  ListStatus = "LOADED"
	ListFailed  ListStatus = "FAILED"
)

// ListState is one tab's task list
type ListState struct {
	Status  ListStatus           `json:"status"`
	Tasks   []domain.PickingTask `json:"tasks"`
	Message string               `json:"message,omitempty"`
}

func loading() ListState {
	return ListState{Status: ListLoading, Tasks: []domain.PickingTask{}}
}

func failedList(message string) ListState {
	return ListState{Status: ListFailed, Tasks: []domain.PickingTask{}, Message: message}
}

func loadedList(tasks []domain.PickingTask) ListState {
	if len(tasks) == 0 {
		return ListState{Status: ListEmpty, Tasks: []domain.PickingTask{}}
	}
	return ListState{Status: ListLoaded, Tasks: tasks}
}

// State is the board snapshot
type State struct {
	ActiveTab    Tab       `json:"activeTab"`
	WarehouseID  *int      `json:"warehouseId,omitempty"`
	PickerID     *int      `json:"pickerId,omitempty"`
	MyArea       ListState `json:"myArea"`
	AllCourses   ListState `json:"allCourses"`
	ErrorMessage string    `json:"errorMessage,omitempty"`
}

// List returns the state of the given tab
func (s State) List(tab Tab) ListState {
	if tab == TabAllCourses {
		return s.AllCourses
	}
	return s.MyArea
}

func (s *State) setList(tab Tab, list ListState) {
	if tab == TabAllCourses {
		s.AllCourses = list
		return
	}
	s.MyArea = list
}

// Metrics records board activity
type Metrics interface {
	RecordPickingLoad(tab, outcome string)
}

// Config holds board settings
type Config struct {
	Messages *i18n.Catalog
	Logger   *logging.Logger
	Metrics  Metrics
}

// Board holds the outbound picking task lists. Each tab loads on first
// selection; Refresh reloads the active one.
type Board struct {
	gateway  domain.PickingGateway
	messages *i18n.Catalog
	logger   *logging.Logger
	metrics  Metrics

	mu          sync.Mutex
	state       State
	generation  map[Tab]uint64
	inflight    map[Tab]bool
	subscribers map[string]chan State
}

// NewBoard creates a board for the signed-in session. Without a default
// warehouse both tabs fail immediately.
func NewBoard(gateway domain.PickingGateway, session domain.Session, cfg Config) *Board {
	if cfg.Messages == nil {
		cfg.Messages = i18n.For(i18n.LocaleJA)
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.NewNop()
	}

	b := &Board{
		gateway:     gateway,
		messages:    cfg.Messages,
		logger:      cfg.Logger.WithComponent("picking-board"),
		metrics:     cfg.Metrics,
		generation:  map[Tab]uint64{},
		inflight:    map[Tab]bool{},
		subscribers: map[string]chan State{},
		state: State{
			ActiveTab:  TabMyArea,
			MyArea:     loading(),
			AllCourses: loading(),
		},
	}

	warehouseID, ok := 0, false
	if session != nil {
		warehouseID, ok = session.DefaultWarehouseID()
	}
	if !ok || warehouseID <= 0 {
		b.state.ErrorMessage = cfg.Messages.WarehouseMissing
		b.state.MyArea = failedList(cfg.Messages.WarehouseMissingShort)
		b.state.AllCourses = failedList(cfg.Messages.WarehouseMissingShort)
		return b
	}
	b.state.WarehouseID = &warehouseID

	if picker, ok := session.Picker(); ok && picker.ID > 0 {
		pickerID := picker.ID
		b.state.PickerID = &pickerID
	}
	return b
}

// State returns the current snapshot
func (b *Board) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Open loads the active tab if it has not been loaded yet
func (b *Board) Open(ctx context.Context) State {
	return b.SelectTab(ctx, b.State().ActiveTab)
}

// SelectTab switches tabs, loading the tab's list the first time it is shown
func (b *Board) SelectTab(ctx context.Context, tab Tab) State {
	b.mu.Lock()
	b.state.ActiveTab = tab
	pending := b.state.List(tab).Status == ListLoading && !b.inflight[tab]
	b.publishLocked()
	b.mu.Unlock()

	if pending {
		b.load(ctx, tab)
	}
	return b.State()
}

// Refresh reloads the active tab
func (b *Board) Refresh(ctx context.Context) State {
	b.load(ctx, b.State().ActiveTab)
	return b.State()
}

func (b *Board) load(ctx context.Context, tab Tab) {
	b.mu.Lock()
	if b.state.WarehouseID == nil {
		b.mu.Unlock()
		b.record(tab, "skipped")
		return
	}
	warehouseID := *b.state.WarehouseID

	var pickerID *int
	if tab == TabMyArea {
		if b.state.PickerID == nil {
			b.state.setList(tab, failedList(b.messages.PickerMissing))
			b.publishLocked()
			b.mu.Unlock()
			b.record(tab, "rejected")
			return
		}
		id := *b.state.PickerID
		pickerID = &id
	}

	b.generation[tab]++
	gen := b.generation[tab]
	b.inflight[tab] = true
	b.state.setList(tab, loading())
	b.publishLocked()
	b.mu.Unlock()

	b.logger.Intent(ctx, "loadPickingTasks", map[string]any{
		"tab":         string(tab),
		"warehouseId": warehouseID,
	})

	tasks, err := b.gateway.ListPickingTasks(ctx, warehouseID, pickerID)

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.generation[tab] != gen {
		return
	}
	b.inflight[tab] = false

	switch {
	case apperrors.IsCanceled(err):
		// leave the tab loading so the next selection retries
		b.record(tab, "superseded")
	case err != nil:
		b.logger.WithContext(ctx).WithError(err).Warn("Picking task load failed",
			"tab", string(tab),
			"code", apperrors.CodeOf(err),
		)
		b.record(tab, "failure")
		b.state.setList(tab, failedList(b.messages.FailureMessage(err)))
	default:
		b.record(tab, "success")
		b.state.setList(tab, loadedList(tasks))
	}
	b.publishLocked()
}

// Subscribe returns a stream of snapshots starting with the current one
func (b *Board) Subscribe() (string, <-chan State) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := uuid.New().String()
	ch := make(chan State, 1)
	ch <- b.state
	b.subscribers[id] = ch
	return id, ch
}

// Unsubscribe stops and closes the stream with the given id
func (b *Board) Unsubscribe(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if ch, ok := b.subscribers[id]; ok {
		delete(b.subscribers, id)
		close(ch)
	}
}

func (b *Board) publishLocked() {
	for _, ch := range b.subscribers {
		select {
		case <-ch:
		default:
		}
		ch <- b.state
	}
}

func (b *Board) record(tab Tab, outcome string) {
	if b.metrics != nil {
		b.metrics.RecordPickingLoad(string(tab), outcome)
	}
}
