package incoming

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/wms-platform/handy-terminal/internal/domain"
	"github.com/wms-platform/handy-terminal/internal/i18n"
)

// mockGateway is a testify mock of the incoming gateway
type mockGateway struct {
	mock.Mock
}

func (m *mockGateway) ListWarehouses(ctx context.Context) ([]domain.Warehouse, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Warehouse), args.Error(1)
}

func (m *mockGateway) ListSchedules(ctx context.Context, warehouseID int, search string) ([]domain.Product, error) {
	args := m.Called(ctx, warehouseID, search)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Product), args.Error(1)
}

func (m *mockGateway) GetSchedule(ctx context.Context, scheduleID int) (*domain.ScheduleDetail, error) {
	args := m.Called(ctx, scheduleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ScheduleDetail), args.Error(1)
}

func (m *mockGateway) ListWorkItems(ctx context.Context, filter domain.WorkItemFilter) ([]domain.WorkItem, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.WorkItem), args.Error(1)
}

func (m *mockGateway) StartWork(ctx context.Context, cmd domain.StartWorkCommand) (*domain.WorkItem, error) {
	args := m.Called(ctx, cmd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.WorkItem), args.Error(1)
}

func (m *mockGateway) UpdateWork(ctx context.Context, workItemID int, cmd domain.UpdateWorkCommand) (*domain.WorkItem, error) {
	args := m.Called(ctx, workItemID, cmd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.WorkItem), args.Error(1)
}

func (m *mockGateway) CompleteWork(ctx context.Context, workItemID int) error {
	return m.Called(ctx, workItemID).Error(0)
}

func (m *mockGateway) CancelWork(ctx context.Context, workItemID int) error {
	return m.Called(ctx, workItemID).Error(0)
}

func (m *mockGateway) SearchLocations(ctx context.Context, warehouseID int, search string) ([]domain.Location, error) {
	args := m.Called(ctx, warehouseID, search)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Location), args.Error(1)
}

// searchGateway scripts search responses per query. A query with a gate
// blocks until the gate is closed and then answers regardless of the
// caller's context, the way a response already on the wire arrives late.
type searchGateway struct {
	domain.IncomingGateway

	mu        sync.Mutex
	products  map[string][]domain.Product
	locations map[string][]domain.Location
	gates     map[string]chan struct{}
	schedules []string
	lookups   []string
}

func newSearchGateway() *searchGateway {
	return &searchGateway{
		products:  map[string][]domain.Product{},
		locations: map[string][]domain.Location{},
		gates:     map[string]chan struct{}{},
	}
}

func (g *searchGateway) gate(query string) chan struct{} {
	g.mu.Lock()
	defer g.mu.Unlock()
	ch := make(chan struct{})
	g.gates[query] = ch
	return ch
}

func (g *searchGateway) wait(query string) {
	g.mu.Lock()
	ch := g.gates[query]
	g.mu.Unlock()
	if ch != nil {
		<-ch
	}
}

func (g *searchGateway) ListSchedules(_ context.Context, _ int, search string) ([]domain.Product, error) {
	g.mu.Lock()
	g.schedules = append(g.schedules, search)
	g.mu.Unlock()

	g.wait(search)

	g.mu.Lock()
	defer g.mu.Unlock()
	return g.products[search], nil
}

func (g *searchGateway) ListWorkItems(context.Context, domain.WorkItemFilter) ([]domain.WorkItem, error) {
	return []domain.WorkItem{}, nil
}

func (g *searchGateway) SearchLocations(_ context.Context, _ int, search string) ([]domain.Location, error) {
	g.mu.Lock()
	g.lookups = append(g.lookups, search)
	g.mu.Unlock()

	g.wait(search)

	g.mu.Lock()
	defer g.mu.Unlock()
	return g.locations[search], nil
}

func (g *searchGateway) scheduleQueries() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.schedules...)
}

func (g *searchGateway) locationQueries() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.lookups...)
}

type staticSession struct {
	picker    *domain.Picker
	warehouse int
}

func (s staticSession) Picker() (domain.Picker, bool) {
	if s.picker == nil {
		return domain.Picker{}, false
	}
	return *s.picker, true
}

func (s staticSession) DefaultWarehouseID() (int, bool) {
	return s.warehouse, s.warehouse > 0
}

var (
	fixedNow = time.Date(2024, 5, 1, 10, 0, 0, 0, time.Local)
	today    = "2024-05-01"

	pickerP1    = domain.Picker{ID: 3, Name: "山田"}
	warehouseW1 = domain.Warehouse{ID: 1, Code: "W1", Name: "Tokyo", OutOfStockOption: domain.OutOfStockIgnore}
	warehouseW2 = domain.Warehouse{ID: 2, Code: "W2", Name: "Osaka", OutOfStockOption: domain.OutOfStockIgnore}

	scheduleS1 = domain.Schedule{
		ID: 7, WarehouseID: 1, WarehouseName: "Tokyo",
		ExpectedQuantity: 100, ReceivedQuantity: 50, RemainingQuantity: 50,
		QuantityType: domain.QuantityTypePiece, ExpectedArrivalDate: today,
		Status: domain.ScheduleStatusPending,
	}
	scheduleConfirmed = domain.Schedule{
		ID: 8, WarehouseID: 1, ExpectedQuantity: 10, ReceivedQuantity: 10,
		QuantityType: domain.QuantityTypeCase, Status: domain.ScheduleStatusConfirmed,
	}
	productTea = domain.Product{
		ItemID: 101, ItemCode: "ITEM-101", ItemName: "Green Tea",
		JANCodes: []string{"4901234567890"}, Images: []string{},
		Schedules: []domain.Schedule{scheduleS1, scheduleConfirmed},
	}
	locationA12 = domain.Location{ID: 4, Code1: "A", Code2: "12", Code3: "1", Name: "A-12", DisplayName: "A 12 1"}
)

func testConfig() Config {
	return Config{
		Debounce:       20 * time.Millisecond,
		SuccessDisplay: 10 * time.Millisecond,
		Messages:       i18n.For(i18n.LocaleJA),
		Clock:          func() time.Time { return fixedNow },
	}
}

func newTestEngine(t *testing.T, gateway domain.IncomingGateway, session domain.Session) *Engine {
	t.Helper()
	e := NewEngine(gateway, session, testConfig())
	t.Cleanup(e.Close)
	return e
}

func withPicker() staticSession {
	p := pickerP1
	return staticSession{picker: &p}
}
