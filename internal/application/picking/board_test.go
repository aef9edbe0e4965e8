package picking

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/wms-platform/handy-terminal/internal/domain"
	apperrors "github.com/wms-platform/handy-terminal/pkg/errors"
)

type mockGateway struct {
	mock.Mock
}

func (m *mockGateway) ListPickingTasks(ctx context.Context, warehouseID int, pickerID *int) ([]domain.PickingTask, error) {
	args := m.Called(ctx, warehouseID, pickerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PickingTask), args.Error(1)
}

type staticSession struct {
	picker    int
	warehouse int
}

func (s staticSession) Picker() (domain.Picker, bool) {
	return domain.Picker{ID: s.picker, Name: "山田"}, s.picker > 0
}

func (s staticSession) DefaultWarehouseID() (int, bool) {
	return s.warehouse, s.warehouse > 0
}

type recordingMetrics struct {
	mu    sync.Mutex
	loads []string
}

func (m *recordingMetrics) RecordPickingLoad(tab, outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loads = append(m.loads, tab+":"+outcome)
}

func (m *recordingMetrics) recorded() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.loads...)
}

func task(id int, picked ...string) domain.PickingTask {
	items := make([]domain.PickingTaskItem, 0, len(picked))
	for i, qty := range picked {
		items = append(items, domain.PickingTaskItem{
			ID:             i + 1,
			PlannedQtyType: domain.QuantityTypePiece,
			PlannedQty:     decimal.NewFromInt(2),
			PickedQty:      decimal.RequireFromString(qty),
		})
	}
	return domain.NewPickingTask(id, 500+id,
		domain.Course{Code: "C1", Name: "Course 1"},
		domain.PickingArea{Code: "A", Name: "Area A"},
		items)
}

func pickerArg(id int) interface{} {
	return mock.MatchedBy(func(p *int) bool { return p != nil && *p == id })
}

func nilPicker() interface{} {
	return mock.MatchedBy(func(p *int) bool { return p == nil })
}

func TestParseTab(t *testing.T) {
	tab, ok := ParseTab("MY_AREA")
	assert.True(t, ok)
	assert.Equal(t, TabMyArea, tab)

	tab, ok = ParseTab("ALL_COURSES")
	assert.True(t, ok)
	assert.Equal(t, TabAllCourses, tab)

	_, ok = ParseTab("my_area")
	assert.False(t, ok)
}

func TestNewBoardStartsLoading(t *testing.T) {
	b := NewBoard(&mockGateway{}, staticSession{picker: 3, warehouse: 1}, Config{})

	st := b.State()
	assert.Equal(t, TabMyArea, st.ActiveTab)
	assert.Equal(t, ListLoading, st.MyArea.Status)
	assert.Equal(t, ListLoading, st.AllCourses.Status)
	require.NotNil(t, st.WarehouseID)
	assert.Equal(t, 1, *st.WarehouseID)
	require.NotNil(t, st.PickerID)
	assert.Equal(t, 3, *st.PickerID)
	assert.Empty(t, st.ErrorMessage)
}

func TestOpenLoadsMyArea(t *testing.T) {
	gw := &mockGateway{}
	gw.On("ListPickingTasks", mock.Anything, 1, pickerArg(3)).
		Return([]domain.PickingTask{task(1, "2", "1")}, nil).Once()

	metrics := &recordingMetrics{}
	b := NewBoard(gw, staticSession{picker: 3, warehouse: 1}, Config{Metrics: metrics})

	st := b.Open(context.Background())

	assert.Equal(t, ListLoaded, st.MyArea.Status)
	require.Len(t, st.MyArea.Tasks, 1)
	assert.Equal(t, "1/2", st.MyArea.Tasks[0].ProgressText())
	assert.True(t, st.MyArea.Tasks[0].IsInProgress())
	assert.Equal(t, ListLoading, st.AllCourses.Status, "other tab loads lazily")
	assert.Equal(t, []string{"MY_AREA:success"}, metrics.recorded())

	// a loaded tab is not fetched again on reopen
	b.Open(context.Background())
	gw.AssertExpectations(t)
}

func TestSelectTabLoadsLazily(t *testing.T) {
	gw := &mockGateway{}
	gw.On("ListPickingTasks", mock.Anything, 1, nilPicker()).
		Return([]domain.PickingTask{}, nil).Once()

	b := NewBoard(gw, staticSession{picker: 3, warehouse: 1}, Config{})

	st := b.SelectTab(context.Background(), TabAllCourses)
	assert.Equal(t, TabAllCourses, st.ActiveTab)
	assert.Equal(t, ListEmpty, st.AllCourses.Status)
	assert.NotNil(t, st.AllCourses.Tasks)
	assert.Equal(t, ListLoading, st.MyArea.Status)

	b.SelectTab(context.Background(), TabAllCourses)
	gw.AssertExpectations(t)
}

func TestRefreshReloadsActiveTab(t *testing.T) {
	gw := &mockGateway{}
	gw.On("ListPickingTasks", mock.Anything, 1, pickerArg(3)).
		Return([]domain.PickingTask{task(1, "0")}, nil).Once()
	gw.On("ListPickingTasks", mock.Anything, 1, pickerArg(3)).
		Return([]domain.PickingTask{task(1, "2")}, nil).Once()

	b := NewBoard(gw, staticSession{picker: 3, warehouse: 1}, Config{})
	b.Open(context.Background())

	st := b.Refresh(context.Background())
	require.Len(t, st.MyArea.Tasks, 1)
	assert.True(t, st.MyArea.Tasks[0].IsCompleted())
	gw.AssertExpectations(t)
}

func TestLoadFailure(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"unauthorized", apperrors.ErrUnauthorized(""), "認証エラー。再ログインしてください。"},
		{"forbidden", apperrors.ErrForbidden(""), "アクセス権限がありません。"},
		{"network", apperrors.ErrNetwork(""), "ネットワークエラー。接続を確認してください。"},
		{"server", apperrors.FromHTTPStatus(500, ""), "サーバーエラー。しばらくしてから再度お試しください。"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := &mockGateway{}
			gw.On("ListPickingTasks", mock.Anything, 1, nilPicker()).Return(nil, tt.err).Once()

			b := NewBoard(gw, staticSession{picker: 3, warehouse: 1}, Config{})
			st := b.SelectTab(context.Background(), TabAllCourses)

			assert.Equal(t, ListFailed, st.AllCourses.Status)
			assert.Equal(t, tt.want, st.AllCourses.Message)
		})
	}
}

func TestFailedTabRetriesOnRefresh(t *testing.T) {
	gw := &mockGateway{}
	gw.On("ListPickingTasks", mock.Anything, 1, pickerArg(3)).Return(nil, apperrors.ErrNetwork("")).Once()
	gw.On("ListPickingTasks", mock.Anything, 1, pickerArg(3)).Return([]domain.PickingTask{task(2, "1")}, nil).Once()

	b := NewBoard(gw, staticSession{picker: 3, warehouse: 1}, Config{})
	assert.Equal(t, ListFailed, b.Open(context.Background()).MyArea.Status)

	// selecting a failed tab does not retry by itself
	assert.Equal(t, ListFailed, b.Open(context.Background()).MyArea.Status)

	assert.Equal(t, ListLoaded, b.Refresh(context.Background()).MyArea.Status)
	gw.AssertExpectations(t)
}

func TestCanceledLoadStaysLoading(t *testing.T) {
	gw := &mockGateway{}
	gw.On("ListPickingTasks", mock.Anything, 1, pickerArg(3)).Return(nil, context.Canceled).Once()
	gw.On("ListPickingTasks", mock.Anything, 1, pickerArg(3)).Return([]domain.PickingTask{}, nil).Once()

	b := NewBoard(gw, staticSession{picker: 3, warehouse: 1}, Config{})

	assert.Equal(t, ListLoading, b.Open(context.Background()).MyArea.Status)
	assert.Equal(t, ListEmpty, b.Open(context.Background()).MyArea.Status)
	gw.AssertExpectations(t)
}

func TestMissingWarehouse(t *testing.T) {
	gw := &mockGateway{}
	b := NewBoard(gw, staticSession{picker: 3}, Config{})

	st := b.State()
	assert.Equal(t, "倉庫情報が見つかりません。再ログインしてください。", st.ErrorMessage)
	assert.Equal(t, ListFailed, st.MyArea.Status)
	assert.Equal(t, "倉庫情報が見つかりません", st.MyArea.Message)
	assert.Equal(t, ListFailed, st.AllCourses.Status)
	assert.Nil(t, st.WarehouseID)

	b.Open(context.Background())
	b.SelectTab(context.Background(), TabAllCourses)
	b.Refresh(context.Background())
	assert.Empty(t, gw.Calls)
}

func TestMissingPickerFailsMyAreaOnly(t *testing.T) {
	gw := &mockGateway{}
	gw.On("ListPickingTasks", mock.Anything, 1, nilPicker()).
		Return([]domain.PickingTask{task(1, "0")}, nil).Once()

	b := NewBoard(gw, staticSession{warehouse: 1}, Config{})

	st := b.Open(context.Background())
	assert.Equal(t, ListFailed, st.MyArea.Status)
	assert.Equal(t, "ピッカー情報が見つかりません", st.MyArea.Message)

	st = b.SelectTab(context.Background(), TabAllCourses)
	assert.Equal(t, ListLoaded, st.AllCourses.Status)
	gw.AssertExpectations(t)
}

func TestSubscribe(t *testing.T) {
	gw := &mockGateway{}
	gw.On("ListPickingTasks", mock.Anything, 1, pickerArg(3)).Return([]domain.PickingTask{}, nil).Once()

	b := NewBoard(gw, staticSession{picker: 3, warehouse: 1}, Config{})
	id, ch := b.Subscribe()

	initial := <-ch
	assert.Equal(t, ListLoading, initial.MyArea.Status)

	b.Open(context.Background())
	latest := <-ch
	assert.Equal(t, ListEmpty, latest.MyArea.Status)

	b.Unsubscribe(id)
	_, open := <-ch
	assert.False(t, open)
}
