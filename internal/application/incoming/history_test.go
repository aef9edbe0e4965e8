package incoming

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/wms-platform/handy-terminal/internal/domain"
	apperrors "github.com/wms-platform/handy-terminal/pkg/errors"
)

func historyItems() []domain.WorkItem {
	location := locationA12
	return []domain.WorkItem{
		{
			ID: 12, IncomingScheduleID: 7, PickerID: 3, WarehouseID: 1,
			LocationID: intPtr(4), Location: &location,
			WorkQuantity: 30, WorkArrivalDate: today, WorkExpirationDate: strPtr("2025-01-31"),
			Status: domain.WorkItemStatusCompleted,
		},
		{ID: 13, IncomingScheduleID: 9, WorkQuantity: 5, Status: domain.WorkItemStatusWorking},
		{ID: 14, IncomingScheduleID: 9, WorkQuantity: 2, Status: domain.WorkItemStatusCancelled},
	}
}

func TestLoadHistory(t *testing.T) {
	gw := &mockGateway{}
	gw.On("ListWorkItems", mock.Anything, domain.WorkItemFilter{
		WarehouseID: 1,
		PickerID:    intPtr(3),
		Status:      "all",
		FromDate:    today,
	}).Return(historyItems(), nil).Once()

	e := newTestEngine(t, gw, withPicker())
	e.SelectWarehouse(warehouseW1)
	e.LoadHistory(context.Background())

	st := e.State()
	assert.Len(t, st.History, 3)
	assert.False(t, st.IsLoadingHistory)
	gw.AssertExpectations(t)
}

func TestLoadHistoryWithoutPicker(t *testing.T) {
	gw := &mockGateway{}
	gw.On("ListWorkItems", mock.Anything, mock.MatchedBy(func(f domain.WorkItemFilter) bool {
		return f.PickerID == nil && f.Status == "all" && f.FromDate == today
	})).Return([]domain.WorkItem{}, nil).Once()

	e := newTestEngine(t, gw, staticSession{})
	e.SelectWarehouse(warehouseW1)
	e.LoadHistory(context.Background())

	gw.AssertExpectations(t)
}

func TestLoadHistoryRequiresWarehouse(t *testing.T) {
	gw := &mockGateway{}
	e := newTestEngine(t, gw, withPicker())

	e.LoadHistory(context.Background())

	assert.Empty(t, gw.Calls)
	assert.False(t, e.State().IsLoadingHistory)
}

func TestLoadHistoryFailure(t *testing.T) {
	gw := &mockGateway{}
	gw.On("ListWorkItems", mock.Anything, mock.Anything).Return(nil, apperrors.ErrUnauthorized("")).Once()

	e := newTestEngine(t, gw, withPicker())
	e.SelectWarehouse(warehouseW1)
	e.LoadHistory(context.Background())

	st := e.State()
	assert.Equal(t, "認証エラー。再ログインしてください。", st.ErrorMessage)
	assert.False(t, st.IsLoadingHistory)
}

func TestLoadHistoryCanceledIsNotAnError(t *testing.T) {
	gw := &mockGateway{}
	gw.On("ListWorkItems", mock.Anything, mock.Anything).Return(nil, context.Canceled).Once()

	e := newTestEngine(t, gw, withPicker())
	e.SelectWarehouse(warehouseW1)
	e.LoadHistory(context.Background())

	st := e.State()
	assert.Empty(t, st.ErrorMessage)
	assert.False(t, st.IsLoadingHistory)
}

func TestSelectHistoryItemRoundTrip(t *testing.T) {
	for _, item := range historyItems()[:2] {
		t.Run(string(item.Status), func(t *testing.T) {
			e := newTestEngine(t, &mockGateway{}, withPicker())
			require.NoError(t, e.SelectHistoryItem(item))

			st := e.State()
			assert.True(t, st.IsFromHistory())
			assert.Nil(t, st.SelectedSchedule)
			assert.Equal(t, itoa(item.WorkQuantity), st.QuantityInput)

			wantExpiration := ""
			if item.WorkExpirationDate != nil {
				wantExpiration = *item.WorkExpirationDate
			}
			assert.Equal(t, wantExpiration, st.ExpirationDateInput)
			assert.Equal(t, item.LocationID, st.SelectedLocationID)

			wantQuery := ""
			if item.Location != nil {
				wantQuery = item.Location.DisplayName
			}
			assert.Equal(t, wantQuery, st.LocationQuery)

			edit, ok := st.Target.(EditWork)
			require.True(t, ok)
			assert.Equal(t, item.ID, edit.WorkItem.ID)
		})
	}
}

func TestSelectHistoryItemRejectsCancelled(t *testing.T) {
	gw := &mockGateway{}
	gw.On("ListWorkItems", mock.Anything, mock.Anything).Return(historyItems(), nil).Once()

	e := newTestEngine(t, gw, withPicker())
	e.SelectWarehouse(warehouseW1)
	e.LoadHistory(context.Background())

	assert.ErrorIs(t, e.SelectHistoryItemByID(14), domain.ErrWorkItemNotEditable)
	assert.ErrorIs(t, e.SelectHistoryItemByID(99), domain.ErrWorkItemNotFound)
	assert.Nil(t, e.State().Target)

	require.NoError(t, e.SelectHistoryItemByID(12))
	assert.True(t, e.State().IsFromHistory())
}

func TestCancelWork(t *testing.T) {
	working := historyItems()[1]

	gw := &mockGateway{}
	gw.On("CancelWork", mock.Anything, 13).Return(nil).Once()
	gw.On("ListWorkItems", mock.Anything, mock.Anything).Return(historyItems(), nil).Once()

	e := newTestEngine(t, gw, withPicker())
	e.SelectWarehouse(warehouseW1)
	require.NoError(t, e.SelectHistoryItem(working))

	require.NoError(t, e.CancelWork(context.Background()))

	st := e.State()
	assert.Equal(t, "作業をキャンセルしました", st.SuccessMessage)
	assert.Nil(t, st.Target)
	assert.Empty(t, st.QuantityInput)
	assert.False(t, st.IsSubmitting)
	assert.Len(t, st.History, 3)
	gw.AssertExpectations(t)
}

func TestCancelWorkRejected(t *testing.T) {
	gw := &mockGateway{}
	e := newTestEngine(t, gw, withPicker())
	e.SelectWarehouse(warehouseW1)

	assert.ErrorIs(t, e.CancelWork(context.Background()), domain.ErrNotEditing)

	require.NoError(t, e.SelectSchedule(scheduleS1))
	assert.ErrorIs(t, e.CancelWork(context.Background()), domain.ErrNotEditing)

	require.NoError(t, e.SelectHistoryItem(historyItems()[0]))
	assert.ErrorIs(t, e.CancelWork(context.Background()), domain.ErrWorkItemNotCancellable)

	assert.Empty(t, gw.Calls)
}

func TestCancelWorkFailure(t *testing.T) {
	gw := &mockGateway{}
	gw.On("CancelWork", mock.Anything, 13).Return(apperrors.ErrForbidden("")).Once()

	e := newTestEngine(t, gw, withPicker())
	e.SelectWarehouse(warehouseW1)
	require.NoError(t, e.SelectHistoryItem(historyItems()[1]))

	require.NoError(t, e.CancelWork(context.Background()))

	st := e.State()
	assert.Equal(t, "アクセス権限がありません。", st.ErrorMessage)
	assert.True(t, st.IsFromHistory(), "input kept for retry")
	assert.False(t, st.IsSubmitting)
	gw.AssertNotCalled(t, "ListWorkItems", mock.Anything, mock.Anything)
}

func TestLoadEditSchedule(t *testing.T) {
	detail := &domain.ScheduleDetail{
		Schedule: domain.Schedule{ID: 9, RemainingQuantity: 4, Status: domain.ScheduleStatusPartial},
		ItemCode: "ITEM-102",
	}

	gw := &mockGateway{}
	gw.On("GetSchedule", mock.Anything, 9).Return(detail, nil).Once()

	e := newTestEngine(t, gw, withPicker())
	e.SelectWarehouse(warehouseW1)
	require.NoError(t, e.SelectHistoryItem(historyItems()[1]))

	require.NoError(t, e.LoadEditSchedule(context.Background()))

	edit, ok := e.State().Target.(EditWork)
	require.True(t, ok)
	assert.Equal(t, detail, edit.Schedule)
	assert.False(t, e.State().IsLoadingEdit)

	// the loaded schedule now bounds the quantity
	require.True(t, e.SetQuantityInput("5"))
	e.Submit(context.Background())
	assert.Equal(t, "入庫数量が残数を超えています", e.State().ErrorMessage)
	gw.AssertNotCalled(t, "UpdateWork", mock.Anything, mock.Anything, mock.Anything)
}

func TestLoadEditScheduleSkipsWhenSnapshotPresent(t *testing.T) {
	item := historyItems()[1]
	item.Schedule = &domain.WorkItemSchedule{ID: 9, RemainingQuantity: 10}

	gw := &mockGateway{}
	e := newTestEngine(t, gw, withPicker())
	require.NoError(t, e.SelectHistoryItem(item))

	require.NoError(t, e.LoadEditSchedule(context.Background()))
	assert.Empty(t, gw.Calls)
}

func TestLoadEditScheduleRequiresEdit(t *testing.T) {
	e := newTestEngine(t, &mockGateway{}, withPicker())
	assert.ErrorIs(t, e.LoadEditSchedule(context.Background()), domain.ErrNotEditing)
}

func TestLoadEditScheduleFailure(t *testing.T) {
	gw := &mockGateway{}
	gw.On("GetSchedule", mock.Anything, 9).Return(nil, apperrors.ErrNotFound("schedule")).Once()

	e := newTestEngine(t, gw, withPicker())
	require.NoError(t, e.SelectHistoryItem(historyItems()[1]))

	require.NoError(t, e.LoadEditSchedule(context.Background()))

	st := e.State()
	assert.Equal(t, "データが見つかりません。", st.ErrorMessage)
	assert.False(t, st.IsLoadingEdit)
}
