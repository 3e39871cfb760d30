package postgresql_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	mock_database "github.com/hidalgo-logistics/tracking/internal/db/mocks"
	"github.com/hidalgo-logistics/tracking/internal/repository"
	"github.com/hidalgo-logistics/tracking/internal/repository/postgresql"
)

func TestEventRepo_Create(t *testing.T) {
	ctx := context.Background()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockDB := mock_database.NewMockDB(ctrl)
	repo := postgresql.NewEventRepo(mockDB)

	ev := &repository.TrackingEvent{
		ID:          "ev-1",
		ShipmentID:  "SH001",
		EventType:   "STATUS_CHANGE_IN_TRANSIT",
		PayloadJSON: `{"note":"","prev_status":"ASSIGNED","has_proof":false}`,
		UserID:      "ops-1",
		UserName:    "Nuria Soler",
		CreatedAt:   time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}

	mockDB.EXPECT().
		Exec(gomock.Any(), gomock.Any(),
			gomock.Eq(ev.ID), gomock.Eq(ev.ShipmentID), gomock.Eq(ev.EventType),
			gomock.Eq(ev.PayloadJSON), gomock.Eq(ev.UserID), gomock.Eq(ev.UserName),
			gomock.Eq(ev.CreatedAt)).
		Return(nil, nil)

	assert.NoError(t, repo.Create(ctx, ev))
}

func TestEventRepo_GetByShipmentID(t *testing.T) {
	ctx := context.Background()

	t.Run("returns events in apply order", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockDB := mock_database.NewMockDB(ctrl)
		repo := postgresql.NewEventRepo(mockDB)

		mockDB.EXPECT().
			Select(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Eq("SH001")).
			DoAndReturn(func(_ context.Context, dest interface{}, _ string, _ ...interface{}) error {
				*dest.(*[]*repository.TrackingEvent) = []*repository.TrackingEvent{
					{ID: "ev-1", EventType: "STATUS_CHANGE_ASSIGNED"},
					{ID: "ev-2", EventType: "STATUS_CHANGE_IN_TRANSIT"},
				}
				return nil
			})

		got, err := repo.GetByShipmentID(ctx, "SH001")
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "STATUS_CHANGE_ASSIGNED", got[0].EventType)
	})

	t.Run("database error", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockDB := mock_database.NewMockDB(ctrl)
		repo := postgresql.NewEventRepo(mockDB)

		expectedErr := errors.New("database error")
		mockDB.EXPECT().
			Select(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(expectedErr)

		_, err := repo.GetByShipmentID(ctx, "SH001")
		assert.Equal(t, expectedErr, err)
	})
}
