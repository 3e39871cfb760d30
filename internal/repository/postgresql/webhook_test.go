package postgresql_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	mock_database "github.com/hidalgo-logistics/tracking/internal/db/mocks"
	"github.com/hidalgo-logistics/tracking/internal/repository"
	"github.com/hidalgo-logistics/tracking/internal/repository/postgresql"
)

func TestWebhookLogRepo_Create(t *testing.T) {
	ctx := context.Background()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockDB := mock_database.NewMockDB(ctrl)
	repo := postgresql.NewWebhookLogRepo(mockDB)

	entry := &repository.WebhookLog{
		ID:           "L1",
		Provider:     "Talkual",
		Endpoint:     "POST /api/public/shipments",
		Status:       429,
		RequestBody:  "BLOCKED",
		ResponseBody: "Too Many Requests",
		CreatedAt:    time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}

	mockDB.EXPECT().
		Exec(gomock.Any(), gomock.Any(),
			gomock.Eq(entry.ID), gomock.Eq(entry.Provider), gomock.Eq(entry.Endpoint),
			gomock.Eq(entry.Status), gomock.Eq(entry.RequestBody), gomock.Eq(entry.ResponseBody),
			gomock.Eq(entry.CreatedAt)).
		Return(nil, nil)

	assert.NoError(t, repo.Create(ctx, entry))
}

func TestWebhookLogRepo_GetPaginated(t *testing.T) {
	ctx := context.Background()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockDB := mock_database.NewMockDB(ctrl)
	repo := postgresql.NewWebhookLogRepo(mockDB)

	// Page 3 with limit 20 starts at offset 40.
	mockDB.EXPECT().
		Select(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Eq(20), gomock.Eq(40)).
		DoAndReturn(func(_ context.Context, dest interface{}, _ string, _ ...interface{}) error {
			*dest.(*[]*repository.WebhookLog) = []*repository.WebhookLog{
				{ID: "L9", Status: 201},
			}
			return nil
		})

	got, err := repo.GetPaginated(ctx, 3, 20)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "L9", got[0].ID)
}
