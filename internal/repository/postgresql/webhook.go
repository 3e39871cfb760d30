package postgresql

import (
	"context"

	"github.com/hidalgo-logistics/tracking/internal/db"
	"github.com/hidalgo-logistics/tracking/internal/repository"
)

type WebhookLogRepo struct {
	db db.DB
}

func NewWebhookLogRepo(db db.DB) *WebhookLogRepo {
	return &WebhookLogRepo{db: db}
}

func (r *WebhookLogRepo) Create(ctx context.Context, entry *repository.WebhookLog) error {
	_, err := r.db.Exec(ctx, `
        INSERT INTO webhook_logs (
            id, provider, endpoint, status, request_body, response_body, created_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7)
    `, entry.ID, entry.Provider, entry.Endpoint, entry.Status, entry.RequestBody, entry.ResponseBody, entry.CreatedAt)
	return err
}

func (r *WebhookLogRepo) GetPaginated(ctx context.Context, page, limit int) ([]*repository.WebhookLog, error) {
	offset := (page - 1) * limit
	var entries []*repository.WebhookLog
	err := r.db.Select(ctx, &entries, `
        SELECT id, provider, endpoint, status, request_body, response_body, created_at
        FROM webhook_logs
        ORDER BY seq DESC
        LIMIT $1 OFFSET $2
    `, limit, offset)
	return entries, err
}
