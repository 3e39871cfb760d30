package postgresql

import (
	"context"

	"github.com/hidalgo-logistics/tracking/internal/db"
	"github.com/hidalgo-logistics/tracking/internal/repository"
)

type EventRepo struct {
	db db.DB
}

func NewEventRepo(db db.DB) *EventRepo {
	return &EventRepo{db: db}
}

func (r *EventRepo) Create(ctx context.Context, ev *repository.TrackingEvent) error {
	_, err := r.db.Exec(ctx, `
        INSERT INTO tracking_events (
            id, shipment_id, event_type, payload_json, user_id, user_name, created_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7)
    `, ev.ID, ev.ShipmentID, ev.EventType, ev.PayloadJSON, ev.UserID, ev.UserName, ev.CreatedAt)
	return err
}

// GetByShipmentID returns events in creation order; the serial seq column
// breaks timestamp ties so the order always matches apply order.
func (r *EventRepo) GetByShipmentID(ctx context.Context, shipmentID string) ([]*repository.TrackingEvent, error) {
	var events []*repository.TrackingEvent
	err := r.db.Select(ctx, &events, `
        SELECT id, shipment_id, event_type, payload_json, user_id, user_name, created_at
        FROM tracking_events
        WHERE shipment_id = $1
        ORDER BY seq ASC
    `, shipmentID)
	return events, err
}
