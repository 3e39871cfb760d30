package postgresql

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v4"

	"github.com/hidalgo-logistics/tracking/internal/db"
	"github.com/hidalgo-logistics/tracking/internal/repository"
)

type ShipmentRepo struct {
	db db.DB
}

func NewShipmentRepo(db db.DB) *ShipmentRepo {
	return &ShipmentRepo{db: db}
}

func (r *ShipmentRepo) Create(ctx context.Context, s *repository.Shipment) error {
	_, err := r.db.Exec(ctx, `
        INSERT INTO shipments (
            id, external_reference, origin, destination, client, date, time_window,
            packages, weight, notes, status, assigned_driver_id, assigned_driver_name,
            pod_recipient, pod_signature, pod_photo, pod_captured_at, label_url,
            created_at, updated_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
    `, s.ID, s.ExternalReference, s.Origin, s.Destination, s.Client, s.Date, s.TimeWindow,
		s.Packages, s.Weight, s.Notes, s.Status, s.AssignedDriverID, s.AssignedDriverName,
		s.PODRecipient, s.PODSignature, s.PODPhoto, s.PODCapturedAt, s.LabelURL,
		s.CreatedAt, s.UpdatedAt)
	return err
}

func (r *ShipmentRepo) GetByID(ctx context.Context, id string) (*repository.Shipment, error) {
	var s repository.Shipment
	err := r.db.Get(ctx, &s, "SELECT * FROM shipments WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrObjectNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *ShipmentRepo) GetByExternalReference(ctx context.Context, ref string) (*repository.Shipment, error) {
	var s repository.Shipment
	err := r.db.Get(ctx, &s, "SELECT * FROM shipments WHERE external_reference = $1", ref)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrObjectNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *ShipmentRepo) Update(ctx context.Context, s *repository.Shipment) error {
	_, err := r.db.Exec(ctx, `
        UPDATE shipments
        SET
            external_reference = $1,
            origin = $2,
            destination = $3,
            client = $4,
            date = $5,
            time_window = $6,
            packages = $7,
            weight = $8,
            notes = $9,
            status = $10,
            assigned_driver_id = $11,
            assigned_driver_name = $12,
            pod_recipient = $13,
            pod_signature = $14,
            pod_photo = $15,
            pod_captured_at = $16,
            label_url = $17,
            updated_at = $18
        WHERE id = $19
    `, s.ExternalReference, s.Origin, s.Destination, s.Client, s.Date, s.TimeWindow,
		s.Packages, s.Weight, s.Notes, s.Status, s.AssignedDriverID, s.AssignedDriverName,
		s.PODRecipient, s.PODSignature, s.PODPhoto, s.PODCapturedAt, s.LabelURL,
		s.UpdatedAt, s.ID)
	return err
}

func (r *ShipmentRepo) ListByStatus(ctx context.Context, status string) ([]*repository.Shipment, error) {
	var shipments []*repository.Shipment
	err := r.db.Select(ctx, &shipments,
		"SELECT * FROM shipments WHERE status = $1 ORDER BY created_at ASC", status)
	return shipments, err
}

func (r *ShipmentRepo) ListByDriver(ctx context.Context, driverID string) ([]*repository.Shipment, error) {
	var shipments []*repository.Shipment
	err := r.db.Select(ctx, &shipments,
		"SELECT * FROM shipments WHERE assigned_driver_id = $1 ORDER BY created_at ASC", driverID)
	return shipments, err
}

func (r *ShipmentRepo) ListAll(ctx context.Context) ([]*repository.Shipment, error) {
	var shipments []*repository.Shipment
	err := r.db.Select(ctx, &shipments, "SELECT * FROM shipments ORDER BY created_at ASC")
	return shipments, err
}
