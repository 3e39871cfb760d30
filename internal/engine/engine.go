// Package engine applies shipment lifecycle changes for the interactive
// operational flows. It shares the store with the public gateway but is not
// routed through it.
package engine

import (
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/hidalgo-logistics/tracking/internal/auth"
	"github.com/hidalgo-logistics/tracking/internal/metrics"
	"github.com/hidalgo-logistics/tracking/internal/model"
	"github.com/hidalgo-logistics/tracking/internal/sanitize"
	"github.com/hidalgo-logistics/tracking/internal/storage"
)

type Engine struct {
	store  *storage.Store
	users  *storage.UserDirectory
	logger *zap.Logger
}

func New(store *storage.Store, users *storage.UserDirectory, logger *zap.Logger) *Engine {
	return &Engine{store: store, users: users, logger: logger}
}

type statusPayload struct {
	Note       string       `json:"note"`
	PrevStatus model.Status `json:"prev_status"`
	HasProof   bool         `json:"has_proof"`
}

// ApplyStatus moves a shipment to newStatus and appends the matching
// tracking event in the same store transaction. A DELIVERED shipment is only
// touchable by admins; for anyone else the call silently returns the
// shipment unchanged (see auth.CanOverrideDelivered).
func (e *Engine) ApplyStatus(id string, newStatus model.Status, actor *model.User, note string, pod *model.ProofOfDelivery) (*model.Shipment, error) {
	applied := false

	shipment, err := e.store.Update(id, func(current model.Shipment) (model.Shipment, *model.TrackingEvent, bool) {
		if current.Status == model.StatusDelivered && !auth.CanOverrideDelivered(actor) {
			return current, nil, false
		}

		cleanNote := sanitize.String(note)

		updated := current
		updated.Status = newStatus
		updated.UpdatedAt = time.Now().UTC()
		if pod != nil {
			updated.POD = pod
		}
		if note != "" {
			updated.Notes = cleanNote
		}

		payload, _ := json.Marshal(statusPayload{
			Note:       cleanNote,
			PrevStatus: current.Status,
			HasProof:   pod != nil,
		})

		userID, userName := "system", "System"
		if actor != nil {
			userID, userName = actor.ID, actor.Name
		}

		applied = true
		return updated, &model.TrackingEvent{
			EventType:   "STATUS_CHANGE_" + string(newStatus),
			PayloadJSON: string(payload),
			UserID:      userID,
			UserName:    userName,
			CreatedAt:   updated.UpdatedAt,
		}, true
	})
	if err != nil {
		return nil, err
	}

	if applied {
		metrics.StatusChangesTotal.WithLabelValues(string(newStatus)).Inc()
		e.logger.Info("Shipment status changed",
			zap.String("shipment_id", id),
			zap.String("status", string(newStatus)))
	} else {
		e.logger.Debug("Status change on delivered shipment ignored",
			zap.String("shipment_id", id))
	}
	return shipment, nil
}

// AssignDriver puts the shipment into ASSIGNED and records the driver.
// An unknown driver id is a silent no-op, matching the legacy behavior.
// Assignment is not a status-change event; no tracking event is appended.
func (e *Engine) AssignDriver(id, driverID string) (*model.Shipment, error) {
	driver, err := e.users.Get(driverID)
	if err != nil {
		e.logger.Warn("Driver assignment ignored, unknown driver",
			zap.String("shipment_id", id),
			zap.String("driver_id", driverID))
		return e.store.Get(id)
	}

	shipment, err := e.store.Update(id, func(current model.Shipment) (model.Shipment, *model.TrackingEvent, bool) {
		updated := current
		updated.Status = model.StatusAssigned
		updated.AssignedDriverID = driver.ID
		updated.AssignedDriverName = driver.Name
		updated.UpdatedAt = time.Now().UTC()
		return updated, nil, true
	})
	if err != nil {
		return nil, err
	}

	metrics.DriversAssignedTotal.Inc()
	return shipment, nil
}

// AssignDriverBatch assigns every listed shipment to the driver. There is no
// atomicity across the batch; each shipment succeeds or no-ops on its own.
// Returns how many shipments were assigned.
func (e *Engine) AssignDriverBatch(shipmentIDs []string, driverID string) int {
	if _, err := e.users.Get(driverID); err != nil {
		e.logger.Warn("Batch assignment ignored, unknown driver",
			zap.String("driver_id", driverID),
			zap.Int("shipments", len(shipmentIDs)))
		return 0
	}

	assigned := 0
	for _, id := range shipmentIDs {
		if _, err := e.AssignDriver(id, driverID); err != nil {
			e.logger.Warn("Batch assignment skipped shipment",
				zap.String("shipment_id", id),
				zap.Error(err))
			continue
		}
		assigned++
	}
	return assigned
}

// FindByScannedCode resolves a code from the barcode capture UI. The code is
// sanitized like any other untrusted input before lookup.
func (e *Engine) FindByScannedCode(code string) (*model.Shipment, error) {
	return e.store.FindByScannedCode(sanitize.String(code))
}
