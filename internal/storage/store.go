package storage

import (
	"encoding/json"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/hidalgo-logistics/tracking/internal/idgen"
	"github.com/hidalgo-logistics/tracking/internal/model"
)

var (
	ErrShipmentExists   = errors.New("shipment already exists")
	ErrShipmentNotFound = errors.New("shipment not found")
)

// Store owns every shipment and the tracking-event log. Both live under one
// mutex so a status mutation and its event append are observably atomic:
// no reader sees the new status without the matching event.
type Store struct {
	mu        sync.RWMutex
	shipments map[string]*model.Shipment
	order     []string
	events    []model.TrackingEvent
	ids       idgen.Generator
	persister Persister
	saveSeq   uint64
	snapshots snapshotWriter
	logger    *zap.Logger
}

func NewStore(ids idgen.Generator, logger *zap.Logger) *Store {
	return &Store{
		shipments: make(map[string]*model.Shipment),
		ids:       ids,
		snapshots: snapshotWriter{key: KeyShipments, logger: logger},
		logger:    logger,
	}
}

// Restore loads the shipment collection from the persister, seeding demo
// data when the key is absent. Tracking events are session-scoped and are
// not persisted.
func (s *Store) Restore(p Persister) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.persister = p

	data, found, err := p.Load(KeyShipments)
	if err != nil {
		return err
	}

	var shipments []model.Shipment
	if found {
		if err := json.Unmarshal(data, &shipments); err != nil {
			return err
		}
	} else {
		shipments = SeedShipments()
		s.logger.Info("No persisted shipments found, seeding demo data",
			zap.Int("count", len(shipments)))
	}

	for i := range shipments {
		sh := shipments[i]
		s.shipments[sh.ID] = &sh
		s.order = append(s.order, sh.ID)
	}
	return nil
}

// NewID exposes the store's id generator for entities created elsewhere in
// the pipeline (shipments built by the gateway, events built by the engine).
func (s *Store) NewID() string {
	return s.ids.NewID()
}

func (s *Store) Create(shipment model.Shipment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.shipments[shipment.ID]; ok {
		return ErrShipmentExists
	}

	sh := shipment
	s.shipments[sh.ID] = &sh
	s.order = append(s.order, sh.ID)
	s.saveLocked()
	return nil
}

func (s *Store) Get(id string) (*model.Shipment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sh, ok := s.shipments[id]
	if !ok {
		return nil, ErrShipmentNotFound
	}
	cp := *sh
	return &cp, nil
}

// FindByScannedCode resolves a scanned barcode against the external partner
// reference first, then the internal id.
func (s *Store) FindByScannedCode(code string) (*model.Shipment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, id := range s.order {
		if s.shipments[id].ExternalReference == code {
			cp := *s.shipments[id]
			return &cp, nil
		}
	}
	if sh, ok := s.shipments[code]; ok {
		cp := *sh
		return &cp, nil
	}
	return nil, ErrShipmentNotFound
}

type ListFilter struct {
	Status   model.Status
	DriverID string
}

// List returns shipments in creation order. Zero-valued filter fields match
// everything.
func (s *Store) List(filter ListFilter) []model.Shipment {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Shipment, 0, len(s.order))
	for _, id := range s.order {
		sh := s.shipments[id]
		if filter.Status != "" && sh.Status != filter.Status {
			continue
		}
		if filter.DriverID != "" && sh.AssignedDriverID != filter.DriverID {
			continue
		}
		out = append(out, *sh)
	}
	return out
}

// Mutation inspects a copy of the current shipment and either returns the
// mutated copy (with an optional tracking event to append) or Applied=false
// for a silent no-op.
type Mutation func(current model.Shipment) (updated model.Shipment, event *model.TrackingEvent, applied bool)

// Update runs fn against the shipment under the store lock and commits the
// result together with the returned event. Event ids and per-shipment
// ordering are assigned here, so event order always matches the order
// mutations were applied in, regardless of timestamp ties.
func (s *Store) Update(id string, fn Mutation) (*model.Shipment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sh, ok := s.shipments[id]
	if !ok {
		return nil, ErrShipmentNotFound
	}

	updated, event, applied := fn(*sh)
	if !applied {
		cp := *sh
		return &cp, nil
	}

	*sh = updated
	if event != nil {
		ev := *event
		if ev.ID == "" {
			ev.ID = s.ids.NewID()
		}
		ev.ShipmentID = id
		s.events = append(s.events, ev)
	}
	s.saveLocked()

	cp := *sh
	return &cp, nil
}

// EventsFor returns the shipment's tracking events in creation order, the
// canonical ordering contract.
func (s *Store) EventsFor(shipmentID string) []model.TrackingEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.TrackingEvent
	for _, ev := range s.events {
		if ev.ShipmentID == shipmentID {
			out = append(out, ev)
		}
	}
	return out
}

// NewestFirstEvents is the presentation-boundary view: a reversed copy.
func NewestFirstEvents(events []model.TrackingEvent) []model.TrackingEvent {
	out := make([]model.TrackingEvent, len(events))
	for i, ev := range events {
		out[len(events)-1-i] = ev
	}
	return out
}

// saveLocked snapshots the shipment table through the persister without
// blocking the caller. Writes go through the sequence-checked snapshot
// writer, so a slow older write never overwrites a newer one. A failed write
// is logged and the in-memory state stays authoritative. Caller must hold
// s.mu.
func (s *Store) saveLocked() {
	if s.persister == nil {
		return
	}

	s.saveSeq++
	seq := s.saveSeq

	snapshot := make([]model.Shipment, 0, len(s.order))
	for _, id := range s.order {
		snapshot = append(snapshot, *s.shipments[id])
	}

	go s.snapshots.write(s.persister, seq, snapshot)
}
