package engine

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hidalgo-logistics/tracking/internal/idgen"
	"github.com/hidalgo-logistics/tracking/internal/model"
	"github.com/hidalgo-logistics/tracking/internal/storage"
)

type memPersister struct {
	data map[string][]byte
}

func (p *memPersister) Load(key string) ([]byte, bool, error) {
	data, ok := p.data[key]
	return data, ok, nil
}

func (p *memPersister) Save(key string, data []byte) error { return nil }

func newFixture(t *testing.T) (*Engine, *storage.Store) {
	t.Helper()

	usersJSON, err := json.Marshal([]model.User{
		{ID: "admin-1", Name: "Admin", Email: "admin", Role: model.RoleAdmin, Active: true, Password: "pw"},
		{ID: "driver-1", Name: "Marta (BCN)", Email: "marta", Role: model.RoleDriver, Active: true, Password: "pw"},
	})
	require.NoError(t, err)

	now := time.Now().UTC()
	shipmentsJSON, err := json.Marshal([]model.Shipment{
		{ID: "S1", ExternalReference: "TK-1", Client: "Acme", Destination: "Lleida", Status: model.StatusPending, CreatedAt: now, UpdatedAt: now},
		{ID: "S2", ExternalReference: "TK-2", Client: "Acme", Destination: "Girona", Status: model.StatusDelivered, CreatedAt: now, UpdatedAt: now},
		{ID: "S3", ExternalReference: "TK-3", Client: "Acme", Destination: "Tarragona", Status: model.StatusPending, CreatedAt: now, UpdatedAt: now},
	})
	require.NoError(t, err)

	p := &memPersister{data: map[string][]byte{
		storage.KeyUsers:     usersJSON,
		storage.KeyShipments: shipmentsJSON,
	}}

	store := storage.NewStore(idgen.NewSequential("ev"), zap.NewNop())
	require.NoError(t, store.Restore(p))

	users := storage.NewUserDirectory(zap.NewNop())
	require.NoError(t, users.Restore(p))

	return New(store, users, zap.NewNop()), store
}

func TestEngine_ApplyStatus(t *testing.T) {
	t.Run("records event with payload", func(t *testing.T) {
		eng, store := newFixture(t)
		operator := &model.User{ID: "ops-1", Name: "Nuria"}

		got, err := eng.ApplyStatus("S1", model.StatusInTransit, operator, "left the <hub>", nil)
		require.NoError(t, err)
		assert.Equal(t, model.StatusInTransit, got.Status)
		assert.Equal(t, "left the hub", got.Notes)

		events := store.EventsFor("S1")
		require.Len(t, events, 1)
		assert.Equal(t, "STATUS_CHANGE_IN_TRANSIT", events[0].EventType)
		assert.Equal(t, "ops-1", events[0].UserID)
		assert.Equal(t, "Nuria", events[0].UserName)

		var payload struct {
			Note       string `json:"note"`
			PrevStatus string `json:"prev_status"`
			HasProof   bool   `json:"has_proof"`
		}
		require.NoError(t, json.Unmarshal([]byte(events[0].PayloadJSON), &payload))
		assert.Equal(t, "left the hub", payload.Note)
		assert.Equal(t, "PENDING", payload.PrevStatus)
		assert.False(t, payload.HasProof)
	})

	t.Run("nil actor is attributed to system", func(t *testing.T) {
		eng, store := newFixture(t)

		_, err := eng.ApplyStatus("S1", model.StatusAssigned, nil, "", nil)
		require.NoError(t, err)

		events := store.EventsFor("S1")
		require.Len(t, events, 1)
		assert.Equal(t, "system", events[0].UserID)
		assert.Equal(t, "System", events[0].UserName)
	})

	t.Run("attaches proof of delivery", func(t *testing.T) {
		eng, store := newFixture(t)
		pod := &model.ProofOfDelivery{RecipientName: "Jordi", CapturedAt: time.Now().UTC()}

		got, err := eng.ApplyStatus("S1", model.StatusDelivered, nil, "", pod)
		require.NoError(t, err)
		require.NotNil(t, got.POD)
		assert.Equal(t, "Jordi", got.POD.RecipientName)

		events := store.EventsFor("S1")
		require.Len(t, events, 1)
		assert.Contains(t, events[0].PayloadJSON, `"has_proof":true`)
	})

	t.Run("delivered shipment ignores non-admin change", func(t *testing.T) {
		eng, store := newFixture(t)
		driver := &model.User{ID: "driver-1", Role: model.RoleDriver}

		got, err := eng.ApplyStatus("S2", model.StatusReturned, driver, "", nil)
		require.NoError(t, err)
		assert.Equal(t, model.StatusDelivered, got.Status, "shipment stays delivered")
		assert.Empty(t, store.EventsFor("S2"), "no-op appends no event")
	})

	t.Run("admin can change a delivered shipment", func(t *testing.T) {
		eng, store := newFixture(t)
		admin := &model.User{ID: "admin-1", Role: model.RoleAdmin}

		got, err := eng.ApplyStatus("S2", model.StatusReturned, admin, "", nil)
		require.NoError(t, err)
		assert.Equal(t, model.StatusReturned, got.Status)
		require.Len(t, store.EventsFor("S2"), 1)
	})

	t.Run("empty note keeps existing notes", func(t *testing.T) {
		eng, _ := newFixture(t)

		got, err := eng.ApplyStatus("S1", model.StatusInTransit, nil, "first note", nil)
		require.NoError(t, err)
		assert.Equal(t, "first note", got.Notes)

		got, err = eng.ApplyStatus("S1", model.StatusDelivered, &model.User{ID: "admin-1", Role: model.RoleAdmin}, "", nil)
		require.NoError(t, err)
		assert.Equal(t, "first note", got.Notes)
	})

	t.Run("unknown shipment", func(t *testing.T) {
		eng, _ := newFixture(t)
		_, err := eng.ApplyStatus("missing", model.StatusInTransit, nil, "", nil)
		assert.ErrorIs(t, err, storage.ErrShipmentNotFound)
	})
}

func TestEngine_AssignDriver(t *testing.T) {
	t.Run("assigns and sets ASSIGNED without event", func(t *testing.T) {
		eng, store := newFixture(t)

		got, err := eng.AssignDriver("S1", "driver-1")
		require.NoError(t, err)
		assert.Equal(t, model.StatusAssigned, got.Status)
		assert.Equal(t, "driver-1", got.AssignedDriverID)
		assert.Equal(t, "Marta (BCN)", got.AssignedDriverName)
		assert.Empty(t, store.EventsFor("S1"), "assignment is not a tracking event")
	})

	t.Run("unknown driver is a silent no-op", func(t *testing.T) {
		eng, _ := newFixture(t)

		got, err := eng.AssignDriver("S1", "ghost")
		require.NoError(t, err)
		assert.Equal(t, model.StatusPending, got.Status)
		assert.Empty(t, got.AssignedDriverID)
	})

	t.Run("unknown shipment", func(t *testing.T) {
		eng, _ := newFixture(t)
		_, err := eng.AssignDriver("missing", "driver-1")
		assert.ErrorIs(t, err, storage.ErrShipmentNotFound)
	})
}

func TestEngine_AssignDriverBatch(t *testing.T) {
	t.Run("assigns every listed shipment", func(t *testing.T) {
		eng, store := newFixture(t)

		assigned := eng.AssignDriverBatch([]string{"S1", "S3"}, "driver-1")
		assert.Equal(t, 2, assigned)

		for _, id := range []string{"S1", "S3"} {
			got, err := store.Get(id)
			require.NoError(t, err)
			assert.Equal(t, model.StatusAssigned, got.Status)
			assert.Equal(t, "driver-1", got.AssignedDriverID)
		}
		assert.Empty(t, store.EventsFor("S1"))
	})

	t.Run("missing shipments are skipped, the rest proceed", func(t *testing.T) {
		eng, store := newFixture(t)

		assigned := eng.AssignDriverBatch([]string{"S1", "missing", "S3"}, "driver-1")
		assert.Equal(t, 2, assigned)

		got, err := store.Get("S3")
		require.NoError(t, err)
		assert.Equal(t, model.StatusAssigned, got.Status)
	})

	t.Run("unknown driver assigns nothing", func(t *testing.T) {
		eng, store := newFixture(t)

		assigned := eng.AssignDriverBatch([]string{"S1", "S3"}, "ghost")
		assert.Equal(t, 0, assigned)

		got, err := store.Get("S1")
		require.NoError(t, err)
		assert.Equal(t, model.StatusPending, got.Status)
	})
}

func TestEngine_FindByScannedCode(t *testing.T) {
	eng, _ := newFixture(t)

	t.Run("sanitizes the scanned code", func(t *testing.T) {
		got, err := eng.FindByScannedCode("  <TK-1>  ")
		require.NoError(t, err)
		assert.Equal(t, "S1", got.ID)
	})

	t.Run("unknown code", func(t *testing.T) {
		_, err := eng.FindByScannedCode("nope")
		assert.ErrorIs(t, err, storage.ErrShipmentNotFound)
	})
}
