package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestFilePersister(t *testing.T) {
	p, err := NewFilePersister(t.TempDir())
	require.NoError(t, err)

	t.Run("absent key reports no data without error", func(t *testing.T) {
		data, found, err := p.Load("nothing")
		require.NoError(t, err)
		assert.False(t, found)
		assert.Nil(t, data)
	})

	t.Run("save then load round-trips", func(t *testing.T) {
		payload := []byte(`[{"id":"S1"}]`)
		require.NoError(t, p.Save(KeyShipments, payload))

		data, found, err := p.Load(KeyShipments)
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, payload, data)
	})

	t.Run("keys are independent", func(t *testing.T) {
		require.NoError(t, p.Save(KeyUsers, []byte("[]")))

		data, found, err := p.Load(KeyShipments)
		require.NoError(t, err)
		assert.True(t, found)
		assert.NotEqual(t, []byte("[]"), data)
	})
}

func TestSnapshotWriter_Monotonic(t *testing.T) {
	t.Run("in-order writes land in order", func(t *testing.T) {
		p := newMemPersister()
		w := &snapshotWriter{key: KeyShipments, logger: zap.NewNop()}

		w.write(p, 1, []string{"first"})
		w.write(p, 2, []string{"second"})

		data, ok := p.get(KeyShipments)
		require.True(t, ok)
		assert.Contains(t, string(data), "second")
		assert.NotContains(t, string(data), "first")
	})

	t.Run("a late older write never clobbers a newer snapshot", func(t *testing.T) {
		p := newMemPersister()
		w := &snapshotWriter{key: KeyShipments, logger: zap.NewNop()}

		w.write(p, 2, []string{"newer"})
		w.write(p, 1, []string{"stale"})

		data, ok := p.get(KeyShipments)
		require.True(t, ok)
		assert.Contains(t, string(data), "newer")
		assert.NotContains(t, string(data), "stale")
	})
}

func TestNewFilePersister_CreatesDir(t *testing.T) {
	dir := t.TempDir() + "/nested/data"
	p, err := NewFilePersister(dir)
	require.NoError(t, err)
	require.NoError(t, p.Save(KeyWebhookLogs, []byte("[]")))
}
