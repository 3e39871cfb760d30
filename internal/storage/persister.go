package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
)

// Persister is the external persistence collaborator. It stores opaque bytes
// per collection key and reports absence without error. Implementations are
// not required to survive crashes mid-write or multi-process access.
type Persister interface {
	Load(key string) ([]byte, bool, error)
	Save(key string, data []byte) error
}

// Collection keys used by the in-memory components.
const (
	KeyShipments   = "shipments"
	KeyUsers       = "users"
	KeyWebhookLogs = "webhook_logs"
)

// FilePersister keeps one JSON file per collection key under a directory.
type FilePersister struct {
	dir string
	mu  sync.Mutex
}

func NewFilePersister(dir string) (*FilePersister, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}
	return &FilePersister{dir: dir}, nil
}

func (p *FilePersister) Load(key string) ([]byte, bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	data, err := os.ReadFile(p.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return data, true, nil
}

func (p *FilePersister) Save(key string, data []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	return os.WriteFile(p.path(key), data, 0o644)
}

func (p *FilePersister) path(key string) string {
	return filepath.Join(p.dir, key+".json")
}

// snapshotWriter keeps asynchronous snapshot writes for one collection
// monotonic: snapshots carry the sequence number of the mutation that
// produced them, and a write that arrives after a newer snapshot has been
// persisted is dropped instead of clobbering it.
type snapshotWriter struct {
	mu      sync.Mutex
	written uint64
	key     string
	logger  *zap.Logger
}

func (w *snapshotWriter) write(p Persister, seq uint64, v interface{}) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		w.logger.Error("Failed to marshal snapshot",
			zap.String("key", w.key),
			zap.Error(err))
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if seq <= w.written {
		return
	}
	if err := p.Save(w.key, data); err != nil {
		w.logger.Error("Failed to persist snapshot",
			zap.String("key", w.key),
			zap.Error(err))
		return
	}
	w.written = seq
}
