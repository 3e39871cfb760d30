package storage

import (
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/hidalgo-logistics/tracking/internal/idgen"
	"github.com/hidalgo-logistics/tracking/internal/metrics"
	"github.com/hidalgo-logistics/tracking/internal/model"
)

// AuditSink receives every appended entry, typically to ship it to the
// audit trail topic. Implementations must not block.
type AuditSink interface {
	Record(entry model.WebhookLog)
}

// AuditLog is the append-only record of public API calls, ordered by call
// completion.
type AuditLog struct {
	mu        sync.Mutex
	entries   []model.WebhookLog
	ids       idgen.Generator
	sink      AuditSink
	persister Persister
	saveSeq   uint64
	snapshots snapshotWriter
	logger    *zap.Logger
}

func NewAuditLog(ids idgen.Generator, logger *zap.Logger) *AuditLog {
	return &AuditLog{
		ids:       ids,
		snapshots: snapshotWriter{key: KeyWebhookLogs, logger: logger},
		logger:    logger,
	}
}

// SetSink attaches a downstream consumer for appended entries. Must be
// called before traffic starts.
func (a *AuditLog) SetSink(sink AuditSink) {
	a.sink = sink
}

func (a *AuditLog) Restore(p Persister) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.persister = p

	data, found, err := p.Load(KeyWebhookLogs)
	if err != nil {
		return err
	}

	if found {
		return json.Unmarshal(data, &a.entries)
	}
	a.entries = SeedWebhookLogs()
	a.logger.Info("No persisted audit logs found, seeding demo entries",
		zap.Int("count", len(a.entries)))
	return nil
}

// Append records one API call. The entry id and timestamp are stamped here
// so completion order and log order always agree.
func (a *AuditLog) Append(entry model.WebhookLog) model.WebhookLog {
	a.mu.Lock()

	if entry.ID == "" {
		entry.ID = a.ids.NewID()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	a.entries = append(a.entries, entry)
	a.saveLocked()

	a.mu.Unlock()

	metrics.AuditEntriesTotal.Inc()
	if a.sink != nil {
		a.sink.Record(entry)
	}
	return entry
}

// List returns entries in completion order.
func (a *AuditLog) List() []model.WebhookLog {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make([]model.WebhookLog, len(a.entries))
	copy(out, a.entries)
	return out
}

// NewestFirstLogs is the display-order view over List output.
func NewestFirstLogs(entries []model.WebhookLog) []model.WebhookLog {
	out := make([]model.WebhookLog, len(entries))
	for i, e := range entries {
		out[len(entries)-1-i] = e
	}
	return out
}

func (a *AuditLog) saveLocked() {
	if a.persister == nil {
		return
	}

	a.saveSeq++
	seq := a.saveSeq

	snapshot := make([]model.WebhookLog, len(a.entries))
	copy(snapshot, a.entries)

	go a.snapshots.write(a.persister, seq, snapshot)
}
