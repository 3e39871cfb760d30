package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hidalgo-logistics/tracking/internal/model"
)

type captureProducer struct {
	mu       sync.Mutex
	messages []model.WebhookLog
	keys     []string
}

func (p *captureProducer) SendMessage(ctx context.Context, key, value []byte) error {
	var entry model.WebhookLog
	if err := json.Unmarshal(value, &entry); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = append(p.messages, entry)
	p.keys = append(p.keys, string(key))
	return nil
}

func (p *captureProducer) Close() error { return nil }

func (p *captureProducer) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.messages)
}

func (p *captureProducer) all() []model.WebhookLog {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]model.WebhookLog, len(p.messages))
	copy(out, p.messages)
	return out
}

func TestPublisher_BatchBySize(t *testing.T) {
	producer := &captureProducer{}
	p := NewPublisher(producer, 2, 3, time.Hour, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p.Start(ctx)

	for i := 0; i < 3; i++ {
		p.Record(model.WebhookLog{ID: fmt.Sprintf("L%d", i), Status: 200})
	}

	// The timeout is an hour, so only the size trigger can flush.
	require.Eventually(t, func() bool {
		return producer.count() == 3
	}, 2*time.Second, 10*time.Millisecond)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), time.Second)
	defer shutdownCancel()
	p.Shutdown(shutdownCtx)
}

func TestPublisher_BatchByTimeout(t *testing.T) {
	producer := &captureProducer{}
	p := NewPublisher(producer, 1, 100, 50*time.Millisecond, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p.Start(ctx)

	p.Record(model.WebhookLog{ID: "L1", Status: 201})

	require.Eventually(t, func() bool {
		return producer.count() == 1
	}, 2*time.Second, 10*time.Millisecond)

	got := producer.all()
	assert.Equal(t, "L1", got[0].ID)
	assert.Equal(t, 201, got[0].Status)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), time.Second)
	defer shutdownCancel()
	p.Shutdown(shutdownCtx)
}

func TestPublisher_SizeFlushThenTimeoutFlush(t *testing.T) {
	producer := &captureProducer{}
	p := NewPublisher(producer, 1, 2, 50*time.Millisecond, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p.Start(ctx)

	// Fill one batch so the size trigger flushes and retires its timer, then
	// leave a single entry to ride the timeout trigger.
	p.Record(model.WebhookLog{ID: "L0", Status: 200})
	p.Record(model.WebhookLog{ID: "L1", Status: 200})
	p.Record(model.WebhookLog{ID: "L2", Status: 200})

	require.Eventually(t, func() bool {
		return producer.count() == 3
	}, 2*time.Second, 10*time.Millisecond)

	// No duplicates from a stale timer firing after the size flush.
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, 3, producer.count())

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), time.Second)
	defer shutdownCancel()
	p.Shutdown(shutdownCtx)
}

func TestPublisher_ShutdownDrains(t *testing.T) {
	producer := &captureProducer{}
	p := NewPublisher(producer, 2, 100, time.Hour, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p.Start(ctx)

	for i := 0; i < 5; i++ {
		p.Record(model.WebhookLog{ID: fmt.Sprintf("L%d", i), Status: 200})
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer shutdownCancel()
	p.Shutdown(shutdownCtx)

	assert.Equal(t, 5, producer.count(), "pending entries flush on shutdown")
}

func TestPublisher_ShutdownIsIdempotent(t *testing.T) {
	producer := &captureProducer{}
	p := NewPublisher(producer, 1, 10, time.Hour, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p.Start(ctx)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), time.Second)
	defer shutdownCancel()
	p.Shutdown(shutdownCtx)
	p.Shutdown(shutdownCtx)
}

func TestPublisher_RecordAfterSaturationDoesNotBlock(t *testing.T) {
	producer := &captureProducer{}
	// Not started: nothing consumes inputChan, so it fills up.
	p := NewPublisher(producer, 1, 1, time.Hour, zap.NewNop())

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 100; i++ {
			p.Record(model.WebhookLog{ID: fmt.Sprintf("L%d", i)})
		}
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Record blocked on a saturated pipeline")
	}
}
