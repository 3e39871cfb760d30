// Package audit ships webhook log entries to the audit trail topic in
// batches, off the request path.
package audit

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hidalgo-logistics/tracking/internal/kafka"
	"github.com/hidalgo-logistics/tracking/internal/model"
)

type Publisher struct {
	workerCount int
	batchSize   int
	timeout     time.Duration

	producer kafka.Producer
	logger   *zap.Logger

	inputChan  chan model.WebhookLog
	batchChan  chan []model.WebhookLog
	shutdownCh chan struct{}
	once       sync.Once
	wg         sync.WaitGroup
}

func NewPublisher(producer kafka.Producer, workerCount, batchSize int, timeout time.Duration, logger *zap.Logger) *Publisher {
	return &Publisher{
		workerCount: workerCount,
		batchSize:   batchSize,
		timeout:     timeout,
		producer:    producer,
		logger:      logger,
		inputChan:   make(chan model.WebhookLog, workerCount*batchSize*2),
		batchChan:   make(chan []model.WebhookLog, workerCount*2),
		shutdownCh:  make(chan struct{}),
	}
}

func (p *Publisher) Start(ctx context.Context) {
	p.logger.Info("Starting audit publisher",
		zap.Int("workers", p.workerCount),
		zap.Int("batch_size", p.batchSize))

	p.wg.Add(1)
	go p.runAggregator(ctx)

	for i := 0; i < p.workerCount; i++ {
		p.wg.Add(1)
		go p.runWorker(i)
	}
}

// Record accepts one entry without blocking the request path. When the
// pipeline is saturated or shut down the entry is logged directly instead
// of being dropped.
func (p *Publisher) Record(entry model.WebhookLog) {
	select {
	case p.inputChan <- entry:
	default:
		p.emergencyLog(entry)
	}
}

// Shutdown flushes pending batches, bounded by ctx.
func (p *Publisher) Shutdown(ctx context.Context) {
	p.once.Do(func() {
		p.logger.Info("Shutting down audit publisher")
		close(p.shutdownCh)

		done := make(chan struct{})
		go func() {
			p.wg.Wait()
			close(done)
		}()

		select {
		case <-done:
			p.logger.Info("Audit publisher drained")
		case <-ctx.Done():
			p.logger.Warn("Audit publisher shutdown interrupted")
		}
	})
}

func (p *Publisher) runAggregator(ctx context.Context) {
	defer p.wg.Done()

	var (
		batch    []model.WebhookLog
		timer    *time.Timer
		timeoutC <-chan time.Time
	)

	defer func() {
		if timer != nil {
			timer.Stop()
		}
		// Flush whatever arrived before shutdown.
		for {
			select {
			case entry := <-p.inputChan:
				batch = append(batch, entry)
			default:
				if len(batch) > 0 {
					p.dispatchBatch(batch)
				}
				close(p.batchChan)
				return
			}
		}
	}()

	for {
		select {
		case entry := <-p.inputChan:
			batch = append(batch, entry)
			if len(batch) >= p.batchSize {
				p.dispatchBatch(batch)
				batch = nil
				if timer != nil {
					timer.Stop()
				}
				timeoutC = nil
			} else if len(batch) == 1 {
				timer = time.NewTimer(p.timeout)
				timeoutC = timer.C
			}

		case <-timeoutC:
			p.dispatchBatch(batch)
			batch = nil
			timeoutC = nil

		case <-ctx.Done():
			return

		case <-p.shutdownCh:
			return
		}
	}
}

func (p *Publisher) dispatchBatch(batch []model.WebhookLog) {
	batchCopy := make([]model.WebhookLog, len(batch))
	copy(batchCopy, batch)

	select {
	case p.batchChan <- batchCopy:
	default:
		// Workers are behind; publish inline rather than queueing unbounded.
		p.publishBatch(batchCopy)
	}
}

func (p *Publisher) runWorker(id int) {
	defer p.wg.Done()

	for batch := range p.batchChan {
		p.publishBatch(batch)
	}
	p.logger.Debug("Audit worker exiting", zap.Int("worker", id))
}

func (p *Publisher) publishBatch(batch []model.WebhookLog) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	for _, entry := range batch {
		value, err := json.Marshal(entry)
		if err != nil {
			p.logger.Error("Failed to marshal audit entry", zap.Error(err))
			continue
		}
		key := entry.ID
		if key == "" {
			key = uuid.NewString()
		}
		if err := p.producer.SendMessage(ctx, []byte(key), value); err != nil {
			p.logger.Error("Failed to publish audit entry",
				zap.String("entry_id", key),
				zap.Error(err))
		}
	}
}

func (p *Publisher) emergencyLog(entry model.WebhookLog) {
	p.logger.Warn("Audit pipeline saturated, logging entry directly",
		zap.String("endpoint", entry.Endpoint),
		zap.Int("status", entry.Status),
		zap.String("request_body", entry.RequestBody))
}
