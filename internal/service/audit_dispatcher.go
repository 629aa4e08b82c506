package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/e-agenda/e-agenda-api/internal/models"
	"github.com/e-agenda/e-agenda-api/pkg/jobs"
)

// AuditDispatcher decouples audit writes from request handling. Entries
// are enqueued onto an in-memory worker queue and persisted in the
// background with retries. Audit recording stays best effort either way.
type AuditDispatcher struct {
	queue  *jobs.Queue
	logger *zap.Logger
}

// NewAuditDispatcher builds a dispatcher writing through the given recorder.
func NewAuditDispatcher(recorder interface {
	Create(ctx context.Context, log *models.AuditLog) error
}, logger *zap.Logger) *AuditDispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	d := &AuditDispatcher{logger: logger}
	d.queue = jobs.NewQueue("audit", func(ctx context.Context, job jobs.Job) error {
		entry, ok := job.Payload.(*models.AuditLog)
		if !ok {
			return fmt.Errorf("unexpected audit payload %T", job.Payload)
		}
		return recorder.Create(ctx, entry)
	}, jobs.QueueConfig{Workers: 2, Logger: logger})
	return d
}

// Start launches the background workers.
func (d *AuditDispatcher) Start(ctx context.Context) {
	d.queue.Start(ctx)
}

// Stop drains the workers.
func (d *AuditDispatcher) Stop() {
	d.queue.Stop()
}

// Create enqueues an audit entry. Queue pressure is logged and dropped,
// never surfaced to the caller.
func (d *AuditDispatcher) Create(_ context.Context, entry *models.AuditLog) error {
	err := d.queue.Enqueue(jobs.Job{ID: uuid.NewString(), Type: "audit_log", Payload: entry})
	if err != nil {
		d.logger.Warn("audit entry dropped", zap.Error(err))
	}
	return nil
}
