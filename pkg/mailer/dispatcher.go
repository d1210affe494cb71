package mailer

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/faculty-portal-api/pkg/jobs"
)

const jobTypeMail = "mail"

// Dispatcher sends mail asynchronously through a job queue. Delivery failures are logged, never returned to callers.
type Dispatcher struct {
	queue  *jobs.Queue
	logger *zap.Logger
}

// NewDispatcher wires a mailer into a queue.
func NewDispatcher(m Mailer, cfg jobs.QueueConfig) *Dispatcher {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	handler := func(ctx context.Context, job jobs.Job) error {
		msg, ok := job.Payload.(Message)
		if !ok {
			return fmt.Errorf("unexpected payload %T", job.Payload)
		}
		return m.Send(ctx, msg)
	}
	return &Dispatcher{queue: jobs.NewQueue("mail", handler, cfg), logger: logger}
}

// Start launches the workers.
func (d *Dispatcher) Start(ctx context.Context) { d.queue.Start(ctx) }

// Stop drains and stops the workers.
func (d *Dispatcher) Stop() { d.queue.Stop() }

// Stats exposes queue counters.
func (d *Dispatcher) Stats() jobs.Stats { return d.queue.Stats() }

// Dispatch enqueues a message.
func (d *Dispatcher) Dispatch(msg Message) {
	if d == nil {
		return
	}
	if err := d.queue.Enqueue(jobs.Job{ID: uuid.NewString(), Type: jobTypeMail, Payload: msg}); err != nil {
		d.logger.Warn("mail not queued", zap.String("to", msg.To.Address), zap.String("subject", msg.Subject), zap.Error(err))
	}
}
