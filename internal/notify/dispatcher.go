/*
Package notify delivers outgoing mail off the request path.

A Dispatcher queues messages on a bounded worker pool and hands them to a
Sender. Notify never blocks: when the queue is full the message is dropped
and a warning is logged. Delivery failures are logged and not retried.
*/
package notify

import (
	"context"
	"log/slog"
	"time"
)

const sendTimeout = 10 * time.Second

type Dispatcher struct {
	from   string
	sender Sender
	pool   *WorkerPool
	logger *slog.Logger
}

// NewDispatcher starts workers workers delivering through sender.
func NewDispatcher(ctx context.Context, sender Sender, from string, workers, queueSize int, logger *slog.Logger) *Dispatcher {
	pool := NewWorkerPool(ctx, workers, queueSize, logger)
	pool.Start()
	return &Dispatcher{
		from:   from,
		sender: sender,
		pool:   pool,
		logger: logger,
	}
}

// Notify queues a message for delivery and returns immediately.
func (d *Dispatcher) Notify(to, subject, body string) {
	msg := Message{From: d.from, To: to, Subject: subject, Body: body}

	queued := d.pool.TrySubmit(func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, sendTimeout)
		defer cancel()

		if err := d.sender.Send(ctx, msg); err != nil {
			d.logger.Warn("mail delivery failed", "to", to, "subject", subject, "error", err)
			return nil
		}
		d.logger.Debug("mail delivered", "to", to, "subject", subject)
		return nil
	})
	if !queued {
		d.logger.Warn("mail queue full, message dropped", "to", to, "subject", subject)
	}
}

// Close delivers what is already queued and stops the workers.
func (d *Dispatcher) Close() {
	d.pool.Wait()
}
