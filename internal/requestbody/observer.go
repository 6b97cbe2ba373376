package requestbody

import (
	"context"
	"log/slog"

	"bodylab/internal/infrastructure"
	"bodylab/pkg/contracts/domain"
)

// Observer is told about the raw body and the decoded record of a request.
// Implementations must be safe for concurrent use.
type Observer interface {
	ObserveBody(ctx context.Context, body []byte)
	ObserveRecord(ctx context.Context, rec domain.HelloData)
}

// NopObserver discards everything
type NopObserver struct{}

// ObserveBody implements Observer
func (NopObserver) ObserveBody(context.Context, []byte) {}

// ObserveRecord implements Observer
func (NopObserver) ObserveRecord(context.Context, domain.HelloData) {}

// Observers fans out to every observer in order
type Observers []Observer

// ObserveBody implements Observer
func (o Observers) ObserveBody(ctx context.Context, body []byte) {
	for _, obs := range o {
		obs.ObserveBody(ctx, body)
	}
}

// ObserveRecord implements Observer
func (o Observers) ObserveRecord(ctx context.Context, rec domain.HelloData) {
	for _, obs := range o {
		obs.ObserveRecord(ctx, rec)
	}
}

// LogObserver writes the body and record to a slog logger
type LogObserver struct {
	logger    *slog.Logger
	logBody   bool
	logRecord bool
}

// NewLogObserver creates a log observer; either output can be switched off
func NewLogObserver(logger *slog.Logger, logBody, logRecord bool) *LogObserver {
	return &LogObserver{
		logger:    infrastructure.WithComponent(logger, "request_body"),
		logBody:   logBody,
		logRecord: logRecord,
	}
}

// ObserveBody implements Observer
func (o *LogObserver) ObserveBody(ctx context.Context, body []byte) {
	if !o.logBody {
		return
	}
	o.logger.InfoContext(ctx, "request body read",
		slog.String("messageBody", string(body)))
}

// ObserveRecord implements Observer
func (o *LogObserver) ObserveRecord(ctx context.Context, rec domain.HelloData) {
	if !o.logRecord {
		return
	}
	o.logger.InfoContext(ctx, "request body decoded",
		slog.String("username", rec.Username),
		slog.Int("age", rec.Age))
}
