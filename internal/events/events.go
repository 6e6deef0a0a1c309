// Package events publishes content lifecycle notifications to NATS so that
// downstream caches and static builders can react to documentation changes.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"git.home.luguber.info/inful/docsite/internal/logfields"
	"git.home.luguber.info/inful/docsite/internal/metrics"
	"git.home.luguber.info/inful/docsite/internal/retry"
)

// Sources of a content change.
const (
	SourceWatch   = "watch"
	SourceRefresh = "refresh"
)

// Publisher sends a payload on a subject. *nats.Conn satisfies it.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// ContentChanged is emitted after the content tree was re-read.
type ContentChanged struct {
	ID        string    `json:"id"`
	Source    string    `json:"source"`
	Paths     []string  `json:"paths,omitempty"`
	Documents int       `json:"documents"`
	Timestamp time.Time `json:"timestamp"`
}

// Emitter publishes ContentChanged events. A nil *Emitter, or one without a
// publisher, drops events silently.
type Emitter struct {
	pub      Publisher
	subject  string
	recorder metrics.Recorder
	logger   *slog.Logger
	retry    retry.Policy
	now      func() time.Time
}

// NewEmitter creates an emitter for subject.
func NewEmitter(pub Publisher, subject string, recorder metrics.Recorder, logger *slog.Logger) *Emitter {
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Emitter{pub: pub, subject: subject, recorder: recorder, logger: logger, now: time.Now}
}

// WithRetry sets the policy applied to failed publishes. Without one each
// event is attempted once.
func (e *Emitter) WithRetry(p retry.Policy) *Emitter {
	e.retry = p
	return e
}

// ContentChanged publishes a change notification. Publish failures are
// counted and returned; they never affect serving.
func (e *Emitter) ContentChanged(ctx context.Context, source string, paths []string, documents int) error {
	if e == nil || e.pub == nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	event := ContentChanged{
		ID:        uuid.NewString(),
		Source:    source,
		Paths:     paths,
		Documents: documents,
		Timestamp: e.now().UTC(),
	}
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	attempts, err := e.retry.Do(ctx, func() error { return e.pub.Publish(e.subject, data) })
	if err != nil {
		e.recorder.IncEventPublish(false)
		e.logger.Warn("Failed to publish content event",
			logfields.Subject(e.subject),
			slog.Int("attempts", attempts),
			logfields.Error(err))
		return fmt.Errorf("failed to publish event: %w", err)
	}
	e.recorder.IncEventPublish(true)
	e.logger.Debug("Published content event",
		logfields.Subject(e.subject),
		slog.String("source", source),
		logfields.Count(documents))
	return nil
}

// Connect dials NATS with reconnects enabled and lifecycle logging.
func Connect(url string, logger *slog.Logger) (*nats.Conn, error) {
	if logger == nil {
		logger = slog.Default()
	}
	conn, err := nats.Connect(url,
		nats.Name("docsite"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("NATS disconnected", logfields.Error(err))
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info("NATS reconnected", slog.String("url", c.ConnectedUrl()))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	logger.Info("NATS client connected", slog.String("url", url))
	return conn, nil
}
