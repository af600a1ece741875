package consumer

import (
	"context"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/clinicboard/clinicboard/libs/kafkax"
)

type Handler func(ctx context.Context, msg kafka.Message) error

// Inbox records processed event IDs.
type Inbox interface {
	Record(ctx context.Context, eventID, eventType string) (bool, error)
}

// Consumer reads appointment events from a topic and feeds them to the
// handler. Delivery is at-least-once: the inbox entry is written only
// after the handler succeeds, so a transient failure leaves the event
// eligible for redelivery, and replays are absorbed by the ledger's
// event_id dedupe inside the handler.
type Consumer struct {
	reader  *kafka.Reader
	logger  *slog.Logger
	inbox   Inbox
	handler Handler
}

type Config struct {
	Brokers string
	GroupID string
	Topic   string
}

func New(logger *slog.Logger, inboxRepo Inbox, cfg Config, handler Handler) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  kafkax.SplitBrokers(cfg.Brokers),
		GroupID:  cfg.GroupID,
		Topic:    cfg.Topic,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	return &Consumer{
		reader:  reader,
		logger:  logger,
		inbox:   inboxRepo,
		handler: handler,
	}
}

func (c *Consumer) Run(ctx context.Context) {
	defer c.reader.Close()

	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.logger.Error("kafka read error", "err", err)
			time.Sleep(1 * time.Second)
			continue
		}
		if err := c.process(ctx, msg); err != nil {
			c.logger.Error("handler error", "err", err, "topic", msg.Topic)
		}
	}
}

// process applies one message and then records its event ID. Recording
// only after a successful apply means a handler failure never loses the
// event; an inbox write failure merely allows a harmless replay.
func (c *Consumer) process(ctx context.Context, msg kafka.Message) error {
	ctxMsg := kafkax.ExtractTraceContext(ctx, msg)
	ctxSpan, span := otel.Tracer("kafka").Start(ctxMsg, "kafka.consume",
		trace.WithAttributes(
			attribute.String("messaging.system", "kafka"),
			attribute.String("messaging.destination", msg.Topic),
		),
	)
	defer span.End()

	meta := kafkax.ExtractEventMeta(msg)

	if err := c.handler(ctxSpan, msg); err != nil {
		span.RecordError(err)
		return err
	}

	ok, err := c.inbox.Record(ctxSpan, meta.EventID, meta.EventType)
	if err != nil {
		c.logger.Warn("inbox record failed", "err", err, "event_id", meta.EventID)
		span.RecordError(err)
		return nil
	}
	if !ok {
		c.logger.Info("duplicate event reapplied", "event_id", meta.EventID, "event_type", meta.EventType)
	}
	return nil
}
