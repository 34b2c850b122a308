package mbus

import (
	"context"
	"sync"
)

// MemoryBus is an in-process Bus used by tests that exercise job dispatch
// without a running broker. Queues are plain buffered channels; topology
// and dead-lettering bookkeeping happens in maps instead of broker state.
type MemoryBus struct {
	mu      sync.Mutex
	queues  map[string]chan Delivery
	specs   map[string]QueueSpec
	bound   map[string]string // routingKey -> queue name
	closed  bool
}

// NewMemoryBus returns an empty in-memory bus.
func NewMemoryBus() *MemoryBus {
	return &MemoryBus{
		queues: make(map[string]chan Delivery),
		specs:  make(map[string]QueueSpec),
		bound:  make(map[string]string),
	}
}

func (b *MemoryBus) DeclareTopology(ctx context.Context, exchange string, specs []QueueSpec) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, spec := range specs {
		if _, exists := b.queues[spec.Name]; !exists {
			b.queues[spec.Name] = make(chan Delivery, 1024)
		}
		b.specs[spec.Name] = spec
		b.bound[spec.RoutingKey] = spec.Name
	}
	return nil
}

func (b *MemoryBus) Publish(ctx context.Context, exchange, routingKey string, msg Message) error {
	b.mu.Lock()
	queueName, ok := b.bound[routingKey]
	if !ok {
		b.mu.Unlock()
		return nil
	}
	queue := b.queues[queueName]
	spec := b.specs[queueName]
	b.mu.Unlock()

	if spec.MaxLength > 0 && int64(len(queue)) >= spec.MaxLength {
		return ErrQueueFull
	}

	select {
	case queue <- Delivery{
		Message: msg,
		Ack:     func() error { return nil },
		Nack:    func(requeue bool) error { return nil },
	}:
		return nil
	default:
		return ErrQueueFull
	}
}

func (b *MemoryBus) PublishBatch(ctx context.Context, exchange string, routingKeys []string, msgs []Message) error {
	for i := range msgs {
		if err := b.Publish(ctx, exchange, routingKeys[i], msgs[i]); err != nil {
			return err
		}
	}
	return nil
}

func (b *MemoryBus) Consume(ctx context.Context, queue string) (<-chan Delivery, error) {
	b.mu.Lock()
	ch, ok := b.queues[queue]
	if !ok {
		ch = make(chan Delivery, 1024)
		b.queues[queue] = ch
	}
	b.mu.Unlock()

	out := make(chan Delivery)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case d, ok := <-ch:
				if !ok {
					return
				}
				out <- d
			}
		}
	}()
	return out, nil
}

func (b *MemoryBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	return nil
}

// QueueLen reports the number of pending (unconsumed) messages in a queue,
// for test assertions.
func (b *MemoryBus) QueueLen(queue string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.queues[queue])
}
