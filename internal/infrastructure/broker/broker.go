// Package broker is an in-process, topic-routed message exchange. It keeps
// the broker contract the services are written against: routing keys bound
// to named queues, competing consumers drawing each message exactly once,
// nack-with-redelivery on handler failure, and a per-queue dead-letter
// buffer once redelivery is exhausted.
package broker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Message struct {
	ID         string
	RoutingKey string
	Body       []byte
	// Attempt is 1 on first delivery and increments on each redelivery.
	Attempt int
}

// Handler processes one message. A nil return acks the message; an error
// nacks it, which requeues until the retry policy is exhausted and the
// message is dead-lettered.
type Handler func(ctx context.Context, m Message) error

type RetryPolicy struct {
	MaxAttempts int
	Backoff     time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, Backoff: 200 * time.Millisecond}
}

type queue struct {
	name string
	msgs chan Message

	mu   sync.Mutex
	dead []Message
}

func (q *queue) deadLetter(m Message) {
	q.mu.Lock()
	q.dead = append(q.dead, m)
	q.mu.Unlock()
}

type Exchange struct {
	name  string
	retry RetryPolicy
	log   *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu       sync.RWMutex
	closed   bool
	queues   map[string]*queue
	bindings map[string][]*queue
}

const queueDepth = 1024

func NewExchange(parent context.Context, name string, retry RetryPolicy, log *zap.Logger) *Exchange {
	ctx, cancel := context.WithCancel(parent)

	if retry.MaxAttempts <= 0 {
		retry.MaxAttempts = 1
	}

	return &Exchange{
		name:     name,
		retry:    retry,
		log:      log,
		ctx:      ctx,
		cancel:   cancel,
		queues:   map[string]*queue{},
		bindings: map[string][]*queue{},
	}
}

// Declare creates a queue and binds it to the given routing keys.
func (e *Exchange) Declare(queueName string, routingKeys ...string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	q, ok := e.queues[queueName]
	if !ok {
		q = &queue{name: queueName, msgs: make(chan Message, queueDepth)}
		e.queues[queueName] = q
	}
	for _, key := range routingKeys {
		e.bindings[key] = append(e.bindings[key], q)
	}
}

// Publish routes a message to every queue bound to the routing key. An
// unbound key is not an error; a full queue or a closed exchange is.
// Delivery is all-or-nothing: no bound queue receives the message unless
// every bound queue has room.
func (e *Exchange) Publish(_ context.Context, routingKey string, body []byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return fmt.Errorf("exchange %s is closed", e.name)
	}

	targets := e.bindings[routingKey]
	for _, q := range targets {
		if len(q.msgs) == cap(q.msgs) {
			return fmt.Errorf("queue %s is full", q.name)
		}
	}

	m := Message{
		ID:         uuid.NewString(),
		RoutingKey: routingKey,
		Body:       body,
		Attempt:    1,
	}

	// Publishers are serialized by the lock and consumers only drain, so a
	// checked send cannot stay blocked. Redelivery traffic can slip a
	// message in between the check and the send; the send then waits for a
	// consumer slot instead of failing half-delivered.
	for _, q := range targets {
		q.msgs <- m
	}
	return nil
}

// Consume starts the given number of competing workers on a queue. Each
// message is delivered to exactly one worker.
func (e *Exchange) Consume(queueName string, workers int, h Handler) error {
	e.mu.RLock()
	q, ok := e.queues[queueName]
	e.mu.RUnlock()
	if !ok {
		return fmt.Errorf("queue %s is not declared", queueName)
	}

	for i := 0; i < workers; i++ {
		e.wg.Add(1)
		go e.worker(q, h)
	}
	return nil
}

func (e *Exchange) worker(q *queue, h Handler) {
	defer e.wg.Done()

	for {
		select {
		case <-e.ctx.Done():
			return
		case m := <-q.msgs:
			if err := e.handle(q, h, m); err != nil {
				e.retryOrDead(q, m, err)
			}
		}
	}
}

func (e *Exchange) handle(q *queue, h Handler, m Message) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("consumer panicked: %v", r)
			e.log.Error("consumer panic",
				zap.String("queue", q.name),
				zap.String("message_id", m.ID),
				zap.Any("panic", r),
			)
		}
	}()
	return h(e.ctx, m)
}

func (e *Exchange) retryOrDead(q *queue, m Message, cause error) {
	if m.Attempt >= e.retry.MaxAttempts {
		q.deadLetter(m)
		e.log.Error("message dead-lettered",
			zap.String("queue", q.name),
			zap.String("message_id", m.ID),
			zap.String("routing_key", m.RoutingKey),
			zap.Int("attempts", m.Attempt),
			zap.Error(cause),
		)
		return
	}

	e.log.Warn("message redelivery scheduled",
		zap.String("queue", q.name),
		zap.String("message_id", m.ID),
		zap.Int("attempt", m.Attempt),
		zap.Error(cause),
	)

	select {
	case <-e.ctx.Done():
		q.deadLetter(m)
		return
	case <-time.After(e.retry.Backoff):
	}

	m.Attempt++
	select {
	case q.msgs <- m:
	default:
		q.deadLetter(m)
	}
}

// DeadLetters returns a copy of the queue's dead-letter buffer.
func (e *Exchange) DeadLetters(queueName string) []Message {
	e.mu.RLock()
	q, ok := e.queues[queueName]
	e.mu.RUnlock()
	if !ok {
		return nil
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]Message(nil), q.dead...)
}

// Close stops accepting publishes and waits for workers to drain.
func (e *Exchange) Close() {
	e.mu.Lock()
	e.closed = true
	e.mu.Unlock()

	e.cancel()
	e.wg.Wait()
}
