package events

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"sync"
	"time"

	"spalena53-be/internal/logger"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

var (
	ErrProducerClosed = errors.New("event producer closed")
	ErrBufferFull     = errors.New("event buffer full")
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer buffers messages in memory and writes them to Kafka from a single
// goroutine started by Start.
type Producer struct {
	w     messageWriter
	inbox chan kafka.Message
	done  chan struct{}
	now   func() time.Time

	writeTimeout time.Duration

	mu      sync.RWMutex
	started bool
	closed  bool
}

func NewProducer(brokers []string, topic string, buf int) *Producer {
	return newProducer(&kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		BatchTimeout: 50 * time.Millisecond,
	}, buf)
}

func newProducer(w messageWriter, buf int) *Producer {
	return &Producer{
		w:            w,
		inbox:        make(chan kafka.Message, buf),
		done:         make(chan struct{}),
		now:          time.Now,
		writeTimeout: 5 * time.Second,
	}
}

// Start launches the writer loop. Calls after the first, or after Close,
// do nothing.
func (p *Producer) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started || p.closed {
		return
	}
	p.started = true
	go p.loop()
}

func (p *Producer) loop() {
	defer close(p.done)
	log := logger.L().With(zap.String("component", "event_producer"))

	for m := range p.inbox {
		ctx, cancel := context.WithTimeout(context.Background(), p.writeTimeout)
		err := p.w.WriteMessages(ctx, m)
		cancel()
		if err != nil {
			log.Warn("failed to write event",
				zap.String("key", string(m.Key)),
				zap.Error(err),
			)
		}
	}

	if err := p.w.Close(); err != nil {
		log.Warn("failed to close kafka writer", zap.Error(err))
	}
}

// Publish enqueues an event keyed by key (the order id keeps one order's
// events on one partition). It never waits for the broker.
func (p *Producer) Publish(ctx context.Context, eventType, key string, payload any) error {
	env, err := NewEnvelope(ctx, eventType, key, payload, p.now())
	if err != nil {
		return err
	}
	value, err := json.Marshal(env)
	if err != nil {
		return err
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: value,
		Time:  env.OccurredAt,
		Headers: []kafka.Header{
			{Key: "x-event-type", Value: []byte(eventType)},
			{Key: "x-event-version", Value: []byte(strconv.Itoa(eventVersion))},
		},
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrProducerClosed
	}

	select {
	case p.inbox <- msg:
		return nil
	default:
		return ErrBufferFull
	}
}

// Close flushes buffered messages and waits for the writer to finish. A
// producer that was never started drops its buffer and closes the writer.
func (p *Producer) Close() {
	p.mu.Lock()
	first := !p.closed
	if first {
		p.closed = true
		close(p.inbox)
	}
	started := p.started
	p.mu.Unlock()

	if started {
		<-p.done
		return
	}
	if first {
		if err := p.w.Close(); err != nil {
			logger.L().Warn("failed to close kafka writer", zap.Error(err))
		}
	}
}
