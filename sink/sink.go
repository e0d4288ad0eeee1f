// Package sink delivers normalized bot messages to their consumer.
package sink

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/codeforequity-at/botium-connector-nuance/core/protocol"
)

// ErrClosed is returned by Receive once the queue is closed and drained.
var ErrClosed = errors.New("sink closed")

// Sink accepts bot messages. Deliver must not block on the consumer.
type Sink interface {
	Deliver(msg protocol.Message)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(msg protocol.Message)

func (f SinkFunc) Deliver(msg protocol.Message) {
	f(msg)
}

// Discard drops every message.
var Discard Sink = SinkFunc(func(protocol.Message) {})

// Queue is an unbounded FIFO sink. Messages may be delivered before anyone
// receives them; Receive blocks until one is available.
type Queue struct {
	mu      sync.Mutex
	pending []protocol.Message
	ready   chan struct{}
	closed  atomic.Int32
}

// NewQueue creates an empty Queue.
func NewQueue() *Queue {
	return &Queue{ready: make(chan struct{}, 1)}
}

// Deliver appends msg to the queue. Messages delivered after Close are
// dropped.
func (q *Queue) Deliver(msg protocol.Message) {
	if q.IsClosed() {
		return
	}
	q.mu.Lock()
	q.pending = append(q.pending, msg)
	q.mu.Unlock()
	q.signal()
}

// Receive returns the oldest message, waiting until one is delivered, ctx is
// done, or the queue is closed and empty.
func (q *Queue) Receive(ctx context.Context) (protocol.Message, error) {
	for {
		if msg, ok := q.TryReceive(); ok {
			return msg, nil
		}
		if q.IsClosed() {
			q.signal()
			return protocol.Message{}, ErrClosed
		}

		select {
		case <-q.ready:
		case <-ctx.Done():
			return protocol.Message{}, ctx.Err()
		}
	}
}

// TryReceive returns the oldest message without waiting.
func (q *Queue) TryReceive() (protocol.Message, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.pending) == 0 {
		return protocol.Message{}, false
	}
	msg := q.pending[0]
	q.pending[0] = protocol.Message{}
	q.pending = q.pending[1:]
	if len(q.pending) > 0 {
		q.signal()
	}
	return msg, true
}

// Drain removes and returns all pending messages.
func (q *Queue) Drain() []protocol.Message {
	q.mu.Lock()
	defer q.mu.Unlock()

	msgs := q.pending
	q.pending = nil
	return msgs
}

// Len returns the number of pending messages.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Close stops accepting messages and wakes blocked receivers. Pending
// messages can still be received.
func (q *Queue) Close() {
	if q.closed.CompareAndSwap(0, 1) {
		q.signal()
	}
}

// IsClosed reports whether Close was called.
func (q *Queue) IsClosed() bool {
	return q.closed.Load() == 1
}

func (q *Queue) signal() {
	select {
	case q.ready <- struct{}{}:
	default:
	}
}
