package ws

import (
	"context"
	"fmt"
	"sync"

	"org-relay/domain/event"
	"org-relay/errors"
)

// Sink queues encoded frames for the connection's write pump.
// The queue is bounded so a slow client never blocks the relay.
type Sink struct {
	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

func NewSink(bufferSize int) *Sink {
	return &Sink{
		send: make(chan []byte, bufferSize),
		done: make(chan struct{}),
	}
}

// Consume is called by the relay (router, broadcaster, gate rejection).
// It hands the frame to the write pump and never waits for the network.
func (s *Sink) Consume(ctx context.Context, e event.Event) error {
	frame, err := Encode(e)
	if err != nil {
		return fmt.Errorf("encode %s: %w", e.Name(), err)
	}

	select {
	case <-s.done:
		return errors.ErrSinkClosed
	default:
	}

	select {
	case s.send <- frame:
		return nil
	case <-s.done:
		return errors.ErrSinkClosed
	case <-ctx.Done():
		return ctx.Err()
	default:
		return errors.ErrSinkFull
	}
}

// Close asks the write pump to flush what is queued and close the connection.
func (s *Sink) Close() error {
	s.closeOnce.Do(func() { close(s.done) })
	return nil
}

// Done is closed once Close has been called.
func (s *Sink) Done() <-chan struct{} {
	return s.done
}
