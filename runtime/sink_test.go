package runtime

import (
	"context"
	"org-relay/domain/event"
	"org-relay/errors"
	"sync"
)

// recordingSink keeps every event it receives, in order.
type recordingSink struct {
	mu      sync.Mutex
	events  []event.Event
	closed  int
	failure error
}

func newRecordingSink() *recordingSink {
	return &recordingSink{}
}

func (s *recordingSink) Consume(_ context.Context, e event.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failure != nil {
		return s.failure
	}
	if s.closed > 0 {
		return errors.ErrSinkClosed
	}
	s.events = append(s.events, e)
	return nil
}

func (s *recordingSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed++
	return nil
}

func (s *recordingSink) Events() []event.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]event.Event(nil), s.events...)
}

func (s *recordingSink) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed > 0
}

func (s *recordingSink) Messages() []event.Message {
	var messages []event.Message
	for _, e := range s.Events() {
		if m, ok := e.(event.Message); ok {
			messages = append(messages, m)
		}
	}
	return messages
}

func (s *recordingSink) Presence() []event.UsersChanged {
	var changes []event.UsersChanged
	for _, e := range s.Events() {
		if c, ok := e.(event.UsersChanged); ok {
			changes = append(changes, c)
		}
	}
	return changes
}
