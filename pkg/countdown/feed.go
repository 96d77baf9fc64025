package countdown

import (
	"context"
	"sync"
	"time"
)

// Update is one published snapshot of the overlay.
type Update struct {
	At       time.Time
	Overlays []Overlay
}

// Subscriber receives updates until it is closed, its context is cancelled,
// or it falls behind and gets dropped.
type Subscriber interface {
	// Receive returns the update channel. It is closed when the subscription ends.
	Receive() <-chan Update
	// Close is idempotent.
	Close() error
}

// feed fans updates out to subscribers without ever blocking the publisher.
// A subscriber whose buffer is full is removed.
type feed struct {
	subscribers map[*subscriber]struct{}
	bufferSize  int
	closed      bool
	mu          sync.RWMutex
	cleanupWg   sync.WaitGroup
}

func newFeed(bufferSize int) *feed {
	return &feed{
		subscribers: make(map[*subscriber]struct{}),
		bufferSize:  max(bufferSize, 1),
	}
}

func (f *feed) subscribe(ctx context.Context) Subscriber {
	f.mu.Lock()
	defer f.mu.Unlock()

	sub := newSubscriber(f.bufferSize)
	if f.closed {
		_ = sub.Close()
		return sub
	}
	f.subscribers[sub] = struct{}{}

	if ctx.Done() != nil {
		f.cleanupWg.Add(1)
		go func() {
			defer f.cleanupWg.Done()
			select {
			case <-ctx.Done():
			case <-sub.done:
			}
			f.unsubscribe(sub)
		}()
	}
	return sub
}

func (f *feed) publish(u Update) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.closed {
		return
	}
	for sub := range f.subscribers {
		if !sub.send(u) {
			go f.unsubscribe(sub)
		}
	}
}

func (f *feed) close() {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return
	}
	f.closed = true
	for sub := range f.subscribers {
		_ = sub.Close()
	}
	clear(f.subscribers)
	f.mu.Unlock()

	f.cleanupWg.Wait()
}

func (f *feed) unsubscribe(sub *subscriber) {
	f.mu.Lock()
	defer f.mu.Unlock()

	delete(f.subscribers, sub)
	_ = sub.Close()
}

type subscriber struct {
	ch     chan Update
	done   chan struct{}
	closed bool
	mu     sync.RWMutex
}

func newSubscriber(bufferSize int) *subscriber {
	return &subscriber{
		ch:   make(chan Update, bufferSize),
		done: make(chan struct{}),
	}
}

func (s *subscriber) Receive() <-chan Update {
	return s.ch
}

func (s *subscriber) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.closed {
		close(s.ch)
		close(s.done)
		s.closed = true
	}
	return nil
}

func (s *subscriber) send(u Update) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return false
	}
	select {
	case s.ch <- u:
		return true
	default:
		return false
	}
}
