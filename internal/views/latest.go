package views

import (
	"context"
	"sync"
)

// Latest sequences the requests of one query surface. Starting a request cancels the previous
// one, and only the newest may commit.
type Latest struct {
	mu     sync.Mutex
	seq    uint64
	cancel context.CancelFunc
}

// Begin starts a request and returns its context and sequence number.
func (l *Latest) Begin(ctx context.Context) (context.Context, uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cancel != nil {
		l.cancel()
	}
	l.seq++
	ctx, l.cancel = context.WithCancel(ctx)
	return ctx, l.seq
}

// Current reports whether seq is still the newest request.
func (l *Latest) Current(seq uint64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return seq == l.seq
}

// Stop cancels the in-flight request and invalidates it.
func (l *Latest) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
	l.seq++
}
