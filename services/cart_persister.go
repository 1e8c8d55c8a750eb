package services

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"storefront/models"
)

const cartWriteTimeout = 5 * time.Second

type flushWaiter struct {
	seq  uint64
	done chan error
}

// persister is the single writer for one cart's snapshots. Pending snapshots
// coalesce: only the newest is written. Once closed, snapshots are written
// inline by the caller.
type persister struct {
	sessionID string
	store     CartStore
	logger    *zap.Logger

	writeMu sync.Mutex

	mu      sync.Mutex
	latest  models.CartSnapshot
	seq     uint64
	written uint64
	closed  bool
	lastErr error
	waiters []flushWaiter

	wake      chan struct{}
	quit      chan struct{}
	stopped   chan struct{}
	closeOnce sync.Once
}

func newPersister(sessionID string, store CartStore, logger *zap.Logger) *persister {
	p := &persister{
		sessionID: sessionID,
		store:     store,
		logger:    logger,
		wake:      make(chan struct{}, 1),
		quit:      make(chan struct{}),
		stopped:   make(chan struct{}),
	}
	go p.run()
	return p
}

func (p *persister) schedule(snapshot models.CartSnapshot) {
	p.mu.Lock()
	p.seq++
	p.latest = snapshot
	closed := p.closed
	p.mu.Unlock()

	if closed {
		p.writeLatest()
		return
	}
	p.signal()
}

func (p *persister) signal() {
	select {
	case p.wake <- struct{}{}:
	default:
	}
}

func (p *persister) run() {
	defer close(p.stopped)
	for {
		select {
		case <-p.wake:
			p.writeLatest()
		case <-p.quit:
			p.mu.Lock()
			p.closed = true
			p.mu.Unlock()
			p.writeLatest()
			return
		}
	}
}

func (p *persister) writeLatest() {
	p.writeMu.Lock()
	defer p.writeMu.Unlock()

	p.mu.Lock()
	if p.written == p.seq {
		p.mu.Unlock()
		return
	}
	seq, snapshot := p.seq, p.latest
	p.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), cartWriteTimeout)
	err := p.store.Save(ctx, p.sessionID, snapshot)
	cancel()
	if err != nil {
		err = &PersistenceError{SessionID: p.sessionID, Err: err}
		cartPersistFailures.Inc()
		p.logger.Error("cart snapshot not saved", zap.Error(err), zap.Uint64("seq", seq))
	}

	p.mu.Lock()
	p.written = seq
	p.lastErr = err
	remaining := p.waiters[:0]
	for _, w := range p.waiters {
		if w.seq <= seq {
			w.done <- err
			continue
		}
		remaining = append(remaining, w)
	}
	p.waiters = remaining
	p.mu.Unlock()
}

func (p *persister) flush(ctx context.Context) error {
	p.mu.Lock()
	if p.written == p.seq {
		err := p.lastErr
		p.mu.Unlock()
		return err
	}
	w := flushWaiter{seq: p.seq, done: make(chan error, 1)}
	p.waiters = append(p.waiters, w)
	p.mu.Unlock()

	p.signal()

	select {
	case err := <-w.done:
		return err
	case <-p.stopped:
		p.mu.Lock()
		defer p.mu.Unlock()
		if p.written >= w.seq {
			return p.lastErr
		}
		return &PersistenceError{SessionID: p.sessionID, Err: context.Canceled}
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *persister) close(ctx context.Context) error {
	p.closeOnce.Do(func() { close(p.quit) })

	select {
	case <-p.stopped:
	case <-ctx.Done():
		return ctx.Err()
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastErr
}
