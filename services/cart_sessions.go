package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"storefront/models"
	"storefront/repositories"
)

const cartLoadTimeout = 5 * time.Second

type cartEntry struct {
	ready    chan struct{}
	cart     *Cart
	err      error
	lastUsed time.Time
}

// CartSessions owns the live carts of the running process, one per session.
// A cart is loaded from the store the first time its session is opened and
// is flushed and dropped when the session ends or goes idle. A load that
// fails on I/O is not cached, so the next Open tries the store again.
type CartSessions struct {
	store  CartStore
	logger *zap.Logger
	now    func() time.Time

	mu      sync.Mutex
	entries map[string]*cartEntry
}

func NewCartSessions(store CartStore, logger *zap.Logger) *CartSessions {
	return &CartSessions{
		store:   store,
		logger:  logger,
		now:     time.Now,
		entries: make(map[string]*cartEntry),
	}
}

func (s *CartSessions) Open(ctx context.Context, sessionID string) (*Cart, error) {
	if sessionID == "" {
		return nil, invalid("session", "missing cart session")
	}

	s.mu.Lock()
	if e, ok := s.entries[sessionID]; ok {
		e.lastUsed = s.now()
		s.mu.Unlock()
		select {
		case <-e.ready:
			return e.cart, e.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	e := &cartEntry{ready: make(chan struct{}), lastUsed: s.now()}
	s.entries[sessionID] = e
	s.mu.Unlock()

	snap, err := s.load(sessionID)
	if err != nil {
		s.mu.Lock()
		if s.entries[sessionID] == e {
			delete(s.entries, sessionID)
		}
		s.mu.Unlock()
		e.err = err
		close(e.ready)
		return nil, err
	}
	e.cart = NewCart(sessionID, snap, s.store, s.logger)
	close(e.ready)
	return e.cart, nil
}

// load runs detached from the request so a cancelled client cannot turn a
// saved cart into an empty one. Only a snapshot that is present but unusable
// starts the cart empty; store errors are returned.
func (s *CartSessions) load(sessionID string) (*models.CartSnapshot, error) {
	ctx, cancel := context.WithTimeout(context.Background(), cartLoadTimeout)
	defer cancel()

	snap, err := s.store.Load(ctx, sessionID)
	if errors.Is(err, repositories.ErrCorruptCart) {
		s.logger.Warn("cart snapshot unreadable, starting empty",
			zap.String("cart_session", sessionID), zap.Error(err))
		return nil, nil
	}
	if err != nil {
		cartLoadFailures.Inc()
		s.logger.Error("cart snapshot not loaded", zap.String("cart_session", sessionID), zap.Error(err))
		return nil, &PersistenceError{SessionID: sessionID, Err: err}
	}
	if snap != nil && snap.Version != models.CartSnapshotVersion {
		s.logger.Warn("cart snapshot version not supported, starting empty",
			zap.String("cart_session", sessionID), zap.Int("version", snap.Version))
		return nil, nil
	}
	return snap, nil
}

// End flushes and forgets the session's cart. The stored snapshot is kept.
func (s *CartSessions) End(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	e, ok := s.entries[sessionID]
	delete(s.entries, sessionID)
	s.mu.Unlock()

	if !ok {
		return nil
	}
	<-e.ready
	if e.cart == nil {
		return nil
	}
	return e.cart.Close(ctx)
}

// Sweep ends every session unused for longer than idle and returns how many
// were ended.
func (s *CartSessions) Sweep(ctx context.Context, idle time.Duration) int {
	cutoff := s.now().Add(-idle)

	s.mu.Lock()
	var stale []string
	for id, e := range s.entries {
		if e.lastUsed.Before(cutoff) {
			stale = append(stale, id)
		}
	}
	s.mu.Unlock()

	for _, id := range stale {
		if err := s.End(ctx, id); err != nil {
			s.logger.Warn("idle cart not flushed", zap.String("cart_session", id), zap.Error(err))
		}
	}
	return len(stale)
}

func (s *CartSessions) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	ids := make([]string, 0, len(s.entries))
	for id := range s.entries {
		ids = append(ids, id)
	}
	s.mu.Unlock()

	var errs []error
	for _, id := range ids {
		if err := s.End(ctx, id); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
