package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"catalog/internal/logging"
	"catalog/internal/metrics"
)

var (
	ErrNotFound        = errors.New("session not found")
	ErrTooManySessions = errors.New("too many sessions")
)

// Store живые сессии редактора. Каталоги сессий независимы друг от друга.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	metrics  *metrics.Metrics
	ttl      time.Duration
	max      int
}

// NewStore ttl: время простоя до удаления; max <= 0 снимает ограничение
func NewStore(m *metrics.Metrics, ttl time.Duration, max int) *Store {
	return &Store{
		sessions: make(map[string]*Session),
		metrics:  m,
		ttl:      ttl,
		max:      max,
	}
}

func (st *Store) Create(ctx context.Context) (*Session, error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.max > 0 && len(st.sessions) >= st.max {
		return nil, ErrTooManySessions
	}
	s, err := New(ctx, uuid.NewString(), st.metrics)
	if err != nil {
		return nil, err
	}
	st.sessions[s.ID] = s
	st.metrics.SessionsActive.Inc()
	logging.FromContext(ctx).WithField("session", s.ID).Info("session created")
	return s, nil
}

func (st *Store) Get(id string) (*Session, error) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	s, ok := st.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return s, nil
}

func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// Sweep удаляет сессии, простаивающие дольше ttl, и возвращает их число
func (st *Store) Sweep(ctx context.Context, now time.Time) int {
	if st.ttl <= 0 {
		return 0
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	removed := 0
	for id, s := range st.sessions {
		if now.Sub(s.LastSeen()) < st.ttl {
			continue
		}
		s.close(ctx)
		delete(st.sessions, id)
		st.metrics.SessionsActive.Dec()
		removed++
	}
	if removed > 0 {
		logging.FromContext(ctx).WithField("removed", removed).Info("expired sessions swept")
	}
	return removed
}

// Run периодически вызывает Sweep до отмены ctx
func (st *Store) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			st.Sweep(ctx, now)
		}
	}
}
