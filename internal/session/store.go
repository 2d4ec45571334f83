// Package session keeps per-browser application state in memory.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"snooze-web/internal/app"
)

type Session struct {
	ID      string
	State   *app.State
	Expires time.Time
}

type Store struct {
	ttl    time.Duration
	now    func() time.Time
	logger *zap.Logger

	mutex    sync.RWMutex
	sessions map[string]*Session

	stop chan struct{}
	done chan struct{}
	once sync.Once
}

func NewStore(ttl time.Duration, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		ttl:      ttl,
		now:      time.Now,
		logger:   logger.With(zap.String("component", "session")),
		sessions: make(map[string]*Session),
	}
}

func (s *Store) Create() *Session {
	sess := &Session{
		ID:      uuid.NewString(),
		State:   app.NewState(),
		Expires: s.now().Add(s.ttl),
	}
	s.mutex.Lock()
	s.sessions[sess.ID] = sess
	s.mutex.Unlock()
	return sess
}

// Get returns a live session and extends its expiry.
func (s *Store) Get(id string) (*Session, bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	if s.now().After(sess.Expires) {
		delete(s.sessions, id)
		return nil, false
	}
	sess.Expires = s.now().Add(s.ttl)
	return sess, true
}

func (s *Store) Delete(id string) {
	s.mutex.Lock()
	delete(s.sessions, id)
	s.mutex.Unlock()
}

func (s *Store) Len() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return len(s.sessions)
}

// ClearExpired drops every expired session and returns how many were removed.
func (s *Store) ClearExpired() int {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	now := s.now()
	removed := 0
	for id, sess := range s.sessions {
		if now.After(sess.Expires) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// StartJanitor clears expired sessions every interval until Close.
func (s *Store) StartJanitor(interval time.Duration) {
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	go func() {
		defer close(s.done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if n := s.ClearExpired(); n > 0 {
					s.logger.Debug("expired sessions cleared", zap.Int("count", n))
				}
			case <-s.stop:
				return
			}
		}
	}()
}

func (s *Store) Close() {
	s.once.Do(func() {
		if s.stop == nil {
			return
		}
		close(s.stop)
		<-s.done
	})
}
