// Package flash keeps notifications between a form submission and the page
// render that follows its redirect.
//
// Messages are held in memory, keyed by a random session identifier stored in
// a cookie, and are removed when read.
package flash

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ruteri/hostkey-panel/interfaces"
)

const (
	CookieName = "panel_session"
	DefaultTTL = 10 * time.Minute
)

type entry struct {
	items   []interfaces.Notification
	expires time.Time
}

// Store is a session-scoped notification sink.
type Store struct {
	ttl time.Duration
	now func() time.Time

	mu       sync.Mutex
	sessions map[string]*entry
}

func NewStore(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]*entry),
	}
}

// sessionID returns the caller's session id, issuing a new cookie if needed.
func (s *Store) sessionID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(CookieName); err == nil {
		if _, err := uuid.Parse(c.Value); err == nil {
			return c.Value
		}
	}

	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

// Push stores notes for the caller's next page render.
func (s *Store) Push(w http.ResponseWriter, r *http.Request, notes *interfaces.Notifications) {
	items := notes.All()
	if len(items) == 0 {
		return
	}
	id := s.sessionID(w, r)

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.sweepLocked(now)

	e, ok := s.sessions[id]
	if !ok {
		e = &entry{}
		s.sessions[id] = e
	}
	e.items = append(e.items, items...)
	e.expires = now.Add(s.ttl)
}

// Pop returns and forgets the caller's pending notifications.
func (s *Store) Pop(r *http.Request) []interfaces.Notification {
	c, err := r.Cookie(CookieName)
	if err != nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.sessions[c.Value]
	if !ok {
		return nil
	}
	delete(s.sessions, c.Value)
	if s.now().After(e.expires) {
		return nil
	}
	return e.items
}

func (s *Store) sweepLocked(now time.Time) {
	for id, e := range s.sessions {
		if now.After(e.expires) {
			delete(s.sessions, id)
		}
	}
}
