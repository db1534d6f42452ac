package session

import (
	"sort"
	"sync"
	"time"

	"github.com/Nomadcxx/cinepost/internal/logging"
)

// DefaultTimeout is how long a session may sit without a transition
// before the janitor expires it.
const DefaultTimeout = 10 * time.Minute

const janitorInterval = 30 * time.Second

// Store holds live sessions and expires stale ones in the background.
type Store struct {
	mu       sync.RWMutex
	sessions map[Key]*Session

	timeout  time.Duration
	log      *logging.Logger
	onExpire func(*Session)

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// NewStore creates a session store. onExpire, if non-nil, is called for
// every session the janitor times out, after the session has been removed
// from the store.
func NewStore(timeout time.Duration, log *logging.Logger, onExpire func(*Session)) *Store {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if log == nil {
		log = logging.Nop()
	}

	s := &Store{
		sessions: make(map[Key]*Session),
		timeout:  timeout,
		log:      log,
		onExpire: onExpire,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	go s.janitor()
	return s
}

// SetOnExpire replaces the expiry callback. Useful when the callback's
// owner is constructed after the store.
func (st *Store) SetOnExpire(fn func(*Session)) {
	st.mu.Lock()
	st.onExpire = fn
	st.mu.Unlock()
}

// Put registers a session, replacing any previous session for the same
// key.
func (st *Store) Put(s *Session) {
	st.mu.Lock()
	st.sessions[s.Key()] = s
	st.mu.Unlock()
}

// Get returns the session for a key, if present.
func (st *Store) Get(key Key) (*Session, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	s, ok := st.sessions[key]
	return s, ok
}

// Delete removes a session from the store.
func (st *Store) Delete(key Key) {
	st.mu.Lock()
	delete(st.sessions, key)
	st.mu.Unlock()
}

// Count returns the number of live sessions.
func (st *Store) Count() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// ForChat returns every stored session for a chat, newest first.
func (st *Store) ForChat(chatID int64) []*Session {
	st.mu.RLock()
	defer st.mu.RUnlock()

	var out []*Session
	for key, s := range st.sessions {
		if key.ChatID == chatID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Key().MessageID > out[j].Key().MessageID
	})
	return out
}

// ManualTitleSession returns the newest session in a chat that is waiting
// for a typed title, so free-text replies can be routed to it.
func (st *Store) ManualTitleSession(chatID int64) (*Session, bool) {
	for _, s := range st.ForChat(chatID) {
		if s.State() == AwaitingManualTitle {
			return s, true
		}
	}
	return nil, false
}

// CancelChat cancels every non-terminal session in a chat and removes
// them from the store. It returns how many sessions were cancelled.
func (st *Store) CancelChat(chatID int64) int {
	cancelled := 0
	for _, s := range st.ForChat(chatID) {
		wasActive := !s.State().Terminal()
		if err := s.Cancel(); err == nil {
			st.Delete(s.Key())
			if wasActive {
				cancelled++
			}
		}
	}
	return cancelled
}

// Close stops the janitor. Stored sessions are left as they are.
func (st *Store) Close() {
	st.stopOnce.Do(func() {
		close(st.stop)
		<-st.done
	})
}

func (st *Store) janitor() {
	defer close(st.done)

	ticker := time.NewTicker(janitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-st.stop:
			return
		case <-ticker.C:
			st.expireStale()
		}
	}
}

// expireStale times out sessions that have sat past the store timeout. A
// session that reached a terminal state on its own is just dropped; only
// genuinely stale ones trigger the expiry callback.
func (st *Store) expireStale() {
	st.mu.Lock()
	onExpire := st.onExpire
	var stale []*Session
	for key, s := range st.sessions {
		if s.State().Terminal() {
			delete(st.sessions, key)
			continue
		}
		if s.Age() > st.timeout {
			delete(st.sessions, key)
			stale = append(stale, s)
		}
	}
	st.mu.Unlock()

	for _, s := range stale {
		if !s.expire() {
			continue
		}
		st.log.Info("session", "session expired",
			logging.F("chat_id", s.Key().ChatID),
			logging.F("message_id", s.Key().MessageID),
			logging.F("title", s.Guess().Title))
		if onExpire != nil {
			onExpire(s)
		}
	}
}
