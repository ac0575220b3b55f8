// Package session holds the dual-channel authentication state: one channel
// for the member, one for the administrator. The channels are independent —
// clearing one never touches the other — and the whole session survives
// restarts through a durable slot, rehydrated before any gateway call.
package session

import (
	"errors"
	"os"
	"sync"
	"time"

	"github.com/rjsharma/matrixpay-dashboard-go/internal/domain"
	"github.com/rjsharma/matrixpay-dashboard-go/internal/infra/storage"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// Store is the session state container. All mutations go through its
// methods; every mutation persists the state and notifies subscribers.
type Store struct {
	mu    sync.RWMutex
	state domain.Session

	slot   *storage.Slot // nil disables persistence (tests)
	logger *zap.Logger

	subMu   sync.Mutex
	subs    map[int]chan domain.Session
	nextSub int
}

// NewStore creates an anonymous session store.
func NewStore(slot *storage.Slot, logger *zap.Logger) *Store {
	return &Store{
		slot:   slot,
		logger: logger,
		subs:   make(map[int]chan domain.Session),
	}
}

// Load rehydrates the session from the durable slot. A missing slot means
// a fresh anonymous session; a tampered or unreadable slot is discarded so
// a corrupt file can never wedge startup.
func (s *Store) Load() error {
	if s.slot == nil {
		return nil
	}

	var persisted domain.Session
	err := s.slot.Read(&persisted)
	switch {
	case err == nil:
	case errors.Is(err, os.ErrNotExist):
		return nil
	case errors.Is(err, storage.ErrTampered):
		s.logger.Warn("session slot failed authentication, starting anonymous")
		return s.slot.Clear()
	default:
		s.logger.Warn("session slot unreadable, starting anonymous", zap.Error(err))
		return s.slot.Clear()
	}

	// Credential absence implies the corresponding flag is false.
	if persisted.Token == "" {
		persisted.IsAuthenticated = false
		persisted.Member = nil
	}
	if persisted.AdminToken == "" {
		persisted.IsAdminAuthenticated = false
		persisted.Admin = nil
	}

	s.mu.Lock()
	s.state = persisted
	s.mu.Unlock()
	s.notify()
	return nil
}

// Login sets the member channel authenticated.
func (s *Store) Login(member *domain.Member, token string) {
	s.mu.Lock()
	s.state.IsAuthenticated = true
	s.state.Member = member
	s.state.Token = token
	s.mu.Unlock()
	s.persist()
	s.notify()
}

// Logout clears the member channel unconditionally. Idempotent.
func (s *Store) Logout() {
	s.mu.Lock()
	s.state.IsAuthenticated = false
	s.state.Member = nil
	s.state.Token = ""
	s.mu.Unlock()
	s.persist()
	s.notify()
}

// LoginAsAdmin sets the admin channel authenticated.
func (s *Store) LoginAsAdmin(admin *domain.Admin, token string) {
	s.mu.Lock()
	s.state.IsAdminAuthenticated = true
	s.state.Admin = admin
	s.state.AdminToken = token
	s.mu.Unlock()
	s.persist()
	s.notify()
}

// LogoutAdmin clears the admin channel and purges its persisted credential.
// The member sub-record is untouched. Idempotent.
func (s *Store) LogoutAdmin() {
	s.mu.Lock()
	s.state.IsAdminAuthenticated = false
	s.state.Admin = nil
	s.state.AdminToken = ""
	s.mu.Unlock()
	s.persist()
	s.notify()
}

// UpdateMember shallow-merges a partial update into the member identity.
// The credential is never touched. A no-op while anonymous.
func (s *Store) UpdateMember(patch domain.MemberPatch) {
	s.mu.Lock()
	if s.state.Member == nil {
		s.mu.Unlock()
		return
	}
	m := *s.state.Member
	if patch.Fullname != nil {
		m.Fullname = *patch.Fullname
	}
	if patch.Username != nil {
		m.Username = *patch.Username
	}
	if patch.Phone != nil {
		m.Phone = *patch.Phone
	}
	if patch.Status != nil {
		m.Status = *patch.Status
	}
	if patch.Verified != nil {
		m.Verified = *patch.Verified
	}
	s.state.Member = &m
	s.mu.Unlock()
	s.persist()
	s.notify()
}

// InvalidateMember is the gateway's 401 hook for the /user namespace.
func (s *Store) InvalidateMember() { s.Logout() }

// InvalidateAdmin is the gateway's 401 hook for the /admin namespace.
func (s *Store) InvalidateAdmin() { s.LogoutAdmin() }

// Snapshot returns a copy of the current session state.
func (s *Store) Snapshot() domain.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// MemberToken returns the member bearer credential, empty when anonymous.
func (s *Store) MemberToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Token
}

// AdminToken returns the admin bearer credential, empty when anonymous.
func (s *Store) AdminToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.AdminToken
}

// MemberTokenExpiry reports the expiry of the stored member token, parsed
// without verification — the client has no signing key, this is display-only.
func (s *Store) MemberTokenExpiry() (time.Time, bool) {
	return tokenExpiry(s.MemberToken())
}

// AdminTokenExpiry reports the expiry of the stored admin token.
func (s *Store) AdminTokenExpiry() (time.Time, bool) {
	return tokenExpiry(s.AdminToken())
}

func tokenExpiry(token string) (time.Time, bool) {
	if token == "" {
		return time.Time{}, false
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

// Subscribe registers a listener for session snapshots. The returned
// cancel function must be called on teardown. Delivery is latest-wins:
// a slow subscriber only ever sees the newest snapshot.
func (s *Store) Subscribe() (<-chan domain.Session, func()) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	id := s.nextSub
	s.nextSub++
	ch := make(chan domain.Session, 1)
	s.subs[id] = ch

	return ch, func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		if _, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(ch)
		}
	}
}

func (s *Store) notify() {
	snap := s.Snapshot()
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- snap:
		default:
			// Replace the stale pending snapshot.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snap:
			default:
			}
		}
	}
}

func (s *Store) persist() {
	if s.slot == nil {
		return
	}
	if err := s.slot.Write(s.Snapshot()); err != nil {
		s.logger.Warn("failed to persist session", zap.Error(err))
	}
}
