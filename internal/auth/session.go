package auth

import (
	"context"
	"errors"
	"sync"

	"github.com/abhisek/pathwise/internal/logger"
)

// User is the identity the rest of the application sees.
type User struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	IsAdmin     bool   `json:"isAdmin"`
}

// ProfileFunc loads the user behind a verified token.
type ProfileFunc func(ctx context.Context, userID string) (*User, error)

type userKey struct{}

// WithUser returns a context carrying u.
func WithUser(ctx context.Context, u *User) context.Context {
	return context.WithValue(ctx, userKey{}, u)
}

// UserFrom returns the user carried by ctx, or nil.
func UserFrom(ctx context.Context) *User {
	u, _ := ctx.Value(userKey{}).(*User)
	return u
}

// Session tracks the signed-in user of one client and notifies
// subscribers when it changes. Each SetToken supersedes the previous one:
// a pending profile fetch is cancelled and its result is never delivered.
//
// Subscribers are called one at a time, in the order changes were made,
// from a goroutine owned by the Session. A subscriber may call SetToken or
// Close.
type Session struct {
	issuer *Issuer
	fetch  ProfileFunc
	log    *logger.Logger

	deliverMu sync.Mutex

	mu      sync.Mutex
	subs    map[int]func(*User)
	nextSub int
	current *User
	gen     uint64
	cancel  context.CancelFunc
	closed  bool
	fetches sync.WaitGroup
}

// NewSession creates a signed-out session.
func NewSession(issuer *Issuer, fetch ProfileFunc, log *logger.Logger) *Session {
	return &Session{
		issuer: issuer,
		fetch:  fetch,
		log:    log.With("component", "auth.Session"),
		subs:   make(map[int]func(*User)),
	}
}

// Subscribe registers fn for user changes. The returned function removes
// the subscription and is safe to call more than once.
func (s *Session) Subscribe(fn func(*User)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
		})
	}
}

// Current returns the signed-in user, or nil.
func (s *Session) Current() *User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// SetToken switches the session to the user of token, or signs out when
// token is empty. The token is verified before SetToken returns; the
// profile is fetched in the background.
func (s *Session) SetToken(ctx context.Context, token string) error {
	var userID string
	if token != "" {
		claims, err := s.issuer.Verify(token)
		if err != nil {
			return err
		}
		userID = claims.Subject
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return errors.New("session closed")
	}
	if s.cancel != nil {
		s.cancel()
	}
	s.gen++
	gen := s.gen
	fetchCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel
	s.fetches.Add(1)
	s.mu.Unlock()

	go func() {
		u, ok := s.resolve(fetchCtx, cancel, userID)
		if ok {
			s.deliver(gen, u)
		}
	}()
	return nil
}

// resolve loads the profile for userID. It reports false when the fetch
// was superseded or the session closed. Close waits for resolve but not
// for the delivery that follows it.
func (s *Session) resolve(ctx context.Context, cancel context.CancelFunc, userID string) (*User, bool) {
	defer s.fetches.Done()
	defer cancel()

	if userID == "" {
		return nil, true
	}
	u, err := s.fetch(ctx, userID)
	if ctx.Err() != nil {
		s.log.Debug("profile fetch superseded", "user_id", userID)
		return nil, false
	}
	if err != nil {
		s.log.Warn("profile fetch failed", "user_id", userID, "error", err.Error())
		return nil, true
	}
	return u, true
}

func (s *Session) deliver(gen uint64, u *User) {
	s.deliverMu.Lock()
	defer s.deliverMu.Unlock()

	s.mu.Lock()
	if s.closed || gen != s.gen {
		s.mu.Unlock()
		return
	}
	s.current = u
	subs := make([]func(*User), 0, len(s.subs))
	for id := 0; id < s.nextSub; id++ {
		if fn, ok := s.subs[id]; ok {
			subs = append(subs, fn)
		}
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(u)
	}
}

// Close cancels any pending fetch, drops all subscribers and waits for
// pending fetches to return. No subscriber is called once Close returns,
// apart from one whose delivery was already under way.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	if s.cancel != nil {
		s.cancel()
	}
	s.subs = map[int]func(*User){}
	s.mu.Unlock()

	s.fetches.Wait()
}
