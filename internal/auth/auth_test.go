package auth

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/abhisek/pathwise/internal/logger"
	"github.com/abhisek/pathwise/internal/store"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const testSecret = "0123456789abcdef0123456789abcdef"

func newTestIssuer(t *testing.T) *Issuer {
	t.Helper()
	i, err := NewIssuer(testSecret, time.Hour)
	require.NoError(t, err)
	return i
}

func TestIssuer_RoundTrip(t *testing.T) {
	i := newTestIssuer(t)

	token, err := i.Issue("user-1", true)
	require.NoError(t, err)

	claims, err := i.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.True(t, claims.Admin)
	assert.Equal(t, "pathwise", claims.Issuer)
}

func TestIssuer_Rejects(t *testing.T) {
	i := newTestIssuer(t)
	good, err := i.Issue("user-1", false)
	require.NoError(t, err)
	evil, err := i.Issue("user-2", true)
	require.NoError(t, err)
	g, e := strings.Split(good, "."), strings.Split(evil, ".")
	tampered := g[0] + "." + e[1] + "." + g[2]

	other, err := NewIssuer(strings.Repeat("x", 32), time.Hour)
	require.NoError(t, err)
	foreign, err := other.Issue("user-1", false)
	require.NoError(t, err)

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.RegisteredClaims{
		Issuer:    "pathwise",
		Subject:   "user-1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	noSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Issuer:    "pathwise",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not.a.token"},
		{"swapped payload", tampered},
		{"wrong secret", foreign},
		{"wrong algorithm", hs512},
		{"missing subject", noSubject},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := i.Verify(tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestIssuer_Expiry(t *testing.T) {
	i := newTestIssuer(t)
	now := time.Now()
	i.now = func() time.Time { return now }

	token, err := i.Issue("user-1", false)
	require.NoError(t, err)

	now = now.Add(2 * time.Hour)
	_, err = i.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestNewIssuer_Validation(t *testing.T) {
	_, err := NewIssuer("short", time.Hour)
	assert.Error(t, err)
	_, err = NewIssuer(testSecret, 0)
	assert.Error(t, err)
}

// recorder collects deliveries in order.
type recorder struct {
	mu    sync.Mutex
	users []*User
}

func (r *recorder) record(u *User) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users = append(r.users, u)
}

func (r *recorder) snapshot() []*User {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*User(nil), r.users...)
}

func staticProfiles(ctx context.Context, userID string) (*User, error) {
	return &User{ID: userID, Email: userID + "@example.com"}, nil
}

func TestSession_DeliversUser(t *testing.T) {
	i := newTestIssuer(t)
	s := NewSession(i, staticProfiles, logger.Nop())
	defer s.Close()

	var rec recorder
	unsubscribe := s.Subscribe(rec.record)
	defer unsubscribe()

	token, err := i.Issue("ada", false)
	require.NoError(t, err)
	require.NoError(t, s.SetToken(t.Context(), token))

	require.Eventually(t, func() bool { return len(rec.snapshot()) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, "ada", rec.snapshot()[0].ID)
	assert.Equal(t, "ada", s.Current().ID)

	require.NoError(t, s.SetToken(t.Context(), ""))
	require.Eventually(t, func() bool { return len(rec.snapshot()) == 2 }, time.Second, 5*time.Millisecond)
	assert.Nil(t, rec.snapshot()[1])
	assert.Nil(t, s.Current())
}

func TestSession_SupersedesPendingFetch(t *testing.T) {
	i := newTestIssuer(t)

	var firstCancelled atomic.Bool
	fetch := func(ctx context.Context, userID string) (*User, error) {
		if userID == "slow" {
			<-ctx.Done()
			firstCancelled.Store(true)
			// Return a value anyway; it must still be dropped.
			return &User{ID: "slow"}, nil
		}
		return &User{ID: userID}, nil
	}
	s := NewSession(i, fetch, logger.Nop())
	defer s.Close()

	var rec recorder
	s.Subscribe(rec.record)

	slow, _ := i.Issue("slow", false)
	fast, _ := i.Issue("fast", false)
	require.NoError(t, s.SetToken(t.Context(), slow))
	require.NoError(t, s.SetToken(t.Context(), fast))

	require.Eventually(t, firstCancelled.Load, time.Second, 5*time.Millisecond)
	require.Eventually(t, func() bool { return len(rec.snapshot()) == 1 }, time.Second, 5*time.Millisecond)

	// Give a stale delivery every chance to show up.
	time.Sleep(20 * time.Millisecond)
	got := rec.snapshot()
	require.Len(t, got, 1)
	assert.Equal(t, "fast", got[0].ID)
}

func TestSession_InvalidTokenKeepsState(t *testing.T) {
	i := newTestIssuer(t)
	s := NewSession(i, staticProfiles, logger.Nop())
	defer s.Close()

	var rec recorder
	s.Subscribe(rec.record)

	err := s.SetToken(t.Context(), "bogus")
	require.ErrorIs(t, err, ErrInvalidToken)

	time.Sleep(10 * time.Millisecond)
	assert.Empty(t, rec.snapshot())
	assert.Nil(t, s.Current())
}

func TestSession_Unsubscribe(t *testing.T) {
	i := newTestIssuer(t)
	s := NewSession(i, staticProfiles, logger.Nop())
	defer s.Close()

	var kept, dropped recorder
	s.Subscribe(kept.record)
	unsubscribe := s.Subscribe(dropped.record)
	unsubscribe()
	unsubscribe()

	token, _ := i.Issue("ada", false)
	require.NoError(t, s.SetToken(t.Context(), token))

	require.Eventually(t, func() bool { return len(kept.snapshot()) == 1 }, time.Second, 5*time.Millisecond)
	assert.Empty(t, dropped.snapshot())
}

func TestSession_FetchErrorSignsOut(t *testing.T) {
	i := newTestIssuer(t)
	fetch := func(context.Context, string) (*User, error) { return nil, errors.New("db down") }
	s := NewSession(i, fetch, logger.Nop())
	defer s.Close()

	var rec recorder
	s.Subscribe(rec.record)

	token, _ := i.Issue("ada", false)
	require.NoError(t, s.SetToken(t.Context(), token))
	require.Eventually(t, func() bool { return len(rec.snapshot()) == 1 }, time.Second, 5*time.Millisecond)
	assert.Nil(t, rec.snapshot()[0])
}

func TestSession_CloseCancelsAndWaits(t *testing.T) {
	i := newTestIssuer(t)

	started := make(chan struct{})
	fetch := func(ctx context.Context, userID string) (*User, error) {
		close(started)
		<-ctx.Done()
		return nil, ctx.Err()
	}
	s := NewSession(i, fetch, logger.Nop())

	var rec recorder
	s.Subscribe(rec.record)

	token, _ := i.Issue("ada", false)
	require.NoError(t, s.SetToken(t.Context(), token))
	<-started

	s.Close()
	s.Close()
	assert.Empty(t, rec.snapshot())
	assert.Error(t, s.SetToken(t.Context(), token))
}

func TestSession_CallbackMaySetToken(t *testing.T) {
	i := newTestIssuer(t)
	s := NewSession(i, staticProfiles, logger.Nop())
	defer s.Close()

	var rec recorder
	s.Subscribe(func(u *User) {
		rec.record(u)
		if u != nil {
			// Sign out from inside the callback.
			_ = s.SetToken(context.Background(), "")
		}
	})

	token, _ := i.Issue("ada", false)
	require.NoError(t, s.SetToken(t.Context(), token))
	require.Eventually(t, func() bool { return len(rec.snapshot()) == 2 }, time.Second, 5*time.Millisecond)
	assert.Nil(t, rec.snapshot()[1])
}

func TestSession_CallbackMayClose(t *testing.T) {
	i := newTestIssuer(t)
	s := NewSession(i, staticProfiles, logger.Nop())

	returned := make(chan struct{})
	s.Subscribe(func(u *User) {
		s.Close()
		close(returned)
	})

	token, _ := i.Issue("ada", false)
	require.NoError(t, s.SetToken(t.Context(), token))

	select {
	case <-returned:
	case <-time.After(time.Second):
		t.Fatal("Close called from a subscriber did not return")
	}
	assert.Error(t, s.SetToken(t.Context(), token))
}

func TestUserContext(t *testing.T) {
	ctx := context.Background()
	assert.Nil(t, UserFrom(ctx))

	u := &User{ID: "ada"}
	assert.Same(t, u, UserFrom(WithUser(ctx, u)))
}

func TestStoreProfiles(t *testing.T) {
	st, err := store.Open(store.MemoryDSN(t.Name()))
	require.NoError(t, err)
	defer st.Close()

	p := &store.Profile{Email: "ada@example.com", DisplayName: "Ada", IsAdmin: true}
	require.NoError(t, st.Profiles().Create(t.Context(), p))

	fetch := StoreProfiles(st.Profiles())
	u, err := fetch(t.Context(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, &User{ID: p.ID, Email: "ada@example.com", DisplayName: "Ada", IsAdmin: true}, u)

	_, err = fetch(t.Context(), "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}
