package cmd

import (
	"context"
	"fmt"

	"github.com/abhisek/pathwise/internal/auth"
	"github.com/abhisek/pathwise/internal/cache"
	"github.com/abhisek/pathwise/internal/config"
	"github.com/abhisek/pathwise/internal/learning"
	"github.com/abhisek/pathwise/internal/llm"
	"github.com/abhisek/pathwise/internal/logger"
	"github.com/abhisek/pathwise/internal/pathgen"
	"github.com/abhisek/pathwise/internal/store"
)

// deps holds the long-lived components a command works with.
type deps struct {
	cfg   *config.Config
	log   *logger.Logger
	store *store.Store
	cache cache.Cache
	gen   *pathgen.Service
	svc   *learning.Service
}

// buildDeps opens the store and wires the learning service. The LLM
// provider is only built when withLLM is set; commands that never
// generate content run without one.
func buildDeps(ctx context.Context, cfg *config.Config, withLLM bool) (*deps, error) {
	log, err := logger.New(cfg.Log.Mode)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	st, err := store.Open(cfg.Store.DSN)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	d := &deps{cfg: cfg, log: log, store: st}

	if withLLM {
		provider, err := llm.NewProvider(ctx, cfg.LLM, st.Events(), log)
		if err != nil {
			d.Close()
			return nil, fmt.Errorf("create LLM provider: %w", err)
		}
		d.gen = pathgen.NewService(provider, cfg.Generation, log)
	}

	d.cache, err = cache.New(ctx, cfg.Cache, log)
	if err != nil {
		d.Close()
		return nil, err
	}

	var gen learning.Generator
	if d.gen != nil {
		gen = d.gen
	}
	d.svc = learning.NewService(st, gen, d.cache, log)
	return d, nil
}

func (d *deps) Close() {
	if d.cache != nil {
		d.cache.Close()
	}
	d.store.Close()
	d.log.Sync()
}

// signIn resolves token to a user through a Session and waits for the
// first delivery.
func (d *deps) signIn(ctx context.Context, token string) (*auth.User, error) {
	issuer, err := auth.NewIssuer(d.cfg.Auth.JWTSecret, d.cfg.Auth.TokenTTL)
	if err != nil {
		return nil, err
	}
	sess := auth.NewSession(issuer, auth.StoreProfiles(d.store.Profiles()), d.log)
	defer sess.Close()

	users := make(chan *auth.User, 1)
	unsubscribe := sess.Subscribe(func(u *auth.User) {
		select {
		case users <- u:
		default:
		}
	})
	defer unsubscribe()

	if err := sess.SetToken(ctx, token); err != nil {
		return nil, err
	}
	select {
	case u := <-users:
		if u == nil {
			return nil, fmt.Errorf("no profile for token")
		}
		return u, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
