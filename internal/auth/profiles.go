package auth

import (
	"context"

	"github.com/abhisek/pathwise/internal/store"
)

// StoreProfiles returns a ProfileFunc backed by the profile repository.
func StoreProfiles(repo store.ProfileRepo) ProfileFunc {
	return func(ctx context.Context, userID string) (*User, error) {
		p, err := repo.Get(ctx, userID)
		if err != nil {
			return nil, err
		}
		return &User{ID: p.ID, Email: p.Email, DisplayName: p.DisplayName, IsAdmin: p.IsAdmin}, nil
	}
}
