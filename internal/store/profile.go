package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
)

type profileRepo struct {
	repos
}

func (r *profileRepo) Create(ctx context.Context, p *Profile) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}

	ins := r.builder().Insert(ProfilesTable.Name).
		Columns(columnNames(ProfilesColumns)...).
		Values(p.ID, p.Email, p.DisplayName, p.IsAdmin, p.CreatedAt)
	if _, err := r.exec(ctx, ins); err != nil {
		return fmt.Errorf("create profile: %w", err)
	}
	return nil
}

func (r *profileRepo) Get(ctx context.Context, id string) (*Profile, error) {
	return r.getBy(ctx, "id", id)
}

func (r *profileRepo) GetByEmail(ctx context.Context, email string) (*Profile, error) {
	return r.getBy(ctx, "email", email)
}

func (r *profileRepo) getBy(ctx context.Context, column, value string) (*Profile, error) {
	var p Profile
	err := r.first(ctx, r.selectProfiles().Where(entsql.EQ(column, value)), func(rows *sql.Rows) error {
		return scanProfile(rows, &p)
	})
	if err != nil {
		return nil, fmt.Errorf("get profile by %s: %w", column, err)
	}
	return &p, nil
}

func (r *profileRepo) List(ctx context.Context) ([]Profile, error) {
	var out []Profile
	err := r.each(ctx, r.selectProfiles().OrderBy("created_at"), func(rows *sql.Rows) error {
		var p Profile
		if err := scanProfile(rows, &p); err != nil {
			return err
		}
		out = append(out, p)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	return out, nil
}

func (r *profileRepo) selectProfiles() *entsql.Selector {
	return r.builder().Select(columnNames(ProfilesColumns)...).
		From(r.builder().Table(ProfilesTable.Name))
}

func scanProfile(rows *sql.Rows, p *Profile) error {
	return rows.Scan(&p.ID, &p.Email, &p.DisplayName, &p.IsAdmin, &p.CreatedAt)
}
