package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
)

type roadmapRepo struct {
	repos
}

func (r *roadmapRepo) Create(ctx context.Context, m *Roadmap) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	if m.Answers == nil {
		m.Answers = json.RawMessage("[]")
	}

	ins := r.builder().Insert(RoadmapsTable.Name).
		Columns(columnNames(RoadmapsColumns)...).
		Values(m.ID, m.UserID, m.Goal, jsonText(m.Answers), jsonText(m.Weeks), m.CreatedAt)
	if _, err := r.exec(ctx, ins); err != nil {
		return fmt.Errorf("create roadmap: %w", err)
	}
	return nil
}

func (r *roadmapRepo) Get(ctx context.Context, id string) (*Roadmap, error) {
	var m Roadmap
	err := r.first(ctx, r.selectRoadmaps().Where(entsql.EQ("id", id)), func(rows *sql.Rows) error {
		return scanRoadmap(rows, &m)
	})
	if err != nil {
		return nil, fmt.Errorf("get roadmap %s: %w", id, err)
	}
	return &m, nil
}

func (r *roadmapRepo) ListByUser(ctx context.Context, userID string) ([]Roadmap, error) {
	sel := r.selectRoadmaps().Where(entsql.EQ("user_id", userID))
	sel.OrderBy(entsql.Desc(sel.C("created_at")))

	var out []Roadmap
	err := r.each(ctx, sel, func(rows *sql.Rows) error {
		var m Roadmap
		if err := scanRoadmap(rows, &m); err != nil {
			return err
		}
		out = append(out, m)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list roadmaps: %w", err)
	}
	return out, nil
}

func (r *roadmapRepo) Delete(ctx context.Context, id string) error {
	del := r.builder().Delete(RoadmapsTable.Name).Where(entsql.EQ("id", id))
	if err := r.execOne(ctx, del); err != nil {
		return fmt.Errorf("delete roadmap %s: %w", id, err)
	}
	return nil
}

func (r *roadmapRepo) selectRoadmaps() *entsql.Selector {
	return r.builder().Select(columnNames(RoadmapsColumns)...).
		From(r.builder().Table(RoadmapsTable.Name))
}

func scanRoadmap(rows *sql.Rows, m *Roadmap) error {
	var answers, weeks string
	if err := rows.Scan(&m.ID, &m.UserID, &m.Goal, &answers, &weeks, &m.CreatedAt); err != nil {
		return err
	}
	m.Answers = json.RawMessage(answers)
	m.Weeks = json.RawMessage(weeks)
	return nil
}
