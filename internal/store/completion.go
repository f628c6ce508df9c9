package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
)

type completionRepo struct {
	repos
}

func (r *completionRepo) Create(ctx context.Context, c *Completion) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.AnsweredAt.IsZero() {
		c.AnsweredAt = time.Now().UTC()
	}

	ins := r.builder().Insert(LessonCompletionsTable.Name).
		Columns(columnNames(LessonCompletionsColumns)...).
		Values(c.ID, c.UserID, c.LessonID, c.Score, c.TimeSpent, c.AnsweredAt)
	if _, err := r.exec(ctx, ins); err != nil {
		return fmt.Errorf("create completion: %w", err)
	}
	return nil
}

func (r *completionRepo) ListByUserRoadmap(ctx context.Context, userID, roadmapID string) ([]Completion, error) {
	b := r.builder()
	c := b.Table(LessonCompletionsTable.Name)
	l := b.Table(LessonsTable.Name)

	cols := columnNames(LessonCompletionsColumns)
	qualified := make([]string, len(cols))
	for i, name := range cols {
		qualified[i] = c.C(name)
	}

	sel := b.Select(qualified...).
		From(c).
		Join(l).On(c.C("lesson_id"), l.C("id")).
		Where(entsql.And(
			entsql.EQ(c.C("user_id"), userID),
			entsql.EQ(l.C("roadmap_id"), roadmapID),
		)).
		OrderBy(entsql.Desc(c.C("answered_at")))

	var out []Completion
	err := r.each(ctx, sel, func(rows *sql.Rows) error {
		var cp Completion
		if err := rows.Scan(&cp.ID, &cp.UserID, &cp.LessonID, &cp.Score, &cp.TimeSpent, &cp.AnsweredAt); err != nil {
			return err
		}
		out = append(out, cp)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list completions: %w", err)
	}
	return out, nil
}
