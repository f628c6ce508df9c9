package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
)

type progressRepo struct {
	repos
}

func (r *progressRepo) Create(ctx context.Context, p *UserProgress) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = time.Now().UTC()
	}

	ins := r.builder().Insert(UserProgressTable.Name).
		Columns(columnNames(UserProgressColumns)...).
		Values(p.ID, p.UserID, p.RoadmapID, p.CompletedLessons, p.AssessmentsTaken,
			p.AverageAccuracy, p.TotalTimeSpent, p.CurrentWeek, p.UpdatedAt)
	if _, err := r.exec(ctx, ins); err != nil {
		return fmt.Errorf("create progress: %w", err)
	}
	return nil
}

func (r *progressRepo) Get(ctx context.Context, userID, roadmapID string) (*UserProgress, error) {
	sel := r.selectProgress().Where(entsql.And(
		entsql.EQ("user_id", userID),
		entsql.EQ("roadmap_id", roadmapID),
	))

	var p UserProgress
	err := r.first(ctx, sel, func(rows *sql.Rows) error {
		return scanProgress(rows, &p)
	})
	if err != nil {
		return nil, fmt.Errorf("get progress: %w", err)
	}
	return &p, nil
}

// Update overwrites the aggregate columns of the row identified by p.ID.
func (r *progressRepo) Update(ctx context.Context, p *UserProgress) error {
	p.UpdatedAt = time.Now().UTC()
	upd := r.builder().Update(UserProgressTable.Name).
		Set("completed_lessons", p.CompletedLessons).
		Set("assessments_taken", p.AssessmentsTaken).
		Set("average_accuracy", p.AverageAccuracy).
		Set("total_time_spent", p.TotalTimeSpent).
		Set("current_week", p.CurrentWeek).
		Set("updated_at", p.UpdatedAt).
		Where(entsql.EQ("id", p.ID))
	if err := r.execOne(ctx, upd); err != nil {
		return fmt.Errorf("update progress %s: %w", p.ID, err)
	}
	return nil
}

func (r *progressRepo) List(ctx context.Context) ([]UserProgress, error) {
	var out []UserProgress
	err := r.each(ctx, r.selectProgress().OrderBy("user_id", "updated_at"), func(rows *sql.Rows) error {
		var p UserProgress
		if err := scanProgress(rows, &p); err != nil {
			return err
		}
		out = append(out, p)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list progress: %w", err)
	}
	return out, nil
}

func (r *progressRepo) selectProgress() *entsql.Selector {
	return r.builder().Select(columnNames(UserProgressColumns)...).
		From(r.builder().Table(UserProgressTable.Name))
}

func scanProgress(rows *sql.Rows, p *UserProgress) error {
	return rows.Scan(&p.ID, &p.UserID, &p.RoadmapID, &p.CompletedLessons, &p.AssessmentsTaken,
		&p.AverageAccuracy, &p.TotalTimeSpent, &p.CurrentWeek, &p.UpdatedAt)
}
