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

type lessonRepo struct {
	repos
}

func (r *lessonRepo) Create(ctx context.Context, l *Lesson) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	if l.CreatedAt.IsZero() {
		l.CreatedAt = time.Now().UTC()
	}

	ins := r.builder().Insert(LessonsTable.Name).
		Columns(columnNames(LessonsColumns)...).
		Values(l.ID, l.RoadmapID, l.WeekIndex, l.Position, l.Title, l.Objective,
			l.EstimatedTime, jsonText(l.Content), l.CreatedAt)
	if _, err := r.exec(ctx, ins); err != nil {
		return fmt.Errorf("create lesson: %w", err)
	}
	return nil
}

func (r *lessonRepo) Get(ctx context.Context, id string) (*Lesson, error) {
	var l Lesson
	err := r.first(ctx, r.selectLessons().Where(entsql.EQ("id", id)), func(rows *sql.Rows) error {
		return scanLesson(rows, &l)
	})
	if err != nil {
		return nil, fmt.Errorf("get lesson %s: %w", id, err)
	}
	return &l, nil
}

func (r *lessonRepo) ListByRoadmap(ctx context.Context, roadmapID string) ([]Lesson, error) {
	sel := r.selectLessons().
		Where(entsql.EQ("roadmap_id", roadmapID)).
		OrderBy("week_index", "position")

	var out []Lesson
	err := r.each(ctx, sel, func(rows *sql.Rows) error {
		var l Lesson
		if err := scanLesson(rows, &l); err != nil {
			return err
		}
		out = append(out, l)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list lessons: %w", err)
	}
	return out, nil
}

func (r *lessonRepo) SetContent(ctx context.Context, id string, content json.RawMessage) error {
	upd := r.builder().Update(LessonsTable.Name).
		Set("content", jsonText(content)).
		Where(entsql.EQ("id", id))
	if err := r.execOne(ctx, upd); err != nil {
		return fmt.Errorf("set lesson content %s: %w", id, err)
	}
	return nil
}

func (r *lessonRepo) selectLessons() *entsql.Selector {
	return r.builder().Select(columnNames(LessonsColumns)...).
		From(r.builder().Table(LessonsTable.Name))
}

func scanLesson(rows *sql.Rows, l *Lesson) error {
	var content sql.NullString
	err := rows.Scan(&l.ID, &l.RoadmapID, &l.WeekIndex, &l.Position, &l.Title,
		&l.Objective, &l.EstimatedTime, &content, &l.CreatedAt)
	if err != nil {
		return err
	}
	if content.Valid {
		l.Content = json.RawMessage(content.String)
	}
	return nil
}
