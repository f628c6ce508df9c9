package learning

import (
	"encoding/json"

	"github.com/abhisek/pathwise/internal/pathgen"
	"github.com/abhisek/pathwise/internal/progress"
	"github.com/abhisek/pathwise/internal/store"
)

func toLessons(rows []store.Lesson) []progress.Lesson {
	out := make([]progress.Lesson, len(rows))
	for i, l := range rows {
		out[i] = progress.Lesson{ID: l.ID, WeekIndex: l.WeekIndex, Position: l.Position}
	}
	return out
}

func toCompletions(rows []store.Completion) []progress.Completion {
	out := make([]progress.Completion, len(rows))
	for i, c := range rows {
		out[i] = progress.Completion{
			LessonID:   c.LessonID,
			Score:      c.Score,
			TimeSpent:  c.TimeSpent,
			AnsweredAt: c.AnsweredAt,
		}
	}
	return out
}

// indexOf returns the curriculum position of lessonID, or -1.
func indexOf(rows []store.Lesson, lessonID string) int {
	for i, l := range rows {
		if l.ID == lessonID {
			return i
		}
	}
	return -1
}

func decodeWeeks(raw json.RawMessage) []pathgen.WeekPlan {
	var weeks []pathgen.WeekPlan
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, &weeks); err != nil {
		return nil
	}
	return weeks
}

func weekTitle(raw json.RawMessage, week int) string {
	weeks := decodeWeeks(raw)
	if week < 0 || week >= len(weeks) {
		return ""
	}
	return weeks[week].Title
}
