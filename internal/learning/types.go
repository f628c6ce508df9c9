package learning

import (
	"errors"

	"github.com/abhisek/pathwise/internal/progress"
)

var (
	// ErrInvalid marks caller input that failed validation.
	ErrInvalid = errors.New("invalid input")

	// ErrLocked is returned for a lesson whose predecessor is not completed.
	ErrLocked = errors.New("lesson is locked")

	// ErrForbidden is returned when a user acts on another user's data.
	ErrForbidden = errors.New("forbidden")

	// ErrConflict is returned when registering an email that is taken.
	ErrConflict = errors.New("already exists")
)

// LessonStatus is one lesson as shown on a roadmap.
type LessonStatus struct {
	ID            string `json:"id"`
	WeekIndex     int    `json:"weekIndex"`
	Position      int    `json:"position"`
	Title         string `json:"title"`
	Objective     string `json:"lessonObjective"`
	EstimatedTime string `json:"estimatedTime"`
	Unlocked      bool   `json:"unlocked"`
	Completed     bool   `json:"completed"`
	Score         int    `json:"score"`
	HasContent    bool   `json:"hasContent"`
}

// WeekStatus groups the lessons of one week.
type WeekStatus struct {
	Index   int            `json:"index"`
	Title   string         `json:"title"`
	Percent int            `json:"percent"`
	Lessons []LessonStatus `json:"lessons"`
}

// RoadmapProgress is the full progress view of one roadmap.
type RoadmapProgress struct {
	RoadmapID string                    `json:"roadmapId"`
	Goal      string                    `json:"goal"`
	Weeks     []WeekStatus              `json:"weeks"`
	Snapshot  progress.ProgressSnapshot `json:"snapshot"`
}

// UserSummary aggregates one user's progress across all roadmaps.
type UserSummary struct {
	UserID           string  `json:"userId"`
	Email            string  `json:"email"`
	DisplayName      string  `json:"displayName"`
	Roadmaps         int     `json:"roadmaps"`
	CompletedLessons int     `json:"completedLessons"`
	TotalTimeSpent   int     `json:"totalTimeSpent"`
	Assessments      int     `json:"assessments"`
	AverageAccuracy  float64 `json:"averageAccuracy"`
}
