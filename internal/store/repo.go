package store

import (
	"context"
	"encoding/json"
	"time"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit   int       // max results (0 = unlimited)
	Purpose string    // exact purpose match ("" = any)
	From    time.Time // timestamp >= From
	To      time.Time // timestamp <= To
}

// Profile is a registered user.
type Profile struct {
	ID          string
	Email       string
	DisplayName string
	IsAdmin     bool
	CreatedAt   time.Time
}

// Roadmap is a generated curriculum owned by one user. Answers and Weeks
// hold the onboarding answers and week plans as JSON.
type Roadmap struct {
	ID        string
	UserID    string
	Goal      string
	Answers   json.RawMessage
	Weeks     json.RawMessage
	CreatedAt time.Time
}

// Lesson is one topic of a roadmap week. Content is nil until the lesson
// body has been generated.
type Lesson struct {
	ID            string
	RoadmapID     string
	WeekIndex     int
	Position      int
	Title         string
	Objective     string
	EstimatedTime string
	Content       json.RawMessage
	CreatedAt     time.Time
}

// Completion records one finished lesson quiz.
type Completion struct {
	ID         string
	UserID     string
	LessonID   string
	Score      int
	TimeSpent  int
	AnsweredAt time.Time
}

// UserProgress is the aggregate progress row of a user on a roadmap.
// AverageAccuracy is stored unrounded; AssessmentsTaken is the number of
// scores folded into it.
type UserProgress struct {
	ID               string
	UserID           string
	RoadmapID        string
	CompletedLessons int
	AssessmentsTaken int
	AverageAccuracy  float64
	TotalTimeSpent   int
	CurrentWeek      int
	UpdatedAt        time.Time
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMRequestEvent is a stored LLMRequestEventData.
type LLMRequestEvent struct {
	ID        int64
	Timestamp time.Time
	LLMRequestEventData
}

// LLMUsageStats aggregates LLM events by purpose.
type LLMUsageStats struct {
	Purpose      string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// LLMModelUsage aggregates LLM events by model.
type LLMModelUsage struct {
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
}

// ProfileRepo manages user profiles.
type ProfileRepo interface {
	Create(ctx context.Context, p *Profile) error
	Get(ctx context.Context, id string) (*Profile, error)
	GetByEmail(ctx context.Context, email string) (*Profile, error)
	List(ctx context.Context) ([]Profile, error)
}

// RoadmapRepo manages roadmaps. Deleting a roadmap cascades to its lessons,
// their completions and the progress row.
type RoadmapRepo interface {
	Create(ctx context.Context, r *Roadmap) error
	Get(ctx context.Context, id string) (*Roadmap, error)
	ListByUser(ctx context.Context, userID string) ([]Roadmap, error)
	Delete(ctx context.Context, id string) error
}

// LessonRepo manages lessons.
type LessonRepo interface {
	Create(ctx context.Context, l *Lesson) error
	Get(ctx context.Context, id string) (*Lesson, error)
	// ListByRoadmap returns lessons ordered by week then position.
	ListByRoadmap(ctx context.Context, roadmapID string) ([]Lesson, error)
	SetContent(ctx context.Context, id string, content json.RawMessage) error
}

// CompletionRepo manages lesson completions.
type CompletionRepo interface {
	Create(ctx context.Context, c *Completion) error
	// ListByUserRoadmap returns the user's completions for lessons of the
	// roadmap, newest first.
	ListByUserRoadmap(ctx context.Context, userID, roadmapID string) ([]Completion, error)
}

// ProgressRepo manages user_progress rows.
type ProgressRepo interface {
	Create(ctx context.Context, p *UserProgress) error
	Get(ctx context.Context, userID, roadmapID string) (*UserProgress, error)
	Update(ctx context.Context, p *UserProgress) error
	List(ctx context.Context) ([]UserProgress, error)
}

// EventRepo provides append and query access to LLM request events.
type EventRepo interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// QueryLLMEvents returns events newest first.
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMRequestEvent, error)

	// GetLLMEvent returns a single event or ErrNotFound.
	GetLLMEvent(ctx context.Context, id int64) (*LLMRequestEvent, error)

	LLMUsageByPurpose(ctx context.Context) ([]LLMUsageStats, error)
	LLMUsageByModel(ctx context.Context) ([]LLMModelUsage, error)
}
