// Package pathgen generates onboarding questions, curricula and lesson
// bodies with an LLM and decodes them into typed values.
package pathgen

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/abhisek/pathwise/internal/llm"
	"github.com/abhisek/pathwise/internal/logger"
)

// Operation names carried by GenerationFailed.
const (
	OpQuestions = "questions"
	OpRoadmap   = "roadmap"
	OpLesson    = "lesson content"
)

// GenerationFailed is the only error the Service returns. Its message is
// safe to show to users; Err keeps the cause for logs.
type GenerationFailed struct {
	Op      string
	Message string
	Err     error
}

func (e *GenerationFailed) Error() string { return e.Message }

func (e *GenerationFailed) Unwrap() error { return e.Err }

func generationFailed(op string, err error) *GenerationFailed {
	return &GenerationFailed{
		Op:      op,
		Message: fmt.Sprintf("failed to generate %s, please try again", op),
		Err:     err,
	}
}

// Service turns prompts into validated, typed generation results.
// It holds no mutable state and is safe for concurrent use.
type Service struct {
	exec *llm.Executor
	cfg  Config
	log  *logger.Logger
}

// NewService creates a generation service over provider.
func NewService(provider llm.Provider, cfg Config, log *logger.Logger) *Service {
	return &Service{
		exec: llm.NewExecutor(provider, log),
		cfg:  cfg.withDefaults(),
		log:  log.With("component", "pathgen.Service"),
	}
}

// Counts returns the effective item counts.
func (s *Service) Counts() Counts {
	return s.cfg.Counts
}

// GenerateQuestions returns the onboarding questions for goal.
func (s *Service) GenerateQuestions(ctx context.Context, goal string) ([]QuestionSpec, error) {
	ctx = llm.WithPurpose(ctx, llm.PurposeQuestions)
	prompt := BuildQuestionsPrompt(goal, s.cfg.Counts)
	return generate[[]QuestionSpec](ctx, s, OpQuestions, prompt, QuestionsSchema, s.cfg.QuestionsTimeout)
}

// GenerateRoadmap returns the week-by-week curriculum for goal.
func (s *Service) GenerateRoadmap(ctx context.Context, goal string, answers []Answer) ([]WeekPlan, error) {
	ctx = llm.WithPurpose(ctx, llm.PurposeRoadmap)
	prompt := BuildRoadmapPrompt(goal, answers, s.cfg.Counts)
	return generate[[]WeekPlan](ctx, s, OpRoadmap, prompt, RoadmapSchema, s.cfg.RoadmapTimeout)
}

// GenerateLessonContent returns the body of one lesson.
func (s *Service) GenerateLessonContent(ctx context.Context, lesson LessonRef) (*LessonContent, error) {
	ctx = llm.WithPurpose(ctx, llm.PurposeLesson)
	prompt := BuildLessonPrompt(lesson, s.cfg.Counts)
	out, err := generate[LessonContent](ctx, s, OpLesson, prompt, LessonContentSchema, s.cfg.LessonTimeout)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func generate[T any](ctx context.Context, s *Service, op, prompt string, schema *llm.Schema, timeout time.Duration) (T, error) {
	var out T

	req := llm.UserPrompt(prompt)
	req.Schema = schema
	req.MaxTokens = s.cfg.MaxTokens
	req.Temperature = s.cfg.Temperature

	decoded, err := s.exec.ExecuteRequest(ctx, req, timeout)
	if err != nil {
		return out, s.fail(op, err)
	}

	if err := llm.Validate(schema, decoded.Value); err != nil {
		return out, s.fail(op, err)
	}

	if err := json.Unmarshal(decoded.Raw, &out); err != nil {
		return out, s.fail(op, fmt.Errorf("decode %s: %w", schema.Name, err))
	}
	return out, nil
}

func (s *Service) fail(op string, err error) error {
	s.log.Warn("generation failed", "op", op, "error", err.Error())
	return generationFailed(op, err)
}
