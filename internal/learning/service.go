// Package learning runs the learning-path workflows: onboarding, roadmap
// creation, lesson delivery and quiz completion. It persists what the
// generator produces and keeps the per-roadmap progress row current.
package learning

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/abhisek/pathwise/internal/cache"
	"github.com/abhisek/pathwise/internal/logger"
	"github.com/abhisek/pathwise/internal/pathgen"
	"github.com/abhisek/pathwise/internal/progress"
	"github.com/abhisek/pathwise/internal/store"
)

// Generator produces learning content. *pathgen.Service implements it.
type Generator interface {
	GenerateQuestions(ctx context.Context, goal string) ([]pathgen.QuestionSpec, error)
	GenerateRoadmap(ctx context.Context, goal string, answers []pathgen.Answer) ([]pathgen.WeekPlan, error)
	GenerateLessonContent(ctx context.Context, lesson pathgen.LessonRef) (*pathgen.LessonContent, error)
}

// Service implements the learning workflows over the store.
type Service struct {
	store *store.Store
	gen   Generator
	cache cache.Cache
	log   *logger.Logger

	lessons singleflight.Group
}

// NewService creates a learning service.
func NewService(st *store.Store, gen Generator, c cache.Cache, log *logger.Logger) *Service {
	return &Service{
		store: st,
		gen:   gen,
		cache: c,
		log:   log.With("component", "learning.Service"),
	}
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
}

// Register creates a profile for email.
func (s *Service) Register(ctx context.Context, email, displayName string, admin bool) (*store.Profile, error) {
	addr, err := mail.ParseAddress(strings.TrimSpace(email))
	if err != nil {
		return nil, invalid("email %q is not valid", email)
	}
	email = strings.ToLower(addr.Address)

	_, err = s.store.Profiles().GetByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, fmt.Errorf("profile %s: %w", email, ErrConflict)
	case !errors.Is(err, store.ErrNotFound):
		return nil, err
	}

	p := &store.Profile{Email: email, DisplayName: strings.TrimSpace(displayName), IsAdmin: admin}
	if err := s.store.Profiles().Create(ctx, p); err != nil {
		return nil, err
	}
	s.log.Info("profile registered", "user_id", p.ID, "admin", admin)
	return p, nil
}

// Profile returns the profile of userID.
func (s *Service) Profile(ctx context.Context, userID string) (*store.Profile, error) {
	return s.store.Profiles().Get(ctx, userID)
}

// StartOnboarding generates the calibration questions for goal.
func (s *Service) StartOnboarding(ctx context.Context, userID, goal string) ([]pathgen.QuestionSpec, error) {
	goal = strings.TrimSpace(goal)
	if goal == "" {
		return nil, invalid("goal is required")
	}
	qs, err := s.gen.GenerateQuestions(ctx, goal)
	if err != nil {
		return nil, err
	}
	s.log.Debug("onboarding questions generated", "user_id", userID, "count", len(qs))
	return qs, nil
}

// CreateRoadmap generates a curriculum for goal and stores it together with
// one lesson row per topic and a fresh progress row. Nothing is stored when
// any step fails.
func (s *Service) CreateRoadmap(ctx context.Context, userID, goal string, answers []pathgen.Answer) (*store.Roadmap, error) {
	goal = strings.TrimSpace(goal)
	if goal == "" {
		return nil, invalid("goal is required")
	}
	if _, err := s.store.Profiles().Get(ctx, userID); err != nil {
		return nil, err
	}
	if answers == nil {
		answers = []pathgen.Answer{}
	}

	weeks, err := s.gen.GenerateRoadmap(ctx, goal, answers)
	if err != nil {
		return nil, err
	}

	answersJSON, err := json.Marshal(answers)
	if err != nil {
		return nil, fmt.Errorf("encode answers: %w", err)
	}
	weeksJSON, err := json.Marshal(weeks)
	if err != nil {
		return nil, fmt.Errorf("encode weeks: %w", err)
	}

	rm := &store.Roadmap{UserID: userID, Goal: goal, Answers: answersJSON, Weeks: weeksJSON}
	err = s.store.InTx(ctx, func(tx *store.Tx) error {
		if err := tx.Roadmaps().Create(ctx, rm); err != nil {
			return err
		}
		for wi, week := range weeks {
			for pi, topic := range week.Topics {
				l := &store.Lesson{
					RoadmapID:     rm.ID,
					WeekIndex:     wi,
					Position:      pi,
					Title:         topic.Title,
					Objective:     topic.LessonObjective,
					EstimatedTime: topic.EstimatedTime,
				}
				if err := tx.Lessons().Create(ctx, l); err != nil {
					return err
				}
			}
		}
		return tx.Progress().Create(ctx, &store.UserProgress{UserID: userID, RoadmapID: rm.ID})
	})
	if err != nil {
		return nil, fmt.Errorf("store roadmap: %w", err)
	}

	s.log.Info("roadmap created", "user_id", userID, "roadmap_id", rm.ID, "weeks", len(weeks))
	return rm, nil
}

// ListRoadmaps returns the user's roadmaps, newest first.
func (s *Service) ListRoadmaps(ctx context.Context, userID string) ([]store.Roadmap, error) {
	return s.store.Roadmaps().ListByUser(ctx, userID)
}

// Roadmap returns one roadmap owned by userID.
func (s *Service) Roadmap(ctx context.Context, userID, roadmapID string) (*store.Roadmap, error) {
	return s.ownedRoadmap(ctx, s.store.Roadmaps(), userID, roadmapID)
}

func (s *Service) ownedRoadmap(ctx context.Context, repo store.RoadmapRepo, userID, roadmapID string) (*store.Roadmap, error) {
	rm, err := repo.Get(ctx, roadmapID)
	if err != nil {
		return nil, err
	}
	if rm.UserID != userID {
		return nil, fmt.Errorf("roadmap %s: %w", roadmapID, ErrForbidden)
	}
	return rm, nil
}

// LessonContent returns the body of a lesson, generating it on first use.
// The body is served from the cache, then from the lesson row, and only
// then generated. Concurrent requests for the same lesson share a single
// generation call.
func (s *Service) LessonContent(ctx context.Context, userID, lessonID string) (*pathgen.LessonContent, error) {
	lesson, err := s.store.Lessons().Get(ctx, lessonID)
	if err != nil {
		return nil, err
	}
	rm, err := s.ownedRoadmap(ctx, s.store.Roadmaps(), userID, lesson.RoadmapID)
	if err != nil {
		return nil, err
	}

	lessons, err := s.store.Lessons().ListByRoadmap(ctx, rm.ID)
	if err != nil {
		return nil, err
	}
	completions, err := s.store.Completions().ListByUserRoadmap(ctx, userID, rm.ID)
	if err != nil {
		return nil, err
	}
	if !progress.Unlocked(indexOf(lessons, lessonID), toLessons(lessons), toCompletions(completions)) {
		return nil, fmt.Errorf("lesson %s: %w", lessonID, ErrLocked)
	}

	if lc, ok := s.cached(ctx, lessonID); ok {
		return lc, nil
	}

	v, err, shared := s.lessons.Do(lessonID, func() (any, error) {
		// Waiters share this call, so it outlives the first caller's
		// context. The generator's timeout still bounds it.
		return s.loadOrGenerate(context.WithoutCancel(ctx), rm, lessonID)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		s.log.Debug("lesson content shared", "lesson_id", lessonID)
	}
	return v.(*pathgen.LessonContent), nil
}

func (s *Service) cached(ctx context.Context, lessonID string) (*pathgen.LessonContent, bool) {
	raw, ok, err := s.cache.Get(ctx, cache.LessonKey(lessonID))
	if err != nil {
		s.log.Warn("lesson cache read failed", "lesson_id", lessonID, "error", err.Error())
		return nil, false
	}
	if !ok {
		return nil, false
	}
	var lc pathgen.LessonContent
	if err := json.Unmarshal(raw, &lc); err != nil {
		s.log.Warn("discarding unreadable cached lesson", "lesson_id", lessonID, "error", err.Error())
		return nil, false
	}
	return &lc, true
}

func (s *Service) loadOrGenerate(ctx context.Context, rm *store.Roadmap, lessonID string) (*pathgen.LessonContent, error) {
	// Re-read: a previous flight may have stored the body after our
	// cache miss.
	lesson, err := s.store.Lessons().Get(ctx, lessonID)
	if err != nil {
		return nil, err
	}

	if len(lesson.Content) > 0 {
		var lc pathgen.LessonContent
		if err := json.Unmarshal(lesson.Content, &lc); err == nil {
			s.fill(ctx, lessonID, lesson.Content)
			return &lc, nil
		}
		s.log.Warn("regenerating unreadable stored lesson", "lesson_id", lessonID)
	}

	ref := pathgen.LessonRef{
		Title:           lesson.Title,
		LessonObjective: lesson.Objective,
		EstimatedTime:   lesson.EstimatedTime,
		Goal:            rm.Goal,
		WeekTitle:       weekTitle(rm.Weeks, lesson.WeekIndex),
	}
	lc, err := s.gen.GenerateLessonContent(ctx, ref)
	if err != nil {
		return nil, err
	}

	raw, err := json.Marshal(lc)
	if err != nil {
		return nil, fmt.Errorf("encode lesson content: %w", err)
	}
	if err := s.store.Lessons().SetContent(ctx, lessonID, raw); err != nil {
		return nil, err
	}
	s.fill(ctx, lessonID, raw)
	s.log.Info("lesson content generated", "lesson_id", lessonID, "roadmap_id", rm.ID)
	return lc, nil
}

func (s *Service) fill(ctx context.Context, lessonID string, raw []byte) {
	if err := s.cache.Set(ctx, cache.LessonKey(lessonID), raw); err != nil {
		s.log.Warn("lesson cache write failed", "lesson_id", lessonID, "error", err.Error())
	}
}

// CompleteLesson records a quiz result and folds it into the roadmap's
// progress row. It returns the updated snapshot.
func (s *Service) CompleteLesson(ctx context.Context, userID, lessonID string, score, timeSpent int) (*progress.ProgressSnapshot, error) {
	if score < 0 || score > 100 {
		return nil, invalid("score must be between 0 and 100, got %d", score)
	}
	if timeSpent < 0 {
		return nil, invalid("timeSpent must not be negative, got %d", timeSpent)
	}

	var snap progress.ProgressSnapshot
	err := s.store.InTx(ctx, func(tx *store.Tx) error {
		lesson, err := tx.Lessons().Get(ctx, lessonID)
		if err != nil {
			return err
		}
		rm, err := s.ownedRoadmap(ctx, tx.Roadmaps(), userID, lesson.RoadmapID)
		if err != nil {
			return err
		}
		rows, err := tx.Lessons().ListByRoadmap(ctx, rm.ID)
		if err != nil {
			return err
		}
		lessons := toLessons(rows)

		prior, err := tx.Completions().ListByUserRoadmap(ctx, userID, rm.ID)
		if err != nil {
			return err
		}
		if !progress.Unlocked(indexOf(rows, lessonID), lessons, toCompletions(prior)) {
			return fmt.Errorf("lesson %s: %w", lessonID, ErrLocked)
		}

		c := &store.Completion{UserID: userID, LessonID: lessonID, Score: score, TimeSpent: timeSpent}
		if err := tx.Completions().Create(ctx, c); err != nil {
			return err
		}
		completions := append(toCompletions(prior), progress.Completion{
			LessonID:   c.LessonID,
			Score:      c.Score,
			TimeSpent:  c.TimeSpent,
			AnsweredAt: c.AnsweredAt,
		})

		row, err := tx.Progress().Get(ctx, userID, rm.ID)
		if errors.Is(err, store.ErrNotFound) {
			row = &store.UserProgress{UserID: userID, RoadmapID: rm.ID}
			err = tx.Progress().Create(ctx, row)
		}
		if err != nil {
			return err
		}

		acc := progress.Accuracy{Average: row.AverageAccuracy, Count: row.AssessmentsTaken}
		acc.Record(score)

		snap = progress.Snapshot(lessons, completions, acc)
		row.AverageAccuracy = acc.Average
		row.AssessmentsTaken = acc.Count
		row.CompletedLessons = snap.CompletedCount
		row.TotalTimeSpent = snap.TotalTimeSpent
		row.CurrentWeek = snap.CurrentWeek
		return tx.Progress().Update(ctx, row)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("lesson completed", "user_id", userID, "lesson_id", lessonID, "score", score)
	return &snap, nil
}

// Progress returns the lesson, week and roadmap level progress of userID.
func (s *Service) Progress(ctx context.Context, userID, roadmapID string) (*RoadmapProgress, error) {
	rm, err := s.ownedRoadmap(ctx, s.store.Roadmaps(), userID, roadmapID)
	if err != nil {
		return nil, err
	}
	rows, err := s.store.Lessons().ListByRoadmap(ctx, rm.ID)
	if err != nil {
		return nil, err
	}
	stored, err := s.store.Completions().ListByUserRoadmap(ctx, userID, rm.ID)
	if err != nil {
		return nil, err
	}

	var acc progress.Accuracy
	row, err := s.store.Progress().Get(ctx, userID, rm.ID)
	switch {
	case err == nil:
		acc = progress.Accuracy{Average: row.AverageAccuracy, Count: row.AssessmentsTaken}
	case !errors.Is(err, store.ErrNotFound):
		return nil, err
	}

	lessons := toLessons(rows)
	completions := toCompletions(stored)
	plans := decodeWeeks(rm.Weeks)

	out := &RoadmapProgress{
		RoadmapID: rm.ID,
		Goal:      rm.Goal,
		Snapshot:  progress.Snapshot(lessons, completions, acc),
	}

	for i, l := range rows {
		if len(out.Weeks) == 0 || out.Weeks[len(out.Weeks)-1].Index != l.WeekIndex {
			ws := WeekStatus{Index: l.WeekIndex}
			if l.WeekIndex < len(plans) {
				ws.Title = plans[l.WeekIndex].Title
			}
			ws.Percent = progress.WeekProgressPercent(progress.WeekLessons(lessons, l.WeekIndex), completions)
			out.Weeks = append(out.Weeks, ws)
		}
		week := &out.Weeks[len(out.Weeks)-1]
		week.Lessons = append(week.Lessons, LessonStatus{
			ID:            l.ID,
			WeekIndex:     l.WeekIndex,
			Position:      l.Position,
			Title:         l.Title,
			Objective:     l.Objective,
			EstimatedTime: l.EstimatedTime,
			Unlocked:      progress.Unlocked(i, lessons, completions),
			Completed:     progress.IsCompleted(l.ID, completions),
			Score:         progress.ScoreFor(l.ID, completions),
			HasContent:    len(l.Content) > 0,
		})
	}
	return out, nil
}

// AdminOverview aggregates every user's progress across roadmaps. Accuracy
// is merged weighted by the number of assessments behind each roadmap.
func (s *Service) AdminOverview(ctx context.Context, adminID string) ([]UserSummary, error) {
	admin, err := s.store.Profiles().Get(ctx, adminID)
	if err != nil {
		return nil, err
	}
	if !admin.IsAdmin {
		return nil, fmt.Errorf("admin overview: %w", ErrForbidden)
	}

	var (
		profiles []store.Profile
		rows     []store.UserProgress
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		profiles, err = s.store.Profiles().List(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		rows, err = s.store.Progress().List(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("admin overview: %w", err)
	}

	type agg struct {
		summary UserSummary
		acc     progress.Accuracy
	}
	byUser := make(map[string]*agg, len(profiles))
	out := make([]UserSummary, 0, len(profiles))
	for _, p := range profiles {
		byUser[p.ID] = &agg{summary: UserSummary{UserID: p.ID, Email: p.Email, DisplayName: p.DisplayName}}
	}
	for _, r := range rows {
		a, ok := byUser[r.UserID]
		if !ok {
			continue
		}
		a.summary.Roadmaps++
		a.summary.CompletedLessons += r.CompletedLessons
		a.summary.TotalTimeSpent += r.TotalTimeSpent
		a.acc = a.acc.Merge(progress.Accuracy{Average: r.AverageAccuracy, Count: r.AssessmentsTaken})
	}
	for _, p := range profiles {
		a := byUser[p.ID]
		a.summary.Assessments = a.acc.Count
		a.summary.AverageAccuracy = a.acc.Average
		out = append(out, a.summary)
	}
	return out, nil
}

// DeleteRoadmap removes a roadmap with its lessons, completions and
// progress row, and evicts cached lesson bodies.
func (s *Service) DeleteRoadmap(ctx context.Context, userID, roadmapID string) error {
	rm, err := s.ownedRoadmap(ctx, s.store.Roadmaps(), userID, roadmapID)
	if err != nil {
		return err
	}
	lessons, err := s.store.Lessons().ListByRoadmap(ctx, rm.ID)
	if err != nil {
		return err
	}
	if err := s.store.Roadmaps().Delete(ctx, rm.ID); err != nil {
		return err
	}

	keys := make([]string, len(lessons))
	for i, l := range lessons {
		keys[i] = cache.LessonKey(l.ID)
	}
	if err := s.cache.Delete(ctx, keys...); err != nil {
		s.log.Warn("lesson cache eviction failed", "roadmap_id", rm.ID, "error", err.Error())
	}
	s.log.Info("roadmap deleted", "user_id", userID, "roadmap_id", rm.ID)
	return nil
}
