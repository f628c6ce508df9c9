// Package progress derives completion and accuracy statistics from recorded
// lesson completions and the curriculum structure. Everything here is pure.
package progress

import (
	"math"
	"time"
)

// Completion is one recorded quiz result.
type Completion struct {
	LessonID   string
	Score      int // 0..100
	TimeSpent  int // minutes, non-negative
	AnsweredAt time.Time
}

// Lesson is the position of a lesson in the curriculum. A lesson slice is
// always in curriculum order: week by week, position by position.
type Lesson struct {
	ID        string
	WeekIndex int
	Position  int
}

// ProgressSnapshot is recomputed on demand and never persisted as is.
type ProgressSnapshot struct {
	CompletedCount         int     `json:"completedCount"`
	TotalCount             int     `json:"totalCount"`
	RunningAverageAccuracy float64 `json:"runningAverageAccuracy"`
	TotalTimeSpent         int     `json:"totalTimeSpent"`
	CurrentWeek            int     `json:"currentWeek"`
	CurrentWeekPercent     int     `json:"currentWeekPercent"`
	OverallPercent         int     `json:"overallPercent"`
}

// IsCompleted reports whether any completion matches lessonID.
func IsCompleted(lessonID string, completions []Completion) bool {
	for _, c := range completions {
		if c.LessonID == lessonID {
			return true
		}
	}
	return false
}

// ScoreFor returns the score of the most recent completion of lessonID,
// or 0 if the lesson has none.
func ScoreFor(lessonID string, completions []Completion) int {
	var latest *Completion
	for i := range completions {
		c := &completions[i]
		if c.LessonID != lessonID {
			continue
		}
		if latest == nil || c.AnsweredAt.After(latest.AnsweredAt) {
			latest = c
		}
	}
	if latest == nil {
		return 0
	}
	return latest.Score
}

// Unlocked reports whether the lesson at index may be opened. The first
// lesson is always open; every other lesson opens once its predecessor is
// completed. Out-of-range indexes are locked.
func Unlocked(index int, lessons []Lesson, completions []Completion) bool {
	if index < 0 || index >= len(lessons) {
		return false
	}
	if index == 0 {
		return true
	}
	return IsCompleted(lessons[index-1].ID, completions)
}

// WeekProgressPercent is the rounded share of weekLessons that are
// completed, 0 for an empty week.
func WeekProgressPercent(weekLessons []Lesson, completions []Completion) int {
	return percent(weekLessons, completions)
}

// OverallProgressPercent is WeekProgressPercent over the whole curriculum.
func OverallProgressPercent(allLessons []Lesson, completions []Completion) int {
	return percent(allLessons, completions)
}

func percent(lessons []Lesson, completions []Completion) int {
	if len(lessons) == 0 {
		return 0
	}
	done := CompletedCount(lessons, completions)
	return int(math.Round(100 * float64(done) / float64(len(lessons))))
}

// CompletedCount counts the lessons that have at least one completion.
func CompletedCount(lessons []Lesson, completions []Completion) int {
	done := make(map[string]bool, len(completions))
	for _, c := range completions {
		done[c.LessonID] = true
	}
	n := 0
	for _, l := range lessons {
		if done[l.ID] {
			n++
		}
	}
	return n
}

// UpdateRunningAccuracy folds one more score into a running average.
// The result is not rounded.
func UpdateRunningAccuracy(oldAvg float64, oldCount int, newScore int) float64 {
	if oldCount < 0 {
		oldCount = 0
	}
	return (oldAvg*float64(oldCount) + float64(newScore)) / float64(oldCount+1)
}

// Accuracy is a running average together with the number of scores in it.
type Accuracy struct {
	Average float64
	Count   int
}

// Record folds score into the average.
func (a *Accuracy) Record(score int) {
	a.Average = UpdateRunningAccuracy(a.Average, a.Count, score)
	a.Count++
}

// Merge combines two running averages, weighting each by its count.
func (a Accuracy) Merge(b Accuracy) Accuracy {
	total := a.Count + b.Count
	if total == 0 {
		return Accuracy{}
	}
	return Accuracy{
		Average: (a.Average*float64(a.Count) + b.Average*float64(b.Count)) / float64(total),
		Count:   total,
	}
}

// WeekLessons returns the lessons of one week, in curriculum order.
func WeekLessons(lessons []Lesson, week int) []Lesson {
	var out []Lesson
	for _, l := range lessons {
		if l.WeekIndex == week {
			out = append(out, l)
		}
	}
	return out
}

// CurrentWeek is the week of the first lesson not yet completed, or the
// last week once everything is done. It is 0 for an empty curriculum.
func CurrentWeek(lessons []Lesson, completions []Completion) int {
	for _, l := range lessons {
		if !IsCompleted(l.ID, completions) {
			return l.WeekIndex
		}
	}
	if len(lessons) == 0 {
		return 0
	}
	return lessons[len(lessons)-1].WeekIndex
}

// Snapshot derives the progress summary for one roadmap. The running
// average comes from acc, which is maintained incrementally, and is never
// recomputed from completions.
func Snapshot(lessons []Lesson, completions []Completion, acc Accuracy) ProgressSnapshot {
	week := CurrentWeek(lessons, completions)

	spent := 0
	for _, c := range completions {
		spent += c.TimeSpent
	}

	return ProgressSnapshot{
		CompletedCount:         CompletedCount(lessons, completions),
		TotalCount:             len(lessons),
		RunningAverageAccuracy: acc.Average,
		TotalTimeSpent:         spent,
		CurrentWeek:            week,
		CurrentWeekPercent:     WeekProgressPercent(WeekLessons(lessons, week), completions),
		OverallPercent:         OverallProgressPercent(lessons, completions),
	}
}

// Round2 rounds to two decimals for display.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
