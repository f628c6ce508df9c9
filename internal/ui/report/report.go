// Package report renders learning data for the terminal.
package report

import (
	"fmt"
	"strings"

	"github.com/abhisek/pathwise/internal/learning"
	"github.com/abhisek/pathwise/internal/pathgen"
	"github.com/abhisek/pathwise/internal/progress"
	"github.com/abhisek/pathwise/internal/ui/components"
	"github.com/abhisek/pathwise/internal/ui/theme"
)

// Width of rendered progress bars.
const Width = 60

// Progress renders a roadmap with per-week bars and lesson states.
func Progress(p *learning.RoadmapProgress) string {
	var b strings.Builder
	b.WriteString(theme.Title.Render(p.Goal) + "\n")
	b.WriteString(components.NewProgressBar("Overall", p.Snapshot.OverallPercent, true, Width).View() + "\n\n")

	for _, w := range p.Weeks {
		label := fmt.Sprintf("Week %d", w.Index+1)
		if w.Title != "" {
			label += ": " + w.Title
		}
		b.WriteString(theme.Body.Bold(true).Render(label) + "\n")
		b.WriteString(components.NewProgressBar("", w.Percent, true, Width).View() + "\n")
		for _, l := range w.Lessons {
			b.WriteString("  " + lessonLine(l) + "\n")
		}
		b.WriteString("\n")
	}

	b.WriteString(Summary(p.Snapshot))
	return b.String()
}

func lessonLine(l learning.LessonStatus) string {
	switch {
	case l.Completed:
		return theme.Completed.Render(fmt.Sprintf("✓ %s (%d%%)", l.Title, l.Score))
	case l.Unlocked:
		return theme.Unlocked.Render("▶ "+l.Title) + theme.Hint.Render("  "+l.EstimatedTime)
	default:
		return theme.Locked.Render("· " + l.Title)
	}
}

// Summary renders the headline numbers of a snapshot.
func Summary(s progress.ProgressSnapshot) string {
	return theme.Card.Render(fmt.Sprintf(
		"Lessons %d/%d   Accuracy %.2f%%   Time %d min   Current week %d",
		s.CompletedCount, s.TotalCount,
		progress.Round2(s.RunningAverageAccuracy),
		s.TotalTimeSpent,
		s.CurrentWeek+1,
	))
}

// Questions renders onboarding questions as a numbered list.
func Questions(goal string, qs []pathgen.QuestionSpec) string {
	var b strings.Builder
	b.WriteString(theme.Title.Render(goal) + "\n\n")
	for i, q := range qs {
		b.WriteString(theme.Body.Render(fmt.Sprintf("%d. %s", i+1, q.Question)) + "\n")
		for _, o := range q.Options {
			b.WriteString(theme.Subtitle.Render("   - "+o) + "\n")
		}
	}
	return b.String()
}
