package pathgen

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/pathwise/internal/llm"
)

func TestWeekPlans_SurviveNormalize(t *testing.T) {
	want := []WeekPlan{
		{Title: "Basics {setup}", Topics: []TopicSpec{
			{Title: "Syntax", LessonObjective: "Read [Go] code", EstimatedTime: "30 minutes"},
			{Title: "Types", LessonObjective: "Use \"the\" type system", EstimatedTime: "45 minutes"},
		}},
		{Title: "Concurrency", Topics: []TopicSpec{
			{Title: "Goroutines", LessonObjective: "Start work\nconcurrently", EstimatedTime: "1 hour"},
		}},
	}
	raw, err := json.Marshal(want)
	require.NoError(t, err)

	wrappers := []string{
		"%s",
		"```json\n%s\n```",
		"```\n%s\n```",
		"Here is your curriculum:\n```json\n%s\n```\nGood luck!",
		"Sure! %s Hope that helps.",
	}
	for _, w := range wrappers {
		t.Run(w, func(t *testing.T) {
			var got []WeekPlan
			require.NoError(t, json.Unmarshal([]byte(llm.Normalize(fmt.Sprintf(w, raw))), &got))
			assert.Equal(t, want, got)
		})
	}
}
