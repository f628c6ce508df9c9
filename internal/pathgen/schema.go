package pathgen

import "github.com/abhisek/pathwise/internal/llm"

func nonEmptyString(desc string) map[string]any {
	return map[string]any{
		"type":        "string",
		"minLength":   1,
		"description": desc,
	}
}

func stringList(desc string, minItems int) map[string]any {
	return map[string]any{
		"type":        "array",
		"items":       map[string]any{"type": "string", "minLength": 1},
		"minItems":    minItems,
		"description": desc,
	}
}

var topicDefinition = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"title":           nonEmptyString("Lesson title"),
		"lessonObjective": nonEmptyString("What the learner can do after the lesson"),
		"estimatedTime":   nonEmptyString("Estimated time, e.g. 30 minutes"),
	},
	"required": []any{"title", "lessonObjective", "estimatedTime"},
}

// QuestionsSchema defines the onboarding questions payload. The root is an
// array; an object root is rejected.
var QuestionsSchema = &llm.Schema{
	Name:        "onboarding-questions",
	Description: "Multiple-choice questions that calibrate a learning path",
	Definition: map[string]any{
		"type":     "array",
		"minItems": 1,
		"items": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"question": nonEmptyString("The question text"),
				"options":  stringList("Answer options", 2),
			},
			"required": []any{"question", "options"},
		},
	},
}

// RoadmapSchema defines the week-by-week curriculum payload.
var RoadmapSchema = &llm.Schema{
	Name:        "week-plans",
	Description: "A week-by-week learning curriculum",
	Definition: map[string]any{
		"type":     "array",
		"minItems": 1,
		"items": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"title": nonEmptyString("Week title"),
				"topics": map[string]any{
					"type":     "array",
					"minItems": 1,
					"items":    topicDefinition,
				},
			},
			"required": []any{"title", "topics"},
		},
	},
}

// LessonContentSchema defines the lesson body payload.
var LessonContentSchema = &llm.Schema{
	Name:        "lesson-content",
	Description: "The full content of one lesson with examples and a short quiz",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"title":           nonEmptyString("Lesson title"),
			"lessonObjective": nonEmptyString("Lesson objective"),
			"estimatedTime":   nonEmptyString("Estimated time"),
			"lessonContent":   nonEmptyString("The lesson explanation"),
			"keyConcepts":     stringList("Key concepts covered", 1),
			"exampleCode": map[string]any{
				"type":     "array",
				"minItems": 1,
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"description": map[string]any{"type": "string"},
						"code":        map[string]any{"type": "string"},
						"output":      map[string]any{"type": "string"},
					},
					"required": []any{"description", "code", "output"},
				},
			},
			"assessmentQuestions": map[string]any{
				"type":     "array",
				"minItems": 1,
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"question": nonEmptyString("Quiz question"),
						"options":  stringList("Answer options", 2),
						"answer":   nonEmptyString("The correct option"),
					},
					"required": []any{"question", "options", "answer"},
				},
			},
		},
		"required": []any{
			"title", "lessonObjective", "estimatedTime", "lessonContent",
			"keyConcepts", "exampleCode", "assessmentQuestions",
		},
	},
}
