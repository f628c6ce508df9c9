package pathgen

// QuestionSpec is one onboarding question with its answer options.
type QuestionSpec struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
}

// Answer is the option a user picked for one onboarding question. Answers
// are kept as an ordered slice so prompts list them in the order asked.
type Answer struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// WeekPlan is one week of a curriculum. The ordered []WeekPlan is the
// authoritative curriculum structure.
type WeekPlan struct {
	Title  string      `json:"title"`
	Topics []TopicSpec `json:"topics"`
}

// TopicSpec is one lesson within a week.
type TopicSpec struct {
	Title           string `json:"title"`
	LessonObjective string `json:"lessonObjective"`
	EstimatedTime   string `json:"estimatedTime"`
}

// LessonRef identifies the lesson whose content is being generated.
// Goal and WeekTitle are optional context for the prompt.
type LessonRef struct {
	Title           string
	LessonObjective string
	EstimatedTime   string
	WeekTitle       string
	Goal            string
}

// LessonContent is the full body of a lesson.
type LessonContent struct {
	Title               string               `json:"title"`
	LessonObjective     string               `json:"lessonObjective"`
	EstimatedTime       string               `json:"estimatedTime"`
	LessonContent       string               `json:"lessonContent"`
	KeyConcepts         []string             `json:"keyConcepts"`
	ExampleCode         []CodeExample        `json:"exampleCode"`
	AssessmentQuestions []AssessmentQuestion `json:"assessmentQuestions"`
}

// CodeExample is a worked example inside a lesson.
type CodeExample struct {
	Description string `json:"description"`
	Code        string `json:"code"`
	Output      string `json:"output"`
}

// AssessmentQuestion is one multiple-choice quiz question.
type AssessmentQuestion struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
	Answer   string   `json:"answer"`
}
