package pathgen

import (
	"fmt"
	"strings"
)

const formatRules = `- Respond with raw JSON only. No prose before or after it.
- Do not wrap the JSON in markdown code fences.
- Use exactly the field names shown, with the same capitalization.`

// BuildQuestionsPrompt asks for the onboarding questions that calibrate a
// curriculum to the learner.
func BuildQuestionsPrompt(goal string, counts Counts) string {
	counts = counts.withDefaults()
	var b strings.Builder

	b.WriteString("You are designing a personalized learning path.\n")
	b.WriteString(fmt.Sprintf("Learning goal: %s\n", goal))

	b.WriteString(fmt.Sprintf(`
Instructions:
Write exactly %d multiple-choice questions that reveal the learner's current level, available time and preferred learning style for this goal.
Each question has exactly %d short answer options.
Return a JSON array of %d objects shaped like:
[{"question": "string", "options": ["string"]}]
%s`, counts.Questions, counts.Options, counts.Questions, formatRules))

	return b.String()
}

// BuildRoadmapPrompt asks for the week-by-week curriculum. Answers are
// listed one per line as "question: answer", in the order given.
func BuildRoadmapPrompt(goal string, answers []Answer, counts Counts) string {
	counts = counts.withDefaults()
	var b strings.Builder

	b.WriteString("You are designing a personalized learning path.\n")
	b.WriteString(fmt.Sprintf("Learning goal: %s\n", goal))

	b.WriteString("\nLearner answers:\n")
	if len(answers) == 0 {
		b.WriteString("None\n")
	}
	for _, a := range answers {
		b.WriteString(fmt.Sprintf("%s: %s\n", a.Question, a.Answer))
	}

	b.WriteString(fmt.Sprintf(`
Instructions:
Create a %d-week curriculum tailored to the answers above. Each week has a title and a few focused topics, ordered from fundamentals to advanced material.
Every topic is one lesson with a clear objective and an estimated time such as "30 minutes".
Return a JSON array of exactly %d objects shaped like:
[{"title": "string", "topics": [{"title": "string", "lessonObjective": "string", "estimatedTime": "string"}]}]
%s`, counts.Weeks, counts.Weeks, formatRules))

	return b.String()
}

// BuildLessonPrompt asks for the full content of one lesson.
func BuildLessonPrompt(lesson LessonRef, counts Counts) string {
	counts = counts.withDefaults()
	var b strings.Builder

	b.WriteString("You are an expert teacher writing one lesson of a learning path.\n")
	if lesson.Goal != "" {
		b.WriteString(fmt.Sprintf("Learning goal: %s\n", lesson.Goal))
	}
	if lesson.WeekTitle != "" {
		b.WriteString(fmt.Sprintf("Week: %s\n", lesson.WeekTitle))
	}
	b.WriteString(fmt.Sprintf("Lesson title: %s\n", lesson.Title))
	b.WriteString(fmt.Sprintf("Lesson objective: %s\n", lesson.LessonObjective))
	b.WriteString(fmt.Sprintf("Estimated time: %s\n", lesson.EstimatedTime))

	b.WriteString(fmt.Sprintf(`
Instructions:
Write the lesson so it can be completed in the estimated time.
1. lessonContent explains the topic in clear paragraphs.
2. keyConcepts lists exactly %d key concepts.
3. exampleCode has exactly %d worked examples, each with a description, the code and its output.
4. assessmentQuestions has exactly %d multiple-choice questions. The answer must be the exact text of one of the options.
Repeat the title, lessonObjective and estimatedTime given above.
Return one JSON object shaped like:
{"title": "string", "lessonObjective": "string", "estimatedTime": "string", "lessonContent": "string", "keyConcepts": ["string"], "exampleCode": [{"description": "string", "code": "string", "output": "string"}], "assessmentQuestions": [{"question": "string", "options": ["string"], "answer": "string"}]}
%s`, counts.KeyConcepts, counts.Examples, counts.Assessments, formatRules))

	return b.String()
}
