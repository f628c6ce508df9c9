package pathgen

import "time"

// Counts are the item counts requested from the model. They are written
// into the prompts; validation only requires non-empty sequences.
type Counts struct {
	Questions   int `yaml:"questions"`
	Options     int `yaml:"options"`
	Weeks       int `yaml:"weeks"`
	KeyConcepts int `yaml:"key_concepts"`
	Examples    int `yaml:"examples"`
	Assessments int `yaml:"assessments"`
}

// Config holds generation settings.
type Config struct {
	Counts Counts `yaml:"counts"`

	QuestionsTimeout time.Duration `yaml:"questions_timeout"`
	RoadmapTimeout   time.Duration `yaml:"roadmap_timeout"`
	LessonTimeout    time.Duration `yaml:"lesson_timeout"`

	MaxTokens   int     `yaml:"max_tokens"`
	Temperature float64 `yaml:"temperature"`
}

// DefaultCounts returns the counts used when none are configured.
func DefaultCounts() Counts {
	return Counts{
		Questions:   5,
		Options:     3,
		Weeks:       8,
		KeyConcepts: 3,
		Examples:    1,
		Assessments: 3,
	}
}

// DefaultConfig returns sensible defaults for generation. Questions are
// quick; a full curriculum gets the longest budget.
func DefaultConfig() Config {
	return Config{
		Counts:           DefaultCounts(),
		QuestionsTimeout: 30 * time.Second,
		RoadmapTimeout:   90 * time.Second,
		LessonTimeout:    60 * time.Second,
		MaxTokens:        8192,
		Temperature:      0.7,
	}
}

// withDefaults fills zero fields from DefaultConfig.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.QuestionsTimeout <= 0 {
		c.QuestionsTimeout = d.QuestionsTimeout
	}
	if c.RoadmapTimeout <= 0 {
		c.RoadmapTimeout = d.RoadmapTimeout
	}
	if c.LessonTimeout <= 0 {
		c.LessonTimeout = d.LessonTimeout
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = d.MaxTokens
	}
	c.Counts = c.Counts.withDefaults()
	return c
}

func (c Counts) withDefaults() Counts {
	d := DefaultCounts()
	pick := func(v, def int) int {
		if v > 0 {
			return v
		}
		return def
	}
	return Counts{
		Questions:   pick(c.Questions, d.Questions),
		Options:     pick(c.Options, d.Options),
		Weeks:       pick(c.Weeks, d.Weeks),
		KeyConcepts: pick(c.KeyConcepts, d.KeyConcepts),
		Examples:    pick(c.Examples, d.Examples),
		Assessments: pick(c.Assessments, d.Assessments),
	}
}
