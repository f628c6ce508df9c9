package store

import (
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

// Table definitions for the ent migrator. Column order here is the order
// used by the repositories' INSERT statements.
var (
	// ProfilesColumns holds the columns for the "profiles" table.
	ProfilesColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString, Size: 36},
		{Name: "email", Type: field.TypeString, Unique: true},
		{Name: "display_name", Type: field.TypeString, Default: ""},
		{Name: "is_admin", Type: field.TypeBool, Default: false},
		{Name: "created_at", Type: field.TypeTime},
	}
	// ProfilesTable holds the schema information for the "profiles" table.
	ProfilesTable = &schema.Table{
		Name:       "profiles",
		Columns:    ProfilesColumns,
		PrimaryKey: []*schema.Column{ProfilesColumns[0]},
	}

	// RoadmapsColumns holds the columns for the "roadmaps" table.
	RoadmapsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString, Size: 36},
		{Name: "user_id", Type: field.TypeString, Size: 36},
		{Name: "goal", Type: field.TypeString, Size: 2147483647},
		{Name: "answers", Type: field.TypeJSON},
		{Name: "weeks", Type: field.TypeJSON},
		{Name: "created_at", Type: field.TypeTime},
	}
	// RoadmapsTable holds the schema information for the "roadmaps" table.
	RoadmapsTable = &schema.Table{
		Name:       "roadmaps",
		Columns:    RoadmapsColumns,
		PrimaryKey: []*schema.Column{RoadmapsColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "roadmaps_profiles_roadmaps",
				Columns:    []*schema.Column{RoadmapsColumns[1]},
				RefColumns: []*schema.Column{ProfilesColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
		Indexes: []*schema.Index{
			{Name: "roadmap_user_id", Columns: []*schema.Column{RoadmapsColumns[1]}},
		},
	}

	// LessonsColumns holds the columns for the "lessons" table.
	LessonsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString, Size: 36},
		{Name: "roadmap_id", Type: field.TypeString, Size: 36},
		{Name: "week_index", Type: field.TypeInt},
		{Name: "position", Type: field.TypeInt},
		{Name: "title", Type: field.TypeString},
		{Name: "lesson_objective", Type: field.TypeString, Size: 2147483647, Default: ""},
		{Name: "estimated_time", Type: field.TypeString, Default: ""},
		{Name: "content", Type: field.TypeJSON, Nullable: true},
		{Name: "created_at", Type: field.TypeTime},
	}
	// LessonsTable holds the schema information for the "lessons" table.
	LessonsTable = &schema.Table{
		Name:       "lessons",
		Columns:    LessonsColumns,
		PrimaryKey: []*schema.Column{LessonsColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "lessons_roadmaps_lessons",
				Columns:    []*schema.Column{LessonsColumns[1]},
				RefColumns: []*schema.Column{RoadmapsColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
		Indexes: []*schema.Index{
			{Name: "lesson_roadmap_id_week_index_position", Unique: true, Columns: []*schema.Column{LessonsColumns[1], LessonsColumns[2], LessonsColumns[3]}},
		},
	}

	// LessonCompletionsColumns holds the columns for the "lesson_completions" table.
	LessonCompletionsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString, Size: 36},
		{Name: "user_id", Type: field.TypeString, Size: 36},
		{Name: "lesson_id", Type: field.TypeString, Size: 36},
		{Name: "score", Type: field.TypeInt},
		{Name: "time_spent", Type: field.TypeInt, Default: 0},
		{Name: "answered_at", Type: field.TypeTime},
	}
	// LessonCompletionsTable holds the schema information for the "lesson_completions" table.
	LessonCompletionsTable = &schema.Table{
		Name:       "lesson_completions",
		Columns:    LessonCompletionsColumns,
		PrimaryKey: []*schema.Column{LessonCompletionsColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "lesson_completions_lessons_completions",
				Columns:    []*schema.Column{LessonCompletionsColumns[2]},
				RefColumns: []*schema.Column{LessonsColumns[0]},
				OnDelete:   schema.Cascade,
			},
			{
				Symbol:     "lesson_completions_profiles_completions",
				Columns:    []*schema.Column{LessonCompletionsColumns[1]},
				RefColumns: []*schema.Column{ProfilesColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
		Indexes: []*schema.Index{
			{Name: "lessoncompletion_user_id_lesson_id", Columns: []*schema.Column{LessonCompletionsColumns[1], LessonCompletionsColumns[2]}},
		},
	}

	// UserProgressColumns holds the columns for the "user_progress" table.
	UserProgressColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString, Size: 36},
		{Name: "user_id", Type: field.TypeString, Size: 36},
		{Name: "roadmap_id", Type: field.TypeString, Size: 36},
		{Name: "completed_lessons", Type: field.TypeInt, Default: 0},
		{Name: "assessments_taken", Type: field.TypeInt, Default: 0},
		{Name: "average_accuracy", Type: field.TypeFloat64, Default: 0},
		{Name: "total_time_spent", Type: field.TypeInt, Default: 0},
		{Name: "current_week", Type: field.TypeInt, Default: 0},
		{Name: "updated_at", Type: field.TypeTime},
	}
	// UserProgressTable holds the schema information for the "user_progress" table.
	UserProgressTable = &schema.Table{
		Name:       "user_progress",
		Columns:    UserProgressColumns,
		PrimaryKey: []*schema.Column{UserProgressColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "user_progress_roadmaps_progress",
				Columns:    []*schema.Column{UserProgressColumns[2]},
				RefColumns: []*schema.Column{RoadmapsColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
		Indexes: []*schema.Index{
			{Name: "userprogress_user_id_roadmap_id", Unique: true, Columns: []*schema.Column{UserProgressColumns[1], UserProgressColumns[2]}},
		},
	}

	// LlmRequestsColumns holds the columns for the "llm_requests" table.
	LlmRequestsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt64, Increment: true},
		{Name: "timestamp", Type: field.TypeTime},
		{Name: "provider", Type: field.TypeString},
		{Name: "model", Type: field.TypeString},
		{Name: "purpose", Type: field.TypeString},
		{Name: "input_tokens", Type: field.TypeInt, Default: 0},
		{Name: "output_tokens", Type: field.TypeInt, Default: 0},
		{Name: "latency_ms", Type: field.TypeInt64, Default: 0},
		{Name: "success", Type: field.TypeBool},
		{Name: "error_message", Type: field.TypeString, Size: 2147483647, Default: ""},
		{Name: "request_body", Type: field.TypeString, Size: 2147483647, Default: ""},
		{Name: "response_body", Type: field.TypeString, Size: 2147483647, Default: ""},
	}
	// LlmRequestsTable holds the schema information for the "llm_requests" table.
	LlmRequestsTable = &schema.Table{
		Name:       "llm_requests",
		Columns:    LlmRequestsColumns,
		PrimaryKey: []*schema.Column{LlmRequestsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "llmrequest_purpose", Columns: []*schema.Column{LlmRequestsColumns[4]}},
			{Name: "llmrequest_timestamp", Columns: []*schema.Column{LlmRequestsColumns[1]}},
		},
	}

	// Tables holds all the tables in the schema.
	Tables = []*schema.Table{
		ProfilesTable,
		RoadmapsTable,
		LessonsTable,
		LessonCompletionsTable,
		UserProgressTable,
		LlmRequestsTable,
	}
)

func init() {
	RoadmapsTable.ForeignKeys[0].RefTable = ProfilesTable
	LessonsTable.ForeignKeys[0].RefTable = RoadmapsTable
	LessonCompletionsTable.ForeignKeys[0].RefTable = LessonsTable
	LessonCompletionsTable.ForeignKeys[1].RefTable = ProfilesTable
	UserProgressTable.ForeignKeys[0].RefTable = RoadmapsTable
}

// columnNames returns the column names of a table, in declaration order.
func columnNames(cols []*schema.Column) []string {
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Name
	}
	return names
}
