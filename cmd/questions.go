package cmd

import (
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/spf13/cobra"

	"github.com/abhisek/pathwise/internal/ui/report"
)

var questionsCmd = &cobra.Command{
	Use:   "questions <goal>",
	Short: "Generate onboarding questions for a learning goal",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		d, err := buildDeps(cmd.Context(), cfg, true)
		if err != nil {
			return err
		}
		defer d.Close()

		goal := strings.Join(args, " ")
		qs, err := d.gen.GenerateQuestions(cmd.Context(), goal)
		if err != nil {
			return err
		}
		_, err = lipgloss.Println(report.Questions(goal, qs))
		return err
	},
}
