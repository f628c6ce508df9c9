package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/spf13/cobra"

	"github.com/abhisek/pathwise/internal/ui/report"
	"github.com/abhisek/pathwise/internal/ui/theme"
)

var progressCmd = &cobra.Command{
	Use:   "progress [roadmap-id]",
	Short: "Show progress for a roadmap, or list the signed-in user's roadmaps",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		d, err := openSignedIn(cmd)
		if err != nil {
			return err
		}
		defer d.Close()

		user, err := d.signIn(ctx, tokenFlag(cmd))
		if err != nil {
			return fmt.Errorf("sign in: %w", err)
		}

		if len(args) == 0 {
			roadmaps, err := d.svc.ListRoadmaps(ctx, user.ID)
			if err != nil {
				return err
			}
			if len(roadmaps) == 0 {
				fmt.Println("No roadmaps yet.")
				return nil
			}
			for _, rm := range roadmaps {
				lipgloss.Println(theme.Body.Render(rm.ID) + "  " + theme.Subtitle.Render(rm.Goal))
			}
			return nil
		}

		p, err := d.svc.Progress(ctx, user.ID, args[0])
		if err != nil {
			return err
		}
		_, err = lipgloss.Println(report.Progress(p))
		return err
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show per-user learning statistics (admin token required)",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		d, err := openSignedIn(cmd)
		if err != nil {
			return err
		}
		defer d.Close()

		admin, err := d.signIn(ctx, tokenFlag(cmd))
		if err != nil {
			return fmt.Errorf("sign in: %w", err)
		}
		rows, err := d.svc.AdminOverview(ctx, admin.ID)
		if err != nil {
			return err
		}

		fmt.Printf("%-32s  %8s  %8s  %8s  %10s  %9s\n",
			"Email", "Roadmaps", "Lessons", "Minutes", "Assessed", "Accuracy")
		fmt.Println(strings.Repeat("─", 84))
		for _, r := range rows {
			fmt.Printf("%-32s  %8d  %8d  %8d  %10d  %8.2f%%\n",
				truncate(r.Email, 32), r.Roadmaps, r.CompletedLessons, r.TotalTimeSpent, r.Assessments, r.AverageAccuracy)
		}
		return nil
	},
}

// openSignedIn loads config for commands that act as a signed-in user.
func openSignedIn(cmd *cobra.Command) (*deps, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	if tokenFlag(cmd) == "" {
		return nil, errors.New("a token is required (--token or PATHWISE_TOKEN)")
	}
	return buildDeps(cmd.Context(), cfg, false)
}

func tokenFlag(cmd *cobra.Command) string {
	if t, _ := cmd.Flags().GetString("token"); t != "" {
		return t
	}
	return os.Getenv("PATHWISE_TOKEN")
}

func init() {
	for _, c := range []*cobra.Command{progressCmd, statsCmd} {
		c.Flags().String("token", "", "Access token (overrides PATHWISE_TOKEN)")
	}
}
