package cmd

import (
	"github.com/spf13/cobra"

	"github.com/abhisek/pathwise/internal/config"
	"github.com/abhisek/pathwise/internal/store"
)

var rootCmd = &cobra.Command{
	Use:           "pathwise",
	Short:         "AI-generated learning paths",
	Long:          "Pathwise turns a learning goal into a weekly curriculum with generated lessons and progress tracking.",
	SilenceUsage:  true,
	SilenceErrors: false,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Database DSN or SQLite path (overrides PATHWISE_DB)")
	rootCmd.PersistentFlags().String("config", "", "Path to YAML config file (overrides PATHWISE_CONFIG)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(questionsCmd)
	rootCmd.AddCommand(progressCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(tokenCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig reads configuration, letting --db win over every other
// source for the database DSN.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		if err := store.EnsureDir(p); err != nil {
			return nil, err
		}
		cfg.Store.DSN = p
	}
	return cfg, nil
}
