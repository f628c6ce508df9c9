package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/pathwise/internal/auth"
	"github.com/abhisek/pathwise/internal/store"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue an access token for a registered profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		email, _ := cmd.Flags().GetString("email")
		if strings.TrimSpace(email) == "" {
			return errors.New("--email is required")
		}

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		issuer, err := auth.NewIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
		if err != nil {
			return fmt.Errorf("token issuer: %w", err)
		}

		st, err := store.Open(cfg.Store.DSN)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer st.Close()

		p, err := st.Profiles().GetByEmail(cmd.Context(), strings.ToLower(strings.TrimSpace(email)))
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("no profile registered for %s", email)
		}
		if err != nil {
			return err
		}

		token, err := issuer.Issue(p.ID, p.IsAdmin)
		if err != nil {
			return err
		}
		fmt.Println(token)
		return nil
	},
}

func init() {
	tokenCmd.Flags().String("email", "", "Email of the profile")
}
