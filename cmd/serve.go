package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/abhisek/pathwise/internal/auth"
	"github.com/abhisek/pathwise/internal/httpapi"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.Server.Addr = addr
		}
		if err := cfg.ValidateServer(); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		d, err := buildDeps(ctx, cfg, true)
		if err != nil {
			return err
		}
		defer d.Close()

		issuer, err := auth.NewIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
		if err != nil {
			return err
		}
		srv := httpapi.New(d.svc, issuer, auth.StoreProfiles(d.store.Profiles()), httpapi.Options{
			CORSOrigins: cfg.Server.CORSOrigins,
			AdminEmails: cfg.Auth.AdminEmails,
		}, d.log)

		d.log.Info("starting pathwise", "version", version, "dialect", d.store.Dialect(), "provider", cfg.LLM.Provider)
		return srv.Run(ctx, cfg.Server.Addr, cfg.Server.ShutdownTimeout)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides PATHWISE_ADDR)")
}
