package app

import (
	"log/slog"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/dhirajnair/pspec/internal/server"
)

var (
	serveAddr      string
	serveRateLimit float64
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the check API over HTTP",
	Long: `Serve the review over HTTP for the web front end.

  POST /api/check   {"code": "...", "pybp_enabled": true, "enable_security": false, ...}
  GET  /api/rules   best-practice rule catalogue
  GET  /            service info

/api/check always answers 200; failures set "ok": false and "error".
Allowed CORS origins and the rate limit come from the server section of
the config file.

Examples:
  pspec serve
  pspec serve --addr :8080
  PSPEC_SERVER_CORS_ORIGINS=https://app.example.com pspec serve`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from config)")
	serveCmd.Flags().Float64Var(&serveRateLimit, "rate-limit", 0, "Requests per second across all clients (default from config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	addr := cfg.Server.Addr
	if serveAddr != "" {
		addr = serveAddr
	}
	limit := cfg.Server.RateLimit
	if serveRateLimit > 0 {
		limit = serveRateLimit
	}

	// Requests log at info without --verbose.
	level := slog.LevelInfo
	if flagVerbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	srv := server.New(server.Config{
		Options: cfg.ReviewOptions(),
		PEP8: server.PEP8Info{
			URL:      cfg.PEP8.URL,
			Date:     cfg.PEP8.Date,
			Revision: cfg.PEP8.Revision,
		},
		CORSOrigins: cfg.Server.CORSOrigins,
		RateLimit:   limit,
		Burst:       cfg.Server.Burst,
		Version:     appVersion,
		Logger:      logger,
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), shutdownSignals...)
	defer stop()
	return srv.ListenAndServe(ctx, addr)
}
