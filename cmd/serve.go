package cmd

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"go.uber.org/fx"

	"github.com/blumie/wellcheck/internal/alert"
	"github.com/blumie/wellcheck/internal/assessment"
	"github.com/blumie/wellcheck/internal/chat"
	"github.com/blumie/wellcheck/internal/checkin"
	"github.com/blumie/wellcheck/internal/llm"
	"github.com/blumie/wellcheck/internal/server"
	"github.com/blumie/wellcheck/internal/session"
	"github.com/blumie/wellcheck/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the check-in API and dashboard server",
	RunE: func(cmd *cobra.Command, args []string) error {
		dbPath, err := resolveDBPath(cmd)
		if err != nil {
			return fmt.Errorf("resolve database path: %w", err)
		}
		cfg := server.ConfigFromEnv()
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.Addr = addr
		}

		app := fx.New(
			fx.NopLogger,
			fx.Supply(cfg, logger),
			fx.Provide(
				func(lc fx.Lifecycle) (*store.Store, error) {
					return provideStore(lc, dbPath)
				},
				func(s *store.Store) store.SubmissionRepo { return s.SubmissionRepo() },
				func(s *store.Store) store.EventRepo { return s.EventRepo() },
				provideLLM,
				provideAlerter,
				provideAssessor,
				func(p llm.Provider) *assessment.Analyzer {
					return assessment.NewAnalyzer(p, assessment.ConfigFromEnv())
				},
				provideCheckin,
				func(p llm.Provider) server.Chatter {
					return chat.NewService(p, chat.DefaultConfig())
				},
				session.NewIssuerFromEnv,
			),
			server.Module,
		)
		if err := app.Err(); err != nil {
			return fmt.Errorf("build server: %w", err)
		}
		app.Run()
		return nil
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides WELLCHECK_ADDR)")
}

func provideStore(lc fx.Lifecycle, dbPath string) (*store.Store, error) {
	s, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error { return s.Close() },
	})
	return s, nil
}

func provideLLM(events store.EventRepo) (llm.Provider, error) {
	p, err := llm.NewProviderFromEnv(context.Background(), events)
	if err != nil {
		return nil, fmt.Errorf("LLM provider not configured (set WELLCHECK_LLM_PROVIDER=mock to run without one): %w", err)
	}
	return p, nil
}

func provideAlerter(events store.EventRepo, logger zerolog.Logger) *alert.Dispatcher {
	return alert.NewTwilioDispatcher(alert.ConfigFromEnv(), events, logger)
}

// provideAssessor drains in-flight alerts on shutdown.
func provideAssessor(lc fx.Lifecycle, p llm.Provider, d *alert.Dispatcher, logger zerolog.Logger) *assessment.Service {
	svc := assessment.NewService(p, d, assessment.ConfigFromEnv(), logger)
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			svc.Wait()
			return nil
		},
	})
	return svc
}

func provideCheckin(repo store.SubmissionRepo, a *assessment.Service, an *assessment.Analyzer, hub *server.Hub, logger zerolog.Logger) *checkin.Service {
	return checkin.New(repo, a, an, hub, checkin.DefaultConfig(), logger)
}
