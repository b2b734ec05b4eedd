package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"go.uber.org/fx"

	"github.com/blumie/wellcheck/internal/checkin"
)

// Module provides the hub, engine and API and starts the HTTP listener
// and the stale-assessment sweep with the fx lifecycle. The caller
// supplies Config and every Params dependency except the Hub.
var Module = fx.Module("server",
	fx.Provide(
		NewHub,
		NewEngine,
		NewAPI,
	),
	fx.Invoke(
		registerRoutes,
		startHTTP,
		startSweeper,
	),
)

func registerRoutes(api *API, engine *gin.Engine) {
	api.Register(engine)
}

func startHTTP(lc fx.Lifecycle, cfg Config, engine *gin.Engine, hub *Hub, svc *checkin.Service, logger zerolog.Logger) {
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", cfg.Addr)
			if err != nil {
				return err
			}
			logger.Info().Str("addr", ln.Addr().String()).Msg("wellcheck server listening")
			go func() {
				if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error().Err(err).Msg("server stopped")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info().Msg("server shutting down")
			return shutdown(ctx, srv, hub, svc)
		},
	})
}

// shutdown stops accepting requests, waits for in-flight handlers and
// then drains the background work they started.
func shutdown(ctx context.Context, srv *http.Server, hub *Hub, svc *checkin.Service) error {
	hub.Close()
	err := srv.Shutdown(ctx)

	drained := make(chan struct{})
	go func() {
		svc.Wait()
		close(drained)
	}()
	select {
	case <-drained:
	case <-ctx.Done():
		if err == nil {
			err = ctx.Err()
		}
	}
	return err
}

func startSweeper(lc fx.Lifecycle, cfg Config, svc *checkin.Service, logger zerolog.Logger) error {
	clog := cronLogger{logger: logger.With().Str("component", "sweeper").Logger()}
	c := cron.New(cron.WithLogger(clog), cron.WithChain(cron.Recover(clog), cron.SkipIfStillRunning(clog)))

	_, err := c.AddFunc(cfg.SweepSchedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		n, err := svc.SweepStale(ctx)
		if err != nil {
			clog.logger.Error().Err(err).Msg("stale sweep failed")
			return
		}
		if n > 0 {
			clog.logger.Info().Int("count", n).Msg("stale assessments marked failed")
		}
	})
	if err != nil {
		return err
	}

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			c.Start()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			select {
			case <-c.Stop().Done():
			case <-ctx.Done():
			}
			return nil
		},
	})
	return nil
}

// cronLogger adapts zerolog to cron.Logger.
type cronLogger struct {
	logger zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
