/* main.go
 * Process entrypoint. Wires the aggregation service and the reminder scheduler through fx,
 * refreshes the upcoming match set on a fixed interval and reschedules reminders whenever
 * it runs. A small HTTP listener exposes prometheus metrics
 */

package main

import (
	"context"
	"flag"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"go.uber.org/fx"

	"koi-tracker/api/aggregate"
	"koi-tracker/app"
	"koi-tracker/notify"
)

var (
	refreshInterval = flag.Duration("refresh", 5*time.Minute, "upcoming match refresh interval")
	metricsAddr     = flag.String("metrics-addr", ":9270", "prometheus metrics listen address")
)

func main() {
	flag.Parse()
	fx.New(
		app.Module,
		fx.Invoke(run),
	).Run()
}

func run(lc fx.Lifecycle, svc *aggregate.Service, scheduler *notify.Scheduler, logger zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: *metricsAddr, Handler: mux}

	refreshCtx, cancel := context.WithCancel(context.Background())

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				logger.Info().Str("addr", srv.Addr).Msg("metrics listener starting")
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Error().Err(err).Msg("metrics listener failed")
				}
			}()
			go refreshLoop(refreshCtx, svc, scheduler, *refreshInterval, logger)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			cancel()
			scheduler.CancelAll()
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer shutdownCancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Warn().Err(err).Msg("metrics listener shutdown failed")
			}
			logger.Info().Msg("stopped")
			return nil
		},
	})
}

// refreshLoop keeps the reminder schedule aligned with the latest upcoming match set
func refreshLoop(ctx context.Context, svc *aggregate.Service, scheduler *notify.Scheduler, interval time.Duration, logger zerolog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	refresh := func() {
		matches := svc.UpcomingMatches(ctx)
		count := scheduler.ScheduleMatchReminders(ctx, matches)
		logger.Debug().Int("matches", len(matches)).Int("reminders", count).Msg("upcoming set refreshed")
	}

	refresh()
	for {
		select {
		case <-ticker.C:
			refresh()
		case <-ctx.Done():
			return
		}
	}
}
