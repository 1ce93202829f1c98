package metrics

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// RemoteRequestsTotal counts pause/report calls by outcome.
	RemoteRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "targetwatch_remote_requests_total",
			Help: "Total number of remote pause/report requests",
		},
		[]string{"endpoint", "status"}, // status: success, failure
	)

	// RemoteRequestDuration tracks remote call latency.
	RemoteRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "targetwatch_remote_request_duration_seconds",
			Help:    "Duration of remote pause/report requests",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"endpoint"},
	)

	// PanelTogglesTotal counts panel toggles by resulting state.
	PanelTogglesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "targetwatch_panel_toggles_total",
			Help: "Total number of detail panel toggles",
		},
		[]string{"state"}, // collapsed, expanded
	)

	// ReportsInFlight is the number of targets currently generating a report.
	ReportsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "targetwatch_reports_in_flight",
			Help: "Reports requested and not yet resolved",
		},
	)
)

// Serve exposes /metrics on addr until ctx is cancelled.
func Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	slog.Info("metrics listener started", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
