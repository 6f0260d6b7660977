package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"jup-swap/pkg/confirm"
	"jup-swap/pkg/swap"
)

var (
	StageTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "jupswap_stage_total", Help: "Pipeline stages finished, by outcome"},
		[]string{"stage", "outcome"},
	)
	StageDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "jupswap_stage_duration_seconds", Help: "Time spent in each pipeline stage", Buckets: prometheus.DefBuckets},
		[]string{"stage"},
	)
	ConfirmPolls = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "jupswap_confirm_polls_total", Help: "getTransaction polls, by result"},
		[]string{"result"},
	)
	RunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "jupswap_runs_total", Help: "Pipeline runs, by final state"},
		[]string{"outcome"},
	)
)

func init() {
	prometheus.MustRegister(StageTotal, StageDuration, ConfirmPolls, RunsTotal)
}

// Serve exposes /metrics on addr in the background
func Serve(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() { _ = srv.ListenAndServe() }()
	return srv
}

// Sink records pipeline events as stage counters and durations
type Sink struct{}

func (Sink) Emit(e swap.Event) {
	stage := string(e.Stage)
	switch e.State {
	case swap.StateQuoteReceived, swap.StateBuilt, swap.StateSubmitted, swap.StateConfirmed:
		StageTotal.WithLabelValues(stage, "ok").Inc()
		StageDuration.WithLabelValues(stage).Observe(e.Duration.Seconds())
	case swap.StateOnChainFailure, swap.StateTimeout, swap.StateFailed:
		StageTotal.WithLabelValues(stage, "error").Inc()
		StageDuration.WithLabelValues(stage).Observe(e.Duration.Seconds())
	}
	if e.State.Terminal() {
		RunsTotal.WithLabelValues(string(e.State)).Inc()
	}
}

// ObservePoll counts a confirmation poll; pass to confirm.WithObserver
func ObservePoll(p confirm.Poll) {
	ConfirmPolls.WithLabelValues(string(p.Outcome)).Inc()
}
