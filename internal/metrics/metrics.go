// SPDX-License-Identifier: EPL-2.0

// Package metrics exports pipeline events as Prometheus metrics. Every
// Metrics value owns its own registry.
package metrics

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ik5/audxcode/pipeline"
)

const namespace = "audxcode"

// Metrics implements pipeline.Observer. It may be shared by pipelines
// running concurrently.
type Metrics struct {
	reg *prometheus.Registry

	Runs           *prometheus.CounterVec
	RunDuration    prometheus.Histogram
	RunsInState    *prometheus.GaugeVec
	PacketsRead    *prometheus.CounterVec
	PacketSize     prometheus.Histogram
	DecodeErrors   prometheus.Counter
	BatchesDecoded *prometheus.CounterVec
	FramesDecoded  prometheus.Counter
	PacketsWritten prometheus.Counter
	BytesWritten   prometheus.Counter

	mtx    sync.Mutex
	states map[string]pipeline.State
}

var _ pipeline.Observer = (*Metrics)(nil)

// New creates and registers all metrics.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)

	return &Metrics{
		reg:    reg,
		states: make(map[string]pipeline.State),

		Runs: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Finished pipeline runs by result",
		}, []string{"result"}),
		RunDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of pipeline runs",
			Buckets:   prometheus.ExponentialBuckets(0.01, 4, 8), // 10ms to ~3m
		}),
		RunsInState: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "runs_in_state",
			Help:      "Pipelines currently in each state",
		}, []string{"state"}),
		PacketsRead: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "packets_read_total",
			Help:      "Packets read from inputs",
		}, []string{"selected"}),
		PacketSize: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "packet_size_bytes",
			Help:      "Size of packets read from inputs",
			Buckets:   prometheus.ExponentialBuckets(64, 2, 10), // 64B to 32KB
		}),
		DecodeErrors: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "decode_errors_total",
			Help:      "Recoverable decode errors",
		}),
		BatchesDecoded: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "batches_decoded_total",
			Help:      "Sample batches out of decoders",
		}, []string{"phase"}),
		FramesDecoded: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_decoded_total",
			Help:      "Sample frames out of decoders",
		}),
		PacketsWritten: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "packets_written_total",
			Help:      "Encoded packets written to outputs",
		}),
		BytesWritten: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bytes_written_total",
			Help:      "Encoded bytes written to outputs",
		}),
	}
}

// Registry is the registry holding every metric of m.
func (m *Metrics) Registry() *prometheus.Registry { return m.reg }

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}

func (m *Metrics) StateChanged(runID string, s pipeline.State) {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	if prev, ok := m.states[runID]; ok {
		m.RunsInState.WithLabelValues(prev.String()).Dec()
	}
	if s == pipeline.StateClosed {
		delete(m.states, runID)
		return
	}

	m.states[runID] = s
	m.RunsInState.WithLabelValues(s.String()).Inc()
}

func (m *Metrics) PacketRead(selected bool, size int) {
	m.PacketsRead.WithLabelValues(strconv.FormatBool(selected)).Inc()
	if selected {
		m.PacketSize.Observe(float64(size))
	}
}

func (m *Metrics) DecodeError(error) { m.DecodeErrors.Inc() }

func (m *Metrics) BatchDecoded(frames int, flush bool) {
	phase := "decode"
	if flush {
		phase = "flush"
	}
	m.BatchesDecoded.WithLabelValues(phase).Inc()
	m.FramesDecoded.Add(float64(frames))
}

func (m *Metrics) PacketWritten(size int) {
	m.PacketsWritten.Inc()
	m.BytesWritten.Add(float64(size))
}

func (m *Metrics) RunFinished(r pipeline.Report, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.Runs.WithLabelValues(result).Inc()
	m.RunDuration.Observe(r.Elapsed.Seconds())
}

// Serve exposes /metrics on addr until ctx is done.
func (m *Metrics) Serve(ctx context.Context, addr string, log *slog.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info("metrics listening", slog.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
