package main

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"

	"rtcmgo"
)

// Metrics contains the prometheus metrics of the receiver.
type Metrics struct {
	Bytes        prometheus.Counter
	Frames       prometheus.Counter
	ParityErrors prometheus.Counter
	Evicted      prometheus.Counter
	Buffered     prometheus.Gauge

	Messages     *prometheus.CounterVec /* by message type */
	DecodeErrors *prometheus.CounterVec /* by message type */
	SinkErrors   *prometheus.CounterVec /* by sink */
}

// NewMetrics creates the metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Bytes: f.NewCounter(prometheus.CounterOpts{
			Name: "rtcmrcv_input_bytes_total",
			Help: "Total number of bytes read from the input stream",
		}),
		Frames: f.NewCounter(prometheus.CounterOpts{
			Name: "rtcmrcv_frames_total",
			Help: "Total number of checksum-valid frames",
		}),
		ParityErrors: f.NewCounter(prometheus.CounterOpts{
			Name: "rtcmrcv_parity_errors_total",
			Help: "Total number of preamble candidates rejected by crc-24q",
		}),
		Evicted: f.NewCounter(prometheus.CounterOpts{
			Name: "rtcmrcv_evicted_bytes_total",
			Help: "Total number of bytes dropped to bound the parser buffer",
		}),
		Buffered: f.NewGauge(prometheus.GaugeOpts{
			Name: "rtcmrcv_buffered_bytes",
			Help: "Bytes retained by the parser",
		}),
		Messages: f.NewCounterVec(prometheus.CounterOpts{
			Name: "rtcmrcv_messages_total",
			Help: "Total number of decoded messages",
		}, []string{"type"}),
		DecodeErrors: f.NewCounterVec(prometheus.CounterOpts{
			Name: "rtcmrcv_decode_errors_total",
			Help: "Total number of frames whose payload failed to decode",
		}, []string{"type"}),
		SinkErrors: f.NewCounterVec(prometheus.CounterOpts{
			Name: "rtcmrcv_sink_errors_total",
			Help: "Total number of messages a sink failed to write",
		}, []string{"sink"}),
	}
}

/* update parser counters from the difference of two stats snapshots */
func (m *Metrics) observeParser(prev, cur rtcmgo.ParserStats, buffered int) {
	m.Bytes.Add(float64(cur.Bytes - prev.Bytes))
	m.Frames.Add(float64(cur.Frames - prev.Frames))
	m.ParityErrors.Add(float64(cur.ParityErrors - prev.ParityErrors))
	m.Evicted.Add(float64(cur.Evicted - prev.Evicted))
	m.Buffered.Set(float64(buffered))
}

func typeLabel(ctype int) string {
	return strconv.Itoa(ctype)
}

/* push metrics to a prometheus pushgateway until ctx is done ----------------*/
func pushMetrics(ctx context.Context, cfg PushConfig, g prometheus.Gatherer, session string) {
	pusher := push.New(cfg.URL, cfg.Job).Gatherer(g).Grouping("session", session)

	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			if err := pusher.Push(); err != nil {
				rtcmgo.Tracet(2, "push metrics error: %v\n", err)
			}
			return
		case <-ticker.C:
			if err := pusher.Push(); err != nil {
				rtcmgo.Tracet(2, "push metrics error: %v\n", err)
			}
		}
	}
}
