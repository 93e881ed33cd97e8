package middleware

import (
	"context"
	"time"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsInterceptor records a request counter and latency histogram per procedure.
type MetricsInterceptor struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetricsInterceptor registers the RPC metrics with reg.
func NewMetricsInterceptor(reg prometheus.Registerer) *MetricsInterceptor {
	factory := promauto.With(reg)
	return &MetricsInterceptor{
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "treatplanner",
			Name:      "rpc_requests_total",
			Help:      "RPC calls handled, by procedure and result code.",
		}, []string{"procedure", "code"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "treatplanner",
			Name:      "rpc_duration_seconds",
			Help:      "RPC handling latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"procedure"}),
	}
}

// WrapUnary implements connect.Interceptor.
func (m *MetricsInterceptor) WrapUnary(next connect.UnaryFunc) connect.UnaryFunc {
	return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
		start := time.Now()
		resp, err := next(ctx, req)
		m.observe(req.Spec().Procedure, start, err)
		return resp, err
	}
}

// WrapStreamingClient implements connect.Interceptor.
func (m *MetricsInterceptor) WrapStreamingClient(next connect.StreamingClientFunc) connect.StreamingClientFunc {
	return next
}

// WrapStreamingHandler implements connect.Interceptor.
func (m *MetricsInterceptor) WrapStreamingHandler(next connect.StreamingHandlerFunc) connect.StreamingHandlerFunc {
	return func(ctx context.Context, conn connect.StreamingHandlerConn) error {
		start := time.Now()
		err := next(ctx, conn)
		m.observe(conn.Spec().Procedure, start, err)
		return err
	}
}

func (m *MetricsInterceptor) observe(procedure string, start time.Time, err error) {
	code := "ok"
	if err != nil {
		code = connect.CodeOf(err).String()
	}
	m.requests.WithLabelValues(procedure, code).Inc()
	m.duration.WithLabelValues(procedure).Observe(time.Since(start).Seconds())
}
