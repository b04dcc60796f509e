// Package metrics registers Prometheus counters and gauges for the
// connectivity/state layer and exposes them over HTTP for scraping. It
// mirrors, rather than replaces, the atomic counters logger/report.go
// pushes to CloudWatch: the two exist for different consumers (Prometheus
// pull-based scraping here, periodic CloudWatch push there).
package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"kraterm/logger"
)

var (
	once sync.Once

	busDrops         prometheus.Counter
	commandDrops     prometheus.Counter
	checksumFailures *prometheus.CounterVec
	resyncs          *prometheus.CounterVec
	reconnects       *prometheus.CounterVec
	tokenRefreshes   prometheus.Counter
	tokenFailures    prometheus.Counter
	agentExits       prometheus.Counter
	agentRestarts    prometheus.Counter
	openOrders       *prometheus.GaugeVec
	bookStale        *prometheus.GaugeVec
)

// Init registers the collectors and starts an HTTP server exposing them
// on addr at /metrics. It is safe to call more than once; only the
// first call takes effect.
func Init(addr string) {
	once.Do(func() {
		busDrops = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kraterm_bus_drops_total",
			Help: "Messages dropped by the event bus because a consumer channel was full.",
		})
		commandDrops = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kraterm_command_drops_total",
			Help: "Connection commands dropped because the command channel was full.",
		})
		checksumFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kraterm_checksum_failures_total",
			Help: "Order book checksum mismatches, by symbol.",
		}, []string{"symbol"})
		resyncs = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kraterm_resyncs_total",
			Help: "Order book resync requests sent, by symbol.",
		}, []string{"symbol"})
		reconnects = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kraterm_reconnects_total",
			Help: "WebSocket sessions reconnected, by session name.",
		}, []string{"session"})
		tokenRefreshes = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kraterm_token_refreshes_total",
			Help: "Successful auth token refreshes.",
		})
		tokenFailures = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kraterm_token_failures_total",
			Help: "Failed auth token refresh attempts.",
		})
		agentExits = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kraterm_agent_exits_total",
			Help: "Agent subprocess exits, clean or otherwise.",
		})
		agentRestarts = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kraterm_agent_restarts_total",
			Help: "Times the agent subprocess was relaunched after exiting.",
		})
		openOrders = prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "kraterm_open_orders",
			Help: "Currently tracked open orders, by symbol.",
		}, []string{"symbol"})
		bookStale = prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "kraterm_book_stale",
			Help: "1 if a symbol's order book is currently marked stale, 0 otherwise.",
		}, []string{"symbol"})

		prometheus.MustRegister(
			busDrops, commandDrops, checksumFailures, resyncs, reconnects,
			tokenRefreshes, tokenFailures, agentExits, agentRestarts,
			openOrders, bookStale,
		)

		if addr == "" {
			return
		}
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.GetLogger().WithComponent("metrics").WithError(err).Error("metrics server stopped")
			}
		}()
	})
}

// IncrementBusDrop records the event bus dropping a message.
func IncrementBusDrop() {
	if busDrops != nil {
		busDrops.Inc()
	}
}

// IncrementCommandDrop records a connection command dropped for a full channel.
func IncrementCommandDrop() {
	if commandDrops != nil {
		commandDrops.Inc()
	}
}

// IncrementChecksumFailure records a checksum mismatch for symbol.
func IncrementChecksumFailure(symbol string) {
	if checksumFailures != nil {
		checksumFailures.WithLabelValues(symbol).Inc()
	}
}

// IncrementResync records a resync request sent for symbol.
func IncrementResync(symbol string) {
	if resyncs != nil {
		resyncs.WithLabelValues(symbol).Inc()
	}
}

// IncrementReconnect records session establishing a new connection.
func IncrementReconnect(session string) {
	if reconnects != nil {
		reconnects.WithLabelValues(session).Inc()
	}
}

// IncrementTokenRefresh records a successful auth token refresh.
func IncrementTokenRefresh() {
	if tokenRefreshes != nil {
		tokenRefreshes.Inc()
	}
}

// IncrementTokenFailure records a failed auth token refresh attempt.
func IncrementTokenFailure() {
	if tokenFailures != nil {
		tokenFailures.Inc()
	}
}

// IncrementAgentExit records the agent subprocess exiting.
func IncrementAgentExit() {
	if agentExits != nil {
		agentExits.Inc()
	}
}

// IncrementAgentRestart records the agent subprocess being relaunched.
func IncrementAgentRestart() {
	if agentRestarts != nil {
		agentRestarts.Inc()
	}
}

// SetOpenOrders records the current open-order count for symbol.
func SetOpenOrders(symbol string, count int) {
	if openOrders != nil {
		openOrders.WithLabelValues(symbol).Set(float64(count))
	}
}

// SetBookStale records whether symbol's order book is currently stale.
func SetBookStale(symbol string, stale bool) {
	if bookStale == nil {
		return
	}
	v := 0.0
	if stale {
		v = 1.0
	}
	bookStale.WithLabelValues(symbol).Set(v)
}
