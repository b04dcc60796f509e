package logger

import (
	"context"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
)

// symbolStat tracks per-symbol book health counters.
type symbolStat struct {
	checksumFailures int64
	resyncs          int64
}

var (
	tokenRefreshes int64
	tokenFailures  int64
	agentExits     int64
	agentRestarts  int64
	reconnects     int64
	busDrops       int64
	commandDrops   int64
	errorsByComp   int64
	warnsByComp    int64
	symbols        sync.Map // map[string]*symbolStat
)

func recordWarn(component string) {
	if strings.HasPrefix(component, "wsconn") || strings.HasPrefix(component, "orderbook") {
		atomic.AddInt64(&warnsByComp, 1)
	}
}

func recordError(component string) {
	if strings.HasPrefix(component, "wsconn") || strings.HasPrefix(component, "orderbook") {
		atomic.AddInt64(&errorsByComp, 1)
	}
}

// IncrementTokenRefresh records a successful auth token refresh.
func IncrementTokenRefresh() {
	atomic.AddInt64(&tokenRefreshes, 1)
}

// IncrementTokenFailure records a failed token refresh attempt.
func IncrementTokenFailure() {
	atomic.AddInt64(&tokenFailures, 1)
}

// IncrementAgentExit records the agent subprocess exiting, whether cleanly or not.
func IncrementAgentExit() {
	atomic.AddInt64(&agentExits, 1)
}

// IncrementAgentRestart records the supervisor relaunching the agent subprocess.
func IncrementAgentRestart() {
	atomic.AddInt64(&agentRestarts, 1)
}

// IncrementReconnect records the connection manager establishing a new session.
func IncrementReconnect() {
	atomic.AddInt64(&reconnects, 1)
}

// IncrementBusDrop records the event bus dropping a message because a
// consumer channel was full.
func IncrementBusDrop() {
	atomic.AddInt64(&busDrops, 1)
}

// IncrementCommandDrop records a connection command dropped because the
// command channel was full.
func IncrementCommandDrop() {
	atomic.AddInt64(&commandDrops, 1)
}

// IncrementChecksumFailure records an order book checksum mismatch for symbol.
func IncrementChecksumFailure(symbol string) {
	st := symbolStatFor(symbol)
	atomic.AddInt64(&st.checksumFailures, 1)
}

// IncrementResync records a symbol's order book being resynchronized.
func IncrementResync(symbol string) {
	st := symbolStatFor(symbol)
	atomic.AddInt64(&st.resyncs, 1)
}

func symbolStatFor(symbol string) *symbolStat {
	v, _ := symbols.LoadOrStore(symbol, &symbolStat{})
	return v.(*symbolStat)
}

func startReport(ctx context.Context, log *Log, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		for {
			select {
			case <-ctx.Done():
				ticker.Stop()
				return
			case <-ticker.C:
				logReport(ctx, log)
			}
		}
	}()
}

// StartReport begins periodic logging of connectivity and book health
// statistics, publishing the same figures to CloudWatch when configured.
func StartReport(ctx context.Context, log *Log, interval time.Duration) {
	startReport(ctx, log, interval)
}

func logReport(ctx context.Context, log *Log) {
	symbolData := map[string]map[string]int64{}
	symbols.Range(func(k, v any) bool {
		name := k.(string)
		st := v.(*symbolStat)
		symbolData[name] = map[string]int64{
			"checksum_failures": atomic.LoadInt64(&st.checksumFailures),
			"resyncs":           atomic.LoadInt64(&st.resyncs),
		}
		return true
	})

	fields := Fields{
		"goroutines":      runtime.NumGoroutine(),
		"token_refreshes": atomic.LoadInt64(&tokenRefreshes),
		"token_failures":  atomic.LoadInt64(&tokenFailures),
		"agent_exits":     atomic.LoadInt64(&agentExits),
		"agent_restarts":  atomic.LoadInt64(&agentRestarts),
		"reconnects":      atomic.LoadInt64(&reconnects),
		"bus_drops":       atomic.LoadInt64(&busDrops),
		"command_drops":   atomic.LoadInt64(&commandDrops),
		"symbols":         symbolData,
	}

	log.WithComponent("report").WithFields(fields).Info("runtime report")

	data := []cwtypes.MetricDatum{
		{MetricName: aws.String("Kraterm-Goroutines"), Unit: cwtypes.StandardUnitCount, Value: aws.Float64(float64(fields["goroutines"].(int)))},
		{MetricName: aws.String("Kraterm-TokenRefreshes"), Unit: cwtypes.StandardUnitCount, Value: aws.Float64(float64(fields["token_refreshes"].(int64)))},
		{MetricName: aws.String("Kraterm-TokenFailures"), Unit: cwtypes.StandardUnitCount, Value: aws.Float64(float64(fields["token_failures"].(int64)))},
		{MetricName: aws.String("Kraterm-AgentExits"), Unit: cwtypes.StandardUnitCount, Value: aws.Float64(float64(fields["agent_exits"].(int64)))},
		{MetricName: aws.String("Kraterm-AgentRestarts"), Unit: cwtypes.StandardUnitCount, Value: aws.Float64(float64(fields["agent_restarts"].(int64)))},
		{MetricName: aws.String("Kraterm-Reconnects"), Unit: cwtypes.StandardUnitCount, Value: aws.Float64(float64(fields["reconnects"].(int64)))},
		{MetricName: aws.String("Kraterm-BusDrops"), Unit: cwtypes.StandardUnitCount, Value: aws.Float64(float64(fields["bus_drops"].(int64)))},
		{MetricName: aws.String("Kraterm-CommandDrops"), Unit: cwtypes.StandardUnitCount, Value: aws.Float64(float64(fields["command_drops"].(int64)))},
	}

	for name, stats := range symbolData {
		dims := []cwtypes.Dimension{{Name: aws.String("Symbol"), Value: aws.String(name)}}
		data = append(data,
			cwtypes.MetricDatum{
				MetricName: aws.String("Kraterm-ChecksumFailures"),
				Unit:       cwtypes.StandardUnitCount,
				Dimensions: dims,
				Value:      aws.Float64(float64(stats["checksum_failures"])),
			},
			cwtypes.MetricDatum{
				MetricName: aws.String("Kraterm-Resyncs"),
				Unit:       cwtypes.StandardUnitCount,
				Dimensions: dims,
				Value:      aws.Float64(float64(stats["resyncs"])),
			},
		)
	}

	publishMetrics(ctx, data)
}
