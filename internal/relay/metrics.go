package relay

import (
	"context"
	"log"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "slack-relay/relay"

var (
	relayMetricsOnce     sync.Once
	fetchedCounter       metric.Int64Counter
	postedCounter        metric.Int64Counter
	lookupFailureCounter metric.Int64Counter
	errorCounter         metric.Int64Counter
	runDurationHistogram metric.Float64Histogram
)

func initRelayMetrics() {
	relayMetricsOnce.Do(func() {
		meter := otel.Meter(instrumentationName)

		var err error
		fetchedCounter, err = meter.Int64Counter(
			"slack_relay.messages.fetched",
			metric.WithDescription("Messages read from the source channel"),
		)
		if err != nil {
			log.Printf("observability: failed to create fetched counter: %v", err)
		}

		postedCounter, err = meter.Int64Counter(
			"slack_relay.messages.posted",
			metric.WithDescription("Messages reposted to the destination channel"),
		)
		if err != nil {
			log.Printf("observability: failed to create posted counter: %v", err)
		}

		lookupFailureCounter, err = meter.Int64Counter(
			"slack_relay.user_lookup.failures",
			metric.WithDescription("users.info lookups that fell back to the placeholder name"),
		)
		if err != nil {
			log.Printf("observability: failed to create lookup failure counter: %v", err)
		}

		errorCounter, err = meter.Int64Counter(
			"slack_relay.errors",
			metric.WithDescription("Runs aborted by a fetch, format or post error"),
		)
		if err != nil {
			log.Printf("observability: failed to create error counter: %v", err)
		}

		runDurationHistogram, err = meter.Float64Histogram(
			"slack_relay.run.duration",
			metric.WithDescription("Relay run duration (ms)"),
			metric.WithUnit("ms"),
		)
		if err != nil {
			log.Printf("observability: failed to create run duration histogram: %v", err)
		}
	})
}

func recordRunMetrics(ctx context.Context, attrs []attribute.KeyValue, res Result, duration time.Duration) {
	initRelayMetrics()
	opt := metric.WithAttributes(attrs...)
	if fetchedCounter != nil {
		fetchedCounter.Add(ctx, int64(res.Fetched), opt)
	}
	if postedCounter != nil {
		postedCounter.Add(ctx, int64(res.Posted), opt)
	}
	if res.Err != nil && errorCounter != nil {
		errorCounter.Add(ctx, 1, opt)
	}
	if runDurationHistogram != nil {
		runDurationHistogram.Record(ctx, float64(duration.Milliseconds()), opt)
	}
}

func recordLookupFailure(ctx context.Context, attrs []attribute.KeyValue) {
	initRelayMetrics()
	if lookupFailureCounter != nil {
		lookupFailureCounter.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
}
