package relay

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ca-srg/slack-relay/internal/slackapi"
)

// LookbackWindow is how far back each run reads the source channel.
const LookbackWindow = 24 * time.Hour

// Options configures a Relay.
type Options struct {
	SourceChannelID      string
	DestinationChannelID string
	Formatter            *Formatter
	Logger               *log.Logger
	// Now defaults to time.Now
	Now      func() time.Time
	Reporter ErrorReporter
}

// Relay copies relevant messages from one channel to another. It keeps no
// state between runs: every Run re-reads the whole lookback window.
type Relay struct {
	api         slackapi.API
	source      string
	destination string
	formatter   *Formatter
	logger      *log.Logger
	now         func() time.Time
	reporter    ErrorReporter
	tracer      trace.Tracer
}

// Result summarises a single run.
type Result struct {
	RunID    string
	Fetched  int
	Relevant int
	Posted   int
	// Err is the error that ended the run early, nil when every relevant message was posted
	Err error
}

// New constructs a Relay over api.
func New(api slackapi.API, opts Options) *Relay {
	r := &Relay{
		api:         api,
		source:      opts.SourceChannelID,
		destination: opts.DestinationChannelID,
		formatter:   opts.Formatter,
		logger:      opts.Logger,
		now:         opts.Now,
		reporter:    opts.Reporter,
		tracer:      otel.Tracer(instrumentationName),
	}
	if r.formatter == nil {
		r.formatter = &Formatter{}
	}
	if r.logger == nil {
		r.logger = log.New(os.Stdout, "slack-relay ", log.LstdFlags)
	}
	if r.now == nil {
		r.now = time.Now
	}
	if r.reporter == nil {
		r.reporter = &noopReporter{}
	}
	return r
}

// Run fetches the lookback window, then posts each relevant message oldest
// first. Errors are logged and returned in Result; they never panic.
// Messages posted before an error stay posted.
func (r *Relay) Run(ctx context.Context) Result {
	started := time.Now()
	res := Result{RunID: uuid.NewString()}
	attrs := []attribute.KeyValue{
		attribute.String("relay.source_channel", r.source),
		attribute.String("relay.destination_channel", r.destination),
	}

	ctx, span := r.tracer.Start(ctx, "relay.run", trace.WithAttributes(
		append(attrs, attribute.String("relay.run_id", res.RunID))...,
	))
	defer span.End()

	r.logger.Printf("event=run_start run_id=%s source=%s destination=%s", res.RunID, r.source, r.destination)

	messages, err := r.fetch(ctx)
	if err != nil {
		r.fail(span, &res, "fetch", err)
	} else {
		res.Fetched = len(messages)
		// history arrives newest first
		for i := len(messages) - 1; i >= 0; i-- {
			msg := messages[i]
			if !Eligible(msg) || !IsRelevant(msg.Text) {
				continue
			}
			res.Relevant++
			if err := r.relayMessage(ctx, msg, attrs); err != nil {
				r.fail(span, &res, "process", err)
				break
			}
			res.Posted++
		}
	}

	span.SetAttributes(
		attribute.Int("relay.fetched", res.Fetched),
		attribute.Int("relay.relevant", res.Relevant),
		attribute.Int("relay.posted", res.Posted),
	)
	recordRunMetrics(ctx, attrs, res, time.Since(started))
	r.logger.Printf("event=run_end run_id=%s fetched=%d relevant=%d posted=%d", res.RunID, res.Fetched, res.Relevant, res.Posted)
	return res
}

func (r *Relay) fetch(ctx context.Context) ([]slackapi.Message, error) {
	ctx, span := r.tracer.Start(ctx, "relay.fetch")
	defer span.End()

	oldest := r.now().Add(-LookbackWindow)
	messages, err := r.api.FetchHistory(ctx, r.source, oldest)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch failed")
		return nil, err
	}
	span.SetAttributes(attribute.Int("relay.messages", len(messages)))
	return messages, nil
}

func (r *Relay) relayMessage(ctx context.Context, msg slackapi.Message, attrs []attribute.KeyValue) error {
	ctx, span := r.tracer.Start(ctx, "relay.post", trace.WithAttributes(attribute.String("slack.ts", msg.Timestamp)))
	defer span.End()

	author := r.resolveAuthor(ctx, msg.UserID, attrs)
	post, err := r.formatter.Build(r.source, msg, author)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "format failed")
		return fmt.Errorf("format message ts=%s: %w", msg.Timestamp, err)
	}
	if err := r.api.PostMessage(ctx, r.destination, post.Blocks, post.Fallback); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "post failed")
		return err
	}
	return nil
}

// resolveAuthor never fails: lookup errors degrade to UnknownUser.
func (r *Relay) resolveAuthor(ctx context.Context, userID string, attrs []attribute.KeyValue) string {
	user, err := r.api.LookupUser(ctx, userID)
	if err != nil {
		r.logger.Printf("Error fetching user info for %s: %v", userID, err)
		recordLookupFailure(ctx, attrs)
		return UnknownUser
	}
	if user == nil || user.RealName == "" {
		return UnknownUser
	}
	return user.RealName
}

func (r *Relay) fail(span trace.Span, res *Result, stage string, err error) {
	res.Err = err
	span.RecordError(err)
	span.SetStatus(codes.Error, stage+" failed")
	r.logger.Printf("Error fetching or posting messages: %v", err)
	r.reporter.Report(err, map[string]string{
		"run_id":  res.RunID,
		"stage":   stage,
		"channel": r.source,
	})
}
