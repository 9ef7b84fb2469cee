package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"golang.org/x/time/rate"

	"github.com/WessleyAI/gradepoint/engine/domain"
	"github.com/WessleyAI/gradepoint/engine/gpa"
	"github.com/WessleyAI/gradepoint/engine/transcript"
	"github.com/WessleyAI/gradepoint/internal/rpc"
	"github.com/WessleyAI/gradepoint/pkg/fn"
	"github.com/WessleyAI/gradepoint/pkg/metrics"
	"github.com/WessleyAI/gradepoint/pkg/natsutil"
	"github.com/WessleyAI/gradepoint/pkg/resilience"
)

type worker struct {
	nc      *nats.Conn
	parse   fn.Stage[string, []domain.Course]
	metrics *metrics.Service
	log     *slog.Logger
}

// newWorker wraps parser with a limiter that queues requests beyond
// perMinute rather than rejecting them.
func newWorker(nc *nats.Conn, parser *transcript.Parser, perMinute int, m *metrics.Service, log *slog.Logger) *worker {
	lim := rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), perMinute)
	return &worker{
		nc:      nc,
		parse:   resilience.LimiterStageWait(lim, fn.Lift(parser.Parse)),
		metrics: m,
		log:     log,
	}
}

func (w *worker) subscribe() ([]*nats.Subscription, error) {
	parseSub, err := natsutil.Respond(w.nc, rpc.SubjectParse, rpc.QueueWorkers, w.handleParse)
	if err != nil {
		return nil, err
	}
	gpaSub, err := natsutil.Respond(w.nc, rpc.SubjectGPA, rpc.QueueWorkers, w.handleGPA)
	if err != nil {
		parseSub.Unsubscribe()
		return nil, err
	}
	return []*nats.Subscription{parseSub, gpaSub}, nil
}

func (w *worker) handleParse(ctx context.Context, req rpc.ParseRequest) rpc.ParseReply {
	w.metrics.InFlight.Inc()
	defer w.metrics.InFlight.Dec()

	start := time.Now()
	courses, err := w.parse(ctx, req.Path).Unwrap()
	if err != nil {
		kind := transcript.Kind(err)
		w.metrics.ObserveParse(kind, 0, start)
		level := slog.LevelError
		if transcript.IsUserError(err) {
			level = slog.LevelWarn
		}
		w.log.Log(ctx, level, "transcript parse failed", "path", req.Path, "kind", kind, "error", err)
		return rpc.ParseReply{Error: err.Error(), Kind: kind}
	}

	g, err := gpa.Calculate(courses)
	if err != nil {
		w.metrics.ObserveParse(transcript.KindInternal, 0, start)
		return rpc.ParseReply{Error: err.Error(), Kind: transcript.KindInternal}
	}
	w.metrics.ObserveParse(metrics.ResultOK, len(courses), start)

	event := rpc.ParsedEvent{Courses: len(courses), GPA: g, Millis: time.Since(start).Milliseconds()}
	if err := natsutil.Publish(ctx, w.nc, rpc.SubjectParsed, event); err != nil {
		w.log.Warn("parsed event publish failed", "error", err)
	}
	return rpc.ParseReply{Courses: courses, GPA: g}
}

func (w *worker) handleGPA(_ context.Context, req rpc.GPARequest) rpc.GPAReply {
	s, err := gpa.Summarize(req.Courses)
	if err != nil {
		w.metrics.ObserveGPA("invalid")
		return rpc.GPAReply{Error: err.Error()}
	}
	w.metrics.ObserveGPA(metrics.ResultOK)
	return rpc.GPAReply{Summary: s}
}
