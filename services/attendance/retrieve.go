package attendanced

import (
	"attendance-backend/lib/attendance"
	"attendance-backend/lib/browser"
	"attendance-backend/lib/dumputil"
	"attendance-backend/lib/scrapers/webpros"
	"attendance-backend/lib/timezone"
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
)

var retrieveDuration, _ = meter.Float64Histogram(
	"retrieve_duration",
	metric.WithUnit("s"),
	metric.WithDescription("time spent on a single attendance retrieval, including browser startup"),
)
var retrieveOutcomes, _ = meter.Int64Counter(
	"retrieve_outcomes",
	metric.WithDescription("retrievals by outcome, the outcome is an error kind or \"ok\""),
)

type Options struct {
	Session webpros.SessionOptions
	// picks the date column of the report, defaults to timezone.Now
	Now func() time.Time
	// when set, the html of registers that fail to parse is written here
	Dump dumputil.Output
	// also dump registers that parsed successfully
	DumpAll bool
}

// Service performs one full retrieval per call: a fresh page, login,
// report fetch and parse.
type Service struct {
	launcher browser.Launcher
	opts     Options
}

func NewService(launcher browser.Launcher, opts Options) Service {
	if opts.Now == nil {
		opts.Now = timezone.Now
	}
	return Service{
		launcher: launcher,
		opts:     opts,
	}
}

// Retrieve returns the attendance record of credential. every error it
// returns is an *Error.
func (s Service) Retrieve(ctx context.Context, credential attendance.Credential) (attendance.Record, error) {
	ctx, span := tracer.Start(ctx, "Retrieve")
	defer span.End()
	span.SetAttributes(attribute.String("username", credential.Identifier))

	start := time.Now()
	record, err := s.retrieve(ctx, credential)

	outcome := "ok"
	if err != nil {
		outcome = string(err.Kind)
	}
	retrieveDuration.Record(ctx, time.Since(start).Seconds())
	retrieveOutcomes.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))

	if err != nil {
		slog.WarnContext(
			ctx, "attendance retrieval failed",
			"username", credential.Identifier,
			"kind", err.Kind,
			"err", err.Err,
		)
		span.RecordError(err)
		span.SetStatus(codes.Error, string(err.Kind))
		return attendance.Record{}, err
	}

	slog.InfoContext(
		ctx, "retrieved attendance",
		"student_id", record.StudentId,
		"total_present", record.TotalPresent,
		"total_classes", record.TotalClasses,
		"duration", time.Since(start),
	)
	return record, nil
}

// retrieve reports failures as a concrete *Error, Retrieve converts it.
func (s Service) retrieve(ctx context.Context, credential attendance.Credential) (attendance.Record, *Error) {
	page, err := s.launcher.NewPage(ctx)
	if err != nil {
		return attendance.Record{}, &Error{
			Kind:    KindFetch,
			Message: fmt.Sprintf("failed to start browser: %s", err.Error()),
			Err:     err,
		}
	}
	defer func() {
		err := page.Close()
		if err != nil {
			slog.WarnContext(ctx, "failed to close browser page", "err", err)
		}
	}()

	session := webpros.NewSession(page, s.opts.Session)

	err = session.Login(ctx, credential)
	if err != nil {
		return attendance.Record{}, loginError(err)
	}

	html, err := session.FetchReportHtml(ctx)
	if err != nil {
		return attendance.Record{}, &Error{Kind: KindFetch, Message: err.Error(), Err: err}
	}

	record, err := webpros.ParseReport(ctx, html, s.opts.Now())
	if s.opts.Dump != nil && (err != nil || s.opts.DumpAll) {
		id := fmt.Sprintf("%s-%d.html", credential.Identifier, time.Now().UnixMilli())
		s.opts.Dump.Write(id, html)
		slog.DebugContext(ctx, "dumped register html", "id", id)
	}
	if err != nil {
		return attendance.Record{}, &Error{Kind: KindParse, Message: err.Error(), Err: err}
	}
	return record, nil
}
