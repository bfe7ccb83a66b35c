package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/hibiken/asynq"

	"github.com/fondolibro/fondolibro/internal/report"
)

// AnnualReportBuilder rebuilds the annual matrix for a year.
type AnnualReportBuilder interface {
	Annual(ctx context.Context, year int) (report.AnnualReport, error)
}

// ReportCache stores a built report under a versioned key.
type ReportCache interface {
	BuildKey(ctx context.Context, parts ...string) (string, error)
	FetchJSON(ctx context.Context, key string, dest interface{}, loader func(context.Context) (interface{}, error)) error
}

// ReportWarmupJob rebuilds and caches the annual report after closure
// state changes, so the first interactive request hits a warm cache.
type ReportWarmupJob struct {
	Builder AnnualReportBuilder
	Cache   ReportCache
	Logger  *slog.Logger
	clock   func() time.Time
}

// NewReportWarmupJob constructs the job handler.
func NewReportWarmupJob(builder AnnualReportBuilder, cache ReportCache, logger *slog.Logger) *ReportWarmupJob {
	return &ReportWarmupJob{
		Builder: builder,
		Cache:   cache,
		Logger:  logger,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle executes the warmup job.
func (j *ReportWarmupJob) Handle(ctx context.Context, task *asynq.Task) error {
	if j == nil || j.Builder == nil {
		return errors.New("report warmup: dependencies not configured")
	}
	var payload ReportWarmupPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	year := payload.Year
	if year == 0 {
		year = j.now().Year()
	}
	if year < 1900 || year > 9999 {
		return asynq.SkipRetry
	}

	start := j.now()

	if j.Cache == nil {
		if _, err := j.Builder.Annual(ctx, year); err != nil {
			j.log().Error("build annual report", slog.Int("year", year), slog.Any("error", err))
			return err
		}
	} else {
		key, err := j.Cache.BuildKey(ctx, "report", "annual", strconv.Itoa(year))
		if err != nil {
			j.log().Error("build cache key", slog.Any("error", err))
			return err
		}
		var out report.AnnualReport
		err = j.Cache.FetchJSON(ctx, key, &out, func(ctx context.Context) (interface{}, error) {
			return j.Builder.Annual(ctx, year)
		})
		if err != nil {
			j.log().Error("warm annual report", slog.Int("year", year), slog.Any("error", err))
			return err
		}
	}

	j.log().Info("warmed annual report", slog.Int("year", year), slog.Duration("duration", time.Since(start)))
	return nil
}

func (j *ReportWarmupJob) log() *slog.Logger {
	if j != nil && j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskReportWarmup))
	}
	return slog.Default().With(slog.String("job", TaskReportWarmup))
}

func (j *ReportWarmupJob) now() time.Time {
	if j != nil && j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}

// WithClock overrides the internal clock for deterministic tests.
func (j *ReportWarmupJob) WithClock(clock func() time.Time) {
	if j != nil && clock != nil {
		j.clock = clock
	}
}
