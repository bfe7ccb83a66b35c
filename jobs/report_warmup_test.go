package jobs

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/hibiken/asynq"

	"github.com/fondolibro/fondolibro/internal/report"
)

type fakeBuilder struct {
	years []int
	err   error
}

func (f *fakeBuilder) Annual(_ context.Context, year int) (report.AnnualReport, error) {
	f.years = append(f.years, year)
	return report.AnnualReport{Year: year}, f.err
}

type fakeCache struct {
	keys []string
}

func (f *fakeCache) BuildKey(_ context.Context, parts ...string) (string, error) {
	key := strings.Join(parts, ":")
	f.keys = append(f.keys, key)
	return key, nil
}

func (f *fakeCache) FetchJSON(ctx context.Context, _ string, _ interface{}, loader func(context.Context) (interface{}, error)) error {
	_, err := loader(ctx)
	return err
}

func newTestJob(builder *fakeBuilder, cache ReportCache) *ReportWarmupJob {
	job := NewReportWarmupJob(builder, cache, slog.Default())
	job.WithClock(func() time.Time {
		return time.Date(2025, time.June, 1, 2, 0, 0, 0, time.UTC)
	})
	return job
}

func TestReportWarmupHandleWarmsYear(t *testing.T) {
	builder := &fakeBuilder{}
	cache := &fakeCache{}
	job := newTestJob(builder, cache)

	task, err := NewReportWarmupTask(2024)
	if err != nil {
		t.Fatalf("new task: %v", err)
	}
	if err := job.Handle(context.Background(), task); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(builder.years) != 1 || builder.years[0] != 2024 {
		t.Fatalf("builder years = %v, want [2024]", builder.years)
	}
	if len(cache.keys) != 1 || cache.keys[0] != "report:annual:2024" {
		t.Fatalf("cache keys = %v", cache.keys)
	}
}

func TestReportWarmupHandleZeroYearUsesClock(t *testing.T) {
	builder := &fakeBuilder{}
	job := newTestJob(builder, &fakeCache{})

	task, err := NewReportWarmupTask(0)
	if err != nil {
		t.Fatalf("new task: %v", err)
	}
	if err := job.Handle(context.Background(), task); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(builder.years) != 1 || builder.years[0] != 2025 {
		t.Fatalf("builder years = %v, want [2025]", builder.years)
	}
}

func TestReportWarmupHandleSkipsBadPayload(t *testing.T) {
	builder := &fakeBuilder{}
	job := newTestJob(builder, &fakeCache{})

	bad := asynq.NewTask(TaskReportWarmup, []byte("{not json"))
	if err := job.Handle(context.Background(), bad); !errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("bad payload err = %v, want SkipRetry", err)
	}

	out, err := NewReportWarmupTask(99999)
	if err != nil {
		t.Fatalf("new task: %v", err)
	}
	if err := job.Handle(context.Background(), out); !errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("out-of-range err = %v, want SkipRetry", err)
	}
	if len(builder.years) != 0 {
		t.Fatalf("builder called for skipped payloads: %v", builder.years)
	}
}

func TestReportWarmupHandleNilCacheBuildsDirect(t *testing.T) {
	builder := &fakeBuilder{}
	job := newTestJob(builder, nil)

	task, err := NewReportWarmupTask(2023)
	if err != nil {
		t.Fatalf("new task: %v", err)
	}
	if err := job.Handle(context.Background(), task); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(builder.years) != 1 || builder.years[0] != 2023 {
		t.Fatalf("builder years = %v, want [2023]", builder.years)
	}
}

func TestReportWarmupHandlePropagatesBuildError(t *testing.T) {
	builder := &fakeBuilder{err: errors.New("db down")}
	job := newTestJob(builder, &fakeCache{})

	task, err := NewReportWarmupTask(2024)
	if err != nil {
		t.Fatalf("new task: %v", err)
	}
	if err := job.Handle(context.Background(), task); err == nil {
		t.Fatal("expected build error to propagate")
	}
}
