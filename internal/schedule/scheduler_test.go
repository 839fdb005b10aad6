package schedule

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"nepsereport/internal/config"
	"nepsereport/internal/render"
	"nepsereport/internal/service"
)

type countingJob struct {
	runs atomic.Int32
	err  error
	ctx  chan context.Context
}

func (j *countingJob) Name() string { return "counting" }

func (j *countingJob) Run(ctx context.Context) error {
	j.runs.Add(1)
	if j.ctx != nil {
		j.ctx <- ctx
	}
	return j.err
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestAddJobRejectsBadSpec(t *testing.T) {
	s := New(quietLogger(), 0)
	if err := s.AddJob("not a schedule", &countingJob{}); err == nil {
		t.Fatalf("expected error for invalid cron expression")
	}
	if err := s.AddJob("@every 1h", &countingJob{}); err != nil {
		t.Fatalf("AddJob: %v", err)
	}
}

func TestRunNow(t *testing.T) {
	job := &countingJob{ctx: make(chan context.Context, 1)}
	s := New(quietLogger(), time.Minute)
	if err := s.RunNow(job); err != nil {
		t.Fatalf("RunNow: %v", err)
	}
	if job.runs.Load() != 1 {
		t.Fatalf("expected one run, got %d", job.runs.Load())
	}
	if _, ok := (<-job.ctx).Deadline(); !ok {
		t.Fatalf("expected run context to carry the timeout")
	}

	job.err = errors.New("boom")
	if err := s.RunNow(job); err == nil {
		t.Fatalf("expected job error")
	}
}

func TestScheduledRun(t *testing.T) {
	job := &countingJob{}
	s := New(quietLogger(), 0)
	if err := s.AddJob("@every 1s", job); err != nil {
		t.Fatalf("AddJob: %v", err)
	}
	s.Start()
	defer s.Stop()

	deadline := time.Now().Add(5 * time.Second)
	for job.runs.Load() == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("job never ran")
		}
		time.Sleep(50 * time.Millisecond)
	}
}

func TestReportJob(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) string {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
		return path
	}
	cfg := config.Defaults()
	cfg.LedgerURL = write("journal.csv", "Symbol,position,Buy price,Sell price,Total holding\nnabil,o,500,,20\n")
	cfg.PriceURL = write("prices.csv", "Symbol,LTP\nNABIL,550\n")
	cfg.SectorURL = write("sectors.csv", "Symbol,Sector\nNABIL,Commercial Banks\n")
	cfg.OutputDir = filepath.Join(dir, "out")

	svc := service.New(service.Options{Config: cfg, Logger: quietLogger()})
	s := New(quietLogger(), time.Minute)
	if err := s.RunNow(ReportJob{Service: svc, Format: render.FormatHTML}); err != nil {
		t.Fatalf("report job: %v", err)
	}
	matches, err := filepath.Glob(filepath.Join(cfg.OutputDir, "*.html"))
	if err != nil || len(matches) != 1 {
		t.Fatalf("expected one html artifact, got %v (%v)", matches, err)
	}
}
