package schedule

import (
	"context"

	"nepsereport/internal/render"
	"nepsereport/internal/service"
)

// ReportJob builds a report from the configured input URLs and publishes
// it to the output directory.
type ReportJob struct {
	Service *service.Service
	Format  render.Format
}

// Name implements Job.
func (j ReportJob) Name() string {
	return "report"
}

// Run implements Job.
func (j ReportJob) Run(ctx context.Context) error {
	format := j.Format
	if format == "" {
		format = render.FormatMarkdown
	}
	_, _, err := j.Service.Run(ctx, service.Request{}, format, "schedule")
	return err
}
