package cli

import (
	"context"
	"flag"
	"fmt"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/google/subcommands"
)

type historyCmd struct {
	limit  int
	offset int
}

func (*historyCmd) Name() string     { return "history" }
func (*historyCmd) Synopsis() string { return "list published reports" }
func (*historyCmd) Usage() string {
	return `nepse-report history [-limit <n>] [-offset <n>]

  Lists reports published by the server, the scheduler or report -publish,
  newest first.

`
}

func (c *historyCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.limit, "limit", 20, "Maximum number of entries")
	f.IntVar(&c.offset, "offset", 0, "Entries to skip")
}

func (c *historyCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	e := envOf(args)
	svc, closeFn, err := e.openService()
	if err != nil {
		return e.fail(err)
	}
	defer closeFn()

	entries, err := svc.History(ctx, c.limit, c.offset)
	if err != nil {
		return e.fail(err)
	}
	if len(entries) == 0 {
		fmt.Fprintln(e.stdout, "no reports published")
		return subcommands.ExitSuccess
	}

	tw := tabwriter.NewWriter(e.stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tFORMAT\tPRICE DATE\tMARKET VALUE\tSIZE\tTRIGGER\tGENERATED")
	for _, entry := range entries {
		value := entry.MarketValue
		if value == "" {
			value = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			entry.ReportID, entry.Format, entry.PriceDate, value,
			humanize.Bytes(uint64(entry.Bytes)), entry.Trigger, humanize.Time(entry.GeneratedAt))
	}
	if err := tw.Flush(); err != nil {
		return e.fail(err)
	}
	return subcommands.ExitSuccess
}
