package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"

	"nepsereport/internal/render"
	"nepsereport/internal/service"
)

// reportCmd renders a report. The sectors and realized commands are the
// same command limited to their sections.
type reportCmd struct {
	name string

	ledger, prices, sectors string
	sheet                   string
	format                  string
	output                  string
	title                   string
	sections                string
	style                   string
	publish                 bool
}

func (c *reportCmd) Name() string {
	if c.name != "" {
		return c.name
	}
	return "report"
}

func (c *reportCmd) Synopsis() string {
	switch c.name {
	case "sectors":
		return "display holdings grouped by sector with the allocation chart"
	case "realized":
		return "display realized profit of closed trades"
	}
	return "generate the full portfolio report"
}

func (c *reportCmd) Usage() string {
	return fmt.Sprintf(`nepse-report %s [-ledger <file>] [-prices <file|url>] [-sectors <file>] [-format <format>] [-o <file>]

  Builds the report from a trading journal, a price snapshot and a sector
  map. Inputs default to the configured URLs. Without -sectors an .xlsx
  journal supplies its "Sector info" sheet.

  Formats: terminal, markdown, html, json, msgpack.

`, c.Name())
}

func (c *reportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.ledger, "ledger", "", "Trading journal file or URL (.xlsx, .csv, .tsv)")
	f.StringVar(&c.prices, "prices", "", "Price snapshot file or URL (.csv, .json, .xlsx)")
	f.StringVar(&c.sectors, "sectors", "", "Sector map file or URL")
	f.StringVar(&c.sheet, "sheet", "", "Journal sheet name (defaults to the configured one)")
	f.StringVar(&c.format, "format", "terminal", "Output format")
	f.StringVar(&c.output, "o", "", "Write the report to this file instead of stdout")
	f.StringVar(&c.title, "title", "", "Report title")
	f.StringVar(&c.style, "style", "", "Terminal style (dark, light, notty, ...)")
	f.BoolVar(&c.publish, "publish", false, "Also publish the report to the output directory")
	if c.name == "" {
		f.StringVar(&c.sections, "sections", "", "Comma separated sections: holdings, sectors, allocation, realized, quality")
	}
}

func (c *reportCmd) sectionList() []render.Section {
	switch c.name {
	case "sectors":
		return []render.Section{render.SectionSectors, render.SectionAllocation}
	case "realized":
		return []render.Section{render.SectionRealized}
	}
	var out []render.Section
	for _, part := range strings.Split(c.sections, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, render.Section(strings.ToLower(part)))
		}
	}
	return out
}

func (c *reportCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	e := envOf(args)
	format, err := render.ParseFormat(c.format)
	if err != nil {
		fmt.Fprintf(e.stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}

	svc, closeFn, err := e.openService()
	if err != nil {
		return e.fail(err)
	}
	defer closeFn()

	report, err := svc.Generate(ctx, service.Request{
		Ledger:      service.Source{Ref: c.ledger},
		Prices:      service.Source{Ref: c.prices},
		Sectors:     service.Source{Ref: c.sectors},
		LedgerSheet: c.sheet,
	})
	if err != nil {
		return e.fail(err)
	}

	opts := render.Options{
		Markdown: render.MarkdownOptions{Title: c.title, Sections: c.sectionList()},
		Terminal: render.TerminalOptions{Style: c.style},
	}
	data, err := render.Render(report, format, opts)
	if err != nil {
		return e.fail(err)
	}

	if c.publish {
		artifact, err := svc.Publish(report, format, opts, "cli")
		if err != nil {
			return e.fail(err)
		}
		fmt.Fprintf(e.stderr, "published %s\n", artifact.Path)
	}

	if c.output != "" {
		if err := os.WriteFile(c.output, data, 0o644); err != nil {
			return e.fail(err)
		}
		return subcommands.ExitSuccess
	}
	if _, err := e.stdout.Write(data); err != nil {
		return e.fail(err)
	}
	return subcommands.ExitSuccess
}
