package cli

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"gopkg.in/yaml.v3"

	"nepsereport/internal/config"
)

type configCmd struct {
	init  bool
	force bool
}

func (*configCmd) Name() string     { return "config" }
func (*configCmd) Synopsis() string { return "print the effective configuration or write a default one" }
func (*configCmd) Usage() string {
	return `nepse-report config [-init [-force]]

  Prints the configuration after defaults, the config file, .env and
  NEPSE_REPORT_* variables are applied. With -init, writes the defaults
  to -config or the per-user config path.

`
}

func (c *configCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.init, "init", false, "Write a default config file")
	f.BoolVar(&c.force, "force", false, "Overwrite an existing config file")
}

func (c *configCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	e := envOf(args)
	if c.init {
		path := e.configPath
		if path == "" {
			p, err := config.DefaultPath()
			if err != nil {
				return e.fail(err)
			}
			path = p
		}
		if _, err := os.Stat(path); err == nil && !c.force {
			return e.fail(fmt.Errorf("%s already exists, use -force to overwrite", path))
		}
		if err := config.Save(config.Defaults(), path); err != nil {
			return e.fail(err)
		}
		fmt.Fprintf(e.stdout, "wrote %s\n", path)
		return subcommands.ExitSuccess
	}

	cfg, err := e.loadConfig()
	if err != nil {
		return e.fail(err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return e.fail(err)
	}
	_, _ = e.stdout.Write(data)
	return subcommands.ExitSuccess
}

type templateCmd struct {
	output string
}

func (*templateCmd) Name() string     { return "template" }
func (*templateCmd) Synopsis() string { return "download the blank trading journal workbook" }
func (*templateCmd) Usage() string {
	return `nepse-report template [-o <file>]

  Downloads the journal template from the configured template URL.

`
}

func (c *templateCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.output, "o", "", "Destination file (defaults to the template's own name)")
}

func (c *templateCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	e := envOf(args)
	svc, closeFn, err := e.openService()
	if err != nil {
		return e.fail(err)
	}
	defer closeFn()

	ref := svc.Config().TemplateURL
	if ref == "" {
		return e.fail(fmt.Errorf("no template URL configured"))
	}
	doc, err := svc.Loader().Open(ctx, ref)
	if err != nil {
		return e.fail(err)
	}
	dst := c.output
	if dst == "" {
		dst = doc.Filename
	}
	if err := os.WriteFile(dst, doc.Data, 0o644); err != nil {
		return e.fail(err)
	}
	fmt.Fprintf(e.stdout, "saved %s (%d bytes)\n", dst, len(doc.Data))
	return subcommands.ExitSuccess
}

type versionCmd struct{}

func (*versionCmd) Name() string             { return "version" }
func (*versionCmd) Synopsis() string         { return "print the version" }
func (*versionCmd) Usage() string            { return "nepse-report version\n" }
func (*versionCmd) SetFlags(f *flag.FlagSet) {}

func (*versionCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	fmt.Fprintf(envOf(args).stdout, "nepse-report %s\n", Version)
	return subcommands.ExitSuccess
}
