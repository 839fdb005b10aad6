// Package service wires loading, report generation, rendering and
// publication together for the server, the scheduler and the CLI.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"nepsereport/internal/config"
	"nepsereport/internal/events"
	"nepsereport/internal/history"
	"nepsereport/internal/loader"
	"nepsereport/internal/render"
	"nepsereport/pkg/nepsereport"
)

// Options controls Service construction. Only Config is required. A nil
// History skips indexing.
type Options struct {
	Config  config.Config
	Logger  *slog.Logger
	Loader  *loader.Loader
	Engine  *nepsereport.Engine
	Hub     *events.Hub
	History *history.Store
}

// Service generates and publishes reports.
type Service struct {
	cfg     config.Config
	logger  *slog.Logger
	loader  *loader.Loader
	engine  *nepsereport.Engine
	hub     *events.Hub
	history *history.Store
}

// New creates a Service, building the loader and engine from the
// configuration when they are not supplied.
func New(opts Options) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	ld := opts.Loader
	if ld == nil {
		ld = loader.New(loader.Options{
			Logger:  logger,
			Fetcher: loader.NewFetcher(loader.FetcherOptions{Logger: logger, Timeout: opts.Config.HTTPTimeout()}),
		})
	}
	engine := opts.Engine
	if engine == nil {
		engineOpts := opts.Config.EngineOptions()
		engineOpts.Logger = logger
		engine = nepsereport.New(engineOpts)
	}
	return &Service{cfg: opts.Config, logger: logger, loader: ld, engine: engine, hub: opts.Hub, history: opts.History}
}

// Config returns the configuration the service was built with.
func (s *Service) Config() config.Config {
	return s.cfg
}

// Loader returns the loader used for inputs.
func (s *Service) Loader() *loader.Loader {
	return s.loader
}

// Source is one input: an uploaded document, or a path or URL to read.
type Source struct {
	Ref string
	Doc *loader.Document
}

func (src Source) empty() bool {
	return src.Doc == nil && strings.TrimSpace(src.Ref) == ""
}

func (src Source) name() string {
	if src.Doc != nil {
		return src.Doc.Filename
	}
	return src.Ref
}

// Request names the inputs of one run. Empty sources fall back to the
// configured URLs. With no sector source, a workbook ledger supplies the
// sector sheet as well.
type Request struct {
	Ledger  Source
	Prices  Source
	Sectors Source
	// LedgerSheet overrides the configured journal sheet.
	LedgerSheet string
}

// Generate loads the inputs of req and runs the report engine.
func (s *Service) Generate(ctx context.Context, req Request) (*nepsereport.Report, error) {
	if req.Ledger.empty() {
		req.Ledger.Ref = s.cfg.LedgerURL
	}
	if req.Prices.empty() {
		req.Prices.Ref = s.cfg.PriceURL
	}
	if req.Sectors.empty() {
		req.Sectors.Ref = s.cfg.SectorURL
	}
	if req.Ledger.empty() {
		return nil, nepsereport.NewError(nepsereport.ErrCodeInvalidInput, "no trading journal given")
	}
	if req.Prices.empty() {
		return nil, nepsereport.NewError(nepsereport.ErrCodeInvalidInput, "no price snapshot given")
	}

	ledgerSpec := s.cfg.LedgerSpec()
	if req.LedgerSheet != "" {
		ledgerSpec.Sheet = req.LedgerSheet
	}
	ledger, ledgerDoc, err := s.read(ctx, req.Ledger, ledgerSpec)
	if err != nil {
		return nil, err
	}
	prices, priceDoc, err := s.read(ctx, req.Prices, s.cfg.PriceSpec())
	if err != nil {
		return nil, err
	}

	sectorSrc := req.Sectors
	if sectorSrc.empty() {
		if !loader.IsWorkbook(ledgerDoc.Filename) {
			return nil, nepsereport.NewError(nepsereport.ErrCodeInvalidInput, "no sector map given")
		}
		s.logger.Debug("reading sector map from journal workbook", "file", ledgerDoc.Filename, "sheet", s.cfg.SectorSheet)
		sectorSrc = Source{Doc: &ledgerDoc}
	}
	sectors, _, err := s.read(ctx, sectorSrc, s.cfg.SectorSpec())
	if err != nil {
		return nil, err
	}

	return s.engine.Generate(ctx, nepsereport.Inputs{
		Ledger:    ledger,
		Prices:    prices,
		Sectors:   sectors,
		PriceDate: loader.PriceDate(prices, priceDoc.Filename),
	})
}

func (s *Service) read(ctx context.Context, src Source, spec loader.TableSpec) (nepsereport.Table, loader.Document, error) {
	if src.Doc != nil {
		t, err := s.loader.Read(*src.Doc, spec)
		return t, *src.Doc, err
	}
	t, doc, err := s.loader.Load(ctx, src.Ref, spec)
	if err != nil {
		s.logger.Warn("input not loaded", "table", spec.Name, "source", src.name(), "err", err)
	}
	return t, doc, err
}

// Artifact describes a rendered report written to the output directory.
type Artifact struct {
	ReportID string        `json:"report_id"`
	Format   render.Format `json:"format"`
	Path     string        `json:"path"`
	Bytes    int           `json:"bytes"`
}

// Publish renders r, writes it to the output directory as <id><ext> and
// announces it to event subscribers.
func (s *Service) Publish(r *nepsereport.Report, f render.Format, opts render.Options, trigger string) (Artifact, error) {
	data, err := render.Render(r, f, opts)
	if err != nil {
		return Artifact{}, err
	}
	if err := os.MkdirAll(s.cfg.OutputDir, 0o755); err != nil {
		return Artifact{}, nepsereport.WrapError(nepsereport.ErrCodeInternal, "create output directory", err)
	}
	path := filepath.Join(s.cfg.OutputDir, r.ID+f.Extension())
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return Artifact{}, nepsereport.WrapError(nepsereport.ErrCodeInternal, "write report", err)
	}
	s.logger.Info("report published", "id", r.ID, "format", f, "path", path, "bytes", len(data), "trigger", trigger)
	if s.history != nil {
		entry := history.EntryFor(r, string(f), path, len(data), trigger)
		if err := s.history.Record(context.Background(), entry); err != nil {
			s.logger.Warn("report not recorded in history", "id", r.ID, "err", err)
		}
	}
	s.hub.Broadcast(events.ReportGenerated(r, string(f), trigger))
	return Artifact{ReportID: r.ID, Format: f, Path: path, Bytes: len(data)}, nil
}

// Run generates a report and publishes it in format f.
func (s *Service) Run(ctx context.Context, req Request, f render.Format, trigger string) (*nepsereport.Report, Artifact, error) {
	r, err := s.Generate(ctx, req)
	if err != nil {
		return nil, Artifact{}, err
	}
	a, err := s.Publish(r, f, render.Options{}, trigger)
	if err != nil {
		return nil, Artifact{}, err
	}
	return r, a, nil
}

// History lists published reports, newest first. Without a history
// store it returns an empty list.
func (s *Service) History(ctx context.Context, limit, offset int) ([]history.Entry, error) {
	if s.history == nil {
		return []history.Entry{}, nil
	}
	return s.history.List(ctx, limit, offset)
}

var artifactFormats = []render.Format{
	render.FormatMarkdown,
	render.FormatHTML,
	render.FormatJSON,
	render.FormatMsgPack,
	render.FormatTerminal,
}

// FindArtifact locates a published report by id. When f is empty the
// first format found is returned.
func (s *Service) FindArtifact(id string, f render.Format) (Artifact, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Artifact{}, nepsereport.NewError(nepsereport.ErrCodeInvalidInput, fmt.Sprintf("invalid report id %q", id))
	}
	formats := artifactFormats
	if f != "" {
		formats = []render.Format{f}
	}
	for _, candidate := range formats {
		path := filepath.Join(s.cfg.OutputDir, id+candidate.Extension())
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			continue
		}
		return Artifact{ReportID: id, Format: candidate, Path: path, Bytes: int(info.Size())}, nil
	}
	return Artifact{}, nepsereport.NewError(nepsereport.ErrCodeNotFound, fmt.Sprintf("report %s not found", id))
}
