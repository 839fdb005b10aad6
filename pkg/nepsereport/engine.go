package nepsereport

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultCurrency labels money columns when Options.Currency is empty.
const DefaultCurrency = "NPR"

// Options controls Engine behavior.
type Options struct {
	Logger *slog.Logger
	// PriceColumns overrides the ordered price column aliases.
	PriceColumns []string
	// StrictSectors turns conflicting sector labels into a DATA_QUALITY error.
	StrictSectors bool
	Currency      string
	UnknownSector string
	Now           func() time.Time
}

// Engine turns the three raw tables into a Report. It holds no state
// between runs and is safe for concurrent use.
type Engine struct {
	logger        *slog.Logger
	priceColumns  []string
	strictSectors bool
	currency      string
	unknownSector string
	now           func() time.Time
}

// New builds an Engine, filling defaults for unset options.
func New(opts Options) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	columns := opts.PriceColumns
	if len(columns) == 0 {
		columns = DefaultPriceColumns
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Engine{
		logger:        logger,
		priceColumns:  columns,
		strictSectors: opts.StrictSectors,
		currency:      defaultString(opts.Currency, DefaultCurrency),
		unknownSector: defaultString(opts.UnknownSector, UnknownSector),
		now:           now,
	}
}

// Currency returns the currency code used in headings.
func (e *Engine) Currency() string {
	return e.currency
}

// Inputs are the raw tables of one report run.
type Inputs struct {
	Ledger    Table
	Prices    Table
	Sectors   Table
	PriceDate string
}

// Generate runs the pipeline: parse, reconcile, partition, aggregate and
// format. The first fatal error aborts the run.
func (e *Engine) Generate(ctx context.Context, in Inputs) (*Report, error) {
	in.Ledger.Name = defaultString(in.Ledger.Name, "ledger")
	in.Prices.Name = defaultString(in.Prices.Name, "prices")
	in.Sectors.Name = defaultString(in.Sectors.Name, "sectors")

	ledger, err := ParseLedger(in.Ledger)
	if err != nil {
		return nil, err
	}
	prices, err := ParsePrices(in.Prices, e.priceColumns)
	if err != nil {
		return nil, err
	}
	sectors, err := ParseSectors(in.Sectors)
	if err != nil {
		return nil, err
	}
	if err := e.checkSectors(sectors); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	parts := PartitionPositions(Reconcile(ledger, prices, sectors))
	for marker, n := range parts.UnclassifiedMarkers() {
		e.logger.Warn("rows with unrecognized position marker excluded", "marker", marker, "rows", n)
	}

	symbols, sectorRows := AggregateOpen(parts.Open, e.unknownSector)
	realized := AggregateClosed(parts.Closed)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	report := &Report{
		ID:                  uuid.NewString(),
		GeneratedAt:         e.now(),
		PriceDate:           defaultString(in.PriceDate, "Unknown"),
		PriceColumn:         prices.Column,
		Currency:            e.currency,
		Totals:              totalsOf(sectorRows, realized),
		Symbols:             symbols,
		Sectors:             sectorRows,
		Realized:            realized,
		SymbolTable:         FormatSymbolSummary(symbols, e.currency),
		SectorTable:         FormatSectorSummary(sectorRows, e.currency),
		RealizedTable:       FormatRealizedSummary(realized, e.currency),
		Unclassified:        parts.Unclassified,
		UnclassifiedMarkers: parts.UnclassifiedMarkers(),
		Conflicts:           sectors.Conflicts,
	}
	report.Issues = append(report.Issues, ledger.Issues...)
	report.Issues = append(report.Issues, prices.Issues...)
	report.Issues = append(report.Issues, dropped(in.Ledger.Name, parts.Closed)...)

	report.Allocation, err = AllocationSlices(sectorRows)
	var notice *Error
	switch {
	case errors.As(err, &notice) && notice.Code == ErrCodeEmptyResult:
		report.AllocationNotice = notice.Message
		e.logger.Info("allocation chart skipped", "reason", report.AllocationNotice)
	case err != nil:
		return nil, err
	}

	if missing := report.MissingPrices(); len(missing) > 0 {
		e.logger.Warn("open symbols without a price quote", "symbols", missing)
	}
	for sym, n := range report.ExcludedLots() {
		e.logger.Warn("open lots without a defined investment left out", "symbol", sym, "lots", n)
	}
	for _, c := range sectors.Conflicts {
		e.logger.Warn("conflicting sector mapping", "symbol", c.Symbol, "kept", c.Kept, "rejected", c.Rejected)
	}
	e.logger.Info("report generated",
		"id", report.ID,
		"open_symbols", len(symbols),
		"sectors", len(sectorRows),
		"realized_symbols", len(realized),
		"issues", len(report.Issues),
	)
	return report, nil
}

func (e *Engine) checkSectors(m SectorMap) error {
	if !e.strictSectors || len(m.Conflicts) == 0 {
		return nil
	}
	lines := make([]string, 0, len(m.Conflicts))
	for _, c := range m.Conflicts {
		lines = append(lines, c.String())
	}
	return NewError(ErrCodeDataQuality, fmt.Sprintf("conflicting sector mappings: %s", strings.Join(lines, "; ")))
}

// dropped lists the closed rows left out of realized profit.
func dropped(table string, closed []EnrichedTransaction) []RowIssue {
	var issues []RowIssue
	for _, row := range closed {
		if realizable(row) {
			continue
		}
		issues = append(issues, RowIssue{
			Table:  table,
			Row:    row.Row,
			Reason: "closed row incomplete, excluded from realized profit",
		})
	}
	return issues
}

func totalsOf(sectors SectorSummary, realized RealizedSummary) Totals {
	investment := sectors.Investment()
	marketValue := sectors.MarketValue()
	pl := marketValue.Sub(investment)
	return Totals{
		Investment:  investment,
		MarketValue: marketValue,
		PL:          pl,
		PLPercent:   pl.Div(investment),
		Realized:    realized.Total(),
	}
}

// Totals are the portfolio-wide figures shown in the report header.
type Totals struct {
	Investment  NullAmount `json:"investment"`
	MarketValue NullAmount `json:"market_value"`
	PL          NullAmount `json:"pl"`
	PLPercent   NullAmount `json:"pl_percent"`
	Realized    Amount     `json:"realized"`
}

// Report is the result of one pipeline run.
type Report struct {
	ID          string    `json:"id"`
	GeneratedAt time.Time `json:"generated_at"`
	PriceDate   string    `json:"price_date"`
	PriceColumn string    `json:"price_column"`
	Currency    string    `json:"currency"`
	Totals      Totals    `json:"totals"`

	Symbols  SymbolSummary   `json:"symbols"`
	Sectors  SectorSummary   `json:"sectors"`
	Realized RealizedSummary `json:"realized"`

	SymbolTable   DisplayTable `json:"symbol_table"`
	SectorTable   DisplayTable `json:"sector_table"`
	RealizedTable DisplayTable `json:"realized_table"`

	Allocation       []AllocationSlice `json:"allocation,omitempty"`
	AllocationNotice string            `json:"allocation_notice,omitempty"`

	Unclassified        []EnrichedTransaction `json:"unclassified,omitempty"`
	UnclassifiedMarkers map[string]int        `json:"unclassified_markers,omitempty"`
	Issues              []RowIssue            `json:"issues,omitempty"`
	Conflicts           []SectorConflict      `json:"conflicts,omitempty"`
}

// MissingPrices lists open symbols that had no usable quote.
func (r *Report) MissingPrices() []string {
	var out []string
	for _, s := range r.Symbols {
		if s.MissingPrice {
			out = append(out, s.Symbol.String())
		}
	}
	sort.Strings(out)
	return out
}

// ExcludedLots counts, per open symbol, the lots left out of its valuation
// because their investment is undefined.
func (r *Report) ExcludedLots() map[string]int {
	out := map[string]int{}
	for _, s := range r.Symbols {
		if s.ExcludedLots > 0 {
			out[s.Symbol.String()] = s.ExcludedLots
		}
	}
	return out
}

// HasDataQualityNotes reports whether the report carries anything for the
// data quality section.
func (r *Report) HasDataQualityNotes() bool {
	return len(r.Issues) > 0 || len(r.Conflicts) > 0 || len(r.Unclassified) > 0 ||
		len(r.MissingPrices()) > 0 || len(r.ExcludedLots()) > 0
}

func defaultString(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}
