// Package mobile exposes report generation to gomobile bindings. Inputs
// are passed as file names plus raw bytes so the host app can hand over
// picked documents without touching the file system.
package mobile

import (
	"context"
	"encoding/json"

	"nepsereport/internal/loader"
	"nepsereport/internal/render"
	"nepsereport/pkg/nepsereport"
)

// Core wraps the report engine for gomobile bindings.
type Core struct {
	engine *nepsereport.Engine
	loader *loader.Loader
}

// Open creates a core. An empty currency selects NPR.
func Open(currency string) *Core {
	return &Core{
		engine: nepsereport.New(nepsereport.Options{Currency: currency}),
		loader: loader.New(loader.Options{}),
	}
}

// Inputs collects the three documents of a run. Mobile bindings cannot
// pass structs by value, so fields are set one by one.
type Inputs struct {
	docs [3]loader.Document
}

// NewInputs creates an empty input set.
func NewInputs() *Inputs {
	return &Inputs{}
}

// SetLedger sets the trading journal document.
func (in *Inputs) SetLedger(filename string, data []byte) {
	in.docs[0] = loader.Document{Filename: filename, Data: data}
}

// SetPrices sets the price snapshot document.
func (in *Inputs) SetPrices(filename string, data []byte) {
	in.docs[1] = loader.Document{Filename: filename, Data: data}
}

// SetSectors sets the sector map document. When unset, a workbook ledger
// is read for its sector sheet.
func (in *Inputs) SetSectors(filename string, data []byte) {
	in.docs[2] = loader.Document{Filename: filename, Data: data}
}

func (c *Core) generate(in *Inputs) (*nepsereport.Report, error) {
	if in == nil {
		return nil, nepsereport.NewError(nepsereport.ErrCodeInvalidInput, "no inputs")
	}
	ledgerDoc, priceDoc, sectorDoc := in.docs[0], in.docs[1], in.docs[2]
	if sectorDoc.Filename == "" && loader.IsWorkbook(ledgerDoc.Filename) {
		sectorDoc = ledgerDoc
	}

	ledger, err := c.loader.Read(ledgerDoc, loader.TableSpec{Name: "ledger", Sheet: "Keshav"})
	if err != nil {
		return nil, err
	}
	prices, err := c.loader.Read(priceDoc, loader.TableSpec{Name: "prices"})
	if err != nil {
		return nil, err
	}
	sectors, err := c.loader.Read(sectorDoc, loader.TableSpec{
		Name:    "sectors",
		Sheet:   "Sector info",
		Columns: []string{nepsereport.ColSymbol, nepsereport.ColSector},
	})
	if err != nil {
		return nil, err
	}
	return c.engine.Generate(context.Background(), nepsereport.Inputs{
		Ledger:    ledger,
		Prices:    prices,
		Sectors:   sectors,
		PriceDate: loader.PriceDate(prices, priceDoc.Filename),
	})
}

// ReportJSON builds the report and returns it as JSON.
func (c *Core) ReportJSON(in *Inputs) (string, error) {
	r, err := c.generate(in)
	if err != nil {
		return "", err
	}
	return marshalJSON(r)
}

// ReportMarkdown builds the report and returns it as markdown.
func (c *Core) ReportMarkdown(in *Inputs) (string, error) {
	r, err := c.generate(in)
	if err != nil {
		return "", err
	}
	return render.Markdown(r, render.MarkdownOptions{})
}

// ReportHTML builds the report and returns a standalone HTML page.
func (c *Core) ReportHTML(in *Inputs) (string, error) {
	r, err := c.generate(in)
	if err != nil {
		return "", err
	}
	data, err := render.Render(r, render.FormatHTML, render.Options{})
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// ErrorCode returns the classification of err, or an empty string.
func ErrorCode(err error) string {
	code, _ := nepsereport.CodeOf(err)
	return string(code)
}

func marshalJSON(value any) (string, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
