package mobile

import (
	"encoding/json"
	"strings"
	"testing"
)

const (
	ledgerCSV  = "Symbol,position,Buy price,Sell price,Total holding\nnabil,o,500,,20\napi,c,250,300,10\n"
	pricesCSV  = "Symbol,LTP\nNABIL,550\n"
	sectorsCSV = "Symbol,Sector\nNABIL,Commercial Banks\n"
)

func sampleInputs() *Inputs {
	in := NewInputs()
	in.SetLedger("journal.csv", []byte(ledgerCSV))
	in.SetPrices("Today's Price - 2025-12-25.csv", []byte(pricesCSV))
	in.SetSectors("sectors.csv", []byte(sectorsCSV))
	return in
}

func TestMobileReportJSON(t *testing.T) {
	core := Open("")

	out, err := core.ReportJSON(sampleInputs())
	if err != nil {
		t.Fatalf("ReportJSON: %v", err)
	}
	var report map[string]any
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("unmarshal report: %v", err)
	}
	if report["price_date"] != "2025-12-25" {
		t.Fatalf("unexpected price date %v", report["price_date"])
	}
	if report["currency"] != "NPR" {
		t.Fatalf("unexpected currency %v", report["currency"])
	}
}

func TestMobileReportMarkdownAndHTML(t *testing.T) {
	core := Open("NPR")

	md, err := core.ReportMarkdown(sampleInputs())
	if err != nil {
		t.Fatalf("ReportMarkdown: %v", err)
	}
	if !strings.Contains(md, "NABIL") {
		t.Fatalf("expected holdings in markdown, got %q", md)
	}

	html, err := core.ReportHTML(sampleInputs())
	if err != nil {
		t.Fatalf("ReportHTML: %v", err)
	}
	if !strings.Contains(html, "<table>") {
		t.Fatalf("expected html tables")
	}
}

func TestMobileErrors(t *testing.T) {
	core := Open("")

	if _, err := core.ReportJSON(nil); ErrorCode(err) != "INVALID_INPUT" {
		t.Fatalf("expected INVALID_INPUT, got %v", err)
	}

	in := sampleInputs()
	in.SetLedger("journal.csv", []byte("Symbol\nnabil\n"))
	_, err := core.ReportJSON(in)
	if ErrorCode(err) != "SCHEMA_ERROR" {
		t.Fatalf("expected SCHEMA_ERROR, got %v", err)
	}
	if ErrorCode(nil) != "" {
		t.Fatalf("expected empty code for nil error")
	}
}
