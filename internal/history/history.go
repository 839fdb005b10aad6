// Package history keeps an index of published reports in SQLite.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"nepsereport/pkg/nepsereport"
)

// Entry is one published report artifact.
type Entry struct {
	ReportID    string    `json:"report_id"`
	Format      string    `json:"format"`
	Path        string    `json:"path"`
	Bytes       int       `json:"bytes"`
	Trigger     string    `json:"trigger"`
	GeneratedAt time.Time `json:"generated_at"`
	PriceDate   string    `json:"price_date"`
	Currency    string    `json:"currency"`
	Investment  string    `json:"investment,omitempty"`
	MarketValue string    `json:"market_value,omitempty"`
	PL          string    `json:"pl,omitempty"`
	Realized    string    `json:"realized"`
	Issues      int       `json:"issues"`
}

// timeLayout sorts lexically in time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Store is the report index.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
	path   string
}

// Open opens or creates the index at path.
func Open(path string, logger *slog.Logger) (*Store, error) {
	if path == "" {
		return nil, errors.New("history db path is required")
	}
	cleanPath := filepath.Clean(path)
	if err := os.MkdirAll(filepath.Dir(cleanPath), 0o755); err != nil {
		return nil, fmt.Errorf("create history dir: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	db, err := sql.Open("sqlite", cleanPath)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	// SQLite performs best with a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		logger.Warn("pragma busy_timeout failed", "err", err)
	}
	if err := initDatabase(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init history db: %w", err)
	}
	return &Store{db: db, logger: logger, path: cleanPath}, nil
}

func initDatabase(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS reports (
			report_id TEXT NOT NULL,
			format TEXT NOT NULL,
			path TEXT NOT NULL,
			bytes INTEGER NOT NULL DEFAULT 0,
			triggered_by TEXT NOT NULL DEFAULT '',
			generated_at TEXT NOT NULL,
			price_date TEXT NOT NULL DEFAULT '',
			currency TEXT NOT NULL DEFAULT '',
			investment TEXT,
			market_value TEXT,
			pl TEXT,
			realized TEXT NOT NULL DEFAULT '0',
			issues INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (report_id, format)
		)
	`)
	if err != nil {
		return err
	}
	_, err = db.Exec("CREATE INDEX IF NOT EXISTS idx_reports_generated_at ON reports(generated_at)")
	return err
}

// Close releases database resources.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file.
func (s *Store) Path() string {
	return s.path
}

// EntryFor describes report r published to path.
func EntryFor(r *nepsereport.Report, format, path string, size int, trigger string) Entry {
	return Entry{
		ReportID:    r.ID,
		Format:      format,
		Path:        path,
		Bytes:       size,
		Trigger:     trigger,
		GeneratedAt: r.GeneratedAt.UTC(),
		PriceDate:   r.PriceDate,
		Currency:    r.Currency,
		Investment:  r.Totals.Investment.String(),
		MarketValue: r.Totals.MarketValue.String(),
		PL:          r.Totals.PL.String(),
		Realized:    r.Totals.Realized.String(),
		Issues:      len(r.Issues),
	}
}

// Record stores e, replacing an earlier entry for the same report and
// format.
func (s *Store) Record(ctx context.Context, e Entry) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO reports
			(report_id, format, path, bytes, triggered_by, generated_at, price_date, currency, investment, market_value, pl, realized, issues)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, e.ReportID, e.Format, e.Path, e.Bytes, e.Trigger, e.GeneratedAt.UTC().Format(timeLayout),
		e.PriceDate, e.Currency, nullString(e.Investment), nullString(e.MarketValue), nullString(e.PL), e.Realized, e.Issues)
	if err != nil {
		return nepsereport.WrapError(nepsereport.ErrCodeInternal, "record report", err)
	}
	return nil
}

// List returns entries newest first.
func (s *Store) List(ctx context.Context, limit, offset int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT report_id, format, path, bytes, triggered_by, generated_at, price_date, currency, investment, market_value, pl, realized, issues
		FROM reports
		ORDER BY generated_at DESC, report_id, format
		LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, nepsereport.WrapError(nepsereport.ErrCodeInternal, "list reports", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var e Entry
		var generatedAt string
		var investment, marketValue, pl sql.NullString
		if err := rows.Scan(&e.ReportID, &e.Format, &e.Path, &e.Bytes, &e.Trigger, &generatedAt, &e.PriceDate,
			&e.Currency, &investment, &marketValue, &pl, &e.Realized, &e.Issues); err != nil {
			return nil, nepsereport.WrapError(nepsereport.ErrCodeInternal, "scan report", err)
		}
		if t, err := time.Parse(timeLayout, generatedAt); err == nil {
			e.GeneratedAt = t
		}
		e.Investment = investment.String
		e.MarketValue = marketValue.String
		e.PL = pl.String
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func nullString(v string) sql.NullString {
	return sql.NullString{String: v, Valid: v != ""}
}
