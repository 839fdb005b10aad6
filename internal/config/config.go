package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"nepsereport/internal/loader"
	"nepsereport/pkg/nepsereport"
)

const envPrefix = "NEPSE_REPORT_"

// Default input locations. The journal template is a legacy .xls workbook,
// so it is offered for download but never loaded as the default ledger.
const (
	DefaultPriceURL    = "https://raw.githubusercontent.com/Kavrelithito/nepse-portfolio-report-app/main/data/Today%27s%20Price%20-%202025-12-25.csv"
	DefaultTemplateURL = "https://raw.githubusercontent.com/Kavrelithito/nepse-portfolio-report-app/main/data/trading_journal_template.xls"
)

// Config holds every setting of the report tools.
type Config struct {
	Currency      string `json:"currency" yaml:"currency"`
	UnknownSector string `json:"unknown_sector" yaml:"unknown_sector"`
	StrictSectors bool   `json:"strict_sectors" yaml:"strict_sectors"`

	LedgerSheet     string   `json:"ledger_sheet" yaml:"ledger_sheet"`
	// Header rows are 1-based; zero finds the row with a Symbol heading.
	LedgerHeaderRow int      `json:"ledger_header_row" yaml:"ledger_header_row"`
	SectorSheet     string   `json:"sector_sheet" yaml:"sector_sheet"`
	SectorHeaderRow int      `json:"sector_header_row" yaml:"sector_header_row"`
	PriceColumns    []string `json:"price_columns,omitempty" yaml:"price_columns,omitempty"`
	PriceJSONPath   string   `json:"price_jsonpath" yaml:"price_jsonpath"`

	LedgerURL   string `json:"ledger_url" yaml:"ledger_url"`
	PriceURL    string `json:"price_url" yaml:"price_url"`
	SectorURL   string `json:"sector_url" yaml:"sector_url"`
	TemplateURL string `json:"template_url" yaml:"template_url"`

	OutputDir string `json:"output_dir" yaml:"output_dir"`
	// HistoryDB is the SQLite index of published reports. Empty disables it.
	HistoryDB string `json:"history_db" yaml:"history_db"`

	LogDir             string `json:"log_dir" yaml:"log_dir"`
	LogLevel           string `json:"log_level" yaml:"log_level"`
	HTTPTimeoutSeconds int    `json:"http_timeout_seconds" yaml:"http_timeout_seconds"`

	Host string `json:"host" yaml:"host"`
	Port int    `json:"port" yaml:"port"`
	// Schedule is a cron expression for unattended reports built from the
	// configured URLs. Empty disables it.
	Schedule string `json:"schedule" yaml:"schedule"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	logDir := "logs"
	historyDB := "history.db"
	if dir, err := appConfigDir(); err == nil {
		logDir = filepath.Join(dir, "logs")
		historyDB = filepath.Join(dir, "history.db")
	}
	return Config{
		Currency:           nepsereport.DefaultCurrency,
		UnknownSector:      nepsereport.UnknownSector,
		LedgerSheet:        "Keshav",
		SectorSheet:        "Sector info",
		PriceJSONPath:      loader.DefaultJSONPath,
		PriceURL:           DefaultPriceURL,
		TemplateURL:        DefaultTemplateURL,
		OutputDir:          "output",
		HistoryDB:          historyDB,
		LogDir:             logDir,
		LogLevel:           "info",
		HTTPTimeoutSeconds: 30,
		Host:               "127.0.0.1",
		Port:               8000,
	}
}

func IsMacOS() bool {
	return runtime.GOOS == "darwin"
}

func IsWindows() bool {
	return runtime.GOOS == "windows"
}

func appConfigDir() (string, error) {
	if IsMacOS() {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, "Library", "Application Support", "NepseReport"), nil
	}
	if IsWindows() {
		appData := os.Getenv("APPDATA")
		if appData == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			appData = home
		}
		return filepath.Join(appData, "NepseReport"), nil
	}
	configDir, err := os.UserConfigDir()
	if err != nil {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".config", "nepse-report"), nil
	}
	return filepath.Join(configDir, "nepse-report"), nil
}

var configNames = []string{"config.yaml", "config.yml", "config.json"}

// findConfigFile looks in the app config dir, then in the working directory.
func findConfigFile() string {
	var dirs []string
	if dir, err := appConfigDir(); err == nil {
		dirs = append(dirs, dir)
	}
	if cwd, err := os.Getwd(); err == nil {
		dirs = append(dirs, cwd)
	}
	for _, dir := range dirs {
		for _, name := range configNames {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate
			}
		}
	}
	return ""
}

// DefaultPath is where Save writes when no path is given.
func DefaultPath() (string, error) {
	dir, err := appConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// LoadOptions controls Load.
type LoadOptions struct {
	// Path overrides config file discovery.
	Path string
	// EnvFile is loaded before reading the environment. Missing is fine.
	EnvFile string
}

// Load builds the configuration from defaults, the config file, a .env
// file and NEPSE_REPORT_* environment variables, in that order.
func Load(opts LoadOptions) (Config, error) {
	envFile := opts.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	// Existing environment variables win over the .env file.
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load %s: %w", envFile, err)
	}

	cfg := Defaults()
	path := opts.Path
	if path == "" {
		path = os.Getenv(envPrefix + "CONFIG")
	}
	if path == "" {
		path = findConfigFile()
	}
	if path != "" {
		if err := readFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}
	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

func readFile(path string, cfg *Config) error {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	case ".json":
		err = json.Unmarshal(data, cfg)
	default:
		return fmt.Errorf("config %s: unsupported format", path)
	}
	if err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	strs := map[string]*string{
		"CURRENCY":       &cfg.Currency,
		"UNKNOWN_SECTOR": &cfg.UnknownSector,
		"LEDGER_SHEET":   &cfg.LedgerSheet,
		"SECTOR_SHEET":   &cfg.SectorSheet,
		"PRICE_JSONPATH": &cfg.PriceJSONPath,
		"LEDGER_URL":     &cfg.LedgerURL,
		"PRICE_URL":      &cfg.PriceURL,
		"SECTOR_URL":     &cfg.SectorURL,
		"TEMPLATE_URL":   &cfg.TemplateURL,
		"OUTPUT_DIR":     &cfg.OutputDir,
		"HISTORY_DB":     &cfg.HistoryDB,
		"LOG_DIR":        &cfg.LogDir,
		"HOST":           &cfg.Host,
		"SCHEDULE":       &cfg.Schedule,
	}
	for key, dst := range strs {
		if v, ok := os.LookupEnv(envPrefix + key); ok {
			*dst = strings.TrimSpace(v)
		}
	}

	ints := map[string]*int{
		"LEDGER_HEADER_ROW":    &cfg.LedgerHeaderRow,
		"SECTOR_HEADER_ROW":    &cfg.SectorHeaderRow,
		"HTTP_TIMEOUT_SECONDS": &cfg.HTTPTimeoutSeconds,
		"PORT":                 &cfg.Port,
	}
	for key, dst := range ints {
		v, ok := os.LookupEnv(envPrefix + key)
		if !ok || strings.TrimSpace(v) == "" {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s%s: %w", envPrefix, key, err)
		}
		*dst = n
	}

	if v, ok := os.LookupEnv(envPrefix + "STRICT_SECTORS"); ok && strings.TrimSpace(v) != "" {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%sSTRICT_SECTORS: %w", envPrefix, err)
		}
		cfg.StrictSectors = b
	}
	if v, ok := os.LookupEnv(envPrefix + "PRICE_COLUMNS"); ok && strings.TrimSpace(v) != "" {
		cfg.PriceColumns = splitList(v)
	}
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Validate rejects settings no component can work with.
func (c Config) Validate() error {
	switch {
	case c.LedgerHeaderRow < 0 || c.SectorHeaderRow < 0:
		return errors.New("header rows must not be negative")
	case c.Port < 0 || c.Port > 65535:
		return fmt.Errorf("port %d out of range", c.Port)
	case c.HTTPTimeoutSeconds < 0:
		return errors.New("http timeout must not be negative")
	}
	return nil
}

// Save writes the configuration as YAML, or JSON for a .json path.
func Save(cfg Config, path string) error {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return err
		}
		path = p
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	var (
		data []byte
		err  error
	)
	if strings.EqualFold(filepath.Ext(path), ".json") {
		data, err = json.MarshalIndent(cfg, "", "  ")
	} else {
		data, err = yaml.Marshal(cfg)
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// HTTPTimeout returns the download timeout.
func (c Config) HTTPTimeout() time.Duration {
	if c.HTTPTimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.HTTPTimeoutSeconds) * time.Second
}

// Addr returns the listen address of the API server.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// EngineOptions maps the configuration onto report engine options.
func (c Config) EngineOptions() nepsereport.Options {
	return nepsereport.Options{
		PriceColumns:  c.PriceColumns,
		StrictSectors: c.StrictSectors,
		Currency:      c.Currency,
		UnknownSector: c.UnknownSector,
	}
}

// LedgerSpec describes the trading journal table.
func (c Config) LedgerSpec() loader.TableSpec {
	return loader.TableSpec{Name: "ledger", Sheet: c.LedgerSheet, HeaderRow: c.LedgerHeaderRow}
}

// SectorSpec describes the sector map table.
func (c Config) SectorSpec() loader.TableSpec {
	return loader.TableSpec{
		Name:      "sectors",
		Sheet:     c.SectorSheet,
		HeaderRow: c.SectorHeaderRow,
		Columns:   []string{nepsereport.ColSymbol, nepsereport.ColSector},
	}
}

// PriceSpec describes the price snapshot table.
func (c Config) PriceSpec() loader.TableSpec {
	return loader.TableSpec{Name: "prices", JSONPath: c.PriceJSONPath}
}
