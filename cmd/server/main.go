package main

import (
	"context"
	"flag"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"nepsereport/internal/api"
	"nepsereport/internal/config"
	"nepsereport/internal/events"
	"nepsereport/internal/history"
	"nepsereport/internal/logging"
	"nepsereport/internal/render"
	"nepsereport/internal/schedule"
	"nepsereport/internal/service"
)

var getppid = os.Getppid
var sleep = time.Sleep
var exit = os.Exit

func main() {
	var configPath string
	var envFile string
	var outputDir string
	var port int
	var host string
	var webDir string

	flag.StringVar(&configPath, "config", "", "Path to a YAML or JSON config file")
	flag.StringVar(&envFile, "env-file", ".env", "Path to a .env file")
	flag.StringVar(&outputDir, "output-dir", "", "Directory for published reports (overrides config)")
	flag.IntVar(&port, "port", -1, "Port to run the server on (overrides config)")
	flag.StringVar(&host, "host", "", "Host to bind the server to (overrides config)")
	flag.StringVar(&webDir, "web-dir", "", "Directory for static UI files (optional)")
	flag.Parse()

	cfg, err := config.Load(config.LoadOptions{Path: configPath, EnvFile: envFile})
	if err != nil {
		slog.Error("failed to load config", "err", err)
		exit(1)
		return
	}
	if outputDir != "" {
		cfg.OutputDir = outputDir
	}
	if port >= 0 {
		cfg.Port = port
	}
	if host != "" {
		cfg.Host = host
	}

	logger, writer, err := logging.NewLogger(cfg.LogDir, logging.ParseLevel(cfg.LogLevel, slog.LevelInfo), nil)
	if err != nil {
		slog.Error("failed to initialize logger", "err", err)
		exit(1)
		return
	}
	defer func() {
		if err := writer.Close(); err != nil {
			logger.Error("failed to close log writer", "err", err)
		}
	}()

	var store *history.Store
	if cfg.HistoryDB != "" {
		store, err = history.Open(cfg.HistoryDB, logger)
		if err != nil {
			logger.Error("failed to open report history", "path", cfg.HistoryDB, "err", err)
			exit(1)
			return
		}
		defer func() {
			if err := store.Close(); err != nil {
				logger.Error("failed to close report history", "err", err)
			}
		}()
	}

	hub := events.NewHub(logger)
	svc := service.New(service.Options{Config: cfg, Logger: logger, Hub: hub, History: store})

	if os.Getenv("NEPSE_REPORT_PARENT_WATCH") == "1" {
		go watchParent(logger)
	}

	var scheduler *schedule.Scheduler
	if cfg.Schedule != "" {
		scheduler = schedule.New(logger, 2*cfg.HTTPTimeout())
		if err := scheduler.AddJob(cfg.Schedule, schedule.ReportJob{Service: svc, Format: render.FormatHTML}); err != nil {
			logger.Error("invalid report schedule", "schedule", cfg.Schedule, "err", err)
			exit(1)
			return
		}
		scheduler.Start()
	}

	var ui fs.FS = api.DefaultUI()
	if resolvedWebDir := resolveWebDir(webDir); resolvedWebDir != "" {
		logger.Info("serving static UI", "web_dir", resolvedWebDir)
		ui = os.DirFS(resolvedWebDir)
	}
	handler := api.NewRouter(api.Options{Service: svc, Hub: hub, Logger: logger})
	handler = api.WithUI(handler, ui)
	handler = middleware.Compress(5)(handler)

	addr := cfg.Addr()
	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	logger.Info("server starting", "addr", addr, "output_dir", cfg.OutputDir, "schedule", cfg.Schedule)
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "err", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGTERM, syscall.SIGINT)
	<-stop
	signal.Stop(stop)

	logger.Info("server shutting down")
	if scheduler != nil {
		scheduler.Stop()
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "err", err)
	}
}

func watchParent(logger *slog.Logger) {
	for {
		sleep(1 * time.Second)
		if getppid() == 1 {
			logger.Info("parent process exited; shutting down")
			exit(0)
		}
	}
}

func resolveWebDir(input string) string {
	if input != "" {
		if dirExists(input) {
			return input
		}
		return ""
	}

	candidates := []string{"static", "../static"}
	for _, candidate := range candidates {
		if dirExists(candidate) {
			return candidate
		}
	}
	if exe, err := os.Executable(); err == nil {
		base := filepath.Dir(exe)
		for _, candidate := range candidates {
			path := filepath.Join(base, candidate)
			if dirExists(path) {
				return path
			}
		}
	}
	return ""
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}
