package daemon

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gantry-dev/gantry/internal/api"
	"github.com/gantry-dev/gantry/internal/app/gantt"
	"github.com/gantry-dev/gantry/internal/health"
	"github.com/gantry-dev/gantry/internal/infra/metrics"
	"github.com/gantry-dev/gantry/internal/infra/sqlite"
)

// Daemon is the gantry runtime. It wires the live board to its SQL mirror,
// the event hub, the health checker and the HTTP API.
type Daemon struct {
	Config Config
	DB     *sqlite.DB
	Board  *gantt.Board
	Events *api.EventHub
	Health *health.Checker
	Server *api.Server
	cancel context.CancelFunc

	logFile *os.File
}

// New creates a Daemon from $GANTRY_HOME/config.toml.
func New() (*Daemon, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	return NewWithConfig(cfg)
}

// NewWithConfig creates a Daemon with the given configuration.
func NewWithConfig(cfg Config) (*Daemon, error) {
	d := &Daemon{Config: cfg}

	if cfg.Logging.File != "" {
		f, err := openLogFile(cfg.Logging.File)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		d.logFile = f
		log.SetOutput(io.MultiWriter(os.Stderr, f))
	}

	db, err := sqlite.Open()
	if err != nil {
		d.closeLog()
		return nil, fmt.Errorf("open database: %w", err)
	}
	d.DB = db

	// Observers subscribe before the first batch so they see it. Only the
	// live board feeds the generation metrics.
	d.Events = api.NewEventHub()
	d.Board = gantt.Init(cfg.Generator.Count,
		gantt.WithSeed(cfg.Generator.Seed),
		gantt.WithObserver(db.Mirror),
		gantt.WithObserver(d.Events.Publish),
		gantt.WithObserver(metrics.ObserveBoard),
	)
	log.Printf("[daemon] board ready: %d tasks, batch %s", d.Board.Len(), d.Board.Batch().ID)

	d.Health = health.NewChecker(db, d.Board, cfg.HealthInterval())

	srv := api.NewServer(d.Board, db)
	srv.SetEventHub(d.Events)
	srv.SetHealth(d.Health)
	if len(cfg.API.CORSOrigins) > 0 {
		srv.SetCORSOrigins(cfg.API.CORSOrigins)
	}
	if cfg.Telemetry.Prometheus {
		srv.EnableMetrics()
	}
	d.Server = srv

	return d, nil
}

// Serve starts the HTTP server and blocks until shutdown.
func (d *Daemon) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	d.cancel = cancel

	go d.Health.Run(ctx)

	addr := d.Config.Addr()

	httpServer := &http.Server{
		Addr:        addr,
		Handler:     d.Server.Handler(),
		ReadTimeout: 30 * time.Second,
		IdleTimeout: 2 * time.Minute,
	}

	// Graceful shutdown on signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigCh)
		select {
		case <-sigCh:
			log.Printf("[daemon] shutting down")
		case <-ctx.Done():
		}

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	fmt.Printf("gantry serving on http://%s\n", addr)
	fmt.Printf("  Board:  %d tasks (batch %s)\n", d.Board.Len(), d.Board.Batch().ID)
	fmt.Printf("  Events: http://%s/v1/tasks/events\n", addr)
	if d.Config.Telemetry.Prometheus {
		fmt.Printf("  Metrics: http://%s/metrics\n", addr)
	}

	if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
		cancel()
		return err
	}
	return nil
}

// Close shuts down all daemon resources.
func (d *Daemon) Close() {
	if d.cancel != nil {
		d.cancel()
	}
	if d.DB != nil {
		_ = d.DB.Close()
	}
	d.closeLog()
}

func (d *Daemon) closeLog() {
	if d.logFile == nil {
		return
	}
	log.SetOutput(os.Stderr)
	_ = d.logFile.Close()
	d.logFile = nil
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, err
	}
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
}
