package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"videoflow/internal/config"
	"videoflow/internal/database"
	"videoflow/internal/importer"
	"videoflow/internal/repository"
)

// Options tune how the app reports progress.
type Options struct {
	// Verbose copies every log line at the configured level to Stderr.
	Verbose bool
	// Stderr receives warnings and errors. Defaults to os.Stderr.
	Stderr io.Writer
	// Clock defaults to RealClock.
	Clock Clock
}

// VideoFlowApp is the application layer between the CLI and the repositories.
// It constructs all dependencies from config, holds the single-writer lock
// for the database file, and releases everything on Close.
type VideoFlowApp struct {
	cfg      *config.Config
	db       *database.DB
	repos    *repository.Repositories
	importer *importer.Importer
	logger   repository.Logger
	logFile  *os.File
	lock     *writerLock
	op       *Operation
	clock    Clock
}

// NewVideoFlowApp creates a fully wired VideoFlowApp from the given config.
// operation identifies the CLI command being run (e.g. "project create").
// The schema is brought up to date before it returns.
// The caller must call Close when done.
func NewVideoFlowApp(ctx context.Context, cfg *config.Config, operation string, opts Options) (*VideoFlowApp, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	if opts.Clock == nil {
		opts.Clock = RealClock{}
	}

	op := NewOperation(operation, opts.Clock)
	slogger, logFile, err := newLogger(cfg.LogDir, cfg.LogLevel, opts.Verbose, opts.Stderr, op.ID)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	logger := &slogAdapter{l: slogger}

	a := &VideoFlowApp{cfg: cfg, logger: logger, logFile: logFile, op: op, clock: opts.Clock}

	if cfg.Database.Type == "sqlite" {
		if err := os.MkdirAll(cfg.Database.DataDir, 0755); err != nil {
			a.Close()
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
		lock, err := acquireWriterLock(cfg.Database.FilePath())
		if err != nil {
			a.Close()
			return nil, err
		}
		a.lock = lock
	}

	db, err := database.NewDatabaseFromConfig(cfg.Database)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("opening database: %w", err)
	}
	a.db = db

	if err := db.EnsureSchema(ctx); err != nil {
		a.Close()
		return nil, err
	}

	a.repos = repository.New(db, logger)
	a.importer = importer.New(db, logger)

	logger.Debug("operation started", "operation", operation, "database", db.Path())
	return a, nil
}

func (a *VideoFlowApp) Config() *config.Config { return a.cfg }

// DB returns the storage context. It is owned by the app.
func (a *VideoFlowApp) DB() *database.DB { return a.db }

func (a *VideoFlowApp) Repos() *repository.Repositories { return a.repos }

func (a *VideoFlowApp) Importer() *importer.Importer { return a.importer }

func (a *VideoFlowApp) Logger() repository.Logger { return a.logger }

func (a *VideoFlowApp) Operation() *Operation { return a.op }

// CreateProject creates a project. A blank name is replaced by the current
// date, so a project can be started without naming it first.
func (a *VideoFlowApp) CreateProject(ctx context.Context, name string) (int64, string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultProjectName(a.clock.Now())
	}
	id, err := a.repos.Projects.Create(ctx, name)
	if err != nil {
		return 0, "", err
	}
	a.logger.Info("created project", "project_id", id, "name", name)
	return id, name, nil
}

// Close releases everything the app holds, database first and log file
// last. It returns the first error encountered.
func (a *VideoFlowApp) Close() error {
	var firstErr error

	if a.db != nil {
		if err := a.db.Close(); err != nil {
			firstErr = fmt.Errorf("closing database: %w", err)
		}
		a.db = nil
	}

	if a.lock != nil {
		if err := a.lock.release(); err != nil && firstErr == nil {
			firstErr = err
		}
		a.lock = nil
	}

	if a.logFile != nil {
		a.logger.Debug("operation finished", "operation", a.op.Name, "elapsed", a.op.Elapsed(a.clock))
		a.logFile.Close()
		a.logFile = nil
	}

	return firstErr
}
