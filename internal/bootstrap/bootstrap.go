package bootstrap

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	cleanerinadapter "mailsort/internal/modules/cleaner/adapter/in"
	cleaneroutadapter "mailsort/internal/modules/cleaner/adapter/out"
	cleanerservice "mailsort/internal/modules/cleaner/service"
	cleanerusecase "mailsort/internal/modules/cleaner/usecase"
	exportinadapter "mailsort/internal/modules/export/adapter/in"
	exportoutadapter "mailsort/internal/modules/export/adapter/out"
	exportservice "mailsort/internal/modules/export/service"
	exportusecase "mailsort/internal/modules/export/usecase"
	ingestinadapter "mailsort/internal/modules/ingest/adapter/in"
	ingestoutadapter "mailsort/internal/modules/ingest/adapter/out"
	ingestservice "mailsort/internal/modules/ingest/service"
	ingestusecase "mailsort/internal/modules/ingest/usecase"
	sessioninadapter "mailsort/internal/modules/session/adapter/in"
	sessionoutadapter "mailsort/internal/modules/session/adapter/out"
	sessionout "mailsort/internal/modules/session/port/out"
	sessionservice "mailsort/internal/modules/session/service"
	sessionusecase "mailsort/internal/modules/session/usecase"
	"mailsort/internal/platform/clock"
	"mailsort/internal/platform/config"
	apperrors "mailsort/internal/platform/errors"
	"mailsort/internal/platform/id"
	"mailsort/internal/platform/logging"
	uiapp "mailsort/internal/ui/app"
)

type App struct {
	Config     config.Config
	Logger     *zap.Logger
	IngestCLI  ingestinadapter.CLIHandler
	SessionCLI sessioninadapter.CLIHandler
	ExportCLI  exportinadapter.CLIHandler
	CleanerCLI cleanerinadapter.CLIHandler

	closers []func() error
}

// New wires every module and restores the persisted session, if any.
func New(cfg config.Config) (*App, error) {
	logger, err := logging.New(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("new logger: %w", err)
	}
	app := &App{Config: cfg, Logger: logger}
	app.closers = append(app.closers, func() error {
		_ = logger.Sync()
		return nil
	})

	clk := clock.SystemClock{}
	ids := id.UUID{}

	jsonReader, err := ingestoutadapter.NewJSONTableReader(cfg.Ingest.JSONPath)
	if err != nil {
		return nil, fmt.Errorf("new json reader: %w", err)
	}
	ingestUC := ingestusecase.NewInteractor(ingestservice.NewIngestService(
		ingestoutadapter.NewLocalTextReader(),
		ingestoutadapter.NewXLSXTableReader(),
		jsonReader,
		ingestoutadapter.NewGlobDiscoverer(),
		logger.Named("ingest"),
	), cfg.Ingest.Concurrency)

	exportUC := exportusecase.NewInteractor(exportservice.NewExportService(
		clk,
		ids,
		cfg.ExportDir,
		logger.Named("export"),
		exportoutadapter.NewCSVFileStore(),
		exportoutadapter.NewXLSXFileStore(),
	))

	store, err := app.newStateStore(cfg)
	if err != nil {
		_ = app.Close()
		return nil, err
	}
	persister := sessionservice.NewPersister(store, cfg.SessionKey, logger.Named("state"))
	sessionSvc := sessionservice.NewSessionService(clk, ids, persister, logger.Named("session"))
	sessionSvc.OnCommit(persister.Save)
	sessionUC := sessionusecase.NewInteractor(sessionSvc, ingestUC, exportUC)

	if _, err := sessionUC.Restore(context.Background()); err != nil && !errors.Is(err, apperrors.ErrNothingToRestore) {
		_ = app.Close()
		return nil, fmt.Errorf("restore session: %w", err)
	}

	cleanerUC := cleanerusecase.NewInteractor(cleanerservice.NewCleanerService(
		cleaneroutadapter.NewLocalFileSystem(),
		logger.Named("cleaner"),
	))

	app.IngestCLI = ingestinadapter.NewCLIHandler(ingestUC)
	app.SessionCLI = sessioninadapter.NewCLIHandler(sessionUC)
	app.ExportCLI = exportinadapter.NewCLIHandler(exportUC)
	app.CleanerCLI = cleanerinadapter.NewCLIHandler(cleanerUC)
	return app, nil
}

func (a *App) newStateStore(cfg config.Config) (sessionout.StateStore, error) {
	if cfg.Storage == config.StorageFile {
		return sessionoutadapter.NewFileStateStore(cfg.StateDir), nil
	}
	store, err := sessionoutadapter.NewSQLiteStateStore(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("new state store: %w", err)
	}
	a.closers = append(a.closers, store.Close)
	return store, nil
}

// Close releases the database and flushes the logger.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func RunTUI(app *App) error {
	model := uiapp.NewModel(app.Config.Workspace, app.Config.ExportFormat, app.Config.Shortcuts, app.SessionCLI, app.IngestCLI)
	program := tea.NewProgram(model, tea.WithAltScreen())
	_, err := program.Run()
	return err
}
