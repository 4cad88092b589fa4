package app

import (
	"context"
	"os"
	"path/filepath"

	"github.com/doeshing/shlaunch/internal/application/doctor"
	"github.com/doeshing/shlaunch/internal/application/launch"
	"github.com/doeshing/shlaunch/internal/application/ledger"
	"github.com/doeshing/shlaunch/internal/domain"
	"github.com/doeshing/shlaunch/internal/infrastructure/config"
	"github.com/doeshing/shlaunch/internal/infrastructure/executor"
	"github.com/doeshing/shlaunch/internal/infrastructure/storage"
	"github.com/doeshing/shlaunch/internal/infrastructure/workdir"
	"github.com/doeshing/shlaunch/internal/pkg/filesystem"
	"github.com/doeshing/shlaunch/internal/pkg/logger"
	"github.com/doeshing/shlaunch/internal/ports"
)

// EnvWorkDir pins the inferred working directory, ahead of Finder.
const EnvWorkDir = "SHLAUNCH_DIR"

// Options controls container construction.
type Options struct {
	Verbose    bool
	ConfigPath string
}

// Container wires up application services with infrastructure adapters.
type Container struct {
	Config         domain.Config
	ConfigProvider ports.ConfigProvider
	ConfigLoader   *config.FileLoader
	Logger         ports.Logger
	Store          ports.KeyValueStore
	Ledger         *ledger.Ledger
	Resolver       ports.DirectoryResolver
	LaunchService  *launch.Service
	DoctorService  *doctor.Service

	closers []func() error
}

// BuildContainer constructs the dependency graph.
func BuildContainer(ctx context.Context, opts Options) (*Container, error) {
	cfgLoader := config.NewFileLoader(opts.ConfigPath)
	cfg, err := cfgLoader.Load(ctx)
	if err != nil {
		return nil, err
	}

	log := logger.New(opts.Verbose || cfg.Preferences.DebugMode)

	c := &Container{
		Config:         cfg,
		ConfigProvider: cfgLoader,
		ConfigLoader:   cfgLoader,
		Logger:         log,
	}

	store, err := c.openStore(cfg)
	if err != nil {
		// History still works for this process; it just will not survive it.
		log.Warn("history store unavailable", map[string]interface{}{"error": err.Error()})
	}
	c.Store = store

	c.Ledger = ledger.New(store, ledger.Options{
		MaxSize: cfg.Preferences.HistoryCapacity(),
		Logger:  log,
	})
	c.Ledger.Load(ctx)

	c.Resolver = newResolver(cfg.DirectorySource())

	runner := executor.NewLocalExecutor(
		executor.WithTimeout(cfg.ExecutionTimeout()),
		executor.WithLogger(log),
	)

	c.LaunchService = &launch.Service{
		Executor: runner,
		Ledger:   c.Ledger,
		Resolver: c.Resolver,
		Logger:   log,
	}
	c.DoctorService = &doctor.Service{
		ConfigProvider: cfgLoader,
		Store:          store,
		Resolver:       c.Resolver,
	}
	return c, nil
}

func (c *Container) openStore(cfg domain.Config) (ports.KeyValueStore, error) {
	dir := filesystem.ExpandPath(cfg.History.Dir)
	switch cfg.HistoryBackend() {
	case domain.BackendSQLite:
		store, err := storage.OpenSQLiteStore(filepath.Join(dir, "history.db"))
		if err != nil {
			return nil, err
		}
		c.closers = append(c.closers, store.Close)
		return store, nil
	default:
		return storage.NewFileStore(dir), nil
	}
}

// newResolver maps execution.directory_source to a resolver. A nil resolver
// means commands run in the process working directory unless --dir is given.
func newResolver(source string) ports.DirectoryResolver {
	switch source {
	case domain.DirectorySourceNone:
		return nil
	case domain.DirectorySourceFinder:
		return workdir.NewFinderResolver()
	default:
		return workdir.Chain{workdir.Static(os.Getenv(EnvWorkDir)), workdir.NewFinderResolver()}
	}
}

// Close releases store handles.
func (c *Container) Close() error {
	var firstErr error
	for _, closeFn := range c.closers {
		if err := closeFn(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	c.closers = nil
	return firstErr
}
