package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/crate/internal/library"
	"github.com/desertthunder/crate/internal/models"
	"github.com/desertthunder/crate/internal/repositories"
	"github.com/desertthunder/crate/internal/services"
	"github.com/desertthunder/crate/internal/shared"
	"github.com/desertthunder/crate/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config  *shared.Config
	catalog services.Catalog
	source  services.ReviewSource
	engine  *tasks.Engine
	store   *library.Store
	logger  *log.Logger
	output  io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config  *shared.Config
	Catalog services.Catalog
	Source  services.ReviewSource
	Logger  *log.Logger
	Output  io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	engine := tasks.NewEngine(tasks.EngineOpts{
		Catalog: opts.Catalog,
		Source:  opts.Source,
		Logger:  opts.Logger,
	})

	store := library.NewStore(library.StoreOpts{
		Engine: engine,
		Logger: opts.Logger,
	})

	return &Runner{
		config:  opts.Config,
		catalog: opts.Catalog,
		source:  opts.Source,
		engine:  engine,
		store:   store,
		logger:  opts.Logger,
		output:  opts.Output,
	}
}

// SetLogger replaces the runner's logger.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, reviewsCommand, albumsCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// requireCatalog returns an error when no catalog service was configured.
func (r *Runner) requireCatalog() error {
	if r.catalog == nil {
		return fmt.Errorf("%w: set credentials.spotify.client_id and client_secret in config.toml", shared.ErrMissingCredentials)
	}
	return nil
}

// ensureAuth authenticates the catalog with the access token persisted in config.
func (r *Runner) ensureAuth(ctx context.Context) error {
	if err := r.requireCatalog(); err != nil {
		return err
	}

	creds := r.config.Credentials.Spotify
	if creds.AccessToken == "" {
		return fmt.Errorf("%w: run 'crate auth login' first", shared.ErrMissingCredentials)
	}

	if err := r.catalog.Authenticate(ctx, creds.Map()); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
	}
	return nil
}

// openRepository opens the collection database and returns the album repository.
func (r *Runner) openRepository() (*sql.DB, *repositories.AlbumRepository, error) {
	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}

	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)

	return db, repositories.NewAlbumRepository(db), nil
}

// loadCollection seeds the in-memory store from the persisted collection.
func (r *Runner) loadCollection(repo *repositories.AlbumRepository) error {
	persisted, err := repo.List(nil)
	if err != nil {
		return fmt.Errorf("failed to load collection: %w", err)
	}

	albums := make([]models.Album, 0, len(persisted))
	for _, p := range persisted {
		albums = append(albums, p.Album())
	}

	r.store.Seed(albums)
	return nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
