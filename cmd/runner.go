package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tunesmith/internal/models"
	"github.com/desertthunder/tunesmith/internal/repositories"
	"github.com/desertthunder/tunesmith/internal/services"
	"github.com/desertthunder/tunesmith/internal/shared"
	"github.com/desertthunder/tunesmith/internal/tasks"
	"github.com/desertthunder/tunesmith/internal/ui"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	completer  services.Completer
	catalog    services.Catalog
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
	progress   io.Writer
	painter    ui.Painter
	db         *sql.DB
	runs       *repositories.RunRepository
	engine     *tasks.PlaylistEngine
}

// RunnerOpts contains configuration options for creating a Runner.
//
// Completer and Catalog are built from the loaded config when nil.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Completer  services.Completer
	Catalog    services.Catalog
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
	Progress   io.Writer // progress lines; defaults to stderr so stdout stays parseable
	Painter    ui.Painter
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
	if opts.Progress == nil {
		opts.Progress = os.Stderr
	}
	if opts.Painter == nil {
		opts.Painter = ui.Default()
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		completer:  opts.Completer,
		catalog:    opts.Catalog,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
		progress:   opts.Progress,
		painter:    opts.Painter,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		generateCommand, playlistCommand, searchCommand, historyCommand, setupCommand, serveCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// before loads the config file named by --config and applies --verbose.
func (r *Runner) before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if cmd.Bool("verbose") {
		shared.SetLogLevel(r.logger, log.DebugLevel)
	}

	path := cmd.String("config")
	if path == "" {
		return ctx, nil
	}
	r.configPath = path

	if _, err := os.Stat(path); err != nil {
		r.logger.Debug("config file not found, using defaults", "path", path)
		return ctx, nil
	}

	config, err := shared.LoadConfig(path)
	if err != nil {
		return ctx, err
	}
	r.config = config
	r.logger.Debug("loaded config", "path", path)
	return ctx, nil
}

// after releases the database handle opened by any command.
func (r *Runner) after(ctx context.Context, cmd *cli.Command) error {
	return r.Close()
}

// Close closes the history database if one was opened.
func (r *Runner) Close() error {
	if r.db == nil {
		return nil
	}
	err := r.db.Close()
	r.db, r.runs, r.engine = nil, nil, nil
	return err
}

func (r *Runner) client() *http.Client {
	if r.httpClient == nil {
		r.httpClient = &http.Client{Timeout: r.config.Resolver.Timeout()}
	}
	return r.httpClient
}

// prepare builds the services, the history store and the engine on first use.
func (r *Runner) prepare(cmd *cli.Command) (*tasks.PlaylistEngine, error) {
	if r.engine != nil {
		return r.engine, nil
	}

	if r.completer == nil {
		key := cmd.String("openai-key")
		if key == "" {
			key = r.config.Credentials.OpenAI.APIKey
		}
		if key != "" {
			openai := r.config.Credentials.OpenAI
			svc, err := services.NewOpenAIService(key, openai.BaseURL, openai.Model, r.client())
			if err != nil {
				return nil, err
			}
			r.completer = svc
		}
	}

	if r.catalog == nil {
		spotify := r.config.Credentials.Spotify
		r.catalog = services.NewSpotifyService(spotify.BaseURL, spotify.Market, r.client())
	}

	var recorder tasks.RunRecorder
	if runs, err := r.history(); err != nil {
		r.logger.Warn("run history disabled", "error", err)
	} else if runs != nil {
		recorder = repositories.NewRunRecorderAdapter(runs)
	}

	g := r.config.Generator
	r.engine = tasks.NewPlaylistEngine(r.completer, r.catalog, tasks.EngineOpts{
		Bounds: models.Bounds{MinCount: g.MinCount, MaxCount: g.MaxCount, MaxPromptLength: g.MaxPromptLength},
		Resolver: tasks.ResolverOpts{
			Workers:   r.config.Resolver.Workers,
			RateLimit: r.config.Resolver.RateLimit,
		},
		Recorder: recorder,
		Logger:   r.logger,
	})
	return r.engine, nil
}

// history opens the run database and applies migrations. A blank database path disables history.
func (r *Runner) history() (*repositories.RunRepository, error) {
	if r.runs != nil {
		return r.runs, nil
	}

	path := r.config.Database.Path
	if path == "" {
		return nil, nil
	}

	db, err := shared.NewDatabase(path)
	if err != nil {
		return nil, err
	}
	if path != ":memory:" {
		shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)
	}

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	r.db = db
	r.runs = repositories.NewRunRepository(db)
	return r.runs, nil
}

// credential returns the Spotify bearer token from --token, SPOTIFY_ACCESS_TOKEN or the config file.
func (r *Runner) credential(cmd *cli.Command) (string, error) {
	token := strings.TrimSpace(cmd.String("token"))
	if token == "" {
		token = strings.TrimSpace(r.config.Credentials.Spotify.AccessToken)
	}
	if token == "" {
		return "", fmt.Errorf("%w: pass --token, set SPOTIFY_ACCESS_TOKEN or credentials.spotify.access_token", shared.ErrMissingCredentials)
	}
	return token, nil
}

// watch prints progress updates until the returned stop function is called.
func (r *Runner) watch() (chan<- tasks.ProgressUpdate, func()) {
	ch := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range ch {
			fmt.Fprintln(r.progress, ui.Progress(r.painter, update))
		}
	}()
	return ch, func() {
		close(ch)
		<-done
	}
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
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
