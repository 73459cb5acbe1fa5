package main

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/buinguyenkhai/pttkht-20251-recipe-recommendation-system/internal/api"
	"github.com/buinguyenkhai/pttkht-20251-recipe-recommendation-system/internal/repositories"
	"github.com/buinguyenkhai/pttkht-20251-recipe-recommendation-system/internal/session"
	"github.com/buinguyenkhai/pttkht-20251-recipe-recommendation-system/internal/shared"
	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	client     *api.Client
	session    *session.Store
	db         *sql.DB
	history    *repositories.SearchHistoryRepository
	logger     *log.Logger
	input      io.Reader
	output     io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Client     *api.Client
	// Session, when set, is used as is. Otherwise the first command that needs it opens the
	// local database and resumes the stored login.
	Session *session.Store
	DB      *sql.DB
	Logger  *log.Logger
	// Input answers confirmation prompts. Defaults to stdin.
	Input  io.Reader
	Output io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Input == nil {
		opts.Input = os.Stdin
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Client == nil {
		opts.Client = api.New(api.Options{
			BaseURL:    opts.Config.API.BaseURL,
			HTTPClient: &http.Client{Timeout: opts.Config.API.Timeout()},
			RateLimit:  opts.Config.API.RateLimit,
			Logger:     shared.WithLogger(opts.Logger, "component", "api"),
		})
	}

	r := &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		client:     opts.Client,
		session:    opts.Session,
		db:         opts.DB,
		logger:     opts.Logger,
		input:      opts.Input,
		output:     opts.Output,
	}
	if r.db != nil {
		r.history = repositories.NewSearchHistoryRepository(r.db)
	}
	return r
}

// SetLogger replaces the logger, e.g. to send logs to a file while the TUI owns the terminal.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, recipesCommand, searchCommand, reviewsCommand,
		mealCommand, adminCommand, apiCommand, healthCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// ensureSession returns the session store, resuming the persisted login on first use. A
// database that cannot be opened only disables persistence.
func (r *Runner) ensureSession(ctx context.Context) (*session.Store, error) {
	if r.session != nil {
		return r.session, nil
	}

	var tokens session.TokenStore
	if r.db == nil {
		db, err := shared.OpenDatabase(r.config.Database)
		if err != nil {
			r.logger.Warn("local database unavailable, login will not be remembered", "error", err)
		} else {
			r.db = db
			r.history = repositories.NewSearchHistoryRepository(db)
		}
	}
	if r.db != nil {
		tokens = repositories.NewSessionRepository(r.db)
	}

	store := session.New(r.client, tokens, session.Options{
		Logger: shared.WithLogger(r.logger, "component", "session"),
		Token:  r.config.Token,
	})
	if err := store.Init(ctx); err != nil {
		return nil, err
	}
	r.session = store
	return store, nil
}

// requireLogin is ensureSession for commands that make no sense signed out.
func (r *Runner) requireLogin(ctx context.Context) (*session.Store, error) {
	sess, err := r.ensureSession(ctx)
	if err != nil {
		return nil, err
	}
	if !sess.Authenticated() {
		return nil, fmt.Errorf("%w: run `recipes auth login` first", shared.ErrNotAuthenticated)
	}
	return sess, nil
}

// Close releases the local database.
func (r *Runner) Close() error {
	if r.db == nil {
		return nil
	}
	return r.db.Close()
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

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}

// confirm asks a yes/no question unless skip is set. Anything but y or yes declines.
func (r *Runner) confirm(prompt string, skip bool) bool {
	if skip {
		return true
	}
	r.writePlain("%s [y/N] ", prompt)
	answer, err := bufio.NewReader(r.input).ReadString('\n')
	if err != nil && answer == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	}
	return false
}

// viewError turns a failed view operation into the command error. Local rejections are
// returned as they are; backend failures carry the message the view chose, and an empty
// message means the session was logged out by an auth failure.
func viewError(msg string, err error) error {
	if err == nil {
		return nil
	}
	for _, local := range []error{
		shared.ErrValidation, shared.ErrNotAuthenticated, shared.ErrForbidden,
		shared.ErrInvalidArgument, shared.ErrInvalidInput, context.Canceled,
	} {
		if errors.Is(err, local) {
			return err
		}
	}
	if msg == "" {
		return fmt.Errorf("%w: session expired, run `recipes auth login` again", shared.ErrNotAuthenticated)
	}
	return &session.Failure{Message: msg, Err: err}
}

// parseID reads a positive numeric id argument.
func parseID(name, raw string) (int, error) {
	if strings.TrimSpace(raw) == "" {
		return 0, fmt.Errorf("%w: %s", shared.ErrMissingArgument, name)
	}
	id, err := strconv.Atoi(raw)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("%w: %s must be a positive number, got %q", shared.ErrInvalidArgument, name, raw)
	}
	return id, nil
}
