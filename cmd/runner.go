package main

import (
	"database/sql"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/staffdir/internal/repositories"
	"github.com/desertthunder/staffdir/internal/shared"
	"github.com/desertthunder/staffdir/internal/tasks"
	"github.com/fatih/color"
	"github.com/urfave/cli/v3"
)

var (
	okColor   = color.New(color.FgGreen, color.Bold)
	warnColor = color.New(color.FgYellow)
	dimColor  = color.New(color.Faint)
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	repos      *repositories.Repositories
	engine     *tasks.Engine
	db         *sql.DB
	logger     *log.Logger
	output     io.Writer
	input      io.Reader
	now        func() time.Time
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Repos      *repositories.Repositories // Opened lazily from Config.Database when nil
	Logger     *log.Logger
	Output     io.Writer
	Input      io.Reader
	Now        func() time.Time
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
	if opts.Input == nil {
		opts.Input = os.Stdin
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	r := &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		repos:      opts.Repos,
		logger:     opts.Logger,
		output:     opts.Output,
		input:      opts.Input,
		now:        opts.Now,
	}
	if r.repos != nil {
		r.engine = tasks.NewEngine(r.repos, r.logger)
	}
	return r
}

// SetLogger replaces the logger used by commands and by dependencies opened afterwards.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
	if r.repos != nil {
		r.engine = tasks.NewEngine(r.repos, l)
	}
}

func (r *Runner) repoOptions() []repositories.Option {
	opts := []repositories.Option{repositories.WithLogger(r.logger), repositories.WithClock(r.now)}
	if q := r.config.Storage.QuotaBytes; q > 0 {
		opts = append(opts, repositories.WithQuota(q))
	}
	return opts
}

// openRepos opens the configured database on first use.
func (r *Runner) openRepos() (*repositories.Repositories, error) {
	if r.repos != nil {
		return r.repos, nil
	}

	db, err := shared.OpenDatabase(r.config.Database)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrStorage, err)
	}
	r.logger.Debug("opened database", "path", r.config.Database.Path)

	r.db = db
	r.repos = repositories.New(repositories.NewSQLiteStore(db), r.repoOptions()...)
	r.engine = tasks.NewEngine(r.repos, r.logger)
	return r.repos, nil
}

// Close releases the database opened by [Runner.openRepos].
func (r *Runner) Close() error {
	if r.db == nil {
		return nil
	}
	err := r.db.Close()
	r.db = nil
	return err
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, employeeCommand, gradeCommand, dataCommand, serveCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
	if err != nil {
		return err
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

// writeSuccess prints a check-marked line in green.
func (r *Runner) writeSuccess(format string, args ...any) error {
	if _, err := okColor.Fprintf(r.output, "✓ "+format+"\n", args...); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// writeWarning prints a warning line in yellow.
func (r *Runner) writeWarning(format string, args ...any) error {
	if _, err := warnColor.Fprintf(r.output, "⚠ "+format+"\n", args...); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writeHint(format string, args ...any) {
	dimColor.Fprintf(r.output, format+"\n", args...)
}
