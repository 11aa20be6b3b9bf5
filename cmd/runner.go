package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/cloudsign/internal/models"
	"github.com/desertthunder/cloudsign/internal/notify"
	"github.com/desertthunder/cloudsign/internal/retry"
	"github.com/desertthunder/cloudsign/internal/services"
	"github.com/desertthunder/cloudsign/internal/shared"
	"github.com/desertthunder/cloudsign/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config    *shared.Config
	preset    bool // config was injected and is not read from disk
	logger    *log.Logger
	output    io.Writer
	factory   models.ClientFactory
	transport http.RoundTripper
	sleep     retry.Sleeper
	lookupEnv func(string) (string, bool)
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config    *shared.Config              // skips loading config.toml when set
	Logger    *log.Logger
	Output    io.Writer                   // defaults to os.Stdout
	Factory   models.ClientFactory        // defaults to the Cloud189 client built from config
	Transport http.RoundTripper           // used by notification channels
	Sleep     retry.Sleeper               // pause between retries
	LookupEnv func(string) (string, bool) // defaults to os.LookupEnv
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	preset := opts.Config != nil
	if !preset {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.LookupEnv == nil {
		opts.LookupEnv = os.LookupEnv
	}

	return &Runner{
		config:    opts.Config,
		preset:    preset,
		logger:    opts.Logger,
		output:    opts.Output,
		factory:   opts.Factory,
		transport: opts.Transport,
		sleep:     opts.Sleep,
		lookupEnv: opts.LookupEnv,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		runCommand, accountsCommand, notifyCommand, configCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// app builds the root command.
func (r *Runner) app() *cli.Command {
	return &cli.Command{
		Name:           "cloudsign",
		Usage:          "Daily Cloud189 sign-in for many accounts",
		Version:        version,
		Flags:          globalFlags(),
		Before:         r.Setup,
		DefaultCommand: "run",
		Commands:       r.register(),
		Writer:         r.output,
	}
}

// Setup loads .env, the config file and environment overrides before any command runs.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if cmd.Bool("debug") {
		shared.SetLogLevel(r.logger, log.DebugLevel)
	}

	if !r.preset {
		if err := shared.LoadDotEnv(cmd.String("env-file")); err != nil {
			return ctx, err
		}

		config, err := r.loadConfig(cmd.String("config"))
		if err != nil {
			return ctx, err
		}
		r.config = config
	}

	if err := shared.ApplyEnv(r.config, r.lookupEnv); err != nil {
		return ctx, err
	}
	if err := r.config.Validate(); err != nil {
		return ctx, err
	}
	return ctx, nil
}

func (r *Runner) loadConfig(path string) (*shared.Config, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		r.logger.Debug("config file not found, using defaults", "path", path)
		return shared.DefaultConfig(), nil
	}

	config, err := shared.LoadConfig(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", shared.ErrMissingConfig, err)
	}
	r.logger.Debug("config loaded", "path", path)
	return config, nil
}

func (r *Runner) policy(name string, c shared.RetryPolicyConfig, logger *log.Logger) retry.Policy {
	p := retry.FromConfig(name, c, logger)
	p.Sleep = r.sleep
	return p
}

func (r *Runner) clientFactory() models.ClientFactory {
	if r.factory != nil {
		return r.factory
	}
	burst := max(r.config.SignIn.PrivateThreads, r.config.SignIn.FamilyThreads)
	return services.NewCloudFactory(services.CloudOptsFromConfig(r.config.Cloud, burst))
}

func (r *Runner) batchRunner(logger *log.Logger) *tasks.BatchRunner {
	task := tasks.NewSignInTask(tasks.SignInOptsFromConfig(r.config.SignIn), logger)
	opts := tasks.BatchOpts{
		FamilyIDs: r.config.Accounts.FamilyIDs,
		Login:     r.policy("login", r.config.Retry.Login, logger),
		Task:      r.policy("task", r.config.Retry.Task, logger),
	}
	return tasks.NewBatchRunner(r.clientFactory(), task, opts, logger)
}

func (r *Runner) dispatcher(logger *log.Logger) *notify.Dispatcher {
	return notify.NewFromConfig(r.config.Notify, r.policy("push", r.config.Retry.Push, logger), r.transport, logger)
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
