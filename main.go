// Command aura runs the business-brief extraction service.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"aura_backend/core"
	"aura_backend/core/validation"
	"aura_backend/logging"
	"aura_backend/shutdown"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	os.Exit(execute(os.Args[1:], os.Stdout, os.Stderr))
}

// execute runs the command line and returns the process exit code.
func execute(args []string, stdout, stderr io.Writer) int {
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.Execute()
	if err == nil {
		return core.ExitCodeSuccess
	}
	code := exitCode(err)
	fmt.Fprintln(stderr, color.RedString("Error:"), err)
	if errCode := core.GetErrorCode(err); errCode != "" {
		fmt.Fprintf(stderr, "  code: %s\n", errCode)
	}
	fmt.Fprintf(stderr, "  exit %d: %s\n", code, core.ExitCodeName(code))
	return code
}

// exitStatus carries a specific exit code through cobra.
type exitStatus struct {
	code int
	err  error
}

func (e *exitStatus) Error() string { return e.err.Error() }
func (e *exitStatus) Unwrap() error { return e.err }

func exitCode(err error) int {
	var status *exitStatus
	if errors.As(err, &status) {
		return status.code
	}
	return core.ExitCodeFor(err)
}

func newRootCmd() *cobra.Command {
	var envFile string

	root := &cobra.Command{
		Use:   "aura",
		Short: "Business-brief field extraction service",
		Long: `aura extracts structured fields from uploaded business briefs
(PDF, DOCX and DOC) and serves them over HTTP.

Run without a subcommand to start the server in the foreground.
Configuration is read from AURA_* environment variables, optionally
loaded from an env file.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return core.LoadEnvFile(envFile, cmd.Flags().Changed("env-file"))
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runForeground(cmd.Context())
		},
	}
	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "file of KEY=value pairs loaded into the environment")

	root.AddCommand(newServeCmd(), newCheckCmd(), newServiceCmd())
	return root
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server in the foreground",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runForeground(cmd.Context())
		},
	}
}

func newCheckCmd() *cobra.Command {
	var failFast bool

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Run the startup checks and exit",
		Long: `Validate the configuration, field catalog, history storage and listen
address without starting the server. The exit code is non-zero when any
check fails.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := core.LoadConfig()
			if err != nil {
				return err
			}
			result := validation.NewValidationSuite(validation.StartupChecks(cfg)...).
				WithOutput(cmd.OutOrStdout()).
				WithFailFast(failFast).
				Validate()
			if !result.Success {
				return &exitStatus{code: core.ExitCodeError, err: errors.New(result.Summary())}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&failFast, "fail-fast", false, "skip remaining checks after the first failure")
	return cmd
}

// newLogger builds the service logger from cfg.
func newLogger(cfg *core.Config) (*logging.Logger, error) {
	return logging.NewLogger(logging.Config{
		Development: cfg.DevMode,
		FilePath:    cfg.LogFilePath,
	})
}

// runForeground serves until SIGINT or SIGTERM.
func runForeground(ctx context.Context) error {
	cfg, err := core.LoadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return fmt.Errorf("initialise logger: %w", err)
	}

	result := validation.NewValidationSuite(validation.StartupChecks(cfg)...).
		WithShowProgress(logger.IsDevelopment()).
		Validate()
	if !result.Success {
		for _, step := range result.Steps {
			if step.Status == validation.StepFailed {
				logger.Error("startup check failed",
					zap.String("check", step.Name),
					zap.String("message", step.Message),
					zap.Error(step.Error))
			}
		}
		_ = logger.Sync()
		err := result.GetFirstError()
		if err == nil {
			err = errors.New(result.Summary())
		}
		return &exitStatus{code: core.ExitCodeError, err: err}
	}

	manager := shutdown.NewManager(logger, shutdown.WithTimeout(cfg.ShutdownTimeout))
	manager.Start()
	return serve(ctx, cfg, logger, manager)
}

// serve builds the App and runs it until manager's context is cancelled,
// then performs the shutdown sequence.
func serve(ctx context.Context, cfg *core.Config, logger *logging.Logger, manager *shutdown.Manager) error {
	if ctx == nil {
		ctx = context.Background()
	}

	app, err := NewApp(ctx, cfg, logger, manager)
	if err != nil {
		logger.Error("startup failed", zap.Error(err))
		_ = manager.Shutdown()
		return err
	}

	runErr := app.Run(manager.Context())
	if runErr != nil {
		logger.Error("server stopped unexpectedly", zap.Error(runErr))
	}
	if err := manager.Shutdown(); err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}
