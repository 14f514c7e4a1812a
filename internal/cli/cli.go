package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/signal"
	"strings"
	"syscall"

	"github.com/specialistvlad/dashgridgo/internal/app"
	"github.com/specialistvlad/dashgridgo/internal/config"
	"github.com/specialistvlad/dashgridgo/internal/hcl"
	"github.com/spf13/cobra"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// options are the flags shared by every command.
type options struct {
	envFile   string
	dashboard string
	logLevel  string
	logFormat string
	workers   int
	port      int
}

type runner struct {
	outW   io.Writer
	errW   io.Writer
	loader config.Loader
	opts   options
}

// NewRootCommand builds the command tree. Results are written to outW; logs
// and usage errors go to errW.
func NewRootCommand(outW, errW io.Writer) *cobra.Command {
	r := &runner{outW: outW, errW: errW, loader: hcl.NewLoader()}

	root := &cobra.Command{
		Use:   "dashgridgo",
		Short: "Resolve declarative dashboards against their data",
		Long: `dashgridgo loads a dashboard declared in HCL and resolves which
components must be recomputed when a control or a figure changes, running
filters, parameters and cross-component interactions over the declared datasets.

Settings may also come from DASHGRID_* environment variables or a .env file.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(outW)
	root.SetErr(errW)

	pf := root.PersistentFlags()
	pf.StringVarP(&r.opts.dashboard, "dashboard", "d", "", "Path to a dashboard .hcl file or a directory of .hcl files.")
	pf.StringVar(&r.opts.envFile, "env-file", "", "Load environment variables from this file instead of ./.env.")
	pf.StringVar(&r.opts.logLevel, "log-level", "", "Logging level: 'debug', 'info', 'warn' or 'error'.")
	pf.StringVar(&r.opts.logFormat, "log-format", "", "Log output format: 'text' or 'json'.")
	pf.IntVar(&r.opts.workers, "workers", 0, "Number of targets resolved concurrently. 0 means one per CPU.")

	root.AddCommand(r.validateCommand(), r.resolveCommand(), r.exportCommand(), r.serveCommand())
	return root
}

// Execute runs the command line with args and maps failures onto ExitError.
func Execute(ctx context.Context, args []string, outW, errW io.Writer) error {
	cmd := NewRootCommand(outW, errW)
	cmd.SetArgs(args)
	if err := cmd.ExecuteContext(ctx); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			return exitErr
		}
		// Anything cobra rejects before a command runs is a usage error.
		return &ExitError{Code: 2, Message: err.Error()}
	}
	return nil
}

// resolveConfig merges environment settings with the flags the user set.
func (r *runner) resolveConfig(cmd *cobra.Command) (*app.Config, error) {
	cfg, err := app.ConfigFromEnv(r.opts.envFile)
	if err != nil {
		return nil, &ExitError{Code: 2, Message: err.Error()}
	}
	flags := cmd.Flags()
	if flags.Changed("dashboard") {
		cfg.DashboardPath = r.opts.dashboard
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = strings.ToLower(r.opts.logLevel)
	}
	if flags.Changed("log-format") {
		cfg.LogFormat = strings.ToLower(r.opts.logFormat)
	}
	if flags.Changed("workers") {
		cfg.Workers = r.opts.workers
	}
	if flags.Lookup("port") != nil && (flags.Changed("port") || cfg.Port == 0) {
		cfg.Port = r.opts.port
	}
	if err := cfg.Validate(); err != nil {
		return nil, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("CLI configuration resolved.", "dashboard", cfg.DashboardPath, "workers", cfg.Workers)
	return cfg, nil
}

func (r *runner) newApp(cmd *cobra.Command) (*app.App, error) {
	cfg, err := r.resolveConfig(cmd)
	if err != nil {
		return nil, err
	}
	a, err := app.NewApp(cmd.Context(), r.errW, cfg, r.loader)
	if err != nil {
		return nil, &ExitError{Code: 1, Message: err.Error()}
	}
	return a, nil
}

func (r *runner) validateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Load and validate a dashboard declaration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := r.newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()
			fmt.Fprintf(r.outW, "dashboard is valid: %d components\n", len(a.Registry().Components()))
			return nil
		},
	}
}

func (r *runner) resolveCommand() *cobra.Command {
	var eventPath string
	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve the targets of an event and print their artifacts as JSON",
		Long: `Resolve replays one event against the dashboard and prints a JSON object
mapping each target to its artifact, or to an error marker when it failed.
Without --event every figure is resolved with its declared defaults.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := r.newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			ev, err := loadEvent(eventPath)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(r.outW)
			enc.SetIndent("", "  ")
			return enc.Encode(a.Resolve(cmd.Context(), ev))
		},
	}
	cmd.Flags().StringVarP(&eventPath, "event", "e", "", "YAML file describing the event to replay.")
	return cmd
}

func (r *runner) exportCommand() *cobra.Command {
	var (
		eventPath string
		format    string
		outDir    string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the filtered data behind figures to files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := r.newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			ev, err := loadEvent(eventPath)
			if err != nil {
				return err
			}
			written, err := a.Export(cmd.Context(), ev, format, outDir)
			for _, path := range written {
				fmt.Fprintln(r.outW, path)
			}
			if err != nil {
				return &ExitError{Code: 1, Message: err.Error()}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&eventPath, "event", "e", "", "YAML file describing the event to replay.")
	cmd.Flags().StringVar(&format, "format", "csv", "Export format: 'csv' or 'json'.")
	cmd.Flags().StringVarP(&outDir, "output", "o", ".", "Directory the files are written to.")
	return cmd
}

func (r *runner) serveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve resolution passes over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := r.newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			if err := a.Serve(ctx); err != nil {
				return &ExitError{Code: 1, Message: err.Error()}
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&r.opts.port, "port", 8080, "Port to listen on.")
	return cmd
}

func loadEvent(path string) (*app.Event, error) {
	if path == "" {
		return &app.Event{}, nil
	}
	ev, err := app.LoadEvent(path)
	if err != nil {
		return nil, &ExitError{Code: 2, Message: err.Error()}
	}
	return ev, nil
}
