// Package cli implements the cforge command line: analyses, element
// lookups, element-store migrations and a tail of the analysis event topic.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/turtacn/CompoundForge/internal/application/compound"
	"github.com/turtacn/CompoundForge/internal/bootstrap"
	"github.com/turtacn/CompoundForge/internal/config"
	"github.com/turtacn/CompoundForge/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/CompoundForge/pkg/client"
	"github.com/turtacn/CompoundForge/pkg/errors"
)

var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

type cliContextKey struct{}

type RootOptions struct {
	ConfigPath   string
	LogLevel     string
	OutputFormat string
	Strategy     string
	Server       string
	Timeout      time.Duration
}

// ServiceFactory builds the compound service for a command. The returned
// closer is called once the command finishes.
type ServiceFactory func(ctx context.Context, cc *CLIContext) (compound.Service, func() error, error)

// CLIContext is shared by every subcommand through the cobra context.
type CLIContext struct {
	Config       *config.Config
	Logger       logging.Logger
	OutputFormat string
	Server       string
	Timeout      time.Duration

	factory ServiceFactory
	once    sync.Once
	svc     compound.Service
	closer  func() error
	svcErr  error
}

// Service builds the backend on first use so commands that never analyze
// (version, migrate, events) do not open connections.
func (c *CLIContext) Service(ctx context.Context) (compound.Service, error) {
	c.once.Do(func() {
		c.svc, c.closer, c.svcErr = c.factory(ctx, c)
	})
	return c.svc, c.svcErr
}

func (c *CLIContext) close() {
	if c.closer != nil {
		if err := c.closer(); err != nil {
			c.Logger.Warn("failed to release resources", logging.Err(err))
		}
	}
}

type rootConfig struct {
	factory ServiceFactory
}

type RootOption func(*rootConfig)

// WithServiceFactory replaces the default local/remote service construction.
func WithServiceFactory(f ServiceFactory) RootOption {
	return func(rc *rootConfig) { rc.factory = f }
}

func NewRootCommand(options ...RootOption) *cobra.Command {
	opts := &RootOptions{}
	rc := &rootConfig{factory: defaultServiceFactory}
	for _, o := range options {
		o(rc)
	}

	cmd := &cobra.Command{
		Use:   "cforge",
		Short: "CompoundForge: chemical compound feasibility analysis",
		Long: "CompoundForge predicts whether a set of elements forms a plausible compound,\n" +
			"classifies the bond and proposes charge-balanced formulas.",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildDate),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return persistentPreRun(cmd, opts, rc.factory)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.ConfigPath, "config", "c", "", "config file path (default: ./cforge.yaml)")
	pf.StringVar(&opts.LogLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	pf.StringVarP(&opts.OutputFormat, "output", "o", "text", "output format (text, json, table)")
	pf.StringVar(&opts.Strategy, "strategy", "", "multi-element search strategy (preferred, exhaustive)")
	pf.StringVar(&opts.Server, "server", "", "API server URL; analyses run in-process when empty")
	pf.DurationVar(&opts.Timeout, "timeout", 30*time.Second, "operation timeout")

	cmd.AddCommand(
		NewAnalyzeCmd(),
		NewBatchCmd(),
		NewElementCmd(),
		NewMigrateCmd(),
		NewEventsCmd(),
		NewVersionCmd(),
	)
	return cmd
}

func persistentPreRun(cmd *cobra.Command, opts *RootOptions, factory ServiceFactory) error {
	switch strings.ToLower(opts.OutputFormat) {
	case "text", "json", "table":
	default:
		return errors.Newf(errors.ErrCodeValidation, "unknown output format %q", opts.OutputFormat)
	}

	cfg, err := initConfig(opts)
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}
	if opts.Strategy != "" {
		cfg.Engine.SearchStrategy = opts.Strategy
	}

	logCfg := cfg.Log
	logCfg.Format = "console"
	logCfg.OutputPaths = []string{"stderr"}
	logCfg.ErrorOutputPaths = []string{"stderr"}
	logger, err := bootstrap.NewLogger(logCfg, opts.LogLevel)
	if err != nil {
		return fmt.Errorf("logger initialization failed: %w", err)
	}

	cc := &CLIContext{
		Config:       cfg,
		Logger:       logger,
		OutputFormat: strings.ToLower(opts.OutputFormat),
		Server:       opts.Server,
		Timeout:      opts.Timeout,
		factory:      factory,
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(context.WithValue(ctx, cliContextKey{}, cc))
	return nil
}

func initConfig(opts *RootOptions) (*config.Config, error) {
	if opts.ConfigPath != "" {
		return config.Load(opts.ConfigPath)
	}
	searchPaths := []string{"./cforge.yaml"}
	if home, err := os.UserHomeDir(); err == nil {
		searchPaths = append(searchPaths, filepath.Join(home, ".cforge", "config.yaml"))
	}
	searchPaths = append(searchPaths, "/etc/cforge/config.yaml")
	for _, p := range searchPaths {
		if _, err := os.Stat(p); err == nil {
			return config.Load(p)
		}
	}
	return config.LoadFromEnv()
}

// defaultServiceFactory talks to --server when given and otherwise runs the
// engine in-process over the configured element store and cache.
func defaultServiceFactory(ctx context.Context, cc *CLIContext) (compound.Service, func() error, error) {
	if cc.Server != "" {
		c, err := client.NewClient(cc.Server, client.WithTimeout(cc.Timeout))
		if err != nil {
			return nil, nil, err
		}
		return newRemoteService(c), nil, nil
	}
	comps, err := bootstrap.New(ctx, cc.Config, cc.Logger, bootstrap.Options{})
	if err != nil {
		return nil, nil, err
	}
	return comps.Service, comps.Close, nil
}

func GetCLIContext(cmd *cobra.Command) (*CLIContext, error) {
	ctx := cmd.Context()
	if ctx == nil {
		return nil, errors.New(errors.ErrCodeInternal, "command context is nil")
	}
	cc, ok := ctx.Value(cliContextKey{}).(*CLIContext)
	if !ok || cc == nil {
		return nil, errors.New(errors.ErrCodeInternal, "CLI context not found in command context")
	}
	return cc, nil
}

// commandContext bounds a command by --timeout.
func commandContext(cmd *cobra.Command, cc *CLIContext) (context.Context, context.CancelFunc) {
	if cc.Timeout > 0 {
		return context.WithTimeout(cmd.Context(), cc.Timeout)
	}
	return context.WithCancel(cmd.Context())
}

// Execute runs the root command and prints any error to stderr.
func Execute(ctx context.Context) error {
	root := NewRootCommand()
	if err := run(ctx, root); err != nil {
		PrintError(root, err)
		return err
	}
	return nil
}

// run executes root and releases the backend whether or not the command
// succeeded.
func run(ctx context.Context, root *cobra.Command) error {
	executed, err := root.ExecuteContextC(ctx)
	if executed != nil {
		if cc, cerr := GetCLIContext(executed); cerr == nil {
			cc.close()
		}
	}
	return err
}

// tabular is implemented by results that can render as a table.
type tabular interface {
	TableHeaders() []string
	TableRows() [][]string
}

// PrintResult renders data in the selected output format. text falls back to
// the table form for tabular data without a String method.
func PrintResult(cmd *cobra.Command, data interface{}) error {
	format := "json"
	if cc, err := GetCLIContext(cmd); err == nil {
		format = cc.OutputFormat
	}
	switch format {
	case "json":
		return printJSON(cmd, data)
	case "table":
		if t, ok := data.(tabular); ok {
			fmt.Fprintln(cmd.OutOrStdout(), FormatTable(t.TableHeaders(), t.TableRows()))
			return nil
		}
	}
	return printText(cmd, data)
}

func printJSON(cmd *cobra.Command, data interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

func printText(cmd *cobra.Command, data interface{}) error {
	switch v := data.(type) {
	case string:
		fmt.Fprintln(cmd.OutOrStdout(), v)
	case fmt.Stringer:
		fmt.Fprintln(cmd.OutOrStdout(), v.String())
	case tabular:
		fmt.Fprintln(cmd.OutOrStdout(), FormatTable(v.TableHeaders(), v.TableRows()))
	default:
		fmt.Fprintf(cmd.OutOrStdout(), "%+v\n", v)
	}
	return nil
}

func PrintError(cmd *cobra.Command, err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Error: %s\n", err.Error())
}

// FormatTable renders a bordered table.
func FormatTable(headers []string, rows [][]string) string {
	if len(headers) == 0 {
		return ""
	}
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...).
		String()
}
