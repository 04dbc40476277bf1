package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/fang"
	"github.com/google/uuid"
	serveradapter "github.com/hylla/shootdesk/internal/adapters/server"
	servercommon "github.com/hylla/shootdesk/internal/adapters/server/common"
	"github.com/hylla/shootdesk/internal/adapters/storage/sqlite"
	"github.com/hylla/shootdesk/internal/app"
	"github.com/hylla/shootdesk/internal/config"
	"github.com/hylla/shootdesk/internal/platform"
	"github.com/spf13/cobra"
)

// version is stamped at build time.
var version = "dev"

// serveCommandRunner starts the HTTP+MCP serve flow.
var serveCommandRunner = func(ctx context.Context, cfg serveradapter.Config, deps serveradapter.Dependencies) error {
	return serveradapter.Run(ctx, cfg, deps)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		os.Exit(1)
	}
}

// run builds the command tree and executes it through fang.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}
	root := newRootCommand(stdout, stderr)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	return fang.Execute(ctx, root, fang.WithVersion(version), fang.WithoutManpage())
}

// globalOptions holds flags shared by every subcommand.
type globalOptions struct {
	configPath string
	dbPath     string
	appName    string
	devMode    bool
	jsonOutput bool
	stdout     io.Writer
	stderr     io.Writer
}

// newRootCommand wires the full command tree.
func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	opts := &globalOptions{stdout: stdout, stderr: stderr}
	defaultDevMode := version == "dev"
	if envDev, ok := parseBoolEnv("SHOOTDESK_DEV_MODE"); ok {
		defaultDevMode = envDev
	}
	defaultApp := platform.DefaultAppName
	if envApp := strings.TrimSpace(os.Getenv("SHOOTDESK_APP_NAME")); envApp != "" {
		defaultApp = envApp
	}

	root := &cobra.Command{
		Use:           "shootdesk",
		Short:         "Crew scheduling and post-production workflow for photo and video studios",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "path to config TOML")
	flags.StringVar(&opts.dbPath, "db", "", "path to sqlite database")
	flags.StringVar(&opts.appName, "app", defaultApp, "application name for config/data path resolution")
	flags.BoolVar(&opts.devMode, "dev", defaultDevMode, "use dev mode paths (<app>-dev)")
	flags.BoolVar(&opts.jsonOutput, "json", false, "print JSON instead of tables")

	root.AddCommand(
		newPathsCommand(opts),
		newServeCommand(opts),
		newAvailabilityCommand(opts),
		newEventsCommand(opts),
		newConflictsCommand(opts),
		newProgressCommand(opts),
		newScheduleCommand(opts),
		newBoardCommand(opts),
		newTransitionCommand(opts),
		newHistoryCommand(opts),
		newCandidatesCommand(opts),
		newOverviewCommand(opts),
		newAddCommand(opts),
		newEditCommand(opts),
		newRescheduleCommand(opts),
		newTickCommand(opts),
		newExportCommand(opts),
		newImportCommand(opts),
	)
	return root
}

// runtimeEnv is the opened storage, service, and logger for one command.
type runtimeEnv struct {
	cfg    config.Config
	paths  platform.Paths
	logger *runtimeLogger
	repo   *sqlite.Repository
	svc    *app.Service
	api    *servercommon.AppServiceAdapter
}

// resolvePaths resolves platform paths for the current flags.
func (o *globalOptions) resolvePaths() (platform.Paths, error) {
	return platform.DefaultPathsWithOptions(platform.Options{
		AppName: o.appName,
		DevMode: o.devMode,
	})
}

// openRuntime loads config, configures logging, and opens the repository.
func (o *globalOptions) openRuntime(command string) (*runtimeEnv, error) {
	paths, err := o.resolvePaths()
	if err != nil {
		return nil, err
	}

	configPath := strings.TrimSpace(o.configPath)
	if configPath == "" {
		if envPath := strings.TrimSpace(os.Getenv("SHOOTDESK_CONFIG")); envPath != "" {
			configPath = envPath
		} else {
			configPath = paths.ConfigPath
		}
	}
	dbPath := strings.TrimSpace(o.dbPath)
	dbOverridden := dbPath != ""
	if !dbOverridden {
		if envPath := strings.TrimSpace(os.Getenv("SHOOTDESK_DB_PATH")); envPath != "" {
			dbPath = envPath
			dbOverridden = true
		} else {
			dbPath = paths.DBPath
		}
	}

	cfg, err := config.Load(configPath, config.Default(dbPath))
	if err != nil {
		return nil, fmt.Errorf("load config %q: %w", configPath, err)
	}
	if dbOverridden {
		cfg.Database.Path = dbPath
	}
	mode, err := cfg.TransitionMode()
	if err != nil {
		return nil, err
	}
	policy, err := cfg.ConflictPolicy()
	if err != nil {
		return nil, err
	}
	grace, err := cfg.BoardWriteGrace()
	if err != nil {
		return nil, err
	}

	logger, err := newRuntimeLogger(o.stderr, o.appName, o.devMode, cfg.Logging, paths.LogDir, time.Now)
	if err != nil {
		return nil, fmt.Errorf("configure runtime logger: %w", err)
	}
	if command != "serve" {
		// Query commands keep the terminal for their own output.
		logger.SetConsoleEnabled(false)
	}

	logger.Info("startup configuration resolved", "app", o.appName, "dev_mode", o.devMode, "command", command)
	logger.Debug("runtime paths resolved", "config_path", configPath, "data_dir", paths.DataDir, "db_path", cfg.Database.Path)
	logger.Info("configuration loaded", "config_path", configPath, "db_path", cfg.Database.Path, "log_level", cfg.Logging.Level, "workflow_mode", mode)
	if devPath := logger.DevLogPath(); devPath != "" {
		logger.Info("dev file logging enabled", "path", devPath)
	}

	logger.Info("opening sqlite repository", "db_path", cfg.Database.Path)
	repo, err := sqlite.Open(cfg.Database.Path)
	if err != nil {
		logger.Error("sqlite open failed", "db_path", cfg.Database.Path, "err", err)
		_ = logger.Close()
		return nil, fmt.Errorf("open sqlite repository: %w", err)
	}
	logger.Info("sqlite repository ready", "db_path", cfg.Database.Path, "migrations", "ensured")

	svc := app.NewService(repo, uuid.NewString, nil, app.ServiceConfig{
		TransitionMode:  mode,
		ConflictPolicy:  policy,
		BoardWriteGrace: grace,
		Logger:          logger.ServiceLogger(),
	})
	logger.Debug("application service initialized", "workflow_mode", mode, "conflict_policy", policy, "board_write_grace", grace)

	return &runtimeEnv{
		cfg:    cfg,
		paths:  paths,
		logger: logger,
		repo:   repo,
		svc:    svc,
		api:    servercommon.NewAppServiceAdapter(svc),
	}, nil
}

// close releases the repository and the dev log sink.
func (r *runtimeEnv) close(stderr io.Writer) {
	if r == nil {
		return
	}
	if err := r.repo.Close(); err != nil {
		r.logger.Warn("sqlite close failed", "db_path", r.cfg.Database.Path, "err", err)
	}
	if err := r.logger.Close(); err != nil && r.logger.ConsoleEnabled() {
		_, _ = fmt.Fprintf(stderr, "warning: close runtime log sink: %v\n", err)
	}
}

// withRuntime opens the runtime around one command flow and logs its outcome.
func withRuntime(opts *globalOptions, command string, fn func(context.Context, *runtimeEnv, []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		env, err := opts.openRuntime(command)
		if err != nil {
			return err
		}
		defer env.close(opts.stderr)

		env.logger.Info("command flow start", "command", command)
		if err := fn(cmd.Context(), env, args); err != nil {
			env.logger.Error("command flow failed", "command", command, "err", err)
			return fmt.Errorf("run %s command: %w", command, err)
		}
		env.logger.Info("command flow complete", "command", command)
		return nil
	}
}

// parseBoolEnv parses input into a normalized form.
func parseBoolEnv(name string) (bool, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}
