package main

import (
	"context"
	"errors"
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
	"github.com/spf13/cobra"

	"github.com/hylla/listdock/internal/adapters/clipboard"
	"github.com/hylla/listdock/internal/adapters/storage/sqlite"
	"github.com/hylla/listdock/internal/app"
	"github.com/hylla/listdock/internal/config"
	"github.com/hylla/listdock/internal/platform"
	"github.com/hylla/listdock/internal/render"
)

// version stores a package-level helper value.
var version = "dev"

// clipboardFactory picks the clipboard commands read from and write to.
var clipboardFactory = clipboard.Detect

// main handles main.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

// run builds the command tree and executes args against it.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}

	cli := &cliApp{stdout: stdout, stderr: stderr}
	defer cli.close()

	root := newRootCmd(cli)
	root.SetArgs(args)
	root.SetIn(os.Stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := fang.Execute(ctx, root, fang.WithVersion(version))
	if cli.command == "" {
		return err
	}
	if err != nil {
		cli.logger.Error("command flow failed", "command", cli.command, "err", err)
		return err
	}
	cli.logger.Info("command flow complete", "command", cli.command)
	return nil
}

// cliApp holds global flag values and the per-invocation runtime they resolve to.
type cliApp struct {
	ConfigPath string
	DBPath     string
	AppName    string
	DevMode    bool
	Select     []string

	stdout io.Writer
	stderr io.Writer

	command string
	paths   platform.Paths
	cfg     config.Config
	logger  *runtimeLogger
	store   *sqlite.Store
	svc     *app.Service
}

// newRootCmd constructs the listdock command tree.
func newRootCmd(cli *cliApp) *cobra.Command {
	defaultDevMode := version == "dev"
	if envDev, ok := parseBoolEnv("LISTDOCK_DEV_MODE"); ok {
		defaultDevMode = envDev
	}

	cmd := &cobra.Command{
		Use:          "listdock",
		Short:        "Local task lists with folders, subtasks, and undo",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Show the current list
  listdock list

  # Add a folder and file a task in it
  listdock folder add Errands
  listdock add --parent <folder-id> "Post office"

  # Paste an indented outline from stdin
  printf 'Trip\n  Pack\n  Book hotel\n' | listdock paste

  # Serve the HTTP API and MCP tools
  listdock serve
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		return cli.prepare(cmd.CommandPath())
	}

	cmd.PersistentFlags().StringVar(&cli.ConfigPath, "config", envOr("LISTDOCK_CONFIG", ""), "Path to config TOML")
	cmd.PersistentFlags().StringVar(&cli.DBPath, "db", envOr("LISTDOCK_DB_PATH", ""), "Path to sqlite database")
	cmd.PersistentFlags().StringVar(&cli.AppName, "app", envOr("LISTDOCK_APP_NAME", platform.DefaultAppName), "Application name for config/data path resolution")
	cmd.PersistentFlags().BoolVar(&cli.DevMode, "dev", defaultDevMode, "Use dev mode paths (<app>-dev)")
	cmd.PersistentFlags().StringArrayVar(&cli.Select, "select", nil, "Select an item before running the command (repeatable)")

	cmd.AddCommand(newPathsCmd(cli))
	cmd.AddCommand(newListCmd(cli))
	cmd.AddCommand(newSearchCmd(cli))
	cmd.AddCommand(newGotoCmd(cli))
	cmd.AddCommand(newViewCmd(cli))
	cmd.AddCommand(newAddCmd(cli))
	cmd.AddCommand(newFolderCmd(cli))
	cmd.AddCommand(newRenameCmd(cli))
	cmd.AddCommand(newCompleteCmd(cli, true))
	cmd.AddCommand(newCompleteCmd(cli, false))
	cmd.AddCommand(newExpandCmd(cli, true))
	cmd.AddCommand(newExpandCmd(cli, false))
	cmd.AddCommand(newRemoveCmd(cli))
	cmd.AddCommand(newMoveCmd(cli))
	cmd.AddCommand(newUndoCmd(cli))
	cmd.AddCommand(newPasteCmd(cli))
	cmd.AddCommand(newCopyCmd(cli))
	cmd.AddCommand(newExportCmd(cli))
	cmd.AddCommand(newImportCmd(cli))
	cmd.AddCommand(newClearCmd(cli))
	cmd.AddCommand(newSettingsCmd(cli))
	cmd.AddCommand(newDoctorCmd(cli))
	cmd.AddCommand(newServeCmd(cli))

	return cmd
}

// prepare resolves paths, config, and logging for one command.
func (c *cliApp) prepare(command string) error {
	paths, err := platform.Resolve(platform.Options{
		AppName: c.AppName,
		DevMode: c.DevMode,
	})
	if err != nil {
		return err
	}
	c.paths = paths

	configPath := strings.TrimSpace(c.ConfigPath)
	if configPath == "" {
		configPath = paths.ConfigPath
	}
	dbPath := strings.TrimSpace(c.DBPath)
	dbOverridden := dbPath != ""
	if !dbOverridden {
		dbPath = paths.DBPath
	}

	cfg, err := config.Load(configPath, config.Default(dbPath))
	if err != nil {
		return fmt.Errorf("load config %q: %w", configPath, err)
	}
	if dbOverridden {
		cfg.Database.Path = dbPath
	}
	c.cfg = cfg

	logger, err := newRuntimeLogger(c.stderr, c.AppName, c.DevMode, cfg.Logging, time.Now)
	if err != nil {
		return fmt.Errorf("configure runtime logger: %w", err)
	}
	c.logger = logger
	c.command = command

	c.logger.Info(
		"startup configuration resolved",
		"app", c.AppName,
		"dev_mode", c.DevMode,
		"config_path", configPath,
		"db_path", cfg.Database.Path,
		"log_level", cfg.Logging.Level,
	)
	if devLog := c.logger.DevLogPath(); devLog != "" {
		c.logger.Info("dev file logging enabled", "path", devLog)
	}
	c.logger.Info("command flow start", "command", command)
	return nil
}

// service opens the store and loads the list state on first use.
func (c *cliApp) service(ctx context.Context) (*app.Service, error) {
	if c.svc != nil {
		return c.svc, nil
	}

	c.logger.Info("opening sqlite repository", "path", c.cfg.Database.Path)
	store, err := sqlite.Open(c.cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite repository: %w", err)
	}
	c.store = store

	defaults := app.Settings{
		ShowCompleted:         c.cfg.Defaults.ShowCompleted,
		HideCompletedSubtasks: c.cfg.Defaults.HideCompletedSubtasks,
		PersistLastFolder:     c.cfg.Defaults.PersistLastFolder,
		CopyWithSubtasks:      c.cfg.Defaults.CopyWithSubtasks,
	}
	svc := app.NewService(store, render.NewConsoleNotifier(c.stderr), uuid.NewString, time.Now, app.ServiceConfig{
		StorageKey: c.cfg.Storage.Key,
		UndoDepth:  c.cfg.Undo.Depth,
		Defaults:   &defaults,
		Clipboard:  clipboardFactory(),
	})
	if err := svc.Load(ctx); err != nil {
		return nil, fmt.Errorf("load list state: %w", err)
	}

	if len(c.Select) > 0 {
		ids, err := resolveIDs(svc, c.Select)
		if err != nil {
			return nil, fmt.Errorf("resolve --select: %w", err)
		}
		svc.SetSelection(ids)
	}
	c.svc = svc
	return svc, nil
}

// close releases the store and log file.
func (c *cliApp) close() {
	if c.store != nil {
		if err := c.store.Close(); err != nil {
			c.logger.Warn("close sqlite repository failed", "err", err)
		}
	}
	if err := c.logger.Close(); err != nil {
		_, _ = fmt.Fprintln(c.stderr, "warning: close dev log file:", err)
	}
}

// resolveIDs expands id prefixes to full ids.
func resolveIDs(svc *app.Service, refs []string) ([]string, error) {
	out := make([]string, 0, len(refs))
	for _, ref := range refs {
		id, err := svc.ResolveID(ref)
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, nil
}

// errNothingSelected reports a command that needs ids but got none.
var errNothingSelected = errors.New("no items given; pass ids or --select")

// targetIDs resolves args, falling back to the current selection.
func targetIDs(svc *app.Service, args []string) ([]string, error) {
	if len(args) == 0 {
		ids := svc.SelectedIDs()
		if len(ids) == 0 {
			return nil, errNothingSelected
		}
		return ids, nil
	}
	return resolveIDs(svc, args)
}

// envOr returns the environment value for k, or d when unset.
func envOr(k, d string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return d
}

// parseBoolEnv parses a boolean environment variable, reporting whether it was set.
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
