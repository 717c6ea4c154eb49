package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ariafatah0711/HPone/internal/core/envfile"
	"github.com/ariafatah0711/HPone/internal/shell/docker"
	"github.com/ariafatah0711/HPone/internal/shell/store"
	"github.com/ariafatah0711/HPone/internal/shell/workspace"
)

// Version information (set by build)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	a := &app{}

	// Which commands and flags exist depends on configuration, so peek
	// at the config before cobra parses anything.
	alwaysImport := true
	if cfg, err := LoadConfig(configFlagValue(args)); err == nil {
		alwaysImport = cfg.Behavior.AlwaysImport
	}

	root := newRootCommand(a, alwaysImport)
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		switch {
		case errors.Is(err, errUsage):
			return ExitUsage
		case errors.Is(err, errReported):
			return ExitFailure
		case strings.HasPrefix(err.Error(), "unknown command"):
			// cobra reports unrecognized subcommands as plain errors.
			fmt.Fprintln(os.Stderr, err)
			return ExitUsage
		default:
			fmt.Fprintf(os.Stderr, "%s %s\n", errorPrefix(), err)
			return ExitFailure
		}
	}
	return ExitSuccess
}

// configFlagValue pre-scans raw arguments for --config so command
// registration can read configuration before flag parsing runs.
func configFlagValue(args []string) string {
	for i, arg := range args {
		if arg == "--config" && i+1 < len(args) {
			return args[i+1]
		}
		if strings.HasPrefix(arg, "--config=") {
			return strings.TrimPrefix(arg, "--config=")
		}
	}
	return ""
}

// =============================================================================
// Application Wiring
// =============================================================================

// app carries the components behind every subcommand. The root
// command's PersistentPreRunE populates it once flag values are final.
type app struct {
	cfg    *Config
	logger *slog.Logger

	store   *store.Store
	ws      *workspace.Manager
	data    *workspace.DataRemover
	compose *docker.Compose
}

func (a *app) setup(configPath, logLevel, logFormat string) error {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return err
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if logFormat != "" {
		cfg.Log.Format = logFormat
	}

	a.cfg = cfg
	a.logger = SetupLogger(cfg)

	home, _ := os.UserHomeDir()
	norm := envfile.Normalizer{
		ProjectRoot: cfg.Paths.Root,
		HomeDir:     home,
		Env:         os.LookupEnv,
	}

	a.store = store.New(cfg.Paths.ManifestDir())
	a.ws = workspace.NewManager(a.store, cfg.Paths.TemplateDir(), cfg.Paths.OutputDir(), norm, a.logger)
	a.data = workspace.NewDataRemover(cfg.Paths.DataDir(), a.logger)
	a.compose = docker.NewCompose(docker.ComposeOptions{
		Ephemeral: cfg.Behavior.EphemeralLogs,
		Timeout:   cfg.Compose.Timeout,
	}, a.logger)

	return nil
}

// engine opens the Docker SDK client. The caller owns Close.
func (a *app) engine() (*docker.DockerClient, error) {
	return docker.NewDockerClient(a.cfg.Docker.Host)
}

// requireDocker verifies a usable docker front end before commands that
// drive containers. Manifest-only commands skip this so they work on
// hosts without docker.
func (a *app) requireDocker(ctx context.Context) error {
	st := a.compose.Probe(ctx)
	if st.Docker || st.ComposeAvailable() {
		return nil
	}
	fmt.Fprintf(os.Stderr, "%s Docker is not available on this system\n", errorPrefix())
	fmt.Fprintln(os.Stderr, "Install Docker: https://docs.docker.com/get-docker/")
	fmt.Fprintln(os.Stderr, "Then verify with: hpone check")
	return errReported
}

// =============================================================================
// Root Command
// =============================================================================

func newRootCommand(a *app, alwaysImport bool) *cobra.Command {
	var (
		configPath  string
		logLevel    string
		logFormat   string
		showVersion bool
	)

	root := &cobra.Command{
		Use:   "hpone",
		Short: "Manage container tool stacks from YAML manifests",
		Long: `hpone turns per-tool YAML manifests into runnable docker compose
workspaces: it copies the tool's template, generates a .env from the
manifest's ports, volumes and environment, rewrites the compose file to
reference those variables, and drives the stack with docker compose.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(configPath, logLevel, logFormat)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if showVersion {
				fmt.Printf("hpone %s (built %s, %s)\n", Version, BuildTime, runtime.Version())
				return nil
			}
			return cmd.Help()
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&logFormat, "log-format", "", "Log format (text, json)")
	root.Flags().BoolVar(&showVersion, "version", false, "Print version and exit")

	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return usagef("%s", err)
	})

	root.AddCommand(
		newCheckCommand(a),
		newListCommand(a),
		newStatusCommand(a),
		newInspectCommand(a),
		newEnableCommand(a),
		newDisableCommand(a),
		newUpCommand(a, alwaysImport),
		newDownCommand(a),
		newShellCommand(a),
		newLogsCommand(a),
		newCleanCommand(a),
	)
	if !alwaysImport {
		root.AddCommand(newImportCommand(a), newUpdateCommand(a))
	}

	return root
}

// =============================================================================
// Argument Validators
// =============================================================================

// requireToolArg demands exactly one tool name, reported as a usage
// error so it exits with code 2 like any other argument mistake.
func requireToolArg(cmd *cobra.Command, args []string) error {
	if len(args) != 1 {
		return usagef("You must specify a tool")
	}
	return nil
}

// maxOneToolArg allows one optional tool name for commands that also
// take --all.
func maxOneToolArg(cmd *cobra.Command, args []string) error {
	if len(args) > 1 {
		return usagef("accepts at most one tool, received %d", len(args))
	}
	return nil
}

// noArgs rejects positional arguments.
func noArgs(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		return usagef("%q takes no arguments", cmd.Name())
	}
	return nil
}
