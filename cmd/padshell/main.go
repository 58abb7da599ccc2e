// Package main is the CLI entry point for padshell.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/eliteGoblin/padshell/internal/config"
	"github.com/eliteGoblin/padshell/internal/daemon"
	"github.com/eliteGoblin/padshell/internal/domain"
	"github.com/eliteGoblin/padshell/internal/infra"
	"github.com/eliteGoblin/padshell/internal/inventory"
	"github.com/eliteGoblin/padshell/internal/policy"
	"github.com/eliteGoblin/padshell/internal/render"
	"github.com/eliteGoblin/padshell/internal/usecase"
)

var (
	// Version info (set via ldflags)
	Version   = "0.1.0"
	Commit    = "dev"
	BuildTime = "unknown"
)

const listTimeout = 10 * time.Second

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "padshell",
	Short: "Controller-driven window switcher",
	Long: `padshell is a full-screen launcher you drive with a game controller.
It lists the open application windows, brings the chosen one to the front,
and hides itself in the notification area until you press the restore combo
(LB + RB + D-pad left by default).

A switches, B hides, X closes, Y minimizes and D-pad right opens the audio
device switcher.`,
	Version:      Version,
	SilenceUsage: true,
	RunE:         runShell,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the shell (same as running padshell without a command)",
	RunE:  runShell,
}

var windowsCmd = &cobra.Command{
	Use:   "windows",
	Short: "List the windows the shell would show",
	RunE:  runWindows,
}

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List active audio endpoints",
	RunE:  runDevices,
}

var autostartCmd = &cobra.Command{
	Use:   "autostart",
	Short: "Manage starting padshell at logon",
}

var autostartEnableCmd = &cobra.Command{
	Use:   "enable",
	Short: "Start padshell when you log on",
	RunE:  runAutostartEnable,
}

var autostartDisableCmd = &cobra.Command{
	Use:   "disable",
	Short: "Stop starting padshell at logon",
	RunE:  runAutostartDisable,
}

var autostartStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether padshell starts at logon",
	RunE:  runAutostartStatus,
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect or create the configuration file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default configuration if none exists",
	RunE:  runConfigInit,
}

var configCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate the configuration file",
	RunE:  runConfigCheck,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Prints version, commit, and build time. Use --json for machine-readable output.`,
	Run:   runVersion,
}

var (
	configPath string
	debug      bool
	jsonOutput bool
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config.yaml (default: data directory)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	versionCmd.Flags().BoolVar(&jsonOutput, "json", false, "Output version info as JSON")

	autostartCmd.AddCommand(autostartEnableCmd, autostartDisableCmd, autostartStatusCmd)
	configCmd.AddCommand(configInitCmd, configCheckCmd)

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(windowsCmd)
	rootCmd.AddCommand(devicesCmd)
	rootCmd.AddCommand(autostartCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolvePaths returns the data locations, honoring --config.
func resolvePaths() (*infra.Paths, string) {
	paths := infra.DetectPaths()
	if configPath != "" {
		return paths, configPath
	}
	return paths, paths.ConfigPath
}

func runShell(cmd *cobra.Command, args []string) error {
	paths, cfgPath := resolvePaths()
	if err := paths.Ensure(); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}

	logger := createLogger(paths, cfg.LogLevel)
	defer func() { _ = logger.Sync() }()

	lock, err := infra.AcquireInstanceLock(infra.AppName)
	if errors.Is(err, domain.ErrAlreadyRunning) {
		fmt.Println("padshell is already running")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to acquire instance lock: %w", err)
	}
	defer func() { _ = lock.Release() }()

	// Set up graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Info("received shutdown signal")
		cancel()
	}()

	// Initialize infrastructure
	windows := infra.NewWindowSystem(logger)
	processes := infra.NewProcessManager()
	presenter := infra.NewConsolePresenter(logger)
	audio := infra.NewAudioBackend(logger)
	gamepad := infra.NewGamepad(cfg.ControllerIndex, logger)

	tray, err := infra.NewTray("padshell", logger)
	if err != nil {
		return fmt.Errorf("failed to create tray icon: %w", err)
	}
	defer func() { _ = tray.Close() }()

	console := render.NewConsole(os.Stdout, true)
	selfName := infra.SelfName()

	inv := inventory.New(windows, processes, policy.FromConfig(cfg, selfName), logger)
	activator := usecase.NewActivator(windows, processes, presenter, usecase.ActivatorConfig{
		ForegroundRetries: cfg.ForegroundRetries,
		TopmostToggle:     cfg.TopmostToggle,
	}, logger)

	timeline := daemon.NewTimeline(8)
	shellCfg, dispatcherCfg := daemon.ConfigsFrom(cfg)
	dispatcher := usecase.NewDispatcher(
		dispatcherCfg,
		inv,
		activator,
		presenter,
		tray,
		console,
		console,
		console,
		audio,
		timeline,
		logger,
	)

	updates, err := config.Watch(ctx, cfgPath, logger)
	if err != nil {
		logger.Warn("config hot reload disabled", zap.String("path", cfgPath), zap.Error(err))
		updates = nil
	}

	shell := daemon.NewShell(shellCfg, gamepad, dispatcher, inv, tray, timeline, selfName, logger)
	err = shell.Run(ctx, updates)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func runWindows(cmd *cobra.Command, args []string) error {
	_, cfgPath := resolvePaths()
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}

	logger := createCLILogger()
	inv := inventory.New(infra.NewWindowSystem(logger), infra.NewProcessManager(),
		policy.FromConfig(cfg, infra.SelfName()), logger)

	snap, _, err := inv.RefreshIfChanged()
	if err != nil {
		return fmt.Errorf("failed to enumerate windows: %w", err)
	}
	if snap.Len() == 0 {
		fmt.Println("No windows found.")
		return nil
	}
	fmt.Println(render.WindowTable(os.Stdout, snap.Entries))
	return nil
}

func runDevices(cmd *cobra.Command, args []string) error {
	logger := createCLILogger()
	audio := infra.NewAudioBackend(logger)

	ctx, cancel := context.WithTimeout(context.Background(), listTimeout)
	defer cancel()

	outputs, err := audio.ListOutputDevices(ctx)
	if err != nil {
		return err
	}
	inputs, err := audio.ListInputDevices(ctx)
	if err != nil {
		return err
	}
	fmt.Println(render.DeviceTable(os.Stdout, append(outputs, inputs...)))
	return nil
}

func runAutostartEnable(cmd *cobra.Command, args []string) error {
	execPath, err := os.Executable()
	if err != nil {
		return fmt.Errorf("failed to get executable path: %w", err)
	}
	if err := infra.NewAutostart(infra.AppName, createCLILogger()).Enable(execPath); err != nil {
		return err
	}
	fmt.Printf("padshell will start at logon (%s)\n", execPath)
	return nil
}

func runAutostartDisable(cmd *cobra.Command, args []string) error {
	if err := infra.NewAutostart(infra.AppName, createCLILogger()).Disable(); err != nil {
		return err
	}
	fmt.Println("padshell will no longer start at logon")
	return nil
}

func runAutostartStatus(cmd *cobra.Command, args []string) error {
	command, err := infra.NewAutostart(infra.AppName, createCLILogger()).Status()
	if err != nil {
		return err
	}
	if command == "" {
		fmt.Println("Autostart: disabled")
	} else {
		fmt.Printf("Autostart: enabled (%s)\n", command)
	}
	return nil
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	paths, cfgPath := resolvePaths()
	if err := paths.Ensure(); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	if _, err := os.Stat(cfgPath); err == nil {
		fmt.Printf("Config already exists: %s\n", cfgPath)
		return nil
	}
	if err := config.Default().Write(cfgPath); err != nil {
		return err
	}
	fmt.Printf("Wrote default config to %s\n", cfgPath)
	return nil
}

func runConfigCheck(cmd *cobra.Command, args []string) error {
	_, cfgPath := resolvePaths()
	if _, err := config.Load(cfgPath); err != nil {
		return err
	}
	fmt.Printf("%s is valid\n", cfgPath)
	return nil
}

// createLogger writes JSON logs to the data directory. The level comes from
// the config unless --debug is set.
func createLogger(paths *infra.Paths, level string) *zap.Logger {
	config := zap.NewProductionConfig()
	config.OutputPaths = []string{paths.LogPath}
	config.ErrorOutputPaths = []string{paths.ErrorLogPath}
	config.EncoderConfig.TimeKey = "time"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	if lvl, err := zap.ParseAtomicLevel(level); err == nil {
		config.Level = lvl
	}
	if debug {
		config.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}

	logger, err := config.Build()
	if err != nil {
		// Fallback to stderr if file logging fails
		logger, _ = zap.NewProduction()
	}
	return logger
}

// createCLILogger logs warnings to stderr for one-shot commands.
func createCLILogger() *zap.Logger {
	config := zap.NewDevelopmentConfig()
	config.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	if debug {
		config.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	logger, err := config.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

func runVersion(cmd *cobra.Command, args []string) {
	if jsonOutput {
		fmt.Printf(`{"version":"%s","commit":"%s","build_time":"%s"}`+"\n",
			Version, Commit, BuildTime)
	} else {
		fmt.Printf("padshell %s (commit: %s, built: %s)\n",
			Version, Commit, BuildTime)
	}
}
