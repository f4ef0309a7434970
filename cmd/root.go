package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/productdevbook/port-kill/internal/app"
	"github.com/productdevbook/port-kill/internal/config"
	"github.com/productdevbook/port-kill/internal/killer"
	"github.com/productdevbook/port-kill/internal/logging"
	"github.com/productdevbook/port-kill/internal/monitor"
)

var (
	version = "0.1.0"
	opts    = config.DefaultOptions()
)

var rootCmd = &cobra.Command{
	Use:   "port-kill",
	Short: "Monitor and kill development processes on local ports",
	Long: `port-kill watches a range of local TCP ports and lets you kill the
processes listening on them, one at a time or all at once.

Runs an interactive menu when attached to a terminal, or prints every
change with --console.`,
	SilenceUsage: true,
	RunE:         runMonitor,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.Uint16VarP(&opts.StartPort, "start-port", "s", opts.StartPort, "Starting port for range scanning")
	pf.Uint16VarP(&opts.EndPort, "end-port", "e", opts.EndPort, "Ending port for range scanning")
	pf.UintSliceVarP(&opts.Ports, "ports", "p", nil, "Specific ports to monitor, overrides the range (e.g. 3000,8000,8080)")
	pf.UintSliceVar(&opts.IgnorePorts, "ignore-ports", nil, "Ports to ignore (e.g. 5353,5000,7000)")
	pf.StringSliceVar(&opts.IgnoreProcesses, "ignore-processes", nil, "Process names to ignore (e.g. Chrome,ControlCe)")
	pf.BoolVarP(&opts.Docker, "docker", "d", false, "Enable Docker container awareness")
	pf.BoolVarP(&opts.ShowPID, "show-pid", "P", false, "Show process IDs")
	pf.BoolVarP(&opts.Verbose, "verbose", "v", false, "Enable debug logging")
	pf.StringVar(&opts.LogLevel, "log-level", opts.LogLevel, "Log level: info, warn, error or none")
	pf.StringVar(&opts.LogFile, "log-file", "", "Write logs to this file instead of stderr")
	pf.BoolVar(&opts.JSON, "json", false, "Output in JSON format")

	rootCmd.Flags().BoolVarP(&opts.Console, "console", "c", false, "Print updates to the console instead of the interactive menu")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(killCmd)
	rootCmd.AddCommand(ignoreCmd)
	rootCmd.Version = version
}

// session validates the flags and builds a monitoring session. quiet keeps
// logs off the terminal unless a log file was given.
func session(cmd *cobra.Command, interval time.Duration, quiet bool, engineOpts ...killer.Option) (*app.Session, *zap.Logger, func(), error) {
	opts.PortsSet = opts.PortsSet || cmd.Flags().Changed("ports")
	if err := opts.Validate(); err != nil {
		return nil, nil, nil, err
	}

	log, closeLog, err := logging.New(logging.Options{
		Level:   opts.LogLevel,
		Verbose: opts.Verbose,
		File:    opts.LogFile,
		Quiet:   quiet,
	})
	if err != nil {
		return nil, nil, nil, err
	}

	cfg, err := config.NewStore().Load()
	if err != nil {
		log.Warn("failed to load preferences, using command line ignore lists only", zap.Error(err))
		cfg = &config.Config{}
	}

	log.Info("port-kill starting",
		zap.String("version", version),
		zap.String("monitoring", opts.Description()),
		zap.Int("ports", len(opts.PortsToMonitor())),
		zap.Bool("docker", opts.Docker))

	return app.NewSession(opts, cfg.Ignore(), interval, log, engineOpts...), log, closeLog, nil
}

func runMonitor(cmd *cobra.Command, args []string) error {
	interactive := !opts.Console && !opts.JSON && isatty.IsTerminal(os.Stdout.Fd())

	interval := monitor.ConsoleInterval
	if interactive {
		interval = monitor.InteractiveInterval
	}

	s, log, closeLog, err := session(cmd, interval, interactive)
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if interactive {
		err = app.RunInteractive(ctx, s)
	} else {
		err = app.RunConsole(ctx, s, cmd.OutOrStdout())
	}
	if err != nil {
		return fmt.Errorf("monitor: %w", err)
	}
	log.Info("port-kill stopped")
	return nil
}
