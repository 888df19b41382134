package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"websocket-client/internal/config"
	"websocket-client/pkg/logging"
)

var (
	// Version is injected during build
	Version = "dev"
	// Commit is injected during build
	Commit = "none"
	// BuildDate is injected during build
	BuildDate = "unknown"
)

// rootOptions holds the persistent flags shared by all subcommands
type rootOptions struct {
	configPath     string
	host           string
	port           int
	path           string
	logLevel       string
	logFormat      string
	connectTimeout time.Duration
	receiveTimeout time.Duration
	sendTimeout    time.Duration
	noKeepAlive    bool
	verifyAccept   bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	defaults := config.Default()

	cmd := &cobra.Command{
		Use:   "wsc",
		Short: "wsc is a minimal WebSocket client",
		Long: `wsc connects to a WebSocket server given as an IPv4 address and port,
performs the HTTP Upgrade handshake and exchanges text frames.

Configuration can be provided via flags or a YAML file (--config).
Flags take precedence over values from the file.`,
		SilenceUsage:  true,
		SilenceErrors: true, // Execute prints the error
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.configPath, "config", "c", "", "Path to a YAML configuration file")
	pf.StringVar(&opts.host, "host", defaults.Host, "Server IPv4 address")
	pf.IntVarP(&opts.port, "port", "p", defaults.Port, "Server port")
	pf.StringVar(&opts.path, "path", defaults.Path, "Request path of the upgrade request")
	pf.StringVar(&opts.logLevel, "log-level", defaults.Log.Level, "Log level (debug, info, warn, error)")
	pf.StringVar(&opts.logFormat, "log-format", defaults.Log.Format, "Log format (text, json)")
	pf.DurationVar(&opts.connectTimeout, "connect-timeout", 0, "TCP connect timeout (0 waits indefinitely)")
	pf.DurationVar(&opts.receiveTimeout, "receive-timeout", 0, "Timeout for each socket read (0 waits indefinitely)")
	pf.DurationVar(&opts.sendTimeout, "send-timeout", 0, "Timeout for each socket write (0 waits indefinitely)")
	pf.BoolVar(&opts.noKeepAlive, "no-keep-alive", false, "Disable TCP keep-alive")
	pf.BoolVar(&opts.verifyAccept, "verify-accept", false, "Verify the Sec-WebSocket-Accept response header")

	cmd.AddCommand(newConnectCmd(opts))
	cmd.AddCommand(newProbeCmd(opts))
	cmd.AddCommand(newVersionCmd())
	return cmd
}

// Execute runs the root command. This is called by main.main().
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// load reads the configuration file, if any, and applies the flags the user
// set explicitly on top of it
func (o *rootOptions) load(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.Default()
	if o.configPath != "" {
		loaded, err := config.Load(o.configPath)
		if err != nil {
			return nil, err
		}
		cfg = *loaded
	}

	flags := cmd.Flags()
	if flags.Changed("host") {
		cfg.Host = o.host
	}
	if flags.Changed("port") {
		cfg.Port = o.port
	}
	if flags.Changed("path") {
		cfg.Path = o.path
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = o.logLevel
	}
	if flags.Changed("log-format") {
		cfg.Log.Format = o.logFormat
	}
	if flags.Changed("connect-timeout") {
		cfg.Options.ConnectTimeout = o.connectTimeout
	}
	if flags.Changed("receive-timeout") {
		cfg.Options.ReceiveTimeout = o.receiveTimeout
	}
	if flags.Changed("send-timeout") {
		cfg.Options.SendTimeout = o.sendTimeout
	}
	if flags.Changed("no-keep-alive") {
		cfg.Options.KeepAlive = !o.noKeepAlive
	}
	if flags.Changed("verify-accept") {
		cfg.Options.VerifyAccept = o.verifyAccept
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func newLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	logCfg := cfg.Logging()
	logCfg.Output = w
	return logging.New(logCfg)
}
