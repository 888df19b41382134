package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"websocket-client/internal/client"
)

func newConnectCmd(opts *rootOptions) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "connect",
		Short: "Interactive WebSocket session",
		Long: `Connect to the server and start an interactive session.
Every line typed is sent as a text frame. Received messages are printed.
Ctrl+C to exit.`,
		Example: `  # Connect to a local server
  wsc connect --host 127.0.0.1 --port 9001

  # Print messages as JSON lines
  wsc connect -p 9001 --path /chat --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.load(cmd)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			out := cmd.OutOrStdout()
			c := client.New(client.Config{
				Host:      cfg.Host,
				Port:      cfg.Port,
				Options:   cfg.Options,
				OnMessage: func(p []byte) { printMessage(out, "text", p, jsonOutput) },
				OnBinary:  func(p []byte) { printMessage(out, "binary", p, jsonOutput) },
				Logger:    newLogger(cfg, cmd.ErrOrStderr()),
			})
			defer c.Close()

			fmt.Fprintf(out, "Connecting to %s:%d%s...\n", cfg.Host, cfg.Port, cfg.Path)
			if err := c.Open(ctx); err != nil {
				return err
			}
			if err := c.Handshake(ctx, cfg.Path); err != nil {
				return err
			}
			fmt.Fprintln(out, "Connected. Type messages and press Enter to send. Ctrl+C to exit.")

			err = c.Run(ctx, cmd.InOrStdin())
			switch {
			case errors.Is(err, context.Canceled):
				fmt.Fprintln(out, "\nDisconnecting...")
				return nil
			case err != nil:
				return err
			}
			fmt.Fprintln(out, "Connection closed by server")
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output messages in JSON format")
	return cmd
}

func printMessage(w io.Writer, kind string, p []byte, asJSON bool) {
	if asJSON {
		output := map[string]any{
			"type":      kind,
			"data":      string(p),
			"timestamp": time.Now().Format(time.RFC3339),
		}
		if err := json.NewEncoder(w).Encode(output); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to encode output: %v\n", err)
		}
		return
	}
	if kind == "binary" {
		fmt.Fprintf(w, "< [%d bytes] %x\n", len(p), p)
		return
	}
	fmt.Fprintf(w, "< %s\n", p)
}
