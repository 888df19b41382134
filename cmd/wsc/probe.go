package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"websocket-client/internal/client"
	"websocket-client/pkg/protocol"
)

func newProbeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "probe",
		Short: "Check that the server accepts a connection and the upgrade",
		Long: `Open a connection, perform the handshake and close again.
Prints PASS or FAIL for each step and fails if any step fails.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.load(cmd)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			c := client.New(client.Config{
				Host:    cfg.Host,
				Port:    cfg.Port,
				Options: cfg.Options,
				Logger:  newLogger(cfg, cmd.ErrOrStderr()),
			})
			defer c.Close()

			if err := c.Open(cmd.Context()); err != nil {
				fmt.Fprintln(out, "init: FAIL")
				return err
			}
			fmt.Fprintln(out, "init: PASS")

			if err := c.Handshake(cmd.Context(), cfg.Path); err != nil {
				fmt.Fprintln(out, "handshake: FAIL")
				return err
			}
			fmt.Fprintln(out, "handshake: PASS")

			// Best effort; the connection is torn down either way
			_ = c.CloseHandshake(protocol.StatusNormalClosure, "")
			return nil
		},
	}
}
