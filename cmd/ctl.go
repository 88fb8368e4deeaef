package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/smazurov/blinkd/internal/logging"
)

const readPageSize = 64

// CreateCtlCmd creates the ctl command, a client for a running server.
func CreateCtlCmd() *cobra.Command {
	var (
		addr     string
		username string
		password string
		timeout  time.Duration
	)

	newClient := func() *Client {
		logging.Initialize(logging.Config{Level: "warn", Format: "text"})
		if username == "" {
			username = os.Getenv("BLINKD_AUTH_USERNAME")
		}
		if password == "" {
			password = os.Getenv("BLINKD_AUTH_PASSWORD")
		}
		return NewClient(addr, username, password, logging.GetLogger("ctl"))
	}

	cmd := &cobra.Command{
		Use:   "ctl",
		Short: "Control a running blinkd",
		Long:  `Writes commands to and reads status from a running blinkd server over its HTTP API.`,
	}
	cmd.PersistentFlags().StringVarP(&addr, "addr", "a", "localhost:8090", "Server address")
	cmd.PersistentFlags().StringVarP(&username, "username", "u", "", "Basic auth username (default $BLINKD_AUTH_USERNAME)")
	cmd.PersistentFlags().StringVar(&password, "password", "", "Basic auth password (default $BLINKD_AUTH_PASSWORD)")
	cmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")

	cmd.AddCommand(&cobra.Command{
		Use:   "write <command>",
		Short: "Write a command: start, stop, freq <n>, on, off",
		Example: `  blinkd ctl write start
  blinkd ctl write freq 5`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(c.Context(), timeout)
			defer cancel()

			n, err := newClient().Write(ctx, strings.Join(args, " "))
			if err != nil {
				return err
			}
			fmt.Fprintf(c.OutOrStdout(), "wrote %d bytes\n", n)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "read",
		Short: "Print the device status text",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			ctx, cancel := context.WithTimeout(c.Context(), timeout)
			defer cancel()

			text, err := newClient().ReadStatus(ctx, readPageSize)
			if err != nil {
				return err
			}
			_, err = c.OutOrStdout().Write(text)
			return err
		},
	})

	return cmd
}
