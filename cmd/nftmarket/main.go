// Command nftmarket is a terminal client for the NFT marketplace backend:
// browse collections, like NFTs, manage the cart, pay and edit the profile.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"nftmarket/internal/config"
)

const (
	Version = "0.1.0"
	appName = "nftmarket"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:           appName,
		Short:         "NFT marketplace client",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.close()
		},
	}

	cmd.PersistentFlags().StringP("config", "c", os.Getenv(config.ConfigPathEnv), "Config file path (YAML)")
	cmd.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error)")

	cmd.AddCommand(
		catalogCmd(a),
		collectionCmd(a),
		likeCmd(a),
		cartToggleCmd(a),
		cartCmd(a),
		payCmd(a),
		profileCmd(a),
		tokenCmd(a),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",

			// Needs no config or backend.
			PersistentPreRunE:  func(*cobra.Command, []string) error { return nil },
			PersistentPostRunE: func(*cobra.Command, []string) error { return nil },

			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s version %s\n", appName, Version)
			},
		},
	)
	return cmd
}
