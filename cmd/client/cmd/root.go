package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/exp/slog"

	"possync/cmd/client/cmd/types"
	"possync/internal/app/client"
	"possync/internal/app/client/config"
	"possync/internal/utils/logger"
)

var (
	cfg *config.Config
	log *slog.Logger
	app *client.App

	serverAddress string
	deviceID      string
)

var rootCmd = &cobra.Command{
	Use:   "possync",
	Short: "possync - offline-first till agent",
	Long: `possync is the till-side agent of the store sync system.

Sales and stock movements are always recorded locally first, so the till
keeps selling with no connection. A background engine uploads pending
records and pulls catalog updates whenever the authority server is
reachable.`,
	PersistentPreRunE: setupApp,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func setupApp(cmd *cobra.Command, _ []string) error {
	cfg = config.MustLoad()

	if serverAddress != "" {
		cfg.ServerAddress = serverAddress
	}
	if deviceID != "" {
		cfg.DeviceID = deviceID
	}

	log = logger.New(cfg.Env)

	var err error
	app, err = client.New(cfg, log)
	if err != nil {
		return fmt.Errorf("initialize agent: %w", err)
	}

	cmd.SetContext(context.WithValue(cmd.Context(), types.ClientAppKey, app))
	return nil
}

func init() {
	cobra.OnInitialize()

	rootCmd.PersistentFlags().StringVar(&serverAddress, "server", "", "authority server address")
	rootCmd.PersistentFlags().StringVar(&deviceID, "device", "", "device identifier override")
}
