package device

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"possync/cmd/client/cmd/types"
	"possync/internal/app/client"
)

var RegisterCmd = &cobra.Command{
	Use:   "register",
	Short: "Register this till with the server",
	Long: `Announces the till identity to the authority server.

Registration is public and idempotent: running it again refreshes the
device name without losing any history.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, ok := cmd.Context().Value(types.ClientAppKey).(*client.App)
		if !ok {
			return fmt.Errorf("agent not initialized")
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()

		if err := app.Register(ctx); err != nil {
			return fmt.Errorf("registration failed: %w", err)
		}

		fmt.Printf("Device %s registered.\n", app.DeviceID())
		fmt.Println("Next: possync device login")
		return nil
	},
}
