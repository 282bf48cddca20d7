package device

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"possync/cmd/client/cmd/types"
	"possync/internal/app/client"
)

var LoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authenticate this till",
	Long: `Exchanges the fleet API key for a time-limited access token.

The key can be set via the API_KEY environment variable; otherwise it is
prompted for. The token is held in memory only.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, ok := cmd.Context().Value(types.ClientAppKey).(*client.App)
		if !ok {
			return fmt.Errorf("agent not initialized")
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()

		fmt.Print("API key: ")
		key, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err != nil {
			return fmt.Errorf("read api key: %w", err)
		}
		fmt.Println()

		if len(key) > 0 {
			err = app.AuthenticateWithKey(ctx, string(key))
		} else {
			err = app.Authenticate(ctx)
		}
		if err != nil {
			return fmt.Errorf("authentication failed: %w", err)
		}

		fmt.Printf("Device %s authenticated.\n", app.DeviceID())
		return nil
	},
}
