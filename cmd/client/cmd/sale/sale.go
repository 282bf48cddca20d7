package sale

import (
	"github.com/spf13/cobra"
)

// SaleCmd is the parent command for checkout operations.
var SaleCmd = &cobra.Command{
	Use:   "sale",
	Short: "Record sales",
	Long: `Record sales on this till.

Sales are committed to the local store first and uploaded by the sync
engine when the server is reachable. The till never blocks on the network.`,
}
