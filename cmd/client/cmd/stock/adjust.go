package stock

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"possync/cmd/client/cmd/types"
	"possync/internal/app/client"
	"possync/internal/domain/stock"
)

var (
	delta    int
	kind     string
	reason   string
	delivery bool
)

var AdjustCmd = &cobra.Command{
	Use:   "adjust <product-id>",
	Short: "Record a stock movement",
	Long: `Records a signed stock delta for a product: a delivery, a correction
after a count, or a write-off.

Example:
  possync stock adjust 6f1c… --delta 24 --delivery
  possync stock adjust 6f1c… --delta -2 --reason "breakage"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, ok := cmd.Context().Value(types.ClientAppKey).(*client.App)
		if !ok {
			return fmt.Errorf("agent not initialized")
		}
		if delta == 0 {
			return fmt.Errorf("--delta must be non-zero")
		}

		productID, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid product id: %w", err)
		}

		movementKind := stock.KindAdjustment
		if delivery {
			movementKind = stock.KindDelivery
		}
		if kind != "" {
			movementKind = stock.Kind(kind)
		}

		mv, err := app.AdjustStock(productID, movementKind, delta, reason)
		if err != nil {
			return fmt.Errorf("record movement: %w", err)
		}

		fmt.Printf("Movement recorded: %s %+d (%s).\n", mv.ProductID, mv.Delta, mv.Kind)
		return nil
	},
}

func init() {
	AdjustCmd.Flags().IntVarP(&delta, "delta", "d", 0, "signed quantity change")
	AdjustCmd.Flags().StringVar(&kind, "kind", "", "movement kind (sale, delivery, adjustment)")
	AdjustCmd.Flags().StringVarP(&reason, "reason", "r", "", "free-form reason")
	AdjustCmd.Flags().BoolVar(&delivery, "delivery", false, "shorthand for --kind delivery")
}
