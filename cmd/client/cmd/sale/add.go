package sale

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"possync/cmd/client/cmd/types"
	"possync/internal/app/client"
	"possync/internal/domain/sale"
)

var invoiceNo string

var AddCmd = &cobra.Command{
	Use:   "add <product-id>:<qty>:<unit-price> [...]",
	Short: "Record a sale",
	Long: `Records a completed checkout. Each argument is one line in the form
product-id:quantity:unit-price, with the price in minor currency units.

Example:
  possync sale add --invoice INV-0042 6f1c…:2:250 9a3e…:1:1299`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, ok := cmd.Context().Value(types.ClientAppKey).(*client.App)
		if !ok {
			return fmt.Errorf("agent not initialized")
		}
		if invoiceNo == "" {
			return fmt.Errorf("--invoice is required")
		}

		items, err := parseItems(args)
		if err != nil {
			return err
		}

		sl, err := app.RecordSale(invoiceNo, items)
		if err != nil {
			return fmt.Errorf("record sale: %w", err)
		}

		fmt.Printf("Sale %s recorded: %d item(s), total %d.\n", sl.InvoiceNo, len(sl.Items), sl.Total)
		fmt.Println("It will be uploaded on the next sync cycle.")
		return nil
	},
}

func parseItems(args []string) ([]sale.Item, error) {
	var items []sale.Item
	for _, arg := range args {
		parts := strings.Split(arg, ":")
		if len(parts) != 3 {
			return nil, fmt.Errorf("invalid item %q, expected product-id:quantity:unit-price", arg)
		}

		productID, err := uuid.Parse(parts[0])
		if err != nil {
			return nil, fmt.Errorf("invalid product id %q: %w", parts[0], err)
		}
		qty, err := strconv.Atoi(parts[1])
		if err != nil || qty <= 0 {
			return nil, fmt.Errorf("invalid quantity %q", parts[1])
		}
		price, err := strconv.ParseInt(parts[2], 10, 64)
		if err != nil || price < 0 {
			return nil, fmt.Errorf("invalid unit price %q", parts[2])
		}

		items = append(items, sale.Item{
			ProductID: productID,
			Quantity:  qty,
			UnitPrice: price,
		})
	}
	return items, nil
}

func init() {
	AddCmd.Flags().StringVarP(&invoiceNo, "invoice", "i", "", "invoice number (unique per till)")
}
