package stock

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"possync/cmd/client/cmd/types"
	"possync/internal/app/client"
)

var LevelsCmd = &cobra.Command{
	Use:   "levels",
	Short: "Show current stock levels",
	Long:  `Replays the local movement log and prints the quantity per product.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, ok := cmd.Context().Value(types.ClientAppKey).(*client.App)
		if !ok {
			return fmt.Errorf("agent not initialized")
		}

		levels, err := app.StockLevels()
		if err != nil {
			return fmt.Errorf("replay stock levels: %w", err)
		}
		if len(levels) == 0 {
			fmt.Println("No stock movements recorded.")
			return nil
		}

		// Name products where the catalog copy has them.
		names := make(map[string]string)
		if products, err := app.Products(); err == nil {
			for _, p := range products {
				names[p.ID.String()] = p.Name
			}
		}

		ids := make([]string, 0, len(levels))
		byID := make(map[string]int, len(levels))
		for id, qty := range levels {
			ids = append(ids, id.String())
			byID[id.String()] = qty
		}
		sort.Strings(ids)

		for _, id := range ids {
			name := names[id]
			if name == "" {
				name = "(unknown product)"
			}
			fmt.Printf("%-36s  %-30s %6d\n", id, name, byID[id])
		}
		return nil
	},
}
