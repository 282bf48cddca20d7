package stock

import (
	"github.com/spf13/cobra"
)

// StockCmd is the parent command for stock operations.
var StockCmd = &cobra.Command{
	Use:   "stock",
	Short: "Stock movements and levels",
	Long: `Record stock movements and inspect current levels.

Quantities are never stored as absolutes: the current level is always
replayed from the movement log, so tills can merge each other's deltas.`,
}
