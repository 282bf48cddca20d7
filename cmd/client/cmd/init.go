package cmd

import (
	"possync/cmd/client/cmd/device"
	"possync/cmd/client/cmd/sale"
	"possync/cmd/client/cmd/stock"
	"possync/cmd/client/cmd/sync"
)

func init() {
	rootCmd.AddCommand(device.DeviceCmd)
	device.DeviceCmd.AddCommand(device.RegisterCmd)
	device.DeviceCmd.AddCommand(device.LoginCmd)

	rootCmd.AddCommand(sale.SaleCmd)
	sale.SaleCmd.AddCommand(sale.AddCmd)

	rootCmd.AddCommand(stock.StockCmd)
	stock.StockCmd.AddCommand(stock.AdjustCmd)
	stock.StockCmd.AddCommand(stock.LevelsCmd)

	rootCmd.AddCommand(sync.SyncCmd)
}
