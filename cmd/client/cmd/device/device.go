package device

import (
	"github.com/spf13/cobra"
)

// DeviceCmd is the parent command for device identity operations.
var DeviceCmd = &cobra.Command{
	Use:   "device",
	Short: "Device registration and authentication",
	Long:  `Register this till with the authority server and obtain access credentials.`,
}
