package sync

import (
	"context"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"possync/cmd/client/cmd/types"
	"possync/internal/app/client"
)

var (
	showStatus bool
	showLog    bool
	watch      bool
)

var SyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run or inspect synchronization",
	Long: `Synchronize this till with the authority server.

Without flags runs a single sync cycle. With --watch the agent keeps
running, syncing periodically and whenever connectivity comes back.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, ok := cmd.Context().Value(types.ClientAppKey).(*client.App)
		if !ok {
			return fmt.Errorf("agent not initialized")
		}

		if showStatus {
			return printStatus(cmd.Context(), app)
		}
		if showLog {
			return printTransactionLog(app)
		}
		if watch {
			fmt.Println("Sync agent running. Ctrl+C to stop.")
			app.Run(cmd.Context())
			return nil
		}
		return runOnce(cmd.Context(), app)
	},
}

func runOnce(ctx context.Context, app *client.App) error {
	fmt.Println("Starting sync cycle...")

	result, err := app.SyncOnce(ctx)
	if err != nil {
		return fmt.Errorf("sync: %w", err)
	}

	if result.Success {
		color.Green("Sync complete in %v", result.Duration.Round(time.Millisecond))
	} else {
		color.Red("Sync finished with errors")
		for _, msg := range result.Errors {
			fmt.Printf("  - %s\n", msg)
		}
	}

	fmt.Printf("Uploaded:           %d\n", result.Uploaded)
	fmt.Printf("Downloaded:         %d\n", result.Downloaded)
	fmt.Printf("Conflicts resolved: %d\n", result.ConflictsResolved)
	return nil
}

func printStatus(ctx context.Context, app *client.App) error {
	bold := color.New(color.Bold)
	bold.Println("Sync status")

	probeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	fmt.Printf("  Server:    ")
	if err := app.CheckConnection(probeCtx); err != nil {
		color.Red("offline (%v)", err)
	} else {
		color.Green("reachable")
	}

	pendingSales, pendingMovements, err := app.PendingCounts()
	if err != nil {
		return fmt.Errorf("count pending records: %w", err)
	}
	fmt.Printf("  Pending:   %d sale(s), %d movement(s)\n", pendingSales, pendingMovements)

	cursor, err := app.Cursor()
	if err != nil {
		return fmt.Errorf("read cursor: %w", err)
	}
	if cursor.LastSyncTimestamp.IsZero() {
		fmt.Println("  Cursor:    never synced")
	} else {
		fmt.Printf("  Cursor:    %s\n", cursor.LastSyncTimestamp.Format(time.RFC3339))
	}

	stats, err := app.Stats()
	if err != nil {
		return fmt.Errorf("read stats: %w", err)
	}
	bold.Println("Totals")
	fmt.Printf("  Cycles:              %d\n", stats.TotalSyncs)
	fmt.Printf("  Uploaded:            %d\n", stats.TotalUploaded)
	fmt.Printf("  Downloaded:          %d\n", stats.TotalDownloaded)
	fmt.Printf("  Conflicts resolved:  %d\n", stats.TotalConflictsResolved)
	if !stats.LastSuccessful.IsZero() {
		fmt.Printf("  Last success:        %s\n", stats.LastSuccessful.Format("2006-01-02 15:04:05"))
	}
	if !stats.LastFailed.IsZero() {
		fmt.Printf("  Last failure:        %s\n", stats.LastFailed.Format("2006-01-02 15:04:05"))
	}
	return nil
}

func printTransactionLog(app *client.App) error {
	entries, err := app.TransactionLog(50)
	if err != nil {
		return fmt.Errorf("read transaction log: %w", err)
	}
	if len(entries) == 0 {
		fmt.Println("Transaction log is empty.")
		return nil
	}

	for _, e := range entries {
		fmt.Printf("%s  %-6s %-14s %s\n",
			e.LoggedAt.Format("2006-01-02 15:04:05"), e.Op, e.EntityType, e.EntityID)
	}
	return nil
}

func init() {
	SyncCmd.Flags().BoolVar(&showStatus, "status", false, "show sync status instead of syncing")
	SyncCmd.Flags().BoolVar(&showLog, "log", false, "show recent transaction log entries")
	SyncCmd.Flags().BoolVarP(&watch, "watch", "w", false, "keep running and sync periodically")
}
