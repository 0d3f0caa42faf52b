package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flags for the status command
var (
	statusOwnerID uint
)

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show pending transaction counts for an owner",
	Long: `Status reports how many ingested transactions are still waiting for
downstream processing (categorization, budgeting) for the given owner.

Examples:
  ingestor status --owner 1
  ingestor status --owner 1 --db finance.db`,

	PreRunE: validateStatusFlags,
	RunE:    runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().UintVar(&statusOwnerID, "owner", 0, "owning user id (required)")
	statusCmd.MarkFlagRequired("owner")
}

func validateStatusFlags(cmd *cobra.Command, args []string) error {
	return validateOwnerFlag(statusOwnerID)
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	st, err := openStore()
	if err != nil {
		return fmt.Errorf("failed to open transaction store: %w", err)
	}

	count, err := st.UnprocessedCount(ctx, statusOwnerID)
	if err != nil {
		handler := NewCLIErrorHandler()
		os.Exit(handler.HandleError(err))
	}

	if viper.GetBool("verbose") {
		fmt.Fprintf(os.Stderr, "Database: %s\n", viper.GetString("db"))
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Owner %d: %d unprocessed transactions\n", statusOwnerID, count)
	return nil
}
