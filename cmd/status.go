package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// statusCmd reports the drive state and disc type.
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show drive status and disc type",
	Long: `Initialize the drive and show its mechanical state, the disc type and
the sector layout the drive delivers.

Example:
  gdtools status -d disc.yaml`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		processor, err := openDrive(cmd)
		if err != nil {
			return err
		}
		defer processor.Close()

		report, err := processor.Status(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to query drive: %w", err)
		}
		printStatus(cmd.OutOrStdout(), report)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
