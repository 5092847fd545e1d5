package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// subcodeCmd reads subchannel data.
var subcodeCmd = &cobra.Command{
	Use:   "subcode [q|all|catalog|isrc]",
	Short: "Read subchannel data",
	Long: `Read subchannel data at the current position.

Channels:
  q        Q channel position (default)
  all      Raw P-W subchannel, decoded from the Q bits
  catalog  Media catalog number
  isrc     ISRC of the current track

Examples:
  gdtools subcode -d disc.yaml
  gdtools subcode -d disc.yaml catalog`,
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"q", "all", "catalog", "isrc"},
	RunE: func(cmd *cobra.Command, args []string) error {
		name := "q"
		if len(args) == 1 {
			name = args[0]
		}
		which, err := parseSubcode(name)
		if err != nil {
			return err
		}

		processor, err := openDrive(cmd)
		if err != nil {
			return err
		}
		defer processor.Close()

		report, err := processor.Subcode(cmd.Context(), which)
		if err != nil {
			return fmt.Errorf("failed to read %s subcode: %w", name, err)
		}
		printSubcode(cmd.OutOrStdout(), report)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(subcodeCmd)
}
