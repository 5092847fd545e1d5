package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// reinitCmd re-initializes the drive and shows the resulting sector layout.
var reinitCmd = &cobra.Command{
	Use:   "reinit",
	Short: "Re-initialize the drive",
	Long: `Re-initialize the drive and show the sector layout it settled on.

Without --sector-size the drive picks the layout from the disc type:
CD-XA mode 2 for CD-ROM XA discs, mode 1 otherwise, 2048 byte sectors.

Examples:
  gdtools reinit -d disc.yaml
  gdtools reinit -d disc.yaml --sector-size 2352`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		sectorSize, err := cmd.Flags().GetInt("sector-size")
		if err != nil {
			return fmt.Errorf("error getting sector-size flag: %w", err)
		}

		processor, err := openDrive(cmd)
		if err != nil {
			return err
		}
		defer processor.Close()

		if err := processor.Reinit(cmd.Context(), sectorSize); err != nil {
			return err
		}
		report, err := processor.Status(cmd.Context())
		if err != nil {
			return err
		}
		printStatus(cmd.OutOrStdout(), report)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reinitCmd)

	reinitCmd.Flags().Int("sector-size", 0, "Sector size: 2048, 2336 or 2352 (0 = drive default)")
}
