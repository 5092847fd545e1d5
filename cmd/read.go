package cmd

import (
	"fmt"

	"github.com/hansbonini/gdtools/pkg/gdrom"
	"github.com/spf13/cobra"
)

// readCmd dumps sectors to a file.
var readCmd = &cobra.Command{
	Use:   "read [output_file]",
	Short: "Dump sectors to a file",
	Long: `Read sectors from the disc and write them to a file.

The sector layout follows the drive's data type: 2048 byte user data by
default, 2336 or 2352 bytes with --sector-size (or drive.sector_size in
the configuration).

Flags:
  --lba          First sector (default: start of the data track)
  --count        Number of sectors
  --mode         Transfer mode, pio or dma
  --sector-size  Reinitialize with this sector size first

Examples:
  gdtools read -d disc.yaml --count 16 data.bin
  gdtools read -d disc.yaml --lba 45000 --count 1 --sector-size 2352 raw.bin
  gdtools read -d disc.yaml --mode dma --count 256 data.bin`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		outputFile := args[0]

		lba, err := cmd.Flags().GetInt("lba")
		if err != nil {
			return fmt.Errorf("error getting lba flag: %w", err)
		}
		count, err := cmd.Flags().GetInt("count")
		if err != nil {
			return fmt.Errorf("error getting count flag: %w", err)
		}
		mode, err := cmd.Flags().GetString("mode")
		if err != nil {
			return fmt.Errorf("error getting mode flag: %w", err)
		}
		sectorSize, err := cmd.Flags().GetInt("sector-size")
		if err != nil {
			return fmt.Errorf("error getting sector-size flag: %w", err)
		}

		processor, err := openDrive(cmd)
		if err != nil {
			return err
		}
		defer processor.Close()

		if mode != "" {
			if _, err := gdrom.ParseReadMode(mode); err != nil {
				return err
			}
			processor.Config().Drive.ReadMode = mode
		}
		if sectorSize != 0 {
			if err := processor.Reinit(cmd.Context(), sectorSize); err != nil {
				return err
			}
		}

		if err := processor.Dump(cmd.Context(), lba, count, outputFile); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d sectors written to: %s\n", count, outputFile)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(readCmd)

	readCmd.Flags().Int("lba", -1, "First sector to read (-1 = data track)")
	readCmd.Flags().Int("count", 1, "Number of sectors to read")
	readCmd.Flags().String("mode", "", "Transfer mode: pio or dma")
	readCmd.Flags().Int("sector-size", 0, "Sector size: 2048, 2336 or 2352")
}
