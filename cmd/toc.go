package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// tocCmd reads the table of contents of a session.
var tocCmd = &cobra.Command{
	Use:   "toc [output_file]",
	Short: "Read the table of contents",
	Long: `Read the table of contents of a session.

Without an output file the TOC is printed. With one, it is written as YAML
with one entry per track (number, type, control, ADR, LBA and MSF) plus the
lead-out and the data track address.

Flags:
  --session   Session to read (default from configuration)
  --binary    Also write the raw TOC words to this file

Examples:
  gdtools toc -d disc.yaml
  gdtools toc -d disc.yaml --session 1 toc.yaml
  gdtools toc -d disc.yaml --binary toc.bin toc.yaml`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		processor, err := openDrive(cmd)
		if err != nil {
			return err
		}
		defer processor.Close()

		session, err := cmd.Flags().GetInt("session")
		if err != nil {
			return fmt.Errorf("error getting session flag: %w", err)
		}
		if session < 0 {
			session = processor.Config().Drive.Session
		}
		binary, err := cmd.Flags().GetString("binary")
		if err != nil {
			return fmt.Errorf("error getting binary flag: %w", err)
		}

		toc, report, err := processor.ReadTOC(cmd.Context(), session)
		if err != nil {
			return err
		}

		if binary != "" {
			if err := processor.ExportTOCDump(toc, binary); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Raw TOC written to: %s\n", binary)
		}
		if len(args) == 0 {
			printTOC(cmd.OutOrStdout(), report)
			return nil
		}
		if err := processor.ExportTOCFile(report, args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "TOC written to: %s\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(tocCmd)

	tocCmd.Flags().Int("session", -1, "Session to read")
	tocCmd.Flags().String("binary", "", "Write the raw TOC words to this file")
}
