// Package cmd provides the command-line interface for gdtools.
// gdtools drives a GD-ROM/CD-ROM controller through the gdrom driver; the
// controller is simulated from a YAML disc description.
package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/hansbonini/gdtools/pkg"
	"github.com/hansbonini/gdtools/pkg/common"
	"github.com/hansbonini/gdtools/pkg/config"
	"github.com/hansbonini/gdtools/pkg/gdrom"
	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "gdtools",
	Short: "Drive a GD-ROM/CD-ROM controller",
	Long: `gdtools - a driver and toolbox for GD-ROM/CD-ROM drives.

Every command initializes the drive, runs and exits. Use the shell command
to keep one drive session open across commands.

Currently supports:
  - Drive status and disc type
  - Table of contents (YAML or raw dump)
  - Sector dumps (PIO or DMA, 2048/2336/2352 byte sectors)
  - Subchannel Q, media catalog and ISRC
  - CDDA playback control

Examples:
  gdtools status -d disc.yaml
  gdtools toc -d disc.yaml toc.yaml
  gdtools read -d disc.yaml --count 16 data.bin
  gdtools subcode -d disc.yaml catalog
  gdtools cdda play -d disc.yaml 1 2
  gdtools shell -c gdtools.yaml

Use 'gdtools [command] --help' for more information about a command.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main() and serves as the entry point for command execution.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(exitCode(err))
	}
}

// exitDriveBase offsets driver status codes so they never collide with the
// generic failure status 1.
const exitDriveBase = 10

// exitCode maps a command error to a process exit status. Driver errors
// exit with exitDriveBase plus their status code; a busy bus lock exits
// with exitDriveBase plus six. Anything else exits with 1.
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, gdrom.ErrLockBusy):
		return exitDriveBase + 6
	case errors.Is(err, gdrom.ErrNoDisc),
		errors.Is(err, gdrom.ErrDiscChanged),
		errors.Is(err, gdrom.ErrSystem),
		errors.Is(err, gdrom.ErrAborted),
		errors.Is(err, gdrom.ErrNoActiveRequest):
		return exitDriveBase + gdrom.ErrorCode(err)
	default:
		return 1
	}
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "Configuration file (YAML)")
	rootCmd.PersistentFlags().StringP("disc", "d", "", "Disc description to insert (YAML)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")
}

// loadConfig resolves the configuration from --config, then applies --disc
// and --verbose on top of it.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.Default()

	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, fmt.Errorf("error getting config flag: %w", err)
	}
	if path != "" {
		if cfg, err = config.Load(path); err != nil {
			return nil, err
		}
	}

	disc, err := cmd.Flags().GetString("disc")
	if err != nil {
		return nil, fmt.Errorf("error getting disc flag: %w", err)
	}
	if disc != "" {
		cfg.Sim.Disc = disc
	}

	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		return nil, fmt.Errorf("error getting verbose flag: %w", err)
	}
	common.SetVerboseMode(verbose || cfg.Log.Verbose)
	return cfg, nil
}

// openDrive builds a processor from the command's configuration and
// initializes the drive. The caller must Close the processor.
func openDrive(cmd *cobra.Command) (*pkg.DriveProcessor, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	processor, err := pkg.NewDriveProcessor(cfg)
	if err != nil {
		return nil, err
	}
	if err := processor.Init(cmd.Context()); err != nil {
		processor.Close()
		return nil, err
	}
	return processor, nil
}
