package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/hansbonini/gdtools/pkg"
	"github.com/hansbonini/gdtools/pkg/gdrom"
	"github.com/spf13/cobra"
)

// cddaCmd represents the parent command for CDDA playback.
var cddaCmd = &cobra.Command{
	Use:   "cdda",
	Short: "Control CDDA playback",
	Long: `Control CD audio playback.

Commands:
  play      Play a track range, or a sector range with --sectors
  pause     Pause playback
  resume    Resume paused playback
  stop      Stop playback and spin the disc down

Playback state lives in the drive, so pause and resume are most useful
from the shell command.

Examples:
  gdtools cdda play -d disc.yaml 1 2
  gdtools cdda play -d disc.yaml --sectors --repeat 3 150 1150`,
}

var cddaPlayCmd = &cobra.Command{
	Use:   "play [start] [end]",
	Short: "Play tracks or sectors",
	Long: `Start CDDA playback from start to end.

Start and end are track numbers, or absolute sector addresses with
--sectors. --repeat plays the range that many extra times; 15 or more
repeats forever.

Examples:
  gdtools cdda play -d disc.yaml 1 2
  gdtools cdda play -d disc.yaml --sectors 150 1150`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		start, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid start %q: %w", args[0], err)
		}
		end, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid end %q: %w", args[1], err)
		}
		sectors, err := cmd.Flags().GetBool("sectors")
		if err != nil {
			return fmt.Errorf("error getting sectors flag: %w", err)
		}
		repeat, err := cmd.Flags().GetInt("repeat")
		if err != nil {
			return fmt.Errorf("error getting repeat flag: %w", err)
		}
		mode := gdrom.CDDATracks
		if sectors {
			mode = gdrom.CDDASectors
		}

		processor, err := openDrive(cmd)
		if err != nil {
			return err
		}
		defer processor.Close()

		if err := processor.Play(cmd.Context(), start, end, repeat, mode); err != nil {
			return fmt.Errorf("failed to start playback: %w", err)
		}
		return showPosition(cmd, processor)
	},
}

var cddaPauseCmd = &cobra.Command{
	Use:   "pause",
	Short: "Pause CDDA playback",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAudio(cmd, (*pkg.DriveProcessor).Pause)
	},
}

var cddaResumeCmd = &cobra.Command{
	Use:   "resume",
	Short: "Resume CDDA playback",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAudio(cmd, (*pkg.DriveProcessor).Resume)
	},
}

var cddaStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop playback and spin down",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAudio(cmd, (*pkg.DriveProcessor).Stop)
	},
}

func runAudio(cmd *cobra.Command, op func(*pkg.DriveProcessor, context.Context) error) error {
	processor, err := openDrive(cmd)
	if err != nil {
		return err
	}
	defer processor.Close()

	if err := op(processor, cmd.Context()); err != nil {
		return fmt.Errorf("failed to run %s: %w", cmd.Name(), err)
	}
	return showPosition(cmd, processor)
}

func showPosition(cmd *cobra.Command, processor *pkg.DriveProcessor) error {
	report, err := processor.Subcode(cmd.Context(), gdrom.SubQChannel)
	if err != nil {
		return err
	}
	printSubcode(cmd.OutOrStdout(), report)
	return nil
}

func init() {
	rootCmd.AddCommand(cddaCmd)
	cddaCmd.AddCommand(cddaPlayCmd, cddaPauseCmd, cddaResumeCmd, cddaStopCmd)

	cddaPlayCmd.Flags().Bool("sectors", false, "Start and end are sector addresses")
	cddaPlayCmd.Flags().Int("repeat", 0, "Repeat count (15 = forever)")
}
