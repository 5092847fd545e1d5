package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/hansbonini/gdtools/pkg"
	"github.com/hansbonini/gdtools/pkg/common"
	"github.com/hansbonini/gdtools/pkg/gdrom"
	"github.com/peterh/liner"
	"github.com/spf13/cobra"
)

const shellHelp = `Commands:
  status                     Drive status and disc type
  toc [session]              Table of contents
  read <lba> <count> <file>  Dump sectors to a file
  subcode [q|all|catalog|isrc]
  play <first> <last> [repeat]   Play tracks
  play2 <start> <end> [repeat]   Play sectors
  pause | resume | stop
  init                       Initialize the drive
  reinit [sector_size]       Re-initialize, optionally changing sector size
  insert <disc.yaml>         Swap the disc
  eject                      Open the tray
  help | quit`

var shellCommands = []string{
	"eject", "exit", "help", "init", "insert", "pause", "play", "play2", "quit",
	"read", "reinit", "resume", "status", "stop", "subcode", "toc",
}

// shellCmd opens an interactive drive console.
var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Interactive drive console",
	Long: `Open an interactive console on one drive session. The drive keeps its
state between commands, so playback can be paused and resumed and a disc
can be swapped to observe the media change handling.

Example:
  gdtools shell -d disc.yaml`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		processor, err := pkg.NewDriveProcessor(cfg)
		if err != nil {
			return err
		}
		defer processor.Close()

		ctx := cmd.Context()
		if err := processor.Init(ctx); err != nil {
			common.LogWarn("%v", err)
		}

		sh := &shell{proc: processor, out: cmd.OutOrStdout()}
		return sh.loop(ctx)
	},
}

type shell struct {
	proc *pkg.DriveProcessor
	out  io.Writer
}

func (s *shell) loop(ctx context.Context) error {
	line := liner.NewLiner()
	defer line.Close()

	line.SetCtrlCAborts(true)
	line.SetCompleter(s.complete)

	for {
		input, err := line.Prompt("gdrom> ")
		if err == nil {
			line.AppendHistory(input)
			quit, err := s.exec(ctx, input)
			if err != nil {
				fmt.Fprintln(s.out, "Error: "+err.Error())
			}
			if quit {
				return nil
			}
			continue
		}

		if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("error reading line: %w", err)
	}
}

// complete offers command names, then channel names after "subcode".
func (s *shell) complete(line string) []string {
	var candidates []string
	if rest, ok := strings.CutPrefix(line, "subcode "); ok {
		for name := range subcodeNames {
			if strings.HasPrefix(name, rest) {
				candidates = append(candidates, "subcode "+name)
			}
		}
		sort.Strings(candidates)
		return candidates
	}
	for _, name := range shellCommands {
		if strings.HasPrefix(name, line) {
			candidates = append(candidates, name)
		}
	}
	return candidates
}

// exec runs one console line and reports whether the console should close.
func (s *shell) exec(ctx context.Context, input string) (bool, error) {
	fields := strings.Fields(input)
	if len(fields) == 0 {
		return false, nil
	}
	name, args := fields[0], fields[1:]

	switch name {
	case "quit", "exit":
		return true, nil
	case "help":
		fmt.Fprintln(s.out, shellHelp)
	case "status":
		report, err := s.proc.Status(ctx)
		if err != nil {
			return false, err
		}
		printStatus(s.out, report)
	case "toc":
		session := s.proc.Config().Drive.Session
		if len(args) > 0 {
			v, err := intArg(args, 0, "session")
			if err != nil {
				return false, err
			}
			session = v
		}
		_, report, err := s.proc.ReadTOC(ctx, session)
		if err != nil {
			return false, err
		}
		printTOC(s.out, report)
	case "read":
		if len(args) != 3 {
			return false, errors.New("usage: read <lba> <count> <file>")
		}
		lba, err := intArg(args, 0, "lba")
		if err != nil {
			return false, err
		}
		count, err := intArg(args, 1, "count")
		if err != nil {
			return false, err
		}
		return false, s.proc.Dump(ctx, lba, count, args[2])
	case "subcode":
		channel := "q"
		if len(args) > 0 {
			channel = args[0]
		}
		which, err := parseSubcode(channel)
		if err != nil {
			return false, err
		}
		report, err := s.proc.Subcode(ctx, which)
		if err != nil {
			return false, err
		}
		printSubcode(s.out, report)
	case "play", "play2":
		return false, s.play(ctx, name, args)
	case "pause":
		return false, s.proc.Pause(ctx)
	case "resume":
		return false, s.proc.Resume(ctx)
	case "stop":
		return false, s.proc.Stop(ctx)
	case "init":
		return false, s.proc.Init(ctx)
	case "reinit":
		size := 0
		if len(args) > 0 {
			v, err := intArg(args, 0, "sector size")
			if err != nil {
				return false, err
			}
			size = v
		}
		return false, s.proc.Reinit(ctx, size)
	case "insert":
		if len(args) != 1 {
			return false, errors.New("usage: insert <disc.yaml>")
		}
		return false, s.proc.Insert(args[0])
	case "eject":
		s.proc.Eject()
	default:
		return false, fmt.Errorf("unknown command %q, try help", name)
	}
	return false, nil
}

func (s *shell) play(ctx context.Context, name string, args []string) error {
	if len(args) < 2 || len(args) > 3 {
		return fmt.Errorf("usage: %s <start> <end> [repeat]", name)
	}
	start, err := intArg(args, 0, "start")
	if err != nil {
		return err
	}
	end, err := intArg(args, 1, "end")
	if err != nil {
		return err
	}
	repeat := 0
	if len(args) == 3 {
		if repeat, err = intArg(args, 2, "repeat"); err != nil {
			return err
		}
	}

	mode := gdrom.CDDATracks
	if name == "play2" {
		mode = gdrom.CDDASectors
	}
	return s.proc.Play(ctx, start, end, repeat, mode)
}

func intArg(args []string, i int, name string) (int, error) {
	v, err := strconv.Atoi(args[i])
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", name, args[i])
	}
	return v, nil
}

func init() {
	rootCmd.AddCommand(shellCmd)
}
