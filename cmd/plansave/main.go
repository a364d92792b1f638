// Package main provides plansave, a coding-agent hook that archives planning
// sessions (plan file plus readable transcript) into the project and
// commits them.
//
// Register it as a Stop and SessionEnd hook with `plansave install`; the
// host then runs `plansave run` with the hook event on stdin. Sessions are
// archived once they leave plan mode.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/entrhq/plansave/pkg/archiver"
	"github.com/entrhq/plansave/pkg/config"
	"github.com/entrhq/plansave/pkg/hook"
	"github.com/entrhq/plansave/pkg/logging"
)

var version = "0.1.0"

// hookAck is written to stdout after every hook run.
const hookAck = "{}"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := runCLI(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// runCLI dispatches a subcommand and returns the process exit code.
func runCLI(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	command := "run"
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		command, args = args[0], args[1:]
	}

	switch command {
	case "run":
		return runHook(ctx, args, stdin, stdout, stderr)
	case "install":
		return runInstall(args, stdout, stderr)
	case "version":
		fmt.Fprintf(stdout, "plansave v%s\n", version)
		return 0
	case "help":
		printUsage(stderr)
		return 0
	default:
		fmt.Fprintf(stderr, "unknown command: %s\n\n", command)
		printUsage(stderr)
		return 2
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintf(w, `plansave - archive coding-agent planning sessions into git

Usage:
  plansave [run] [flags]        archive the session described on stdin (hook mode)
  plansave install [flags]      register plansave in .claude/settings.json
  plansave version              print the version

Run flags:
  --config FILE       configuration file (default <dir>/%s)
  --dir DIR           project directory when the event has no cwd
  --agent NAME        agent name used in archive file names
  --no-commit         write files without committing
  --verbosity LEVEL   quiet, normal, verbose or debug

Install flags:
  --dir DIR           project directory (default current directory)
  --command CMD       hook command (default %q)
`, config.FileName, hook.DefaultCommand)
}

// hookFlags holds the run command's flags
type hookFlags struct {
	ConfigFile string
	Dir        string
	Agent      string
	NoCommit   bool
	Verbosity  string
}

// runHook archives one session. It always returns 0: a hook must never
// block the agent that invoked it.
func runHook(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	defer fmt.Fprintln(stdout, hookAck)

	console := archiver.NewLoggerWithWriter(archiver.LogLevelNormal, stderr)

	flags, flagSet, err := parseHookFlags(args)
	if err != nil {
		console.Warningf("ignoring invalid arguments: %v", err)
		flags = &hookFlags{}
		flagSet = nil
	}

	event, eventErr := hook.ReadEvent(stdin)
	flags.Dir = projectDir(flags.Dir, event)

	cfg := loadConfig(flags, flagSet, console)
	console = archiver.NewLoggerWithWriter(archiver.ParseLogLevel(cfg.Logging.Verbosity), stderr)
	if eventErr != nil {
		console.Warningf("%v", eventErr)
	}

	fileLog, err := logging.NewLogger(config.ExpandPath(cfg.Logging.LogDir, flags.Dir), event.SessionID, "plansave")
	if err != nil {
		console.Warningf("debug log unavailable: %v", err)
	}
	defer fileLog.Close()

	a, err := archiver.New(archiver.Options{
		Config:  cfg,
		WorkDir: flags.Dir,
		Console: console,
		Log:     fileLog.With("archiver"),
	})
	if err != nil {
		console.Warningf("%v; using default discovery patterns", err)
		cfg.Discovery.ExcludePatterns = nil
		if a, err = archiver.New(archiver.Options{Config: cfg, WorkDir: flags.Dir, Console: console, Log: fileLog.With("archiver")}); err != nil {
			console.Errorf("%v", err)
			return 0
		}
	}

	summary, err := a.Run(ctx, event)
	if err != nil {
		console.Errorf("%v", err)
		fileLog.Errorf("run failed: %v", err)
	}
	console.Summary(summary)
	return 0
}

// projectDir picks the directory whose config applies: --dir, then the
// event's cwd, then the process working directory.
func projectDir(flagDir string, event *hook.Event) string {
	if flagDir != "" {
		return flagDir
	}
	wd, _ := os.Getwd()
	if dir := config.ExpandPath(event.CWD, wd); dir != "" {
		return dir
	}
	return wd
}

func parseHookFlags(args []string) (*hookFlags, *pflag.FlagSet, error) {
	flags := &hookFlags{}
	flagSet := pflag.NewFlagSet("plansave run", pflag.ContinueOnError)
	flagSet.SetOutput(io.Discard)
	flagSet.StringVar(&flags.ConfigFile, "config", "", "configuration file")
	flagSet.StringVar(&flags.Dir, "dir", "", "project directory")
	flagSet.StringVar(&flags.Agent, "agent", "", "agent name")
	flagSet.BoolVar(&flags.NoCommit, "no-commit", false, "skip the git commit")
	flagSet.StringVar(&flags.Verbosity, "verbosity", "", "console verbosity")

	if err := flagSet.Parse(args); err != nil {
		return nil, nil, err
	}
	if extra := flagSet.Args(); len(extra) > 0 {
		return nil, nil, fmt.Errorf("unexpected argument: %s", extra[0])
	}
	return flags, flagSet, nil
}

// loadConfig applies file, environment and flags in that order, falling
// back to defaults when the result is invalid.
func loadConfig(flags *hookFlags, flagSet *pflag.FlagSet, console *archiver.Logger) *config.Config {
	cfg, err := config.Load(flags.ConfigFile, flags.Dir)
	if err != nil {
		console.Warningf("using default configuration: %v", err)
		cfg = config.Default()
	}

	if flagSet == nil {
		return cfg
	}
	overridden := *cfg
	if flagSet.Changed("agent") {
		overridden.AgentName = strings.ToLower(strings.TrimSpace(flags.Agent))
	}
	if flagSet.Changed("verbosity") {
		overridden.Logging.Verbosity = strings.ToLower(strings.TrimSpace(flags.Verbosity))
	}
	if flags.NoCommit {
		overridden.Git.AutoCommit = false
	}
	if err := overridden.Validate(); err != nil {
		console.Warningf("ignoring flag overrides: %v", err)
		return cfg
	}
	return &overridden
}

func runInstall(args []string, stdout, stderr io.Writer) int {
	var dir, command string
	flagSet := pflag.NewFlagSet("plansave install", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.StringVar(&dir, "dir", "", "project directory")
	flagSet.StringVar(&command, "command", hook.DefaultCommand, "hook command")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 1
	}
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			fmt.Fprintf(stderr, "error: %v\n", err)
			return 1
		}
		dir = wd
	}

	result, err := hook.Install(dir, command)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}

	if len(result.Added) == 0 {
		fmt.Fprintf(stdout, "plansave hooks already present in %s\n", result.Path)
		return 0
	}
	fmt.Fprintf(stdout, "Added %s hook(s) to %s\n", strings.Join(result.Added, " and "), result.Path)
	return 0
}
