package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/jonboulle/clockwork"
	"github.com/joho/godotenv"

	"github.com/calvinalkan/raffle/internal/config"
	"github.com/calvinalkan/raffle/internal/logging"
)

const (
	consumedOne  = 1
	consumedTwo  = 2
	consumedNone = 0
	helpFlag     = "--help"
)

// Environment variables read by the CLI.
const (
	EnvToken    = "RAFFLE_TOKEN"
	EnvLogLevel = "RAFFLE_LOG_LEVEL"
)

// dotEnvFile is read from the working directory; it never overrides the
// real environment.
const dotEnvFile = ".env"

// runtimeDeps are the collaborators tests replace.
type runtimeDeps struct {
	clock      clockwork.Clock
	httpClient *http.Client
}

// Run is the main entry point. Returns exit code.
// A signal on sigCh cancels the running command.
func Run(stdin io.Reader, out io.Writer, errOut io.Writer, args []string, env map[string]string, sigCh <-chan os.Signal) int {
	return run(stdin, out, errOut, args, env, sigCh, runtimeDeps{clock: clockwork.NewRealClock()})
}

func run(stdin io.Reader, out, errOut io.Writer, args []string, env map[string]string, sigCh <-chan os.Signal, deps runtimeDeps) int {
	if len(args) < 2 {
		printUsage(out)

		return 0
	}

	flags, err := parseGlobalFlags(args[1:])
	if err != nil {
		fprintln(errOut, "error:", err)
		fprintln(errOut)
		printUsage(errOut)

		return 1
	}

	if len(flags.remaining) == 0 || flags.remaining[0] == "-h" || flags.remaining[0] == helpFlag {
		printUsage(out)

		return 0
	}

	workDir := flags.workDir
	if workDir == "" {
		workDir, err = os.Getwd()
		if err != nil {
			fprintln(errOut, "error: cannot get working directory:", err)

			return 1
		}
	}

	env, err = withDotEnv(workDir, env)
	if err != nil {
		fprintln(errOut, "error:", err)

		return 1
	}

	cfg, err := config.Load(config.LoadInput{
		WorkDirOverride:  workDir,
		ConfigPath:       flags.configPath,
		StateDirOverride: flags.stateDir,
		Env:              env,
	})
	if err != nil {
		fprintln(errOut, "error:", err)

		return 1
	}

	level := env[EnvLogLevel]
	if flags.verbose {
		level = "debug"
	}

	logger := logging.New(errOut, level)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		select {
		case sig := <-sigCh:
			logger.WithField("signal", sig).Debug("canceling")
			cancel()
		case <-ctx.Done():
		}
	}()

	a := &app{
		cfg:        &cfg,
		env:        env,
		stdin:      stdin,
		clock:      deps.clock,
		logger:     logger,
		httpClient: deps.httpClient,
	}

	name := flags.remaining[0]

	cmd := findCommand(a.commands(), name)
	if cmd == nil {
		fprintln(errOut, "error: unknown command:", name)
		fprintln(errOut)
		printUsage(errOut)

		return 1
	}

	o := NewIO(out, errOut, colorEnabled(out, env))

	logger.WithField("command", name).Debug("dispatch")

	code := cmd.Run(ctx, o, flags.remaining[1:])
	if code != 0 {
		return code
	}

	return o.Finish()
}

// withDotEnv returns env extended with the variables of workDir/.env.
// Variables already present in env win.
func withDotEnv(workDir string, env map[string]string) (map[string]string, error) {
	path := filepath.Join(workDir, dotEnvFile)

	fileEnv, err := godotenv.Read(path)
	if errors.Is(err, fs.ErrNotExist) {
		return env, nil
	}

	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	merged := make(map[string]string, len(env)+len(fileEnv))
	for k, v := range fileEnv {
		merged[k] = v
	}

	for k, v := range env {
		merged[k] = v
	}

	return merged, nil
}

type globalFlags struct {
	workDir    string
	configPath string
	stateDir   *string
	verbose    bool
	remaining  []string
}

func parseGlobalFlags(args []string) (globalFlags, error) {
	var flags globalFlags

	idx := 0
	for idx < len(args) {
		consumed, err := parseFlag(args, idx, &flags)
		if err != nil {
			return globalFlags{}, err
		}

		if consumed == 0 {
			// Not a flag, this is the command
			flags.remaining = args[idx:]

			break
		}

		idx += consumed
	}

	return flags, nil
}

// parseFlag tries to parse a flag at args[idx]. Returns number of args consumed (0 if not a flag).
func parseFlag(args []string, idx int, flags *globalFlags) (int, error) {
	arg := args[idx]

	value := func() (string, error) {
		if idx+1 >= len(args) {
			return "", fmt.Errorf("%w: %s", config.ErrFlagRequiresArg, arg)
		}

		return args[idx+1], nil
	}

	switch arg {
	case "-C", "--cwd":
		v, err := value()
		if err != nil {
			return consumedNone, err
		}

		flags.workDir = v

		return consumedTwo, nil
	case "-c", "--config":
		v, err := value()
		if err != nil {
			return consumedNone, err
		}

		flags.configPath = v

		return consumedTwo, nil
	case "--state-dir":
		v, err := value()
		if err != nil {
			return consumedNone, err
		}

		flags.stateDir = &v

		return consumedTwo, nil
	case "-v", "--verbose":
		flags.verbose = true

		return consumedOne, nil
	case "-h", helpFlag:
		flags.remaining = []string{helpFlag}

		return len(args) - idx, nil
	}

	if after, ok := strings.CutPrefix(arg, "--cwd="); ok {
		flags.workDir = after

		return consumedOne, nil
	}

	if after, ok := strings.CutPrefix(arg, "--config="); ok {
		flags.configPath = after

		return consumedOne, nil
	}

	if after, ok := strings.CutPrefix(arg, "--state-dir="); ok {
		flags.stateDir = &after

		return consumedOne, nil
	}

	if after, ok := strings.CutPrefix(arg, "-C"); ok {
		flags.workDir = after

		return consumedOne, nil
	}

	// Unknown flag
	if strings.HasPrefix(arg, "-") && arg != "-" {
		return consumedNone, fmt.Errorf("%w: %s", config.ErrUnknownFlag, arg)
	}

	// Not a flag
	return consumedNone, nil
}

func findCommand(cmds []*Command, name string) *Command {
	for _, cmd := range cmds {
		if cmd.Name() == name {
			return cmd
		}
	}

	return nil
}

func fprintln(w io.Writer, a ...any) {
	_, _ = fmt.Fprintln(w, a...)
}

func printUsage(w io.Writer) {
	fprintln(w, `raffle - comment giveaway draws

Usage: raffle [global flags] <command> [args]

Global flags:
  -C, --cwd <dir>          Run as if started in <dir>
  -c, --config <file>      Use specified config file
      --state-dir <dir>    Store the session in <dir> (default .raffle)
  -v, --verbose            Log diagnostics to stderr
  -h, --help               Show this help

Commands:`)

	printCommandList(w, (&app{}).commands())

	fprintln(w)
	fprintln(w, `Run "raffle <command> --help" for command flags.`)
}
