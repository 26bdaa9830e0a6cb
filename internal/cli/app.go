// Package cli wires the jarsrc command tree to the decompiler library.
// It owns invocation validation, exit-code mapping and the interactive
// prompt; all real work happens in internal/decomp.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	ucli "github.com/urfave/cli/v3"

	"jarsrc/internal/config"
	"jarsrc/internal/console"
	"jarsrc/internal/decomp"
	"jarsrc/internal/report"
)

const Version = "1.0.0"

// Exit codes are part of the CLI contract.
const (
	ExitSuccess           = 0
	ExitOperationFailed   = 1
	ExitInvalidInvocation = 2
	ExitConfigError       = 3
	ExitInternalError     = 4
)

// InvocationError carries a semantic exit code for failures that happen
// before an operation starts.
type InvocationError struct {
	ExitCode int
	Message  string
}

func (e *InvocationError) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

func invalidf(format string, args ...any) error {
	return &InvocationError{ExitCode: ExitInvalidInvocation, Message: fmt.Sprintf(format, args...)}
}

func configErrf(err error) error {
	return &InvocationError{ExitCode: ExitConfigError, Message: err.Error()}
}

// ExitCodeFor maps an error returned by the app to the process exit
// code.
func ExitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var invErr *InvocationError
	if errors.As(err, &invErr) && invErr != nil {
		if invErr.ExitCode != 0 {
			return invErr.ExitCode
		}
		return ExitInvalidInvocation
	}
	switch {
	case errors.Is(err, decomp.ErrInputNotFound),
		errors.Is(err, decomp.ErrToolUnavailable),
		errors.Is(err, decomp.ErrToolInvocation),
		errors.Is(err, decomp.ErrOutputConflict),
		errors.Is(err, decomp.ErrIO):
		return ExitOperationFailed
	}
	return ExitInternalError
}

// NewApp builds the jarsrc command tree. With no arguments the tool
// runs the interactive prompt; subcommands drive single operations.
func NewApp() *ucli.Command {
	return &ucli.Command{
		Name:    "jarsrc",
		Usage:   "turn compiled class archives into source trees via an external decompiler",
		Version: Version,
		Flags:   sharedFlags(),
		Action: func(ctx context.Context, cmd *ucli.Command) error {
			if cmd.Args().Len() > 0 {
				return invalidf("unknown command %q", cmd.Args().First())
			}
			env, err := newEnv(cmd, "")
			if err != nil {
				return err
			}
			defer env.flush()
			return runInteractive(ctx, os.Stdin, os.Stdout, env)
		},
		Commands: []*ucli.Command{
			opCommand("inplace", "replace compiled entries with sources inside the archive"),
			opCommand("unpack", "extract sources and resources side by side into a folder"),
			opCommand("project", "generate a build-tool-recognizable project skeleton"),
			{
				Name:  "inspect",
				Usage: "list archive entries without extraction",
				Flags: sharedFlags(),
				Action: func(ctx context.Context, cmd *ucli.Command) error {
					archive := cmd.Args().First()
					if archive == "" {
						return invalidf("archive path is required")
					}
					env, err := newEnv(cmd, "")
					if err != nil {
						return err
					}
					entries, err := env.dec.Inspect(ctx, archive)
					if err != nil {
						return err
					}
					for _, e := range entries {
						if e.IsDir {
							continue
						}
						fmt.Fprintf(os.Stdout, "%8d  %s\n", e.Size, e.Name)
					}
					return nil
				},
			},
		},
	}
}

func sharedFlags() []ucli.Flag {
	return []ucli.Flag{
		&ucli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "Output path (sibling archive, folder, or project dir)"},
		&ucli.StringFlag{Name: "cfr", Usage: "Path to the decompiler jar"},
		&ucli.StringFlag{Name: "java", Usage: "JVM binary used to run the decompiler"},
		&ucli.StringFlag{Name: "timeout", Usage: "Tool invocation timeout, e.g. 90s"},
		&ucli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "JSON config file"},
		&ucli.StringFlag{Name: "report", Usage: "Write a JSON run report to this path"},
		&ucli.BoolFlag{Name: "quiet", Aliases: []string{"q"}, Usage: "Suppress all output except errors and results"},
		&ucli.BoolFlag{Name: "debug", Aliases: []string{"d"}, Usage: "Enable debug output"},
	}
}

func opCommand(name, usage string) *ucli.Command {
	return &ucli.Command{
		Name:  name,
		Usage: usage,
		Flags: sharedFlags(),
		Action: func(ctx context.Context, cmd *ucli.Command) error {
			archive := cmd.Args().First()
			if archive == "" {
				return invalidf("archive path is required")
			}
			dest := cmd.String("out")
			if dest == "" && cmd.Args().Len() > 1 {
				dest = cmd.Args().Get(1)
			}
			env, err := newEnv(cmd, name)
			if err != nil {
				return err
			}
			defer env.flush()
			return env.run(ctx, name, archive, dest)
		},
	}
}

// env bundles everything one invocation needs.
type env struct {
	cfg        config.Config
	log        *console.Logger
	dec        *decomp.Decompiler
	rec        *report.Recorder
	reportPath string

	// filled in by run, consumed by flush
	op          string
	archive     string
	destination string
	entries     int
	compiled    int
}

func newEnv(cmd *ucli.Command, op string) (*env, error) {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return nil, configErrf(err)
	}
	if v := cmd.String("cfr"); v != "" {
		cfg.CFRJar = v
	}
	if v := cmd.String("java"); v != "" {
		cfg.Java = v
	}
	if v := cmd.String("timeout"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, invalidf("invalid --timeout %q: %v", v, err)
		}
		cfg.Timeout = d
	}

	log := console.New(cmd.Bool("quiet"), cmd.Bool("debug"))
	tool := &decomp.CFRTool{
		JarPath:   cfg.CFRJar,
		JavaPath:  cfg.Java,
		ExtraArgs: cfg.ExtraArgs,
		Timeout:   cfg.Timeout,
	}
	e := &env{cfg: cfg, log: log, op: op, reportPath: cmd.String("report")}
	e.dec = decomp.New(tool, log)
	if e.reportPath != "" {
		e.rec = report.NewRecorder()
		e.dec.Sink = e.rec
	}
	return e, nil
}

// run dispatches one operation and prints the destination on success.
func (e *env) run(ctx context.Context, op, archive, dest string) error {
	e.op = op
	e.archive = archive

	// The entry counts only ever land in the run report, so skip the
	// extra archive pass when none was requested.
	if e.rec != nil {
		if entries, err := e.dec.Inspect(ctx, archive); err == nil {
			e.entries = len(entries)
			e.compiled = decomp.CountCompiled(entries)
		}
	}

	var out string
	var err error
	switch op {
	case "inplace":
		out, err = e.dec.InPlace(ctx, archive, dest)
	case "unpack":
		if dest == "" {
			dest = stem(archive) + "_extracted"
		}
		out, err = e.dec.Unpack(ctx, archive, dest)
	case "project":
		if dest == "" {
			dest = stem(archive) + "_project"
		}
		out, err = e.dec.Project(ctx, archive, dest)
	default:
		return invalidf("unknown operation %q", op)
	}
	if err != nil {
		return err
	}
	e.destination = out
	fmt.Fprintln(os.Stdout, out)
	return nil
}

// flush writes the run report when one was requested. Reports are
// written for failures too, carrying the RolledBack step.
func (e *env) flush() {
	if e.rec == nil || e.reportPath == "" {
		return
	}
	rep := e.rec.Report(e.op, e.archive, e.destination, e.entries, e.compiled)
	if err := report.Write(e.reportPath, rep); err != nil {
		e.log.Warn("report not written: %v", err)
	}
}

func stem(archivePath string) string {
	base := filepath.Base(archivePath)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
