// Package decomp turns compiled class archives into source trees by
// orchestrating an external decompiler tool. Every operation is a
// linear pipeline: validate inputs, stage, invoke the tool, arrange the
// output, commit or roll back. On any failure the original archive is
// left untouched.
package decomp

import (
	"context"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/schollz/progressbar/v3"

	"jarsrc/internal/console"
	"jarsrc/internal/report"
)

// Decompiler binds the external tool to the three output modes.
// Invocations are independent and carry no state between calls.
type Decompiler struct {
	// Tool is the external decompiler collaborator. Required.
	Tool Tool

	// Log receives progress output. May be nil.
	Log *console.Logger

	// Sink receives report steps. May be nil.
	Sink report.Sink

	// ScratchRoot is where scratch directories are created.
	// Defaults to the system temp directory.
	ScratchRoot string
}

func New(tool Tool, log *console.Logger) *Decompiler {
	return &Decompiler{Tool: tool, Log: log}
}

// validate checks the archive and the tool before any mutation, and
// returns the archive's entries. Order matters: the tool check runs
// before anything is created on disk.
func (d *Decompiler) validate(ctx context.Context, op, archivePath string) ([]Entry, error) {
	entries, err := d.validateArchive(ctx, op, archivePath)
	if err != nil {
		return nil, err
	}
	if err := d.Tool.Validate(); err != nil {
		return nil, err
	}
	d.record(report.StepValidated, archivePath)
	return entries, nil
}

// validateArchive checks only the input archive: it must exist, be a
// regular file, and identify as an extractable container.
func (d *Decompiler) validateArchive(ctx context.Context, op, archivePath string) ([]Entry, error) {
	info, err := os.Stat(archivePath)
	if err != nil {
		return nil, opErrorf(ErrInputNotFound, op, archivePath, "archive not found")
	}
	if info.IsDir() {
		return nil, opErrorf(ErrInputNotFound, op, archivePath, "archive is a directory")
	}
	entries, err := listEntries(ctx, archivePath)
	if err != nil {
		return nil, wrapIO(op, archivePath, err)
	}
	return entries, nil
}

// newScratch creates a uniquely named scratch directory. The cleanup
// func discards it with everything staged inside.
func (d *Decompiler) newScratch(op string) (string, func(), error) {
	root := d.ScratchRoot
	if root == "" {
		root = os.TempDir()
	}
	dir := filepath.Join(root, "jarsrc-"+uuid.NewString())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", nil, wrapIO(op, dir, err)
	}
	return dir, func() { os.RemoveAll(dir) }, nil
}

// verifySources checks that every top-level compiled entry has its
// decompiled counterpart under dir. A tool that exited zero without
// producing them still counts as an invocation failure.
func verifySources(op, dir string, entries []Entry) error {
	for _, e := range entries {
		if !e.Compiled() || e.Nested() {
			continue
		}
		src := filepath.Join(dir, filepath.FromSlash(e.SourcePath()))
		if _, err := os.Stat(src); err != nil {
			return opErrorf(ErrToolInvocation, op, e.Name, "tool produced no source output")
		}
	}
	return nil
}

// CountCompiled counts the compiled entries in an archive listing.
func CountCompiled(entries []Entry) int {
	n := 0
	for _, e := range entries {
		if e.Compiled() {
			n++
		}
	}
	return n
}

func (d *Decompiler) record(kind report.StepKind, detail string) {
	report.SafeRecord(d.Sink, report.Step{Kind: kind, Detail: detail})
}

// fail marks the rollback in the report and passes the error through.
func (d *Decompiler) fail(err error) error {
	d.record(report.StepRolledBack, err.Error())
	return err
}

func barTick(bar *progressbar.ProgressBar) func() {
	if bar == nil {
		return nil
	}
	return func() { bar.Add(1) }
}

// Inspect lists the archive's entries without extracting anything.
// The external tool is not needed and not validated.
func (d *Decompiler) Inspect(ctx context.Context, archivePath string) ([]Entry, error) {
	return d.validateArchive(ctx, "inspect", archivePath)
}
