package decomp

import (
	"context"
	"os"
	"path/filepath"

	"jarsrc/internal/report"
)

// Unpack extracts all entries under outputDir, preserving the archive's
// internal relative paths, then swaps compiled entries for decompiled
// sources in place. Re-running with the same inputs overwrites prior
// output.
func (d *Decompiler) Unpack(ctx context.Context, archivePath, outputDir string) (string, error) {
	const op = "unpack"

	entries, err := d.validate(ctx, op, archivePath)
	if err != nil {
		return "", d.fail(err)
	}

	if info, err := os.Stat(outputDir); err == nil && !info.IsDir() {
		return "", d.fail(opErrorf(ErrOutputConflict, op, outputDir, "exists and is not a directory"))
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", d.fail(wrapIO(op, outputDir, err))
	}

	bar := d.Log.Bar(len(entries), "extracting")
	if err := extractAll(ctx, archivePath, outputDir, barTick(bar)); err != nil {
		return "", d.fail(wrapIO(op, archivePath, err))
	}
	d.record(report.StepStaged, outputDir)

	d.Log.Info("decompiling %s", d.Log.Path(filepath.Base(archivePath)))
	if err := d.Tool.Decompile(ctx, archivePath, outputDir); err != nil {
		return "", d.fail(err)
	}
	d.record(report.StepToolInvoked, archivePath)

	if err := verifySources(op, outputDir, entries); err != nil {
		return "", d.fail(err)
	}
	if err := removeCompiled(outputDir); err != nil {
		return "", d.fail(wrapIO(op, outputDir, err))
	}
	d.record(report.StepArranged, outputDir)
	d.record(report.StepCommitted, outputDir)

	d.Log.Success("files saved to %s", d.Log.Path(outputDir))
	return outputDir, nil
}
