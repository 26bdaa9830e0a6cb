package decomp

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"jarsrc/internal/report"
)

// InPlace rewrites the archive so each compiled entry is replaced by
// its decompiled source; resources pass through unchanged. The rebuilt
// archive replaces destPath atomically, or archivePath itself when
// destPath is empty. On any failure the destination keeps its prior
// bytes.
func (d *Decompiler) InPlace(ctx context.Context, archivePath, destPath string) (string, error) {
	const op = "inplace"

	entries, err := d.validate(ctx, op, archivePath)
	if err != nil {
		return "", d.fail(err)
	}

	scratch, discard, err := d.newScratch(op)
	if err != nil {
		return "", d.fail(err)
	}
	defer discard()

	tree := filepath.Join(scratch, "tree")
	bar := d.Log.Bar(len(entries), "staging")
	if err := extractAll(ctx, archivePath, tree, barTick(bar)); err != nil {
		return "", d.fail(wrapIO(op, archivePath, err))
	}
	d.record(report.StepStaged, scratch)

	d.Log.Info("decompiling %s", d.Log.Path(filepath.Base(archivePath)))
	if err := d.Tool.Decompile(ctx, archivePath, tree); err != nil {
		return "", d.fail(err)
	}
	d.record(report.StepToolInvoked, archivePath)

	if err := verifySources(op, tree, entries); err != nil {
		return "", d.fail(err)
	}
	if err := removeCompiled(tree); err != nil {
		return "", d.fail(wrapIO(op, tree, err))
	}

	rebuilt := filepath.Join(scratch, "rebuilt.zip")
	if err := writeArchive(tree, rebuilt); err != nil {
		return "", d.fail(wrapIO(op, rebuilt, err))
	}
	d.record(report.StepArranged, rebuilt)

	if destPath == "" {
		destPath = archivePath
	}
	if err := commitReplace(rebuilt, destPath); err != nil {
		return "", d.fail(wrapIO(op, destPath, err))
	}
	d.record(report.StepCommitted, destPath)

	d.Log.Success("archive updated: %s", d.Log.Path(destPath))
	return destPath, nil
}

// commitReplace puts src at dst atomically: copy into a temp file in
// dst's directory, fsync, then rename. Rename within one directory is
// atomic on POSIX, so readers of dst see either the old or the new
// archive, never a half-written one.
func commitReplace(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	dir := filepath.Dir(dst)
	tmp, err := os.CreateTemp(dir, ".jarsrc-*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	if _, err := io.CopyBuffer(tmp, in, make([]byte, copyBufferSize)); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, dst); err != nil {
		os.Remove(tmpPath)
		return err
	}
	// Sync the directory so the rename itself survives a crash.
	df, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer df.Close()
	return df.Sync()
}
