package decomp

import (
	"context"
	"os"
	"path/filepath"

	"jarsrc/internal/report"
)

// Conventional roots recognized by common build tooling.
const (
	projectSourceRoot   = "src/main/java"
	projectResourceRoot = "src/main/resources"
)

const buildGradleStub = `plugins {
    id 'java'
}
group = 'com.decompiled'
version = '1.0-SNAPSHOT'
repositories {
    mavenCentral()
}
`

// Project builds a conventional project skeleton under projectDir:
// decompiled sources under src/main/java, resources under
// src/main/resources, plus a minimal build.gradle stub. No file from
// the archive lands outside those two roots.
func (d *Decompiler) Project(ctx context.Context, archivePath, projectDir string) (string, error) {
	const op = "project"

	entries, err := d.validate(ctx, op, archivePath)
	if err != nil {
		return "", d.fail(err)
	}

	javaDir := filepath.Join(projectDir, filepath.FromSlash(projectSourceRoot))
	resDir := filepath.Join(projectDir, filepath.FromSlash(projectResourceRoot))
	for _, p := range conventionalPaths(projectDir, javaDir, resDir) {
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return "", d.fail(opErrorf(ErrOutputConflict, op, p, "exists and is not a directory"))
		}
	}
	if err := os.MkdirAll(javaDir, 0o755); err != nil {
		return "", d.fail(wrapIO(op, javaDir, err))
	}
	if err := os.MkdirAll(resDir, 0o755); err != nil {
		return "", d.fail(wrapIO(op, resDir, err))
	}

	d.Log.Info("decompiling %s", d.Log.Path(filepath.Base(archivePath)))
	if err := d.Tool.Decompile(ctx, archivePath, javaDir); err != nil {
		return "", d.fail(err)
	}
	d.record(report.StepToolInvoked, archivePath)

	if err := verifySources(op, javaDir, entries); err != nil {
		return "", d.fail(err)
	}

	// Resources go through a scratch copy so compiled entries can be
	// pruned without ever appearing under the resources root.
	scratch, discard, err := d.newScratch(op)
	if err != nil {
		return "", d.fail(err)
	}
	defer discard()

	bar := d.Log.Bar(len(entries), "staging resources")
	if err := extractAll(ctx, archivePath, scratch, barTick(bar)); err != nil {
		return "", d.fail(wrapIO(op, archivePath, err))
	}
	d.record(report.StepStaged, scratch)
	if err := removeCompiled(scratch); err != nil {
		return "", d.fail(wrapIO(op, scratch, err))
	}
	if err := copyTree(scratch, resDir); err != nil {
		return "", d.fail(wrapIO(op, resDir, err))
	}

	gradle := filepath.Join(projectDir, "build.gradle")
	if err := os.WriteFile(gradle, []byte(buildGradleStub), 0o644); err != nil {
		return "", d.fail(wrapIO(op, gradle, err))
	}
	d.record(report.StepArranged, projectDir)
	d.record(report.StepCommitted, projectDir)

	d.Log.Success("project ready at %s", d.Log.Path(projectDir))
	return projectDir, nil
}

func conventionalPaths(projectDir, javaDir, resDir string) []string {
	return []string{
		projectDir,
		filepath.Join(projectDir, "src"),
		filepath.Join(projectDir, "src", "main"),
		javaDir,
		resDir,
	}
}
