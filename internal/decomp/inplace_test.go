package decomp

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/yeka/zip"
)

func archiveEntryNames(t *testing.T, path string) []string {
	t.Helper()
	r, err := zip.OpenReader(path)
	if err != nil {
		t.Fatalf("open rebuilt archive: %v", err)
	}
	defer r.Close()

	var names []string
	for _, f := range r.File {
		names = append(names, f.Name)
	}
	sort.Strings(names)
	return names
}

// TestInPlace_SwapsCompiledForSource verifies the rebuilt archive keeps
// the same entry set with compiled entries swapped for sources.
func TestInPlace_SwapsCompiledForSource(t *testing.T) {
	tmp := t.TempDir()
	archive := demoArchive(t, tmp)

	d := newTestDecompiler(t, demoTool())
	dest, err := d.InPlace(context.Background(), archive, "")
	if err != nil {
		t.Fatalf("InPlace failed: %v", err)
	}
	if dest != archive {
		t.Errorf("destination = %q, want original path %q", dest, archive)
	}

	want := []string{"com/x/Y.java", "res/a.txt"}
	if names := archiveEntryNames(t, archive); !equalStrings(names, want) {
		t.Errorf("rebuilt entries = %v, want %v", names, want)
	}
}

// TestInPlace_OriginalUntouchedOnToolFailure verifies the rollback
// guarantee: after a mid-run tool failure the original archive bytes
// are unchanged.
func TestInPlace_OriginalUntouchedOnToolFailure(t *testing.T) {
	tmp := t.TempDir()
	archive := demoArchive(t, tmp)
	before, err := os.ReadFile(archive)
	if err != nil {
		t.Fatal(err)
	}

	tool := demoTool()
	tool.decompileErr = opErrorf(ErrToolInvocation, "", archive, "exit code 1: simulated crash")

	d := newTestDecompiler(t, tool)
	if _, err := d.InPlace(context.Background(), archive, ""); !errors.Is(err, ErrToolInvocation) {
		t.Fatalf("error = %v, want ErrToolInvocation", err)
	}

	after, err := os.ReadFile(archive)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(before, after) {
		t.Error("original archive bytes changed after failed run")
	}
}

// TestInPlace_SiblingDestination verifies writing to a named sibling
// leaves the original archive alone.
func TestInPlace_SiblingDestination(t *testing.T) {
	tmp := t.TempDir()
	archive := demoArchive(t, tmp)
	before, err := os.ReadFile(archive)
	if err != nil {
		t.Fatal(err)
	}
	sibling := filepath.Join(tmp, "demo-sources.jar")

	d := newTestDecompiler(t, demoTool())
	dest, err := d.InPlace(context.Background(), archive, sibling)
	if err != nil {
		t.Fatalf("InPlace failed: %v", err)
	}
	if dest != sibling {
		t.Errorf("destination = %q, want %q", dest, sibling)
	}

	after, err := os.ReadFile(archive)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(before, after) {
		t.Error("original archive changed when writing to a sibling")
	}
	want := []string{"com/x/Y.java", "res/a.txt"}
	if names := archiveEntryNames(t, sibling); !equalStrings(names, want) {
		t.Errorf("sibling entries = %v, want %v", names, want)
	}
}

// TestCommitReplace_ReplacesBytesAndCleansUp verifies the commit swaps
// the destination content and leaves no temp file behind.
func TestCommitReplace_ReplacesBytesAndCleansUp(t *testing.T) {
	tmp := t.TempDir()
	src := filepath.Join(tmp, "rebuilt.zip")
	dst := filepath.Join(tmp, "demo.jar")
	if err := os.WriteFile(src, []byte("new bytes"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(dst, []byte("old bytes"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := commitReplace(src, dst); err != nil {
		t.Fatalf("commitReplace failed: %v", err)
	}

	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "new bytes" {
		t.Errorf("destination = %q, want %q", got, "new bytes")
	}
	entries, err := os.ReadDir(tmp)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if e.Name() != "rebuilt.zip" && e.Name() != "demo.jar" {
			t.Errorf("leftover file %q after commit", e.Name())
		}
	}
}

// TestInPlace_NoScratchLeftBehind verifies the scratch directory is
// discarded after both success and failure.
func TestInPlace_NoScratchLeftBehind(t *testing.T) {
	tmp := t.TempDir()
	archive := demoArchive(t, tmp)

	d := newTestDecompiler(t, demoTool())
	if _, err := d.InPlace(context.Background(), archive, ""); err != nil {
		t.Fatalf("InPlace failed: %v", err)
	}

	entries, err := os.ReadDir(d.ScratchRoot)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("scratch root not empty after run: %d entries", len(entries))
	}
}
