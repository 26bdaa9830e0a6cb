package decomp

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/yeka/zip"
)

// fakeTool is a substitutable decompiler: it writes a fixed set of
// relative files into the output directory.
type fakeTool struct {
	validateErr  error
	decompileErr error
	files        map[string]string
	inputs       []string
}

func (f *fakeTool) Validate() error {
	return f.validateErr
}

func (f *fakeTool) Decompile(ctx context.Context, input, outputDir string) error {
	f.inputs = append(f.inputs, input)
	if f.decompileErr != nil {
		return f.decompileErr
	}
	for rel, content := range f.files {
		dst := filepath.Join(outputDir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(dst, []byte(content), 0o644); err != nil {
			return err
		}
	}
	return nil
}

// makeArchive writes a zip at path with the given entry name -> content
// mapping. Entry names use forward slashes.
func makeArchive(t *testing.T, path string, files map[string]string) {
	t.Helper()

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create archive: %v", err)
	}
	zw := zip.NewWriter(f)

	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		w, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate})
		if err != nil {
			t.Fatalf("create entry %s: %v", name, err)
		}
		if _, err := w.Write([]byte(files[name])); err != nil {
			t.Fatalf("write entry %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close archive: %v", err)
	}
}

// demoArchive is the canonical fixture: one compiled entry and one
// resource.
func demoArchive(t *testing.T, dir string) string {
	t.Helper()
	p := filepath.Join(dir, "demo.jar")
	makeArchive(t, p, map[string]string{
		"com/x/Y.class": "\xca\xfe\xba\xbecompiled",
		"res/a.txt":     "resource text",
	})
	return p
}

func demoTool() *fakeTool {
	return &fakeTool{files: map[string]string{
		"com/x/Y.java": "class Y {}\n",
	}}
}

func newTestDecompiler(t *testing.T, tool Tool) *Decompiler {
	t.Helper()
	d := New(tool, nil)
	d.ScratchRoot = t.TempDir()
	return d
}

// listFiles returns the sorted slash-relative paths of all regular
// files under dir.
func listFiles(t *testing.T, dir string) []string {
	t.Helper()
	var out []string
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		out = append(out, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		t.Fatalf("walk %s: %v", dir, err)
	}
	sort.Strings(out)
	return out
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(b)
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
