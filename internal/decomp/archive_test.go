package decomp

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestEntry_Mapping(t *testing.T) {
	tests := []struct {
		name     string
		entry    Entry
		compiled bool
		nested   bool
		source   string
	}{
		{"class", Entry{Name: "com/x/Y.class"}, true, false, "com/x/Y.java"},
		{"nested class", Entry{Name: "com/x/Y$Inner.class"}, true, true, "com/x/Y$Inner.java"},
		{"resource", Entry{Name: "res/a.txt"}, false, false, ""},
		{"uppercase ext", Entry{Name: "A.CLASS"}, true, false, "A.java"},
		{"directory", Entry{Name: "com/x", IsDir: true}, false, false, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.entry.Compiled(); got != tt.compiled {
				t.Errorf("Compiled() = %v, want %v", got, tt.compiled)
			}
			if got := tt.entry.Nested(); got != tt.nested {
				t.Errorf("Nested() = %v, want %v", got, tt.nested)
			}
			if tt.compiled {
				if got := tt.entry.SourcePath(); got != tt.source {
					t.Errorf("SourcePath() = %q, want %q", got, tt.source)
				}
			}
		})
	}
}

// TestExtractAll_RejectsTraversal verifies hostile entry names abort
// extraction and write nothing outside the output root.
func TestExtractAll_RejectsTraversal(t *testing.T) {
	tmp := t.TempDir()
	archive := filepath.Join(tmp, "evil.jar")
	makeArchive(t, archive, map[string]string{
		"../escape.txt": "should never land",
	})

	out := filepath.Join(tmp, "sandbox", "output")
	if err := os.MkdirAll(out, 0o755); err != nil {
		t.Fatal(err)
	}

	err := extractAll(context.Background(), archive, out, nil)
	if err == nil {
		t.Fatal("extraction of traversal entry succeeded")
	}
	if _, err := os.Stat(filepath.Join(tmp, "sandbox", "escape.txt")); !os.IsNotExist(err) {
		t.Error("traversal entry escaped the output root")
	}
}

// TestUnpack_TraversalIsIOFailure verifies the operation-level
// classification of hostile archives.
func TestUnpack_TraversalIsIOFailure(t *testing.T) {
	tmp := t.TempDir()
	archive := filepath.Join(tmp, "evil.jar")
	makeArchive(t, archive, map[string]string{
		"../escape.txt": "x",
		"ok.txt":        "y",
	})

	d := newTestDecompiler(t, demoTool())
	_, err := d.Unpack(context.Background(), archive, filepath.Join(tmp, "out"))
	if !errors.Is(err, ErrIO) {
		t.Fatalf("error = %v, want ErrIO", err)
	}
}

func TestListEntries_NotAnArchive(t *testing.T) {
	tmp := t.TempDir()
	bogus := filepath.Join(tmp, "bogus.jar")
	if err := os.WriteFile(bogus, []byte("not a zip at all"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := listEntries(context.Background(), bogus); err == nil {
		t.Fatal("expected identification failure for non-archive input")
	}
}

func TestWriteArchive_Roundtrip(t *testing.T) {
	tmp := t.TempDir()
	src := filepath.Join(tmp, "tree")
	if err := os.MkdirAll(filepath.Join(src, "com", "x"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(src, "com", "x", "Y.java"), []byte("class Y {}"), 0o644); err != nil {
		t.Fatal(err)
	}

	out := filepath.Join(tmp, "out.jar")
	if err := writeArchive(src, out); err != nil {
		t.Fatalf("writeArchive failed: %v", err)
	}

	entries, err := listEntries(context.Background(), out)
	if err != nil {
		t.Fatalf("listEntries failed: %v", err)
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir {
			names = append(names, e.Name)
		}
	}
	if !equalStrings(names, []string{"com/x/Y.java"}) {
		t.Errorf("roundtrip entries = %v", names)
	}
}
