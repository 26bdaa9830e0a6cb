package decomp

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/mholt/archives"
	"github.com/yeka/zip"
)

const copyBufferSize = 64 * 1024

// Entry describes one archive member, with its archive-internal
// forward-slash path.
type Entry struct {
	Name  string
	Size  int64
	IsDir bool
}

// Compiled reports whether the entry is a compiled class file.
func (e Entry) Compiled() bool {
	return !e.IsDir && strings.EqualFold(path.Ext(e.Name), ".class")
}

// Nested reports whether the entry is a nested class. Nested classes
// fold into the enclosing top-level source file and have no decompiled
// output of their own.
func (e Entry) Nested() bool {
	return strings.Contains(strings.TrimSuffix(path.Base(e.Name), path.Ext(e.Name)), "$")
}

// SourcePath maps a compiled entry's archive path to the relative path
// of its decompiled source. The package-qualified path is preserved:
// com/x/Y.class -> com/x/Y.java.
func (e Entry) SourcePath() string {
	return strings.TrimSuffix(e.Name, path.Ext(e.Name)) + ".java"
}

// openExtractor identifies the archive format and returns the extractor
// with a positioned input reader. The caller owns closing the file.
func openExtractor(ctx context.Context, archivePath string) (archives.Extractor, io.Reader, *os.File, error) {
	f, err := os.Open(archivePath)
	if err != nil {
		return nil, nil, nil, err
	}
	format, input, err := archives.Identify(ctx, archivePath, f)
	if err != nil {
		f.Close()
		return nil, nil, nil, fmt.Errorf("identify %s: %w", archivePath, err)
	}
	ex, ok := format.(archives.Extractor)
	if !ok {
		f.Close()
		return nil, nil, nil, fmt.Errorf("%s: format %T does not support extraction", archivePath, format)
	}
	return ex, input, f, nil
}

// listEntries enumerates the archive without writing anything.
func listEntries(ctx context.Context, archivePath string) ([]Entry, error) {
	ex, input, f, err := openExtractor(ctx, archivePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var entries []Entry
	err = ex.Extract(ctx, input, func(ctx context.Context, fi archives.FileInfo) error {
		entries = append(entries, Entry{
			Name:  path.Clean(filepath.ToSlash(fi.NameInArchive)),
			Size:  fi.Size(),
			IsDir: fi.IsDir(),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// extractAll unpacks every entry under dstDir, preserving the archive's
// internal relative paths. Entry names that escape dstDir abort the
// extraction. progress may be nil.
func extractAll(ctx context.Context, archivePath, dstDir string, progress func()) error {
	ex, input, f, err := openExtractor(ctx, archivePath)
	if err != nil {
		return err
	}
	defer f.Close()

	root := filepath.Clean(dstDir) + string(os.PathSeparator)
	return ex.Extract(ctx, input, func(ctx context.Context, fi archives.FileInfo) error {
		if progress != nil {
			progress()
		}

		target := filepath.Clean(filepath.Join(dstDir, fi.NameInArchive))
		if !strings.HasPrefix(target+string(os.PathSeparator), root) {
			return fmt.Errorf("entry %q escapes extraction root", fi.NameInArchive)
		}

		if fi.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		if fi.Mode()&os.ModeSymlink != 0 {
			// Class archives do not carry meaningful symlinks.
			return nil
		}
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return err
		}

		rc, err := fi.Open()
		if err != nil {
			return err
		}
		defer rc.Close()

		w, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
		if err != nil {
			return err
		}
		if _, err := io.CopyBuffer(w, rc, make([]byte, copyBufferSize)); err != nil {
			w.Close()
			os.Remove(target)
			return err
		}
		return w.Close()
	})
}

// writeArchive packs every regular file under srcDir into a deflated
// zip at dstPath, entry names relative to srcDir.
func writeArchive(srcDir, dstPath string) error {
	out, err := os.Create(dstPath)
	if err != nil {
		return err
	}
	zw := zip.NewWriter(out)

	err = filepath.Walk(srcDir, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(srcDir, p)
		if err != nil {
			return err
		}
		w, err := zw.CreateHeader(&zip.FileHeader{
			Name:   filepath.ToSlash(rel),
			Method: zip.Deflate,
		})
		if err != nil {
			return err
		}
		in, err := os.Open(p)
		if err != nil {
			return err
		}
		_, err = io.CopyBuffer(w, in, make([]byte, copyBufferSize))
		in.Close()
		return err
	})
	if err != nil {
		zw.Close()
		out.Close()
		os.Remove(dstPath)
		return err
	}
	if err := zw.Close(); err != nil {
		out.Close()
		os.Remove(dstPath)
		return err
	}
	return out.Close()
}

// removeCompiled deletes every .class file under dir. Sources are
// verified to exist before this runs, so the swap is total.
func removeCompiled(dir string) error {
	return filepath.Walk(dir, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !strings.EqualFold(filepath.Ext(p), ".class") {
			return nil
		}
		return os.Remove(p)
	})
}

// copyTree copies every regular file under srcDir to the corresponding
// relative path under dstDir.
func copyTree(srcDir, dstDir string) error {
	return filepath.Walk(srcDir, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(srcDir, p)
		if err != nil {
			return err
		}
		dst := filepath.Join(dstDir, rel)
		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return err
		}
		return copyFile(p, dst)
	})
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.CopyBuffer(out, in, make([]byte, copyBufferSize)); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	return out.Close()
}
