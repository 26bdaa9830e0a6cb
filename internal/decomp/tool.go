package decomp

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"syscall"
	"time"
)

// Tool is the external decompiler collaborator. Given an archive of
// compiled classes it writes one source file per top-level class into
// outputDir, mirroring the internal package paths. Tests substitute a
// fake; production uses CFRTool.
type Tool interface {
	// Validate checks that the tool can be invoked. It must not touch
	// the filesystem beyond read-only probes.
	Validate() error

	// Decompile runs the tool against input, writing sources under
	// outputDir. It blocks until the tool exits.
	Decompile(ctx context.Context, input, outputDir string) error
}

// CFRTool invokes the CFR decompiler jar through a JVM:
//
//	java -jar cfr.jar <input> --outputdir <dir> --silent true
type CFRTool struct {
	// JarPath locates the CFR jar.
	JarPath string

	// JavaPath is the JVM binary; resolved via PATH when not absolute.
	JavaPath string

	// ExtraArgs are appended verbatim to the CFR command line.
	ExtraArgs []string

	// Timeout bounds a single invocation. Zero means no timeout.
	Timeout time.Duration
}

func (t *CFRTool) Validate() error {
	info, err := os.Stat(t.JarPath)
	if err != nil {
		return opErrorf(ErrToolUnavailable, "", t.JarPath, "decompiler jar not found")
	}
	if info.IsDir() {
		return opErrorf(ErrToolUnavailable, "", t.JarPath, "decompiler jar is a directory")
	}
	if _, err := exec.LookPath(t.JavaPath); err != nil {
		return opErrorf(ErrToolUnavailable, "", t.JavaPath, "java binary not runnable")
	}
	return nil
}

func (t *CFRTool) Decompile(ctx context.Context, input, outputDir string) error {
	if t.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.Timeout)
		defer cancel()
	}

	args := []string{"-jar", t.JarPath, input, "--outputdir", outputDir, "--silent", "true"}
	args = append(args, t.ExtraArgs...)
	cmd := exec.Command(t.JavaPath, args...)

	// Own process group so cancellation kills the JVM and anything it
	// forked, not just the direct child.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return &OpError{Kind: ErrToolUnavailable, Path: t.JavaPath, Err: err}
	}

	done := make(chan error, 1)
	go func() {
		done <- cmd.Wait()
	}()

	select {
	case <-ctx.Done():
		if cmd.Process != nil {
			syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
		}
		<-done
		return opErrorf(ErrToolInvocation, "", input, "terminated: %v", ctx.Err())
	case err := <-done:
		if err == nil {
			return nil
		}
		if exitErr, ok := err.(*exec.ExitError); ok {
			return opErrorf(ErrToolInvocation, "", input,
				"exit code %d: %s", exitErr.ExitCode(), firstLine(stderr.Bytes()))
		}
		return &OpError{Kind: ErrToolInvocation, Path: input, Err: err}
	}
}

func firstLine(b []byte) string {
	s := strings.TrimSpace(string(b))
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	if s == "" {
		return "(no stderr)"
	}
	return s
}

// stringer for log lines.
func (t *CFRTool) String() string {
	return fmt.Sprintf("%s -jar %s", t.JavaPath, t.JarPath)
}
