package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// runInteractive drives the prompt mode: ask for an archive path and a
// mode selector, then dispatch the matching operation. Defaults mirror
// the direct subcommands: <stem>_extracted and <stem>_project.
func runInteractive(ctx context.Context, in io.Reader, out io.Writer, env *env) error {
	r := bufio.NewScanner(in)

	fmt.Fprintln(out, "=== jarsrc: archive decompiler ===")
	archive, err := ask(r, out, "Target archive path: ")
	if err != nil {
		return err
	}
	if archive == "" {
		return invalidf("archive path is required")
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "Available modes:")
	fmt.Fprintln(out, "1 - in-place (replace compiled entries with sources inside the archive)")
	fmt.Fprintln(out, "2 - unpack (sources + resources into a folder)")
	fmt.Fprintln(out, "3 - project (build-tool-ready skeleton)")
	fmt.Fprintln(out)

	mode, err := ask(r, out, "Select mode (1/2/3): ")
	if err != nil {
		return err
	}

	switch mode {
	case "1":
		return env.run(ctx, "inplace", archive, "")
	case "2":
		dest, err := askDefault(r, out, "Output folder name", stem(archive)+"_extracted")
		if err != nil {
			return err
		}
		return env.run(ctx, "unpack", archive, dest)
	case "3":
		dest, err := askDefault(r, out, "Project folder name", stem(archive)+"_project")
		if err != nil {
			return err
		}
		return env.run(ctx, "project", archive, dest)
	default:
		return invalidf("unknown mode %q", mode)
	}
}

func ask(r *bufio.Scanner, out io.Writer, prompt string) (string, error) {
	fmt.Fprint(out, prompt)
	if !r.Scan() {
		if err := r.Err(); err != nil {
			return "", err
		}
		return "", invalidf("input closed")
	}
	return strings.TrimSpace(r.Text()), nil
}

func askDefault(r *bufio.Scanner, out io.Writer, prompt, def string) (string, error) {
	v, err := ask(r, out, fmt.Sprintf("%s [%s]: ", prompt, def))
	if err != nil {
		return "", err
	}
	if v == "" {
		return def, nil
	}
	return v, nil
}
