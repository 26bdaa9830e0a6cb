// Package console provides leveled, colorized terminal output for the
// jarsrc CLI. All log lines go to stderr so stdout stays reserved for
// the resulting destination path.
package console

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
)

type Logger struct {
	quiet  bool
	debug  bool
	red    func(a ...interface{}) string
	green  func(a ...interface{}) string
	yellow func(a ...interface{}) string
	blue   func(a ...interface{}) string
	cyan   func(a ...interface{}) string
}

func New(quiet, debug bool) *Logger {
	if quiet {
		debug = false
	}
	return &Logger{
		quiet:  quiet,
		debug:  debug,
		red:    color.New(color.FgRed).SprintFunc(),
		green:  color.New(color.FgGreen).SprintFunc(),
		yellow: color.New(color.FgYellow).SprintFunc(),
		blue:   color.New(color.FgBlue).SprintFunc(),
		cyan:   color.New(color.FgCyan).SprintFunc(),
	}
}

func (l *Logger) logf(level string, paint func(a ...interface{}) string, format string, args ...interface{}) {
	if l == nil || l.quiet {
		return
	}
	fmt.Fprintf(os.Stderr, paint("["+level+"] ")+format+"\n", args...)
}

func (l *Logger) Error(format string, args ...interface{}) {
	// Errors print even in quiet mode.
	if l == nil {
		return
	}
	fmt.Fprintf(os.Stderr, l.red("[ERROR] ")+format+"\n", args...)
}

func (l *Logger) Warn(format string, args ...interface{}) {
	if l == nil {
		return
	}
	l.logf("WARN", l.yellow, format, args...)
}

func (l *Logger) Info(format string, args ...interface{}) {
	if l == nil {
		return
	}
	l.logf("INFO", l.green, format, args...)
}

func (l *Logger) Success(format string, args ...interface{}) {
	if l == nil {
		return
	}
	l.logf("OK", l.green, format, args...)
}

func (l *Logger) Debug(format string, args ...interface{}) {
	if l == nil || !l.debug {
		return
	}
	l.logf("DEBUG", l.blue, format, args...)
}

// Path highlights a filesystem path inside a log line.
func (l *Logger) Path(p string) string {
	if l == nil {
		return p
	}
	return l.cyan(p)
}

// Bar returns an entry progress bar, or nil when output is suppressed.
// Callers must tolerate nil.
func (l *Logger) Bar(total int, description string) *progressbar.ProgressBar {
	if l == nil || l.quiet || total <= 0 {
		return nil
	}
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription(description),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
}
