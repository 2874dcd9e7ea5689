// Package log is the console logger used by every vsce-audit command. Output goes
// to stdout with a colored level marker; it can be replaced with SetLogger.
package log

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
)

// DebugEnabled turns on Debugf output. Set from the root --debug flag.
var DebugEnabled bool

// Logger is the leveled logging interface.
type Logger interface {
	Errorf(format string, args ...any)
	Warnf(format string, args ...any)
	Infof(format string, args ...any)
	Successf(format string, args ...any)
	Debugf(format string, args ...any)
}

var logger Logger = &ConsoleLogger{Out: os.Stdout}

// SetLogger overwrites the default logger.
func SetLogger(l Logger) { logger = l }

func Errorf(format string, args ...any)   { logger.Errorf(format, args...) }
func Warnf(format string, args ...any)    { logger.Warnf(format, args...) }
func Infof(format string, args ...any)    { logger.Infof(format, args...) }
func Successf(format string, args ...any) { logger.Successf(format, args...) }

// Debugf prints messages only if DebugEnabled is true.
func Debugf(format string, args ...any) {
	if DebugEnabled {
		logger.Debugf(format, args...)
	}
}

var (
	infoColor    = color.New(color.FgCyan).SprintFunc()
	successColor = color.New(color.FgGreen, color.Bold).SprintFunc()
	warnColor    = color.New(color.FgYellow, color.Bold).SprintFunc()
	errorColor   = color.New(color.FgRed, color.Bold).SprintFunc()
	debugColor   = color.New(color.FgMagenta).SprintFunc()
)

// ConsoleLogger writes one line per message with a colored marker.
type ConsoleLogger struct {
	Out io.Writer
}

func (l *ConsoleLogger) print(marker, format string, args ...any) {
	fmt.Fprintf(l.Out, "%s %s\n", marker, fmt.Sprintf(format, args...))
}

func (l *ConsoleLogger) Errorf(format string, args ...any) {
	l.print(errorColor("[!]"), format, args...)
}

func (l *ConsoleLogger) Warnf(format string, args ...any) {
	l.print(warnColor("[-]"), format, args...)
}

func (l *ConsoleLogger) Infof(format string, args ...any) {
	l.print(infoColor("[+]"), format, args...)
}

func (l *ConsoleLogger) Successf(format string, args ...any) {
	l.print(successColor("[+]"), format, args...)
}

func (l *ConsoleLogger) Debugf(format string, args ...any) {
	l.print(debugColor("[DEBUG]"), format, args...)
}
