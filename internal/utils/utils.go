// Package utils holds terminal output helpers for the CLI.
package utils

import (
	"fmt"
	"io"
	"os"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
)

var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

func printLine(w io.Writer, color, mark, msg string, args ...any) {
	line := mark + " " + fmt.Sprintf(msg, args...)
	if _, off := os.LookupEnv("NO_COLOR"); off {
		fmt.Fprintln(w, line)
		return
	}
	fmt.Fprintln(w, color+line+colorReset)
}

// PrintSuccess prints a success message
func PrintSuccess(msg string, args ...any) {
	printLine(stdout, colorGreen, "✓", msg, args...)
}

// PrintError prints an error message to stderr
func PrintError(msg string, args ...any) {
	printLine(stderr, colorRed, "✗", msg, args...)
}

// PrintInfo prints an info message
func PrintInfo(msg string, args ...any) {
	printLine(stdout, colorCyan, "ℹ", msg, args...)
}

// PrintWarning prints a warning message to stderr
func PrintWarning(msg string, args ...any) {
	printLine(stderr, colorYellow, "⚠", msg, args...)
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}
