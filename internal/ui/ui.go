// Package ui provides terminal user interface components
package ui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
)

var (
	// Colors
	Green   = color.New(color.FgGreen).SprintFunc()
	Yellow  = color.New(color.FgYellow).SprintFunc()
	Red     = color.New(color.FgRed).SprintFunc()
	Cyan    = color.New(color.FgCyan).SprintFunc()
	Magenta = color.New(color.FgMagenta).SprintFunc()
	Bold    = color.New(color.Bold).SprintFunc()
	Dim     = color.New(color.Faint).SprintFunc()

	// Styled
	Success = color.New(color.FgGreen, color.Bold).SprintFunc()
	Warning = color.New(color.FgYellow, color.Bold).SprintFunc()
	Error   = color.New(color.FgRed, color.Bold).SprintFunc()
)

// PrintCommand displays the extracted command
func PrintCommand(w io.Writer, cmd string) {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "✨ %s\n", Bold("Suggested command:"))
	fmt.Fprintf(w, "   %s\n", Cyan(cmd))
}

// PrintSuccess displays a success message
func PrintSuccess(message string) {
	fmt.Printf("\n%s %s\n", Success("✓"), message)
}

// PrintError displays an error message
func PrintError(message string) {
	fmt.Printf("\n%s %s\n", Error("✗"), message)
}

// PrintWarning displays a warning message
func PrintWarning(message string) {
	fmt.Printf("\n%s %s\n", Warning("⚠"), message)
}

// PrintExecutionResult displays the result of command execution
func PrintExecutionResult(w io.Writer, stdout, stderr string, exitCode int, durationMs int64) {
	fmt.Fprintln(w)

	if stdout != "" {
		fmt.Fprintln(w, stdout)
	}

	if stderr != "" {
		fmt.Fprintln(w, Yellow(stderr))
	}

	if exitCode == 0 {
		fmt.Fprintf(w, "%s Command completed successfully (%.2fs)\n", Success("✓"), float64(durationMs)/1000)
	} else {
		fmt.Fprintf(w, "%s Command failed with exit code %d (%.2fs)\n", Error("✗"), exitCode, float64(durationMs)/1000)
	}
}

// PrintWelcome displays the interactive session header
func PrintWelcome(model string) {
	fmt.Println()
	fmt.Println(Magenta("  🤖 cmdai - Natural Language Shell Assistant"))
	fmt.Printf("  %s %s\n", Dim("Model:"), Cyan(model))
	fmt.Println(Dim("  Describe what you want to do, or type !help for directives"))
	fmt.Println()
}

// Spinner represents a loading spinner
type Spinner struct {
	frames  []string
	current int
	message string
}

// NewSpinner creates a new spinner
func NewSpinner(message string) *Spinner {
	return &Spinner{
		frames:  []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"},
		message: message,
	}
}

// Frame returns the next spinner frame
func (s *Spinner) Frame() string {
	frame := s.frames[s.current]
	s.current = (s.current + 1) % len(s.frames)
	return fmt.Sprintf("\r%s %s", Cyan(frame), s.message)
}

// Clear returns a carriage-return string wide enough to erase the spinner line
func (s *Spinner) Clear() string {
	return "\r" + strings.Repeat(" ", len(s.message)+4) + "\r"
}

// FormatTimestamp renders a history timestamp for display
func FormatTimestamp(t time.Time) string {
	return t.Local().Format("2006-01-02 15:04:05")
}

// Truncate shortens s to at most maxLen runes, ellipsized.
func Truncate(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}
