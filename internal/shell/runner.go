// Package shell runs suggested commands through the user's shell.
package shell

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"mvdan.cc/sh/v3/syntax"
)

// Result captures everything observed while running one command.
type Result struct {
	Command    string `json:"command"`
	ExitCode   int    `json:"exit_code"`
	Stdout     string `json:"stdout"`
	Stderr     string `json:"stderr"`
	DurationMs int64  `json:"duration_ms"`
}

// ExecutionError means a command could not be started at all. A command
// that ran and exited non-zero is a normal Result, not an ExecutionError.
type ExecutionError struct {
	Command string
	Err     error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("failed to execute %q: %v", e.Command, e.Err)
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}

// Runner spawns commands via `<shell> -c`.
type Runner struct {
	shell string
}

func NewRunner() *Runner {
	return &Runner{shell: userShell()}
}

func userShell() string {
	if s := os.Getenv("SHELL"); s != "" {
		return filepath.Base(s)
	}
	return "sh"
}

// Run executes commandText and waits for it to finish. The command's
// exit code is reported in the Result, never as an error.
func (r *Runner) Run(ctx context.Context, commandText string) (*Result, error) {
	commandText = strings.TrimSpace(commandText)
	if commandText == "" {
		return nil, &ExecutionError{Command: commandText, Err: fmt.Errorf("empty command")}
	}

	if err := checkSyntax(commandText); err != nil {
		return nil, &ExecutionError{Command: commandText, Err: err}
	}

	cmd := exec.CommandContext(ctx, r.shell, "-c", commandText)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.Stdin = os.Stdin

	start := time.Now()
	err := cmd.Run()
	elapsed := time.Since(start)

	result := &Result{
		Command:    commandText,
		Stdout:     stdout.String(),
		Stderr:     stderr.String(),
		DurationMs: elapsed.Milliseconds(),
	}

	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			result.ExitCode = exitErr.ExitCode()
			return result, nil
		}
		return nil, &ExecutionError{Command: commandText, Err: err}
	}

	return result, nil
}

// checkSyntax rejects command text the shell itself would refuse, so a
// truncated or garbled suggestion fails before anything is spawned.
func checkSyntax(commandText string) error {
	parser := syntax.NewParser()
	_, err := parser.Parse(strings.NewReader(commandText), "")
	if err != nil {
		return fmt.Errorf("invalid shell syntax: %w", err)
	}
	return nil
}
