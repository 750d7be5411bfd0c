// Package session drives the REPL and one-shot query flows.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/cmdai-tools/cmdai/internal/backend"
	"github.com/cmdai-tools/cmdai/internal/config"
	"github.com/cmdai-tools/cmdai/internal/shell"
	"github.com/cmdai-tools/cmdai/internal/types"
	"github.com/cmdai-tools/cmdai/internal/ui"
)

// Backend answers natural-language queries.
type Backend interface {
	Name() string
	Query(ctx context.Context, userText string) (string, error)
}

// Runner executes extracted shell commands.
type Runner interface {
	Run(ctx context.Context, commandText string) (*shell.Result, error)
}

// HistoryStore records completed exchanges.
type HistoryStore interface {
	Append(entry *types.HistoryEntry) error
	List() ([]*types.HistoryEntry, error)
	Clear() error
}

// Outcome tells the caller whether the session should keep going.
type Outcome int

const (
	Continue Outcome = iota
	Quit
)

// Options configures an Engine.
type Options struct {
	Output   io.Writer
	ReadLine func(prompt string) (string, error)
	Spinner  bool
	NoRun    bool

	// NewBackend rebuilds the client from the current configuration after
	// an in-session config edit, so the next query uses the new settings.
	NewBackend func(cfg config.Config) (Backend, error)
}

// Engine holds one session's state. It is not safe for concurrent use;
// the REPL and one-shot paths both drive it from a single goroutine.
type Engine struct {
	store    *config.Store
	history  HistoryStore
	backend  Backend
	runner   Runner
	out        io.Writer
	readLine   func(prompt string) (string, error)
	spinner    bool
	noRun      bool
	newBackend func(cfg config.Config) (Backend, error)

	busy bool
}

func New(store *config.Store, history HistoryStore, be Backend, runner Runner, opts Options) *Engine {
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}
	readLine := opts.ReadLine
	if readLine == nil {
		readLine = func(prompt string) (string, error) {
			return "", io.EOF
		}
	}
	return &Engine{
		store:      store,
		history:    history,
		backend:    be,
		runner:     runner,
		out:        out,
		readLine:   readLine,
		spinner:    opts.Spinner,
		noRun:      opts.NoRun,
		newBackend: opts.NewBackend,
	}
}

// Busy reports whether a query is in flight.
func (e *Engine) Busy() bool {
	return e.busy
}

// Dispatch routes one line of input. Empty input is a no-op, lines
// starting with "!" are directives, everything else goes to the backend.
func (e *Engine) Dispatch(ctx context.Context, input string) (Outcome, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return Continue, nil
	}
	if e.busy {
		fmt.Fprintf(e.out, "%s a query is already in progress\n", ui.Warning("⚠"))
		return Continue, nil
	}
	if strings.HasPrefix(input, "!") {
		return e.runDirective(input), nil
	}
	return Continue, e.Query(ctx, input)
}

func (e *Engine) runDirective(input string) Outcome {
	directive := strings.Fields(input)[0]
	switch directive {
	case "!help":
		e.printHelp()
	case "!config":
		if err := config.EditMenu(e.store, e.readLine, e.out); err != nil {
			fmt.Fprintf(e.out, "%s %v\n", ui.Error("✗"), err)
		} else {
			e.refreshBackend()
		}
	case "!history":
		e.printHistory()
	case "!clear":
		e.clearHistory()
	case "!quit", "!exit", "!q":
		fmt.Fprintln(e.out, ui.Dim("Goodbye!"))
		return Quit
	default:
		fmt.Fprintf(e.out, "%s unknown directive %s, type %s for a list\n",
			ui.Warning("⚠"), ui.Bold(directive), ui.Cyan("!help"))
	}
	return Continue
}

// Query sends text to the backend, renders the answer, records the
// exchange, and optionally offers to run an extracted command.
func (e *Engine) Query(ctx context.Context, userText string) error {
	e.busy = true
	defer func() { e.busy = false }()

	type queryResult struct {
		response string
		err      error
	}
	resultCh := make(chan queryResult, 1)
	go func() {
		response, err := e.backend.Query(ctx, userText)
		resultCh <- queryResult{response, err}
	}()

	var result queryResult
	if e.spinner {
		spinner := ui.NewSpinner("Thinking...")
		ticker := time.NewTicker(100 * time.Millisecond)
	wait:
		for {
			select {
			case result = <-resultCh:
				fmt.Fprint(e.out, spinner.Clear())
				break wait
			case <-ticker.C:
				fmt.Fprint(e.out, spinner.Frame())
			}
		}
		ticker.Stop()
	} else {
		result = <-resultCh
	}

	if result.err != nil {
		e.renderQueryError(result.err)
		return result.err
	}

	if result.response == "" {
		fmt.Fprintf(e.out, "%s the model returned an empty response\n", ui.Warning("⚠"))
	} else {
		fmt.Fprintf(e.out, "\n%s\n%s\n", ui.Bold("Response:"), result.response)
	}

	e.appendHistory(userText, result.response)

	cfg := e.store.Config()
	if cfg.AutoRunPrompt && !e.noRun && result.response != "" {
		return e.confirmAndRun(ctx, ExtractCommand(result.response))
	}
	return nil
}

// RunOnce handles a single non-interactive query.
func (e *Engine) RunOnce(ctx context.Context, query string) error {
	return e.Query(ctx, query)
}

// refreshBackend rebuilds the client from the saved configuration so
// edits made through !config apply to the next query in this session.
func (e *Engine) refreshBackend() {
	if e.newBackend == nil {
		return
	}
	be, err := e.newBackend(e.store.Config())
	if err != nil {
		fmt.Fprintf(e.out, "%s %v\n", ui.Error("✗"), err)
		return
	}
	e.backend = be
}

func (e *Engine) renderQueryError(err error) {
	var timeoutErr *backend.TimeoutError
	var unreachableErr *backend.UnreachableError
	switch {
	case errors.As(err, &timeoutErr):
		fmt.Fprintf(e.out, "%s %v\n", ui.Error("✗"), timeoutErr)
		fmt.Fprintln(e.out, ui.Dim("The model may still be loading, try again in a moment"))
	case errors.As(err, &unreachableErr):
		fmt.Fprintf(e.out, "%s %v\n", ui.Error("✗"), unreachableErr)
		fmt.Fprintln(e.out, ui.Dim("Is the backend running? Check the configured URL with !config"))
	default:
		fmt.Fprintf(e.out, "%s query failed: %v\n", ui.Error("✗"), err)
	}
}

// appendHistory records the exchange. Persistence failures only warn,
// the session keeps going.
func (e *Engine) appendHistory(query, response string) {
	if e.history == nil {
		return
	}
	entry := &types.HistoryEntry{
		Query:    query,
		Response: response,
	}
	if err := e.history.Append(entry); err != nil {
		var perr *types.PersistenceError
		if errors.As(err, &perr) {
			fmt.Fprintf(e.out, "%s could not record history: %v\n", ui.Warning("⚠"), perr)
			return
		}
		fmt.Fprintf(e.out, "%s could not record history: %v\n", ui.Warning("⚠"), err)
	}
}

func (e *Engine) confirmAndRun(ctx context.Context, commandText string) error {
	if strings.TrimSpace(commandText) == "" {
		return nil
	}

	ui.PrintCommand(e.out, commandText)

	answer, err := e.readLine("Run this command? [y/N]: ")
	if err != nil {
		return nil
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	if answer != "y" && answer != "yes" {
		fmt.Fprintln(e.out, ui.Dim("Skipped."))
		return nil
	}

	result, err := e.runner.Run(ctx, commandText)
	if err != nil {
		fmt.Fprintf(e.out, "%s %v\n", ui.Error("✗"), err)
		return err
	}
	ui.PrintExecutionResult(e.out, result.Stdout, result.Stderr, result.ExitCode, result.DurationMs)
	return nil
}

func (e *Engine) printHistory() {
	if e.history == nil {
		fmt.Fprintf(e.out, "%s history is unavailable this session\n", ui.Warning("⚠"))
		return
	}
	entries, err := e.history.List()
	if err != nil {
		fmt.Fprintf(e.out, "%s could not read history: %v\n", ui.Error("✗"), err)
		return
	}
	if len(entries) == 0 {
		fmt.Fprintln(e.out, ui.Dim("No history yet."))
		return
	}
	fmt.Fprintln(e.out)
	for i, entry := range entries {
		fmt.Fprintf(e.out, "%s %s\n", ui.Dim(fmt.Sprintf("[%d]", i+1)), ui.Dim(ui.FormatTimestamp(entry.Timestamp)))
		fmt.Fprintf(e.out, "  %s %s\n", ui.Bold("Q:"), entry.Query)
		fmt.Fprintf(e.out, "  %s %s\n", ui.Bold("A:"), ui.Truncate(strings.ReplaceAll(entry.Response, "\n", " "), 120))
	}
}

func (e *Engine) clearHistory() {
	if e.history == nil {
		fmt.Fprintf(e.out, "%s history is unavailable this session\n", ui.Warning("⚠"))
		return
	}
	if err := e.history.Clear(); err != nil {
		fmt.Fprintf(e.out, "%s could not clear history: %v\n", ui.Error("✗"), err)
		return
	}
	fmt.Fprintf(e.out, "%s History cleared\n", ui.Success("✓"))
}

func (e *Engine) printHelp() {
	cfg := e.store.Config()
	autoRun := ui.Red("off")
	if cfg.AutoRunPrompt {
		autoRun = ui.Green("on")
	}
	fmt.Fprintln(e.out)
	fmt.Fprintln(e.out, ui.Bold("Directives:"))
	fmt.Fprintf(e.out, "  %s     show this help\n", ui.Cyan("!help"))
	fmt.Fprintf(e.out, "  %s   edit configuration\n", ui.Cyan("!config"))
	fmt.Fprintf(e.out, "  %s  show past exchanges\n", ui.Cyan("!history"))
	fmt.Fprintf(e.out, "  %s    clear history\n", ui.Cyan("!clear"))
	fmt.Fprintf(e.out, "  %s     leave the session\n", ui.Cyan("!quit"))
	fmt.Fprintln(e.out)
	fmt.Fprintf(e.out, "Model: %s   Command prompt: %s\n", ui.Cyan(cfg.Model), autoRun)
	fmt.Fprintln(e.out)
	fmt.Fprintln(e.out, ui.Bold("Examples:"))
	fmt.Fprintln(e.out, ui.Dim("  find all files larger than 100MB"))
	fmt.Fprintln(e.out, ui.Dim("  show listening TCP ports"))
	fmt.Fprintln(e.out)
}

// ExitCode maps a session error to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var timeoutErr *backend.TimeoutError
	var unreachableErr *backend.UnreachableError
	var execErr *shell.ExecutionError
	switch {
	case errors.As(err, &unreachableErr):
		return 2
	case errors.As(err, &timeoutErr):
		return 3
	case errors.As(err, &execErr):
		return 4
	default:
		return 1
	}
}
