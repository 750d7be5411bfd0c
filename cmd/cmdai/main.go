// cmdai turns natural-language requests into shell commands using a
// local model.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/cmdai-tools/cmdai/internal/backend"
	"github.com/cmdai-tools/cmdai/internal/config"
	"github.com/cmdai-tools/cmdai/internal/history"
	"github.com/cmdai-tools/cmdai/internal/session"
	"github.com/cmdai-tools/cmdai/internal/shell"
	"github.com/cmdai-tools/cmdai/internal/ui"
)

var (
	flagTimeout int
	flagNoRun   bool
	flagConfig  string

	configStore  *config.Store
	historyStore *history.Store
)

var rootCmd = &cobra.Command{
	Use:   "cmdai [query]",
	Short: "Natural language shell assistant",
	Long: `cmdai asks a locally running model to translate natural language
into shell commands. With no arguments it starts an interactive
session; with arguments it answers one query and exits.`,
	Args:          cobra.ArbitraryArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initializeApp()
	},
	RunE: runMain,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config file path")
	rootCmd.Flags().IntVar(&flagTimeout, "timeout", 60, "query timeout in seconds")
	rootCmd.Flags().BoolVar(&flagNoRun, "no-run", false, "never offer to run suggested commands")

	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(modelsCmd)
}

func initializeApp() error {
	configStore = config.NewStore(flagConfig)
	if err := configStore.Load(); err != nil {
		var loadErr *config.LoadError
		if errors.As(err, &loadErr) {
			ui.PrintWarning(fmt.Sprintf("%v, using defaults", loadErr))
		} else {
			return fmt.Errorf("failed to load config: %w", err)
		}
	}

	store, err := history.NewStore(config.DefaultHistoryPath())
	if err != nil {
		ui.PrintWarning(fmt.Sprintf("history unavailable: %v", err))
		historyStore = nil
	} else {
		historyStore = store
	}
	return nil
}

func newEngine(opts session.Options) (*session.Engine, error) {
	makeBackend := func(cfg config.Config) (session.Backend, error) {
		return backend.New(cfg, backend.WithTimeout(time.Duration(flagTimeout)*time.Second))
	}
	be, err := makeBackend(configStore.Config())
	if err != nil {
		return nil, err
	}

	// A nil *history.Store must not become a non-nil interface.
	var hist session.HistoryStore
	if historyStore != nil {
		hist = historyStore
	}

	opts.NoRun = opts.NoRun || flagNoRun
	opts.NewBackend = makeBackend
	return session.New(configStore, hist, be, shell.NewRunner(), opts), nil
}

func runMain(cmd *cobra.Command, args []string) error {
	defer closeHistory()

	if len(args) == 0 {
		return runInteractive()
	}

	query := strings.Join(args, " ")
	reader := bufio.NewReader(os.Stdin)
	eng, err := newEngine(session.Options{
		Spinner: true,
		ReadLine: func(prompt string) (string, error) {
			fmt.Print(prompt)
			line, err := reader.ReadString('\n')
			if err != nil {
				return "", err
			}
			return strings.TrimSpace(line), nil
		},
	})
	if err != nil {
		return err
	}
	return eng.RunOnce(context.Background(), query)
}

func closeHistory() {
	if historyStore != nil {
		historyStore.Close()
	}
}

func main() {
	err := rootCmd.Execute()
	code := session.ExitCode(err)
	if err != nil && code == 1 {
		// Codes 2-4 were already rendered by the engine.
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	os.Exit(code)
}
