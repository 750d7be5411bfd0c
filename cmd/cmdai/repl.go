package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"github.com/cmdai-tools/cmdai/internal/config"
	"github.com/cmdai-tools/cmdai/internal/session"
	"github.com/cmdai-tools/cmdai/internal/ui"
)

const replPrompt = "cmd-ai> "

func runInteractive() error {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	inputHistoryPath := config.DefaultInputHistoryPath()
	if f, err := os.Open(inputHistoryPath); err == nil {
		line.ReadHistory(f)
		f.Close()
	}
	defer saveInputHistory(line, inputHistoryPath)

	eng, err := newEngine(session.Options{
		Spinner: true,
		ReadLine: func(prompt string) (string, error) {
			return line.Prompt(prompt)
		},
	})
	if err != nil {
		return err
	}

	ui.PrintWelcome(configStore.Config().Model)

	ctx := context.Background()
	for {
		input, err := line.Prompt(replPrompt)
		if err != nil {
			if err == liner.ErrPromptAborted || err == io.EOF {
				fmt.Println(ui.Dim("\nExiting..."))
				return nil
			}
			return err
		}

		input = strings.TrimSpace(input)
		if input != "" && !strings.HasPrefix(input, "!") {
			line.AppendHistory(input)
		}

		// Query errors were already rendered, keep the loop alive.
		outcome, _ := eng.Dispatch(ctx, input)
		if outcome == session.Quit {
			return nil
		}
	}
}

func saveInputHistory(line *liner.State, path string) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return
	}
	f, err := os.Create(path)
	if err != nil {
		return
	}
	defer f.Close()
	line.WriteHistory(f)
}
