// Package config - interactive configuration editor
package config

import (
	"fmt"
	"io"
	"strings"
)

// ReadLineFunc prompts the user and returns one line of input.
type ReadLineFunc func(prompt string) (string, error)

// EditMenu runs the interactive configuration menu against the store.
// Changes are applied through Update, so they are validated and persisted
// immediately.
func EditMenu(s *Store, readLine ReadLineFunc, out io.Writer) error {
	cfg := s.Config()

	runStatus := "Disabled"
	if cfg.AutoRunPrompt {
		runStatus = "Enabled"
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "Current configuration:")
	fmt.Fprintf(out, "  Model:              %s\n", cfg.Model)
	fmt.Fprintf(out, "  API URL:            %s\n", cfg.URL)
	fmt.Fprintf(out, "  Backend:            %s\n", cfg.BackendType)
	fmt.Fprintf(out, "  Run command prompt: %s\n", runStatus)
	fmt.Fprintf(out, "  Prompt prefix:      %s\n", truncate(cfg.PromptPrefix, 50))
	fmt.Fprintln(out)
	fmt.Fprintln(out, "What would you like to change?")
	fmt.Fprintln(out, "  1. Model name")
	fmt.Fprintln(out, "  2. API URL")
	fmt.Fprintln(out, "  3. Prompt prefix")
	fmt.Fprintln(out, "  4. Toggle run command prompt")
	fmt.Fprintln(out, "  5. Save and exit")

	choice, err := readLine("\nEnter your choice (1-5) [5]: ")
	if err != nil {
		return nil
	}
	choice = strings.TrimSpace(choice)

	switch choice {
	case "1":
		value, err := askValue(readLine, "Enter new model name", cfg.Model)
		if err != nil {
			return nil
		}
		if err := s.Update("model", value); err != nil {
			return err
		}
	case "2":
		value, err := askValue(readLine, "Enter new API URL", cfg.URL)
		if err != nil {
			return nil
		}
		if err := s.Update("url", value); err != nil {
			return err
		}
	case "3":
		fmt.Fprintf(out, "\nCurrent prompt prefix:\n%s\n", cfg.PromptPrefix)
		value, err := askValue(readLine, "Enter new prompt prefix", cfg.PromptPrefix)
		if err != nil {
			return nil
		}
		if err := s.Update("prompt_prefix", value); err != nil {
			return err
		}
	case "4":
		next := "true"
		action := "enabled"
		if cfg.AutoRunPrompt {
			next = "false"
			action = "disabled"
		}
		if err := s.Update("auto_run_prompt", next); err != nil {
			return err
		}
		fmt.Fprintf(out, "Run command prompt %s.\n", action)
	case "5", "":
		// Nothing to change, still persist so first-run creates the file.
		if err := s.Save(); err != nil {
			return err
		}
	default:
		fmt.Fprintln(out, "Invalid choice")
		return nil
	}

	fmt.Fprintln(out, "Configuration saved")
	return nil
}

// askValue prompts with a default; empty input keeps the current value.
func askValue(readLine ReadLineFunc, prompt, current string) (string, error) {
	input, err := readLine(fmt.Sprintf("%s [%s]: ", prompt, truncate(current, 40)))
	if err != nil {
		return "", err
	}
	input = strings.TrimSpace(input)
	if input == "" {
		return current, nil
	}
	return input, nil
}

func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-3]) + "..."
}
