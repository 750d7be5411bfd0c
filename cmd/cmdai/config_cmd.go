package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cmdai-tools/cmdai/internal/config"
	"github.com/cmdai-tools/cmdai/internal/ui"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := configStore.Config()
		fmt.Printf("%s\n", ui.Bold("Configuration"))
		fmt.Printf("  %-16s %s\n", "model:", ui.Cyan(cfg.Model))
		fmt.Printf("  %-16s %s\n", "url:", ui.Cyan(cfg.URL))
		fmt.Printf("  %-16s %s\n", "backend_type:", ui.Cyan(cfg.BackendType))
		fmt.Printf("  %-16s %s\n", "prompt_prefix:", ui.Truncate(cfg.PromptPrefix, 60))
		fmt.Printf("  %-16s %v\n", "auto_run_prompt:", cfg.AutoRunPrompt)
		fmt.Printf("\n%s %s\n", ui.Dim("File:"), ui.Dim(configStore.Path()))
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration option",
	Long: fmt.Sprintf("Set a configuration option and save the file.\n\nKnown keys: %s",
		strings.Join(config.Keys(), ", ")),
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := configStore.Update(args[0], args[1]); err != nil {
			return err
		}
		ui.PrintSuccess(fmt.Sprintf("%s = %s", args[0], args[1]))
		return nil
	},
}

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Edit configuration interactively",
	RunE: func(cmd *cobra.Command, args []string) error {
		reader := bufio.NewReader(os.Stdin)
		readLine := func(prompt string) (string, error) {
			fmt.Print(prompt)
			line, err := reader.ReadString('\n')
			if err != nil {
				return "", err
			}
			return strings.TrimSpace(line), nil
		}
		return config.EditMenu(configStore, readLine, os.Stdout)
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the configuration file path",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println(configStore.Path())
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configEditCmd)
	configCmd.AddCommand(configPathCmd)
}
