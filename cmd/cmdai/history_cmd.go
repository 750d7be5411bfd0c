package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cmdai-tools/cmdai/internal/ui"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show past exchanges",
	RunE: func(cmd *cobra.Command, args []string) error {
		defer closeHistory()
		if historyStore == nil {
			return fmt.Errorf("history is unavailable")
		}
		entries, err := historyStore.List()
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Println(ui.Dim("No history yet."))
			return nil
		}
		for i, entry := range entries {
			fmt.Printf("%s %s\n", ui.Dim(fmt.Sprintf("[%d]", i+1)), ui.Dim(ui.FormatTimestamp(entry.Timestamp)))
			fmt.Printf("  %s %s\n", ui.Bold("Q:"), entry.Query)
			fmt.Printf("  %s %s\n", ui.Bold("A:"), ui.Truncate(strings.ReplaceAll(entry.Response, "\n", " "), 120))
		}
		return nil
	},
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all history entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		defer closeHistory()
		if historyStore == nil {
			return fmt.Errorf("history is unavailable")
		}
		if err := historyStore.Clear(); err != nil {
			return err
		}
		ui.PrintSuccess("History cleared")
		return nil
	},
}

var historyPruneCmd = &cobra.Command{
	Use:   "prune [n]",
	Short: "Keep only the n most recent entries (default 20)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		defer closeHistory()
		if historyStore == nil {
			return fmt.Errorf("history is unavailable")
		}
		keep := 20
		if len(args) == 1 {
			n, err := strconv.Atoi(args[0])
			if err != nil || n < 0 {
				return fmt.Errorf("invalid count %q", args[0])
			}
			keep = n
		}
		removed, err := historyStore.Prune(keep)
		if err != nil {
			return err
		}
		ui.PrintSuccess(fmt.Sprintf("Removed %d entries, kept the %d most recent", removed, keep))
		return nil
	},
}

func init() {
	historyCmd.AddCommand(historyClearCmd)
	historyCmd.AddCommand(historyPruneCmd)
}
