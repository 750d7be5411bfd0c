package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/cmdai-tools/cmdai/internal/backend"
	"github.com/cmdai-tools/cmdai/internal/ui"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List models available on the backend",
	RunE: func(cmd *cobra.Command, args []string) error {
		be, err := backend.New(configStore.Config(), backend.WithTimeout(10*time.Second))
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		models, err := be.ListModels(ctx)
		if err != nil {
			// Typed backend errors map to exit codes 2 and 3, which
			// main does not print, so render them here.
			ui.PrintError(err.Error())
			return err
		}
		if len(models) == 0 {
			fmt.Println(ui.Dim("No models installed."))
			return nil
		}

		current := configStore.Config().Model
		fmt.Printf("%s\n", ui.Bold("Available models"))
		for _, name := range models {
			marker := " "
			if name == current {
				marker = ui.Green("*")
			}
			fmt.Printf(" %s %s\n", marker, name)
		}
		return nil
	},
}
