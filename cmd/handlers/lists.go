package handlers

import (
	"context"
	"fmt"
	"os"

	"bulletin/internal/core"
	"bulletin/internal/logger"

	"github.com/spf13/cobra"
)

// NewListsCmd creates the Sendy list inspection command
func NewListsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lists",
		Short: "Show Sendy subscriber lists",
		Long:  `Fetch the subscriber lists visible to the configured Sendy API key.`,
		Run: func(cmd *cobra.Command, args []string) {
			if err := runLists(); err != nil {
				logger.Error("Failed to fetch lists", err)
				os.Exit(1)
			}
		},
	}
}

func runLists() error {
	application, err := newApp()
	if err != nil {
		return err
	}
	defer func() {
		if err := application.Close(); err != nil {
			logger.Error("Failed to close application", err)
		}
	}()

	fmt.Println("📋 Sendy subscriber lists")

	resp := application.Lists(context.Background())
	if !resp.Success {
		return fmt.Errorf("fetching lists failed: %s", resp.Error)
	}

	lists := resp.Data.([]core.List)
	if len(lists) == 0 {
		fmt.Println("No lists found")
		return nil
	}

	for _, list := range lists {
		fmt.Printf("  • %s (%s)\n", list.Name, list.ID)
	}
	return nil
}
