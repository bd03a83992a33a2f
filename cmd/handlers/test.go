package handlers

import (
	"context"
	"fmt"
	"os"

	"bulletin/internal/logger"

	"github.com/spf13/cobra"
)

// NewTestCmd creates the connection test command
func NewTestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "test",
		Short: "Test the AI provider and Sendy connections",
		Long:  `Run one synthetic article through the configured AI provider and verify the Sendy API key by listing subscriber lists.`,
		Run: func(cmd *cobra.Command, args []string) {
			if err := runTest(); err != nil {
				logger.Error("Connection test failed", err)
				os.Exit(1)
			}
		},
	}
}

func runTest() error {
	application, err := newApp()
	if err != nil {
		return err
	}
	defer func() {
		if err := application.Close(); err != nil {
			logger.Error("Failed to close application", err)
		}
	}()

	fmt.Println("🔌 Testing connections...")

	resp := application.TestConnections(context.Background())
	status := resp.Data.(map[string]string)

	for _, name := range []string{"provider", "sendy"} {
		switch status[name] {
		case "ok":
			fmt.Printf("✅ %s: ok\n", name)
		case "not configured":
			fmt.Printf("⚪ %s: not configured\n", name)
		default:
			fmt.Printf("❌ %s: %s\n", name, status[name])
		}
	}

	if !resp.Success {
		return fmt.Errorf("%s", resp.Error)
	}
	return nil
}
