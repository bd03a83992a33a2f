package handlers

import (
	"context"
	"fmt"
	"os"

	"bulletin/internal/core"
	"bulletin/internal/logger"

	"github.com/spf13/cobra"
)

// NewActivityCmd creates the campaign activity command
func NewActivityCmd() *cobra.Command {
	activityCmd := &cobra.Command{
		Use:   "activity",
		Short: "Show recent campaign activity",
		Long:  `Display recent campaigns from the audit log along with aggregate delivery statistics.`,
		Run: func(cmd *cobra.Command, args []string) {
			limit, _ := cmd.Flags().GetInt("limit")
			if err := runActivity(limit); err != nil {
				logger.Error("Failed to load activity", err)
				os.Exit(1)
			}
		},
	}

	activityCmd.Flags().Int("limit", 10, "Maximum number of entries to show")
	return activityCmd
}

func runActivity(limit int) error {
	application, err := newApp()
	if err != nil {
		return err
	}
	defer func() {
		if err := application.Close(); err != nil {
			logger.Error("Failed to close application", err)
		}
	}()

	fmt.Println("📊 Campaign Activity")
	fmt.Println("===================")

	resp := application.Activity(context.Background(), limit)
	if !resp.Success {
		return fmt.Errorf("loading activity failed: %s", resp.Error)
	}

	data := resp.Data.(map[string]any)
	stats := data["stats"].(core.AuditStats)
	entries := data["entries"].([]core.AuditEntry)

	fmt.Printf("📬 Total campaigns: %d\n", stats.Total)
	fmt.Printf("✅ Sent: %d\n", stats.Sent)
	fmt.Printf("📝 Created: %d\n", stats.Created)
	fmt.Printf("❌ Failed: %d\n", stats.Failed)
	if generated := data["generated"].(int); generated > 0 {
		fmt.Printf("🤖 Descriptions generated: %d (%d fallbacks, avg %.1f words)\n",
			generated, data["generated_fallbacks"].(int), data["generated_avg_words"].(float64))
	}
	fmt.Println()

	if len(entries) == 0 {
		fmt.Println("No campaigns recorded yet")
		return nil
	}

	for _, entry := range entries {
		icon := statusIcon(entry.Status)
		fmt.Printf("  %s %s — %s (%s)\n", icon, entry.CreatedAt.Format("2006-01-02 15:04"), entry.Subject, entry.Status)
		if entry.ErrorMessage != "" {
			fmt.Printf("      %s\n", entry.ErrorMessage)
		}
	}
	return nil
}

func statusIcon(status string) string {
	switch status {
	case core.StatusSent:
		return "✅"
	case core.StatusFailed:
		return "❌"
	case core.StatusSending:
		return "📤"
	default:
		return "📝"
	}
}
