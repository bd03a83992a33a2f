package handlers

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"bulletin/internal/core"
	"bulletin/internal/logger"

	"github.com/spf13/cobra"
)

// NewDescribeCmd creates the description generation command
func NewDescribeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "describe <id> [id...]",
		Short: "Generate newsletter descriptions for articles",
		Long:  `Generate a short description for each article using the configured AI provider. Descriptions that fail validation are auto-corrected or replaced with an excerpt-based fallback.`,
		Args:  cobra.MinimumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			ids, err := parseArticleIDs(args)
			if err != nil {
				logger.Error("Invalid article id", err)
				os.Exit(1)
			}
			if err := runDescribe(ids); err != nil {
				logger.Error("Failed to generate descriptions", err)
				os.Exit(1)
			}
		},
	}
}

func parseArticleIDs(args []string) ([]int64, error) {
	ids := make([]int64, 0, len(args))
	for _, arg := range args {
		for _, part := range strings.Split(arg, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := strconv.ParseInt(part, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid article id %q", part)
			}
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func runDescribe(ids []int64) error {
	application, err := newApp()
	if err != nil {
		return err
	}
	defer func() {
		if err := application.Close(); err != nil {
			logger.Error("Failed to close application", err)
		}
	}()

	fmt.Printf("✨ Generating descriptions for %d article(s) with %s...\n\n", len(ids), application.Provider.GetName())

	resp := application.GenerateDescriptions(context.Background(), ids)
	if !resp.Success {
		return fmt.Errorf("generation failed: %s", resp.Error)
	}

	results := resp.Data.(map[int64]core.DescriptionResult)

	ordered := make([]int64, 0, len(results))
	for id := range results {
		ordered = append(ordered, id)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i] < ordered[j] })

	for _, id := range ordered {
		result := results[id]
		switch {
		case result.Error != "":
			fmt.Printf("❌ [%d] %s\n", id, result.Error)
		case result.Fallback:
			fmt.Printf("⚠️  [%d] (fallback) %s\n", id, result.Description)
		default:
			fmt.Printf("✅ [%d] %s\n", id, result.Description)
		}
	}

	return nil
}
