package handlers

import (
	"context"
	"fmt"
	"os"

	"bulletin/internal/logger"
	"bulletin/internal/posts"

	"github.com/spf13/cobra"
)

// NewSearchCmd creates the article search command
func NewSearchCmd() *cobra.Command {
	searchCmd := &cobra.Command{
		Use:   "search [term]",
		Short: "Search the content source for articles",
		Long:  `Search published articles by term, with optional pagination and a featured-image filter. The resulting IDs feed the describe and newsletter commands.`,
		Args:  cobra.MaximumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			term := ""
			if len(args) > 0 {
				term = args[0]
			}
			limit, _ := cmd.Flags().GetInt("limit")
			page, _ := cmd.Flags().GetInt("page")
			featured, _ := cmd.Flags().GetBool("featured")

			if err := runSearch(term, limit, page, featured); err != nil {
				logger.Error("Failed to search articles", err)
				os.Exit(1)
			}
		},
	}

	searchCmd.Flags().Int("limit", 10, "Maximum number of results per page")
	searchCmd.Flags().Int("page", 1, "Result page to fetch")
	searchCmd.Flags().Bool("featured", false, "Only articles with a featured image")

	return searchCmd
}

func runSearch(term string, limit, page int, featured bool) error {
	application, err := newApp()
	if err != nil {
		return err
	}
	defer func() {
		if err := application.Close(); err != nil {
			logger.Error("Failed to close application", err)
		}
	}()

	fmt.Printf("🔍 Searching articles for %q...\n", term)

	resp := application.SearchArticles(context.Background(), posts.Query{
		Term:         term,
		Limit:        limit,
		Page:         page,
		FeaturedOnly: featured,
	})
	if !resp.Success {
		return fmt.Errorf("search failed: %s", resp.Error)
	}

	result := resp.Data.(posts.SearchResult)
	if result.Total == 0 {
		fmt.Println("No articles found")
		return nil
	}

	fmt.Printf("📄 Found %d article(s), page %d of %d\n\n", result.Total, page, result.Pages)
	for _, article := range result.Articles {
		marker := " "
		if article.FeaturedImage.HasImage() {
			marker = "🖼"
		}
		fmt.Printf("  %s [%d] %s\n", marker, article.ID, article.Title)
		if article.Excerpt != "" {
			fmt.Printf("      %s\n", article.Excerpt)
		}
		fmt.Printf("      %s · %s\n", article.PublishedAt.Format("2006-01-02"), article.URL)
	}

	return nil
}
