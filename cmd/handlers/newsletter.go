package handlers

import (
	"context"
	"fmt"
	"os"
	"time"

	"bulletin/internal/app"
	"bulletin/internal/core"
	"bulletin/internal/logger"
	"bulletin/internal/newsletter"

	"github.com/spf13/cobra"
)

// NewNewsletterCmd creates the newsletter command group
func NewNewsletterCmd() *cobra.Command {
	newsletterCmd := &cobra.Command{
		Use:   "newsletter",
		Short: "Assemble and deliver newsletters",
		Long:  `Build an HTML newsletter from selected articles, preview or validate it, export it to a file, or create the campaign in Sendy.`,
	}

	// Add subcommands
	newsletterCmd.AddCommand(newNewsletterCreateCmd())
	newsletterCmd.AddCommand(newNewsletterPreviewCmd())
	newsletterCmd.AddCommand(newNewsletterValidateCmd())
	newsletterCmd.AddCommand(newNewsletterExportCmd())

	return newsletterCmd
}

func addSelectionFlags(cmd *cobra.Command) {
	cmd.Flags().String("ids", "", "Comma-separated article IDs (required)")
	cmd.Flags().Bool("generate", false, "Generate AI descriptions for the selection first")
	cmd.Flags().String("template", "", "Template name (default, minimal, magazine)")
	cmd.Flags().String("header", "", "Header text override")
	cmd.Flags().String("footer", "", "Footer text override")
	_ = cmd.MarkFlagRequired("ids")
}

func newNewsletterCreateCmd() *cobra.Command {
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create the campaign in Sendy",
		Long:  `Build the newsletter and create a campaign in Sendy. With --send the campaign goes out immediately; with --at it is created unsent for the given time.`,
		Run: func(cmd *cobra.Command, args []string) {
			if err := runNewsletterCreate(cmd); err != nil {
				logger.Error("Failed to create newsletter", err)
				os.Exit(1)
			}
		},
	}

	addSelectionFlags(createCmd)
	createCmd.Flags().String("subject", "", "Email subject (required)")
	createCmd.Flags().String("list", "", "Sendy list ID (defaults to sendy.list_id)")
	createCmd.Flags().Bool("send", false, "Send the campaign immediately")
	createCmd.Flags().String("at", "", "Create unsent for this RFC 3339 time")
	_ = createCmd.MarkFlagRequired("subject")

	return createCmd
}

func newNewsletterPreviewCmd() *cobra.Command {
	previewCmd := &cobra.Command{
		Use:   "preview",
		Short: "Preview the assembled newsletter",
		Long:  `Render the newsletter and print a plain-text preview with size and post count.`,
		Run: func(cmd *cobra.Command, args []string) {
			if err := runNewsletterPreview(cmd); err != nil {
				logger.Error("Failed to preview newsletter", err)
				os.Exit(1)
			}
		},
	}

	addSelectionFlags(previewCmd)
	return previewCmd
}

func newNewsletterValidateCmd() *cobra.Command {
	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Run pre-flight checks on a selection",
		Long:  `Check the selected articles for missing images and descriptions, and optionally validate the subject line.`,
		Run: func(cmd *cobra.Command, args []string) {
			if err := runNewsletterValidate(cmd); err != nil {
				logger.Error("Failed to validate newsletter", err)
				os.Exit(1)
			}
		},
	}

	addSelectionFlags(validateCmd)
	validateCmd.Flags().String("subject", "", "Subject line to validate")
	return validateCmd
}

func newNewsletterExportCmd() *cobra.Command {
	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Write the newsletter HTML to a file",
		Long:  `Render the newsletter and write it to the configured output directory.`,
		Run: func(cmd *cobra.Command, args []string) {
			if err := runNewsletterExport(cmd); err != nil {
				logger.Error("Failed to export newsletter", err)
				os.Exit(1)
			}
		},
	}

	addSelectionFlags(exportCmd)
	exportCmd.Flags().String("output", "", "Output filename (default newsletter_<timestamp>.html)")
	return exportCmd
}

// buildSelections turns the shared flags into selections, generating
// descriptions first when --generate is set.
func buildSelections(cmd *cobra.Command, application *app.App) ([]newsletter.Selection, error) {
	idsFlag, _ := cmd.Flags().GetString("ids")
	generate, _ := cmd.Flags().GetBool("generate")

	ids, err := parseArticleIDs([]string{idsFlag})
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("no article ids given")
	}

	descriptions := map[int64]string{}
	if generate {
		fmt.Printf("✨ Generating descriptions for %d article(s)...\n", len(ids))
		resp := application.GenerateDescriptions(context.Background(), ids)
		if !resp.Success {
			return nil, fmt.Errorf("description generation failed: %s", resp.Error)
		}
		for id, result := range resp.Data.(map[int64]core.DescriptionResult) {
			descriptions[id] = result.Description
		}
	}

	selections := make([]newsletter.Selection, 0, len(ids))
	for _, id := range ids {
		selections = append(selections, newsletter.Selection{
			ArticleID:   id,
			Description: descriptions[id],
		})
	}
	return selections, nil
}

func optionsFromFlags(cmd *cobra.Command) core.NewsletterOptions {
	opts := core.NewsletterOptions{
		IncludeSocialLinks: true,
		IncludeUnsubscribe: true,
	}
	opts.Template, _ = cmd.Flags().GetString("template")
	opts.HeaderText, _ = cmd.Flags().GetString("header")
	opts.FooterText, _ = cmd.Flags().GetString("footer")
	return opts
}

func runNewsletterCreate(cmd *cobra.Command) error {
	application, err := newApp()
	if err != nil {
		return err
	}
	defer func() {
		if err := application.Close(); err != nil {
			logger.Error("Failed to close application", err)
		}
	}()

	selections, err := buildSelections(cmd, application)
	if err != nil {
		return err
	}

	subject, _ := cmd.Flags().GetString("subject")
	listID, _ := cmd.Flags().GetString("list")
	sendNow, _ := cmd.Flags().GetBool("send")
	atFlag, _ := cmd.Flags().GetString("at")

	opts := optionsFromFlags(cmd)
	ctx := context.Background()

	if atFlag != "" {
		at, err := time.Parse(time.RFC3339, atFlag)
		if err != nil {
			return fmt.Errorf("invalid --at time: %w", err)
		}
		resp := application.ScheduleNewsletter(ctx, selections, opts, subject, listID, at)
		if !resp.Success {
			return fmt.Errorf("scheduling failed: %s", resp.Error)
		}
		fmt.Printf("📅 Newsletter created unsent, to go out at %s\n", at.Format(time.RFC3339))
		return nil
	}

	fmt.Printf("📨 Creating campaign %q...\n", subject)

	resp := application.CreateNewsletter(ctx, selections, opts, subject, listID, sendNow)
	if !resp.Success {
		return fmt.Errorf("campaign creation failed: %s", resp.Error)
	}

	result := resp.Data.(core.CampaignResult)
	if result.SentImmediately {
		fmt.Printf("✅ %s (campaign %s, sent)\n", result.Message, result.CampaignID)
	} else {
		fmt.Printf("✅ %s (campaign %s)\n", result.Message, result.CampaignID)
	}
	return nil
}

func runNewsletterPreview(cmd *cobra.Command) error {
	application, err := newApp()
	if err != nil {
		return err
	}
	defer func() {
		if err := application.Close(); err != nil {
			logger.Error("Failed to close application", err)
		}
	}()

	selections, err := buildSelections(cmd, application)
	if err != nil {
		return err
	}

	resp := application.PreviewNewsletter(context.Background(), selections, optionsFromFlags(cmd))
	if !resp.Success {
		return fmt.Errorf("preview failed: %s", resp.Error)
	}

	assembly := resp.Data.(core.NewsletterAssembly)
	fmt.Printf("📰 Newsletter preview (%d post(s), %.1f KB)\n\n", assembly.PostCount, float64(assembly.EstimatedSize)/1024)
	fmt.Println(assembly.PreviewText)
	return nil
}

func runNewsletterValidate(cmd *cobra.Command) error {
	application, err := newApp()
	if err != nil {
		return err
	}
	defer func() {
		if err := application.Close(); err != nil {
			logger.Error("Failed to close application", err)
		}
	}()

	selections, err := buildSelections(cmd, application)
	if err != nil {
		return err
	}

	subject, _ := cmd.Flags().GetString("subject")

	resp := application.ValidateNewsletter(context.Background(), selections, subject)
	if !resp.Success {
		return fmt.Errorf("validation failed: %s", resp.Error)
	}

	data := resp.Data.(map[string]any)
	report := data["newsletter"].(core.ValidationReport)
	subjectReport := data["subject"].(core.ValidationReport)

	printReport("Newsletter", report)
	if subject != "" {
		printReport("Subject", subjectReport)
	}

	if !report.IsValid || !subjectReport.IsValid {
		os.Exit(1)
	}
	return nil
}

func printReport(label string, report core.ValidationReport) {
	if report.IsValid && len(report.Warnings) == 0 {
		fmt.Printf("✅ %s: OK\n", label)
		return
	}
	for _, issue := range report.Issues {
		fmt.Printf("❌ %s: %s\n", label, issue)
	}
	for _, warning := range report.Warnings {
		fmt.Printf("⚠️  %s: %s\n", label, warning)
	}
}

func runNewsletterExport(cmd *cobra.Command) error {
	application, err := newApp()
	if err != nil {
		return err
	}
	defer func() {
		if err := application.Close(); err != nil {
			logger.Error("Failed to close application", err)
		}
	}()

	selections, err := buildSelections(cmd, application)
	if err != nil {
		return err
	}

	filename, _ := cmd.Flags().GetString("output")

	resp := application.ExportNewsletter(context.Background(), selections, optionsFromFlags(cmd), filename)
	if !resp.Success {
		return fmt.Errorf("export failed: %s", resp.Error)
	}

	path := resp.Data.(map[string]any)["path"].(string)
	fmt.Printf("💾 Newsletter written to %s\n", path)
	return nil
}
