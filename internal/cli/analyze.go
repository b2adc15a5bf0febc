package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Bahjat/seo-insight/internal/app"
	"github.com/Bahjat/seo-insight/internal/output"
	"github.com/Bahjat/seo-insight/internal/platform/logger"
	"github.com/Bahjat/seo-insight/internal/platform/requestid"
)

type analyzeOptions struct {
	Format     string
	CheckLinks bool
	ProbeSite  bool
	Timeout    time.Duration
}

func newAnalyzeCmd(root *rootOptions) *cobra.Command {
	opts := &analyzeOptions{}

	cmd := &cobra.Command{
		Use:   "analyze <url>",
		Short: "Analyze a single web page",
		Long: `Fetch a web page and print its SEO report.

A URL without a scheme is fetched over https.`,
		Example: `  seo-insight analyze example.com
  seo-insight analyze https://example.com/blog --format json
  seo-insight analyze https://example.com --check-links --timeout 90s`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.Format != "text" && opts.Format != "json" {
				return fmt.Errorf("invalid output format %q: must be \"text\" or \"json\"", opts.Format)
			}

			cfg, err := root.load()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("check-links") {
				cfg.LinkCheckEnabled = opts.CheckLinks
			}
			if cmd.Flags().Changed("probe-site") {
				cfg.SiteProbeEnabled = opts.ProbeSite
			}
			if cmd.Flags().Changed("timeout") {
				cfg.AnalyzeTimeout = opts.Timeout
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			log := logger.NewWithWriter(cmd.ErrOrStderr(), cfg.LogLevel)
			a, err := app.New(cfg, log)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.AnalyzeTimeout)
			defer cancel()
			ctx, _ = requestid.WithNew(ctx)

			report, err := a.Service.Analyze(ctx, args[0])
			if err != nil {
				return err
			}

			switch opts.Format {
			case "json":
				return output.RenderJSON(cmd.OutOrStdout(), report)
			default:
				return output.RenderReportText(cmd.OutOrStdout(), report)
			}
		},
	}

	cmd.Flags().StringVarP(&opts.Format, "format", "f", "text", "Output format: text, json")
	cmd.Flags().BoolVar(&opts.CheckLinks, "check-links", false, "Check every link on the page for accessibility")
	cmd.Flags().BoolVar(&opts.ProbeSite, "probe-site", true, "Look up robots.txt and sitemap.xml on the page's origin")
	cmd.Flags().DurationVar(&opts.Timeout, "timeout", 60*time.Second, "Abandon the analysis after this long")
	return cmd
}
