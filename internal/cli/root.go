package cli

import (
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/Bahjat/seo-insight/internal/platform/config"
)

var version = "dev"

type rootOptions struct {
	ConfigPath string
	LogLevel   string
}

// load resolves the configuration, letting --log-level win over file and env.
func (o *rootOptions) load() (config.Config, error) {
	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return cfg, err
	}
	if o.LogLevel != "" {
		cfg.LogLevel = o.LogLevel
	}
	return cfg, nil
}

// Execute builds the root command tree and runs the CLI.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "seo-insight",
		Short:         "Grade the on-page SEO health of a web page",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       resolveVersion(),
		Long: `seo-insight fetches a single web page, runs a catalog of on-page checks
against it (meta tags, headings, images, links, content, structured data and
more) and reports a score and grade per category and overall.`,
		Example: `  # Analyze a page
  seo-insight analyze example.com

  # Machine-readable output, including broken-link detection
  seo-insight analyze https://example.com --format json --check-links

  # Run the HTTP API
  seo-insight serve --port 8080`,
	}
	rootCmd.SetVersionTemplate("seo-insight version {{.Version}}\n")

	rootCmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", os.Getenv("CONFIG_PATH"), "Path to a YAML config file (optional)")
	rootCmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "Log level: DEBUG, INFO, WARN, ERROR")

	rootCmd.AddCommand(
		newAnalyzeCmd(opts),
		newServeCmd(opts),
		newVersionCmd(),
	)
	return rootCmd
}

func resolveVersion() string {
	if version == "dev" {
		if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
			return info.Main.Version
		}
	}
	return version
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := cmd.OutOrStdout().Write([]byte("seo-insight version " + resolveVersion() + "\n"))
			return err
		},
	}
}
