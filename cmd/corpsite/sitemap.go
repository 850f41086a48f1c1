package main

import (
	"fmt"
	"time"

	"github.com/jonathan/corpsite/internal/config"
	"github.com/jonathan/corpsite/internal/seo"
	"github.com/spf13/cobra"
)

func newSitemapCmd() *cobra.Command {
	var (
		configPath string
		baseURL    string
		robots     bool
	)

	cmd := &cobra.Command{
		Use:   "sitemap",
		Short: "Print the sitemap XML",
		Long:  "Print the multilingual sitemap, or robots.txt with --robots, for the configured public origin.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if baseURL != "" {
				cfg.BaseURL = baseURL
				if err := cfg.Validate(); err != nil {
					return err
				}
			}
			locales, err := cfg.LocaleConfig()
			if err != nil {
				return err
			}
			site := seo.NewSite(cfg.BaseURL, locales)

			if robots {
				_, err := fmt.Fprint(cmd.OutOrStdout(), site.RobotsTxt())
				return err
			}
			body, err := site.Sitemap(time.Now())
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(body)
			return err
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "Path to a JSON config file")
	cmd.Flags().StringVar(&baseURL, "base-url", "", "Public origin, e.g. https://example.co.kr (overrides config and BASE_URL)")
	cmd.Flags().BoolVar(&robots, "robots", false, "Print robots.txt instead")
	return cmd
}
