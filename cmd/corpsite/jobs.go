package main

import (
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/jonathan/corpsite/internal/config"
	"github.com/jonathan/corpsite/internal/jobs"
	"github.com/jonathan/corpsite/internal/logging"
	"github.com/jonathan/corpsite/internal/observability"
	"github.com/jonathan/corpsite/internal/server"
	"github.com/spf13/cobra"
)

func newJobsCmd() *cobra.Command {
	var (
		configPath string
		apiURL     string
		asJSON     bool
		group      string
		filter     jobs.Filter
	)

	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "Fetch and print the normalized job postings",
		Long:  "Fetch the job board once, normalize the listed postings and print them, to check how upstream values are mapped.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if apiURL != "" {
				cfg.JobsAPIURL = apiURL
			}
			if cfg.JobsAPIURL == "" {
				return fmt.Errorf("job board URL is required (set JOBS_API_URL, jobs_api_url in --config, or --url)")
			}

			mode := jobs.GroupMode(group)
			if mode != jobs.GroupNormalized && mode != jobs.GroupOriginal {
				return fmt.Errorf("--group must be %q or %q", jobs.GroupNormalized, jobs.GroupOriginal)
			}
			if err := validator.New().Struct(filter); err != nil {
				return fmt.Errorf("invalid filter: %w", err)
			}

			// Keep stdout clean for --json.
			logger, err := logging.NewLoggerTo(cmd.ErrOrStderr(), config.LoggingConfig{Level: cfg.Logging.Level})
			if err != nil {
				return err
			}

			client := jobs.NewClient(jobs.ClientConfig{
				URL:     cfg.JobsAPIURL,
				Timeout: cfg.JobsTimeout.Std(),
				Logger:  logger,
			})
			all := client.FetchJobs(cmd.Context())
			filtered := filter.Apply(all)

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(server.JobsResponse{
					Jobs:     filtered,
					Total:    len(all),
					Count:    len(filtered),
					Featured: jobs.Featured(filtered, jobs.DefaultFeatured),
					Groups:   jobs.GroupBy(filtered, mode),
					Facets:   jobs.FacetsOf(all),
				})
			}

			printer := observability.NewPrinter(cmd.OutOrStdout())
			printer.PrintJobs(filtered)
			printer.PrintGroups(jobs.GroupBy(filtered, mode))
			printer.PrintFacets(jobs.FacetsOf(all))
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "Path to a JSON config file")
	cmd.Flags().StringVar(&apiURL, "url", "", "Job board URL (overrides config and JOBS_API_URL)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of a summary")
	cmd.Flags().StringVar(&group, "group", string(jobs.GroupNormalized), "Group by normalized or original department")
	cmd.Flags().StringVarP(&filter.Search, "search", "q", "", "Case-insensitive search over title, description and team")
	cmd.Flags().StringSliceVar(&filter.Departments, "department", nil, "Original department to include (repeatable)")
	cmd.Flags().StringSliceVar(&filter.EmploymentTypes, "type", nil, "Employment type to include: fullTime, contract, intern")
	cmd.Flags().StringSliceVar(&filter.Locations, "location", nil, "Location bucket or original location to include")
	cmd.Flags().StringSliceVar(&filter.Companies, "company", nil, "Company to include: hq, shanghai")
	return cmd
}
