package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/starlitjournals/sitemap/config"
	"github.com/starlitjournals/sitemap/internal/crawler"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		sample      int
		parallelism int
		delay       time.Duration
		userAgent   string
	)

	cmd := &cobra.Command{
		Use:   "verify [sitemap url or path]",
		Short: "Check a generated sitemap and sample its pages",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			source := cfg.Output.Path
			if len(args) == 1 {
				source = args[0]
			}
			if !cmd.Flags().Changed("sample") {
				sample = cfg.Verify.SampleSize
			}
			if userAgent == "" {
				userAgent = cfg.Verify.UserAgent
			}

			verifier := crawler.NewVerifier(&crawler.VerifierConfig{
				UserAgent:   userAgent,
				SampleSize:  sample,
				Parallelism: parallelism,
				RandomDelay: delay,
			})

			report, err := verifier.Verify(context.Background(), source)
			if err != nil {
				return err
			}

			printReport(report)
			if !report.Healthy() {
				cmd.SilenceUsage = true
				return fmt.Errorf("sitemap %s failed verification", source)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&sample, "sample", 10, "number of pages to request")
	cmd.Flags().IntVar(&parallelism, "parallelism", 2, "concurrent page requests")
	cmd.Flags().DurationVar(&delay, "delay", 0, "random delay between page requests")
	cmd.Flags().StringVar(&userAgent, "user-agent", "", "User-Agent for page requests")

	return cmd
}

func printReport(r *crawler.Report) {
	fmt.Printf("Sitemap: %s\n", r.Source)
	fmt.Printf("Total URLs found: %d\n", r.URLCount)

	if len(r.Duplicates) > 0 {
		fmt.Printf("\n--- Duplicate locs (%d) ---\n", len(r.Duplicates))
		for _, loc := range r.Duplicates {
			fmt.Printf("  %s\n", loc)
		}
	}
	if len(r.ForeignLocs) > 0 {
		fmt.Printf("\n--- Off-site locs (%d) ---\n", len(r.ForeignLocs))
		for _, loc := range r.ForeignLocs {
			fmt.Printf("  %s\n", loc)
		}
	}

	if len(r.Pages) == 0 {
		return
	}
	fmt.Printf("\n--- Sampled pages (%d) ---\n", len(r.Pages))
	for _, p := range r.Pages {
		status := "ok"
		switch {
		case p.Error != "":
			status = p.Error
		case p.NoIndex():
			status = "noindex"
		}
		fmt.Printf("  [%d] %s title='%s' (%s)\n", p.StatusCode, p.Loc, p.Title, status)
	}
}
