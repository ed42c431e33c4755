package main

import (
	"encoding/json"
	"time"

	"github.com/spf13/cobra"

	"job_fetcher/internal/domain"
)

var searchFlags struct {
	keywords  string
	location  string
	remote    bool
	easyApply bool
	recency   time.Duration
	limit     int
}

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search all sources once and print matching postings as JSON",
	Long:  "Runs one aggregated search across every source without touching the database.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		postings := newSearchService(cfg, logger).Search(cmd.Context(), searchQuery(cmd))
		if postings == nil {
			postings = []domain.JobPosting{}
		}
		return writeJSON(cmd, postings)
	},
}

func init() {
	f := searchCmd.Flags()
	f.StringVar(&searchFlags.keywords, "keywords", "", "search keywords")
	f.StringVar(&searchFlags.location, "location", "", "location filter")
	f.BoolVar(&searchFlags.remote, "remote", false, "remote postings only (--remote=false excludes nothing)")
	f.BoolVar(&searchFlags.easyApply, "easy-apply", false, "easy-apply postings only")
	f.DurationVar(&searchFlags.recency, "recency", 0, "only postings newer than this (default from config)")
	f.IntVar(&searchFlags.limit, "limit", 0, "cap on postings per source, 0 for none")

	rootCmd.AddCommand(searchCmd)
}

// searchQuery leaves tri-state filters unset unless their flag was given.
func searchQuery(cmd *cobra.Command) domain.SearchQuery {
	query := domain.SearchQuery{
		Keywords:      searchFlags.keywords,
		Location:      searchFlags.location,
		RecencyWindow: searchFlags.recency,
		ResultsWanted: searchFlags.limit,
	}
	if cmd.Flags().Changed("remote") {
		query.RemoteOnly = domain.Ptr(searchFlags.remote)
	}
	if cmd.Flags().Changed("easy-apply") {
		query.EasyApplyOnly = domain.Ptr(searchFlags.easyApply)
	}
	return query
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
