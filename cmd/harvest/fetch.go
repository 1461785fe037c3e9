package main

import (
	"github.com/spf13/cobra"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Run one fetch pass over every source",
	Args:  cobra.NoArgs,
	RunE:  runFetch,
}

func init() {
	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, _ []string) error {
	summary, err := fetcher.FetchAllJobs(cmd.Context())
	if err != nil {
		return err
	}
	cmd.Printf("run %s\n", summary.RunID)
	for _, s := range summary.Sources {
		if s.Error != "" {
			cmd.Printf("  %-16s failed: %s\n", s.Source, s.Error)
			continue
		}
		cmd.Printf("  %-16s found %4d  added %4d  rejected %4d\n", s.Source, s.Found, s.Added, s.Rejected)
	}
	cmd.Printf("total added: %d\n", summary.TotalAdded)
	return nil
}
