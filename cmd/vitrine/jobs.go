package main

import (
	"fmt"
	"strings"

	"github.com/go-while/go-vitrine/internal/catalog"
	"github.com/spf13/cobra"
)

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "List the job postings of the catalog",
	Long:  "Reads the catalog source and prints id and title per posting. Unlike the server, a source that cannot be read is an error.",
	Args:  cobra.NoArgs,
	RunE:  runJobs,
}

func init() {
	rootCmd.AddCommand(jobsCmd)
}

func runJobs(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	src := catalog.SourceForPath(resolveCatalogPath(cfg))
	posts, err := src.ReadPosts()
	if err != nil {
		return fmt.Errorf("failed to read catalog %s: %w", src.Name(), err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%-12s %s\n", "ID", "Title")
	fmt.Fprintln(out, strings.Repeat("─", 40))
	missing := 0
	for _, p := range posts {
		id := p.ID
		if id == "" {
			id = "-"
			missing++
		}
		fmt.Fprintf(out, "%-12s %s\n", id, p.Title())
	}
	fmt.Fprintf(out, "\nTotal: %d postings (%d without id)\n", len(posts), missing)
	return nil
}
