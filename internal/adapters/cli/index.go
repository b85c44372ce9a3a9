package cli

import (
	"strings"

	"github.com/spf13/cobra"
)

func newBuildIndexCommand(r *runner) *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:   "build-index",
		Short: "Download the ADGM reference sources and rebuild the search index",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			services, err := r.load(cmd.Context())
			if err != nil {
				return err
			}
			if services.Indexer == nil {
				return errNotConfigured
			}

			stats, err := services.Indexer.BuildIndex(cmd.Context(), strings.TrimSpace(category))
			if err != nil {
				return err
			}
			cmd.Printf("indexed %d chunks from %d sources (dimension %d)\n", stats.Chunks, stats.Sources, stats.Dimension)
			return nil
		},
	}
	cmd.Flags().StringVarP(&category, "category", "c", "", "only index sources of this category")
	return cmd
}

func newSearchCommand(r *runner) *cobra.Command {
	var (
		limit  int
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "search QUERY",
		Short: "Search the indexed reference material",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			services, err := r.load(cmd.Context())
			if err != nil {
				return err
			}
			if services.Searcher == nil {
				return errNotConfigured
			}

			query := strings.Join(args, " ")
			results, err := services.Searcher.Search(cmd.Context(), query, limit)
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(cmd, results)
			}
			if len(results) == 0 {
				cmd.Println("No results found.")
				return nil
			}
			for i, result := range results {
				cmd.Printf("[%d] %s (%.4f)\n", i+1, result.Metadata.URL, result.Score)
				cmd.Printf("    %s\n", snippet(result.Text, 160))
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "maximum number of results (0 uses RETRIEVAL_TOP_K)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "output results as JSON")
	return cmd
}

func snippet(text string, limit int) string {
	runes := []rune(strings.Join(strings.Fields(text), " "))
	if len(runes) <= limit {
		return string(runes)
	}
	return string(runes[:limit]) + "..."
}
