package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

var (
	searchCategory string
	searchLimit    int
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Rank legal references for a query",
	Long: `Ranks corpus documents against the query and prints those above the
similarity threshold, best first. Queries shorter than three characters
return nothing.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

var bestCmd = &cobra.Command{
	Use:   "best [query]",
	Short: "Print the best matching legal reference",
	Args:  cobra.ExactArgs(1),
	RunE:  runBest,
}

func init() {
	searchCmd.Flags().StringVarP(&searchCategory, "category", "c", "", "restrict to a category")
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 5, "maximum number of results")
	bestCmd.Flags().StringVarP(&searchCategory, "category", "c", "", "restrict to a category")
	rootCmd.AddCommand(searchCmd, bestCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if searchLimit < 1 {
		return fmt.Errorf("limit must be positive, got %d", searchLimit)
	}
	client, err := newClient(cmd.Context())
	if err != nil {
		return err
	}

	resp := client.Search(cmd.Context(), args[0], searchCategory)
	if len(resp.Results) > searchLimit {
		resp.Results = resp.Results[:searchLimit]
	}

	out := cmd.OutOrStdout()
	if outputJSON {
		return writeJSON(out, resp)
	}
	if len(resp.Results) == 0 {
		fmt.Fprintln(out, "No results found.")
		return nil
	}

	fmt.Fprintf(out, "Results (%s):\n\n", resp.Backend)
	for i, r := range resp.Results {
		fmt.Fprintf(out, "  [%d] %s (%.3f)\n", i+1, r.Title, r.Score)
		if r.Category != "" {
			fmt.Fprintf(out, "      Kategori: %s\n", r.Category)
		}
		fmt.Fprintf(out, "      %s\n\n", r.Content)
	}
	return nil
}

func runBest(cmd *cobra.Command, args []string) error {
	client, err := newClient(cmd.Context())
	if err != nil {
		return err
	}
	summary := client.BestMatchSummary(cmd.Context(), args[0], searchCategory)
	if outputJSON {
		return writeJSON(cmd.OutOrStdout(), map[string]string{"summary": summary})
	}
	fmt.Fprintln(cmd.OutOrStdout(), summary)
	return nil
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err //nolint:wrapcheck // terminal write
}
