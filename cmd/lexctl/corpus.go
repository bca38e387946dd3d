package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

var corpusStrict bool

var corpusCmd = &cobra.Command{
	Use:   "corpus",
	Short: "Show corpus and rule statistics",
	Long: `Loads the corpus and the rule configuration and prints document counts
per category and the number of rule categories. With --strict, an empty
corpus or any skipped rule entry is an error.`,
	Args: cobra.NoArgs,
	RunE: runCorpus,
}

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List petition categories",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		client, err := newClient(cmd.Context())
		if err != nil {
			return err
		}
		cats := client.Categories()
		if outputJSON {
			return writeJSON(cmd.OutOrStdout(), cats)
		}
		for _, c := range cats {
			fmt.Fprintf(cmd.OutOrStdout(), "%-18s %s (%s)\n", c.ID, c.Title, c.Law)
		}
		return nil
	},
}

func init() {
	corpusCmd.Flags().BoolVar(&corpusStrict, "strict", false, "fail on an empty corpus or skipped rule entries")
	rootCmd.AddCommand(corpusCmd, categoriesCmd)
}

func runCorpus(cmd *cobra.Command, _ []string) error {
	client, err := newClient(cmd.Context())
	if err != nil {
		return err
	}
	st := client.Stats()
	out := cmd.OutOrStdout()

	if outputJSON {
		if err := writeJSON(out, st); err != nil {
			return err
		}
	} else {
		fmt.Fprintf(out, "Documents:       %d\n", st.Documents)
		fmt.Fprintf(out, "Vectors:         %d\n", st.Vectors)
		fmt.Fprintf(out, "Backend:         %s\n", st.Backend)
		fmt.Fprintf(out, "Rule categories: %d\n", st.RuleCategories)
		fmt.Fprintf(out, "Skipped rules:   %d\n", st.SkippedRules)

		cats := make([]string, 0, len(st.ByCategory))
		for c := range st.ByCategory {
			cats = append(cats, c)
		}
		sort.Strings(cats)
		for _, c := range cats {
			name := c
			if name == "" {
				name = "(none)"
			}
			fmt.Fprintf(out, "  %-18s %d\n", name, st.ByCategory[c])
		}
	}

	if corpusStrict {
		switch {
		case st.Documents == 0:
			return fmt.Errorf("corpus %s is empty", corpusPath)
		case st.SkippedRules > 0:
			return fmt.Errorf("%d rule entries skipped in %s", st.SkippedRules, rulesPath)
		}
	}
	return nil
}
