package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	evalCategory string
	evalOCR      string
	evalAnalyze  bool
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate [text]",
	Short: "Check petition text against the category rules",
	Long: `Evaluates the petition text (and optional OCR text) against the rules
configured for the category and prints every fired warning.

With --analyze, the best legal reference and the drafting prompt context
are printed as well.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runEvaluate,
}

func init() {
	evaluateCmd.Flags().StringVarP(&evalCategory, "category", "c", "", "petition category (required)")
	evaluateCmd.Flags().StringVar(&evalOCR, "ocr", "", "text extracted from an attached document")
	evaluateCmd.Flags().BoolVar(&evalAnalyze, "analyze", false, "include the best reference and prompt context")
	_ = evaluateCmd.MarkFlagRequired("category")
	rootCmd.AddCommand(evaluateCmd)
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	text := ""
	if len(args) == 1 {
		text = args[0]
	}
	if text == "" && evalOCR == "" {
		return errors.New("text or --ocr is required")
	}

	client, err := newClient(cmd.Context())
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if evalAnalyze {
		a, err := client.Analyze(cmd.Context(), evalCategory, text, evalOCR)
		if err != nil {
			return err //nolint:wrapcheck // already carries "analyze:"
		}
		if outputJSON {
			return writeJSON(out, a)
		}
		fmt.Fprintln(out, a.Context)
		return nil
	}

	ev := client.Evaluate(evalCategory, text, evalOCR)
	if outputJSON {
		return writeJSON(out, ev)
	}
	if len(ev.Warnings) == 0 {
		fmt.Fprintln(out, "No warnings.")
		return nil
	}
	for _, w := range ev.Warnings {
		fmt.Fprintf(out, "- [%s] %s\n", w.Kind, w.Message)
	}
	return nil
}
