package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"voltcheck/internal/logging"
	"voltcheck/internal/nec"
	"voltcheck/internal/query"
)

func newAskCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool
	var showRelated bool

	cmd := &cobra.Command{
		Use:         "ask <question>",
		Short:       "Ask a question about NEC code requirements",
		Args:        cobra.MinimumNArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			question := strings.TrimSpace(strings.Join(args, " "))
			if question == "" {
				return fmt.Errorf("question is empty")
			}

			index, err := nec.NewIndex()
			if err != nil {
				return err
			}
			engine := query.NewEngine(index, logging.NewNop())
			response := engine.Answer(question)

			if jsonOutput {
				return printJSON(cmd.OutOrStdout(), response)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, response.Response)
			fmt.Fprintf(out, "\nConfidence: %.2f\n", response.Confidence)

			if len(response.References) > 0 {
				rows := make([][]string, 0, len(response.References))
				for _, reference := range response.References {
					rows = append(rows, []string{
						reference.Section,
						reference.Title,
						fmt.Sprintf("%.2f", reference.Relevance),
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Section", "Title", "Relevance"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignRight},
				))
			}

			if showRelated {
				related := engine.RelatedQuestions(question)
				if len(related) > 0 {
					fmt.Fprintln(out, "\nRelated questions:")
					for _, suggestion := range related {
						fmt.Fprintf(out, "- %s\n", suggestion)
					}
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit the full response as JSON")
	cmd.Flags().BoolVar(&showRelated, "related", false, "Show related question suggestions")
	return cmd
}
