package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"voltcheck/internal/inspection"
	"voltcheck/internal/logging"
	"voltcheck/internal/records"
)

func newAnalyzeCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "analyze <media-path>",
		Short: "Analyze an image or video for code compliance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			kind, err := inferMediaKind(args[0])
			if err != nil {
				return err
			}

			pipe, err := buildPipeline(cfg, logging.NewNop())
			if err != nil {
				return err
			}

			switch kind {
			case records.MediaImage:
				assessment := pipe.images.Analyze(cmd.Context(), args[0])
				if jsonOutput {
					return printJSON(cmd.OutOrStdout(), assessment)
				}
				printAssessment(cmd, assessment)
			case records.MediaVideo:
				assessment, err := pipe.videos.Analyze(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if jsonOutput {
					return printJSON(cmd.OutOrStdout(), assessment)
				}
				printVideoAssessment(cmd, assessment)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit the full assessment as JSON")
	return cmd
}

func printAssessment(cmd *cobra.Command, assessment inspection.Assessment) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Result: %s (confidence %.2f)\n", colorizeResult(out, assessment.OverallResult), assessment.Confidence.Overall)
	if assessment.Error != "" {
		fmt.Fprintf(out, "Error: %s\n", assessment.Error)
		return
	}

	if len(assessment.Detections) > 0 {
		rows := make([][]string, 0, len(assessment.Detections))
		for _, detection := range assessment.Detections {
			rows = append(rows, []string{
				string(detection.Component),
				fmt.Sprintf("%.2f", detection.Confidence),
				formatProperties(detection),
			})
		}
		fmt.Fprintln(out, renderTable(
			[]string{"Component", "Confidence", "Properties"},
			rows,
			[]columnAlignment{alignLeft, alignRight, alignLeft},
		))
	}

	if len(assessment.Violations) > 0 {
		rows := make([][]string, 0, len(assessment.Violations))
		for _, violation := range assessment.Violations {
			rows = append(rows, []string{
				string(violation.Kind),
				string(violation.Severity),
				violation.CodeReference,
				violation.Description,
			})
		}
		fmt.Fprintln(out, renderTable(
			[]string{"Violation", "Severity", "Code Ref", "Description"},
			rows,
			[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft},
		))
	}

	for _, recommendation := range assessment.Recommendations {
		fmt.Fprintf(out, "- %s\n", recommendation)
	}
}

func printVideoAssessment(cmd *cobra.Command, assessment inspection.VideoAssessment) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Result: %s\n", colorizeResult(out, assessment.OverallResult))
	if assessment.Error != "" {
		fmt.Fprintf(out, "Error: %s\n", assessment.Error)
		return
	}
	fmt.Fprintf(out, "Duration: %.1fs, frames analyzed: %d, components: %d, violations: %d\n",
		assessment.Duration,
		assessment.Summary.FramesAnalyzed,
		assessment.Summary.TotalComponents,
		assessment.Summary.TotalViolations,
	)

	rows := make([][]string, 0, len(assessment.Frames))
	for _, frame := range assessment.Frames {
		rows = append(rows, []string{
			fmt.Sprintf("%d", frame.FrameIndex),
			fmt.Sprintf("%.1fs", frame.Timestamp),
			string(frame.Assessment.OverallResult),
			fmt.Sprintf("%d", len(frame.Assessment.Violations)),
		})
	}
	if len(rows) > 0 {
		fmt.Fprintln(out, renderTable(
			[]string{"Frame", "Timestamp", "Result", "Violations"},
			rows,
			[]columnAlignment{alignRight, alignRight, alignLeft, alignRight},
		))
	}
}

func formatProperties(detection inspection.Detection) string {
	if len(detection.Properties) == 0 {
		return ""
	}
	parts := make([]string, 0, len(detection.Properties))
	for key, value := range detection.Properties {
		parts = append(parts, key+"="+value)
	}
	sort.Strings(parts)
	return strings.Join(parts, ", ")
}
