package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"vttgen/internal/subtitles"
)

func newInspectCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:         "inspect <file.vtt>",
		Short:       "List the cues of a WebVTT file",
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cues, err := subtitles.ReadWebVTT(args[0])
			if err != nil {
				return fmt.Errorf("inspect %s: %w", args[0], err)
			}
			if asJSON {
				if cues == nil {
					cues = []subtitles.Cue{}
				}
				return writeJSON(cmd, cues)
			}

			rows := make([][]string, 0, len(cues))
			for i, cue := range cues {
				rows = append(rows, []string{
					strconv.Itoa(i + 1),
					subtitles.FormatTimestamp(cue.Start),
					subtitles.FormatTimestamp(cue.End),
					strconv.FormatFloat(cue.End-cue.Start, 'f', 3, 64),
					cue.Text,
				})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(
				[]string{"#", "Start", "End", "Seconds", "Text"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignLeft},
			))
			span := 0.0
			if len(cues) > 0 {
				span = cues[len(cues)-1].End
			}
			fmt.Fprintf(out, "%d cues, ending at %s\n", len(cues), subtitles.FormatTimestamp(span))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit cues as JSON")
	return cmd
}
