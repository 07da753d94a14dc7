package cli

import (
	"fmt"
	"sort"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/iceman-twitch/wow-auto/internal/sequence"
)

func newListCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show the sequences a file defines",
		RunE: func(cmd *cobra.Command, args []string) error {
			seqs, err := sequence.LoadFile(file)
			if err != nil {
				return err
			}

			names := make([]string, 0, len(seqs))
			for name := range seqs {
				names = append(names, name)
			}
			sort.Strings(names)

			rows := pterm.TableData{{"Name", "Mode", "Interval", "Actions"}}
			for _, name := range names {
				seq := seqs[name]
				interval := "-"
				if seq.Periodic() {
					interval = fmt.Sprintf("%gs", seq.Interval())
				}
				rows = append(rows, []string{name, seq.Mode, interval, fmt.Sprintf("%d", len(seq.Actions))})
			}
			return pterm.DefaultTable.WithHasHeader().WithData(rows).Render()
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "sequence JSON file")
	cmd.MarkFlagRequired("file")
	return cmd
}
