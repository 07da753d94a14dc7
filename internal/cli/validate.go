package cli

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/iceman-twitch/wow-auto/internal/sequence"
)

func newValidateCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Parse a sequence file and report problems without running it",
		RunE: func(cmd *cobra.Command, args []string) error {
			seqs, err := sequence.LoadFile(file)
			if err != nil {
				pterm.Error.Println(err)
				return err
			}
			actions := 0
			for _, seq := range seqs {
				actions += len(seq.Actions)
			}
			pterm.Success.Println(fmt.Sprintf("%s: %d sequences, %d actions", file, len(seqs), actions))
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "sequence JSON file")
	cmd.MarkFlagRequired("file")
	return cmd
}
