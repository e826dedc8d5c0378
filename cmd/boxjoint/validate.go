package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chazu/boxjoint/pkg/engine"
)

func newValidateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <design>",
		Short: "Check every joint against the side it sits on",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.loadInput(args[0])
			if err != nil {
				return err
			}
			warnings := engine.CheckJoints(p)
			for _, w := range warnings {
				line := fmt.Sprintf("%s: %s", w.BoardID, w.Message)
				if w.SuggestedWidth != nil {
					line += fmt.Sprintf(" (suggested width %g)", *w.SuggestedWidth)
				}
				fmt.Fprintln(cmd.OutOrStdout(), line)
			}
			if len(warnings) > 0 {
				return fmt.Errorf("%d invalid joints", len(warnings))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d boards ok\n", len(p.Boards))
			return nil
		},
	}
}
