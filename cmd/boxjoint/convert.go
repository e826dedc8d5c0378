package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chazu/boxjoint/pkg/project"
)

func newConvertCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "convert <design> <project.json>",
		Short: "Evaluate a design and save it as a project file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.loadInput(args[0])
			if err != nil {
				return err
			}
			if err := project.Save(p, args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d boards to %s\n", len(p.Boards), args[1])
			return nil
		},
	}
}
