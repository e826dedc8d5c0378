package main

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/chazu/boxjoint/pkg/board"
	"github.com/chazu/boxjoint/pkg/carve"
	"github.com/chazu/boxjoint/pkg/kernel/sdfx"
)

func newCarveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "carve <design>",
		Short: "Carve every board and write one STL file per board",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.loadInput(args[0])
			if err != nil {
				return err
			}
			if err := os.MkdirAll(a.cfg.Output.Dir, 0o755); err != nil {
				return fmt.Errorf("create output dir: %w", err)
			}

			k := sdfx.New(sdfx.WithMeshCells(a.cfg.Mesh.Cells))
			c := carve.New(k, carve.WithLogger(a.logger))
			res := c.Pass(p.Boards)

			failed := 0
			used := make(map[string]bool, len(p.Boards))
			for i, out := range res.Outcomes {
				if out.Err != nil {
					failed++
					fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", out.BoardID, out.Err)
					continue
				}
				for _, je := range out.Report.JointErrors {
					fmt.Fprintf(cmd.ErrOrStderr(), "%s: skipped %v\n", out.BoardID, je)
				}
				path := filepath.Join(a.cfg.Output.Dir, uniqueSTLName(used, p.Boards[i]))
				if err := k.ExportSTL(out.Solid, path); err != nil {
					return err
				}
				a.logger.Info("board exported",
					zap.String("board", out.BoardID),
					zap.Int("grooves", len(out.Report.Grooves)),
					zap.String("path", path))
				fmt.Fprintln(cmd.OutOrStdout(), path)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d boards failed to carve", failed, len(res.Outcomes))
			}
			return nil
		},
	}
}

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// stlName turns a board name into a file name.
func stlName(name string) string {
	s := unsafeName.ReplaceAllString(name, "_")
	if s == "" || s == "." || s == ".." {
		s = "board"
	}
	return s + ".stl"
}

// uniqueSTLName returns the file name for b, appending its ID when another
// board in the same run already took the name.
func uniqueSTLName(used map[string]bool, b board.Board) string {
	name := stlName(b.Name())
	if used[name] {
		name = stlName(b.Name() + "_" + b.ID)
	}
	used[name] = true
	return name
}
