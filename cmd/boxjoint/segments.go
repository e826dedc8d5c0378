package main

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/chazu/boxjoint/pkg/joint"
)

func newSegmentsCmd() *cobra.Command {
	var (
		length   float64
		width    float64
		count    int
		geometry string
		start    int
	)
	cmd := &cobra.Command{
		Use:   "segments",
		Short: "Print the finger and groove layout of one side",
		Long: "With --count, prints a fixed layout of count fingers. With --geometry,\n" +
			"prints a variable layout from comma separated widths.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var cfg joint.JointConfig
			switch {
			case geometry != "":
				ws, err := joint.ParseGeometryList(geometry)
				if err != nil {
					return err
				}
				cfg = joint.NewVariable("", start, ws)
			case count > 0:
				if width == 0 {
					width = joint.CalculateOptimalFingerWidth(count, length)
				}
				cfg = joint.NewFixed("", width, count, false)
			default:
				return errors.New("one of --count or --geometry is required")
			}

			if err := joint.Validate(cfg, length); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
			}
			pat, err := cfg.Pattern()
			if err != nil {
				return err
			}
			segs, err := joint.Generate(pat, length)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "#\tTYPE\tSTART\tWIDTH\tEND")
			for i, s := range segs {
				fmt.Fprintf(tw, "%d\t%s\t%.3f\t%.3f\t%.3f\n", i, s.Type, s.Start, s.Width, s.End())
			}
			return tw.Flush()
		},
	}
	f := cmd.Flags()
	f.Float64VarP(&length, "length", "l", 0, "side length in mm")
	f.Float64VarP(&width, "width", "w", 0, "finger width; defaults to the best fit")
	f.IntVarP(&count, "count", "n", 0, "number of fingers")
	f.StringVarP(&geometry, "geometry", "g", "", "comma separated segment widths")
	f.IntVar(&start, "start", 0, "1 when the first segment is a groove")
	_ = cmd.MarkFlagRequired("length")
	return cmd
}
