package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/msalah0e/horizon/internal/ui"
	"github.com/msalah0e/horizon/internal/viewport"
	"github.com/msalah0e/horizon/internal/workflow"
)

func viewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "view",
		Short: "Pan, zoom and reset the canvas view",
		Run: func(cmd *cobra.Command, args []string) {
			s, _, done := openSession(cmd.Context(), sessionOptions{})
			defer done()
			printView(s.Viewport())
		},
	}
	cmd.AddCommand(viewPanCmd(), viewZoomCmd(), viewResetCmd(), viewShowCmd())
	return cmd
}

func printView(v *viewport.Viewport) {
	fmt.Printf("  Pan:    %.1f, %.1f\n", v.PanX, v.PanY)
	fmt.Printf("  Zoom:   %.0f%% %s\n", v.Scale*100, ui.Subtle.Sprintf("(%.2f–%.0f×)", viewport.MinScale, viewport.MaxScale))
	fmt.Printf("  SVG:    %s\n", ui.Subtle.Sprint(v.Transform()))
}

func viewShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the current pan and zoom",
		Run: func(cmd *cobra.Command, args []string) {
			s, _, done := openSession(cmd.Context(), sessionOptions{})
			defer done()
			printView(s.Viewport())
		},
	}
}

func viewPanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pan <dx> <dy>",
		Short: "Pan by a screen-space delta",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			dx, dy := parseFloat(args[0]), parseFloat(args[1])
			s, _, done := openSession(cmd.Context(), sessionOptions{})
			defer done()
			s.Controller().PanBy(dx, dy)
			printView(s.Viewport())
		},
	}
}

func viewZoomCmd() *cobra.Command {
	var steps int
	var at []float64
	cmd := &cobra.Command{
		Use:       "zoom <in|out>",
		Short:     "Zoom toward a screen point (default: view center)",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"in", "out"},
		Run: func(cmd *cobra.Command, args []string) {
			sign := 1.0
			switch args[0] {
			case "in":
			case "out":
				sign = -1
			default:
				fail("Zoom direction must be in or out")
			}
			s, cfg, done := openSession(cmd.Context(), sessionOptions{})
			defer done()

			p := workflow.Point{X: cfg.Canvas.ViewWidth / 2, Y: cfg.Canvas.ViewHeight / 2}
			if len(at) == 2 {
				p = workflow.Point{X: at[0], Y: at[1]}
			}
			for range max(steps, 1) {
				s.Controller().ZoomAt(p, sign)
			}
			printView(s.Viewport())
		},
	}
	cmd.Flags().IntVarP(&steps, "steps", "n", 1, "Number of wheel steps")
	cmd.Flags().Float64SliceVar(&at, "at", nil, "Screen point x,y to zoom toward")
	return cmd
}

func viewResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Return to pan 0,0 at 100%",
		Run: func(cmd *cobra.Command, args []string) {
			s, _, done := openSession(cmd.Context(), sessionOptions{})
			defer done()
			s.Controller().ResetView()
			printView(s.Viewport())
		},
	}
}
