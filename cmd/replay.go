package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/msalah0e/horizon/internal/replay"
	"github.com/msalah0e/horizon/internal/ui"
)

func replayCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "replay <script.yaml>",
		Short: "Feed a scripted pointer-event sequence through the canvas",
		Long: `Replay pointer and keyboard events against the saved canvas. Each event
has a type (down, move, up, leave, click, wheel, toggle, escape) and, where
relevant, an area (background, card, text, controls, resize, connection),
card/connection ids, screen x/y, wheel dy or a mode.

  events:
    - {type: toggle, mode: connect}
    - {type: click, area: card, card: 1}
    - {type: click, area: card, card: 2}`,
		Args: cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			data, err := os.ReadFile(args[0])
			if err != nil {
				fail("Cannot read script: %v", err)
			}
			script, err := replay.Parse(data)
			if err != nil {
				fail("%v", err)
			}

			s, _, done := openSession(cmd.Context(), sessionOptions{yes: yes})
			defer done()

			if script.Name != "" {
				ui.Banner("replay " + script.Name)
			}
			runner := &replay.Runner{Controller: s.Controller(), Delete: s.DeleteCard}
			outs, err := runner.Run(cmd.Context(), script.Events)

			var rows [][]string
			for i, o := range outs {
				rows = append(rows, []string{fmt.Sprintf("%d", i+1), o.Type, ui.StatusIcon(o.Handled), o.Action})
			}
			ui.Table([]string{"#", "Event", "Handled", "Action"}, rows)
			if err != nil {
				fail("%v", err)
			}

			ctrl := s.Controller()
			in := s.Graph().Insights()
			fmt.Printf("\n  Mode %s · %d cards · %d connections\n", ui.Brand.Sprint(ctrl.Mode()), in.Cards, in.Connections)
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Approve delete requests without prompting")
	return cmd
}
