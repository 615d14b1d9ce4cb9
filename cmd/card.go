package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/msalah0e/horizon/internal/interact"
	"github.com/msalah0e/horizon/internal/render"
	"github.com/msalah0e/horizon/internal/ui"
	"github.com/msalah0e/horizon/internal/workflow"
)

func cardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "card",
		Aliases: []string{"cards"},
		Short:   "Add, edit, move and remove cards",
	}
	cmd.AddCommand(
		cardAddCmd(),
		cardRmCmd(),
		cardEditCmd(),
		cardMoveCmd(),
		cardResizeCmd(),
		cardListCmd(),
	)
	return cmd
}

func parseID(s string) int {
	id, err := strconv.Atoi(s)
	if err != nil || id <= 0 {
		fail("Invalid id %q", s)
	}
	return id
}

func parseFloat(s string) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		fail("Invalid number %q", s)
	}
	return f
}

func cardAddCmd() *cobra.Command {
	var (
		team    bool
		content string
		at      []float64
	)
	cmd := &cobra.Command{
		Use:   "add [title]",
		Short: "Add a card at the center of the view",
		Args:  cobra.MaximumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			s, _, done := openSession(cmd.Context(), sessionOptions{})
			defer done()

			kind := workflow.KindProcess
			if team {
				kind = workflow.KindTeam
			}
			title := ""
			if len(args) == 1 {
				title = args[0]
			}
			var pos *workflow.Point
			if len(at) > 0 {
				if len(at) != 2 {
					fail("--at takes x,y")
				}
				pos = &workflow.Point{X: at[0], Y: at[1]}
			}

			c := s.AddCard(kind, title, content, pos)
			ui.Good.Printf("  %s Card %d added at %.0f,%.0f\n", ui.StatusIcon(true), c.ID, c.X, c.Y)
		},
	}
	cmd.Flags().BoolVar(&team, "team", false, "Add a team card instead of a process card")
	cmd.Flags().StringVarP(&content, "content", "c", "", "Card body text (inline markup allowed)")
	cmd.Flags().Float64SliceVar(&at, "at", nil, "Canvas position x,y")
	return cmd
}

func cardRmCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:               "rm <id>",
		Aliases:           []string{"remove", "delete"},
		Short:             "Delete a card and its connections",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: cardCompletionFunc,
		Run: func(cmd *cobra.Command, args []string) {
			id := parseID(args[0])
			s, _, done := openSession(cmd.Context(), sessionOptions{yes: yes})
			defer done()

			if s.Graph().Card(id) == nil {
				ui.Warn.Printf("  %s No card %d: %v\n", ui.WarnIcon(), id, workflow.ErrInvalidOperation)
				return
			}
			deleted, err := s.DeleteCard(cmd.Context(), id)
			if err != nil {
				fail("Delete failed: %v", err)
			}
			if !deleted {
				fmt.Println("  Cancelled")
				return
			}
			ui.Good.Printf("  %s Card %d deleted\n", ui.StatusIcon(true), id)
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}

func cardEditCmd() *cobra.Command {
	var title, content string
	cmd := &cobra.Command{
		Use:               "edit <id>",
		Short:             "Change a card's title or content",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: cardCompletionFunc,
		Run: func(cmd *cobra.Command, args []string) {
			id := parseID(args[0])
			if !cmd.Flags().Changed("title") && !cmd.Flags().Changed("content") {
				fail("Nothing to change: pass --title or --content")
			}
			s, _, done := openSession(cmd.Context(), sessionOptions{})
			defer done()

			ctrl := s.Controller()
			ok := true
			if cmd.Flags().Changed("title") {
				ok = ctrl.EditText(id, interact.FieldTitle, title) && ok
			}
			if cmd.Flags().Changed("content") {
				ok = ctrl.EditText(id, interact.FieldContent, content) && ok
			}
			if !ok {
				ui.Warn.Printf("  %s No card %d: %v\n", ui.WarnIcon(), id, workflow.ErrInvalidOperation)
				return
			}
			ui.Good.Printf("  %s Card %d updated\n", ui.StatusIcon(true), id)
		},
	}
	cmd.Flags().StringVarP(&title, "title", "t", "", "New title")
	cmd.Flags().StringVarP(&content, "content", "c", "", "New content")
	return cmd
}

func cardMoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:               "move <id> <x> <y>",
		Short:             "Move a card to a canvas position",
		Args:              cobra.ExactArgs(3),
		ValidArgsFunction: cardCompletionFunc,
		Run: func(cmd *cobra.Command, args []string) {
			id := parseID(args[0])
			pos := workflow.Point{X: parseFloat(args[1]), Y: parseFloat(args[2])}
			s, _, done := openSession(cmd.Context(), sessionOptions{})
			defer done()

			if !s.Controller().MoveCard(id, pos) {
				ui.Warn.Printf("  %s No card %d: %v\n", ui.WarnIcon(), id, workflow.ErrInvalidOperation)
				return
			}
			ui.Good.Printf("  %s Card %d moved to %.0f,%.0f\n", ui.StatusIcon(true), id, pos.X, pos.Y)
		},
	}
}

func cardResizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:               "resize <id> <width> <height>",
		Short:             "Resize a card (minimum 180×100)",
		Args:              cobra.ExactArgs(3),
		ValidArgsFunction: cardCompletionFunc,
		Run: func(cmd *cobra.Command, args []string) {
			id := parseID(args[0])
			w, h := parseFloat(args[1]), parseFloat(args[2])
			s, _, done := openSession(cmd.Context(), sessionOptions{})
			defer done()

			if !s.Controller().ResizeCard(id, w, h) {
				ui.Warn.Printf("  %s No card %d: %v\n", ui.WarnIcon(), id, workflow.ErrInvalidOperation)
				return
			}
			c := s.Graph().Card(id)
			ui.Good.Printf("  %s Card %d is now %.0f×%.0f\n", ui.StatusIcon(true), id, c.Width, c.Height)
		},
	}
}

func cardListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List cards with position and size",
		Run: func(cmd *cobra.Command, args []string) {
			s, _, done := openSession(cmd.Context(), sessionOptions{})
			defer done()

			cards := s.Graph().Cards()
			if len(cards) == 0 {
				fmt.Println("  No cards yet.")
				return
			}
			ui.Banner("cards")
			var rows [][]string
			for _, c := range cards {
				rows = append(rows, []string{
					strconv.Itoa(c.ID),
					string(c.Kind),
					truncate(render.PlainText(c.Title), 24),
					fmt.Sprintf("%.0f,%.0f", c.X, c.Y),
					fmt.Sprintf("%.0f×%.0f", c.Width, c.Height),
					truncate(render.PlainText(c.Content), 30),
				})
			}
			ui.Table([]string{"ID", "Type", "Title", "Position", "Size", "Content"}, rows)
		},
	}
}
