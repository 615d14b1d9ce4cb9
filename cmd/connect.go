package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/msalah0e/horizon/internal/render"
	"github.com/msalah0e/horizon/internal/ui"
	"github.com/msalah0e/horizon/internal/workflow"
)

func connectCmd() *cobra.Command {
	var list bool
	cmd := &cobra.Command{
		Use:   "connect [<card> <card>]",
		Short: "Connect two cards, or list connections with --list",
		Args: func(cmd *cobra.Command, args []string) error {
			if list {
				return cobra.NoArgs(cmd, args)
			}
			return cobra.ExactArgs(2)(cmd, args)
		},
		Run: func(cmd *cobra.Command, args []string) {
			s, _, done := openSession(cmd.Context(), sessionOptions{})
			defer done()
			g := s.Graph()

			if list {
				conns := g.Connections()
				if len(conns) == 0 {
					fmt.Println("  No connections yet.")
					return
				}
				var rows [][]string
				for _, c := range conns {
					rows = append(rows, []string{fmt.Sprintf("%d", c.ID), render.PlainText(g.Describe(c))})
				}
				ui.Table([]string{"ID", "Between"}, rows)
				return
			}

			a, b := parseID(args[0]), parseID(args[1])
			conn := s.Controller().Connect(a, b)
			if conn == nil {
				reason := "unknown card"
				switch {
				case a == b:
					reason = "a card cannot connect to itself"
				case g.Card(a) != nil && g.Card(b) != nil && g.Connected(a, b):
					reason = "already connected"
				}
				ui.Warn.Printf("  %s Not connected (%s): %v\n", ui.WarnIcon(), reason, workflow.ErrInvalidOperation)
				return
			}
			ui.Good.Printf("  %s Connection %d: %s\n", ui.StatusIcon(true), conn.ID, render.PlainText(g.Describe(conn)))
		},
	}
	cmd.Flags().BoolVarP(&list, "list", "l", false, "List connections")
	return cmd
}

func disconnectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "disconnect <connection-id>",
		Short: "Remove a connection",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			id := parseID(args[0])
			s, _, done := openSession(cmd.Context(), sessionOptions{})
			defer done()

			if !s.Controller().Disconnect(id) {
				ui.Warn.Printf("  %s No connection %d: %v\n", ui.WarnIcon(), id, workflow.ErrInvalidOperation)
				return
			}
			ui.Good.Printf("  %s Connection %d removed\n", ui.StatusIcon(true), id)
		},
	}
}
