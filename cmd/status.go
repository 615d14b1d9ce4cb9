package cmd

import (
	"context"
	"fmt"

	"github.com/msalah0e/horizon/internal/render"
	"github.com/msalah0e/horizon/internal/ui"
)

func runStatus(ctx context.Context) {
	s, cfg, done := openSession(ctx, sessionOptions{})
	defer done()

	ui.Banner("workflow canvas")

	g, v := s.Graph(), s.Viewport()
	in := g.Insights()
	fmt.Printf("  Store:        %s %s\n", ui.Brand.Sprint(storeOptions(cfg).Backend), ui.Subtle.Sprint(storeOptions(cfg).Name))
	fmt.Printf("  Cards:        %d (%d team)\n", in.Cards, in.TeamCards)
	fmt.Printf("  Connections:  %d\n", in.Connections)
	fmt.Printf("  View:         pan %.0f,%.0f  zoom %.0f%%\n", v.PanX, v.PanY, v.Scale*100)

	if in.Cards == 0 {
		fmt.Println()
		fmt.Println(ui.Subtle.Sprint("  Empty canvas. Try `horizon card add \"Intake\"` or `horizon team card <city>`"))
		return
	}

	fmt.Println()
	var rows [][]string
	for _, c := range g.Cards() {
		rows = append(rows, []string{
			fmt.Sprintf("%d", c.ID),
			string(c.Kind),
			truncate(render.PlainText(c.Title), 28),
			fmt.Sprintf("%d", len(g.ConnectionsOf(c.ID))),
		})
	}
	ui.Table([]string{"ID", "Type", "Title", "Links"}, rows)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
