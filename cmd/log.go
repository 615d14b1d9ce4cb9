package cmd

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/msalah0e/horizon/internal/activity"
	"github.com/msalah0e/horizon/internal/ui"
)

func logCmd() *cobra.Command {
	var count int
	cmd := &cobra.Command{
		Use:     "log",
		Aliases: []string{"activity", "history"},
		Short:   "Show recent canvas changes",
		Run: func(cmd *cobra.Command, args []string) {
			entries, err := activity.Open(activity.DefaultPath()).Recent(count)
			if err != nil {
				fail("%v", err)
			}
			if len(entries) == 0 {
				fmt.Println("  No activity recorded yet.")
				return
			}
			ui.Banner("activity log")
			printEntries(entries)
			fmt.Printf("\n  Showing %d most recent entries\n", len(entries))
		},
	}
	cmd.Flags().IntVarP(&count, "count", "n", 20, "Number of entries (0 for all)")
	cmd.AddCommand(logSearchCmd(), logStatsCmd(), logClearCmd(), logExportCmd())
	return cmd
}

func printEntries(entries []activity.Entry) {
	var rows [][]string
	for _, e := range entries {
		ref := "-"
		switch {
		case e.CardID != 0:
			ref = "card " + strconv.Itoa(e.CardID)
		case e.ConnectionID != 0:
			ref = "conn " + strconv.Itoa(e.ConnectionID)
		}
		rows = append(rows, []string{e.Timestamp.Local().Format("Jan 02 15:04:05"), e.Action, ref, truncate(e.Details, 40)})
	}
	ui.Table([]string{"Time", "Action", "Target", "Details"}, rows)
}

func logSearchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Search activity entries",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			results, err := activity.Open(activity.DefaultPath()).Search(args[0], 50)
			if err != nil || len(results) == 0 {
				fmt.Printf("  No entries matching %q\n", args[0])
				return
			}
			ui.Banner("search results")
			printEntries(results)
			fmt.Printf("\n  %d results\n", len(results))
		},
	}
}

func logClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Clear the activity log",
		Run: func(cmd *cobra.Command, args []string) {
			if err := activity.Open(activity.DefaultPath()).Clear(); err != nil {
				fail("Failed to clear: %v", err)
			}
			ui.Good.Printf("  %s Activity log cleared\n", ui.StatusIcon(true))
		},
	}
}

func logExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Print the activity log as JSON",
		Run: func(cmd *cobra.Command, args []string) {
			entries, err := activity.Open(activity.DefaultPath()).Recent(0)
			if err != nil {
				fail("%v", err)
			}
			data, _ := json.MarshalIndent(entries, "", "  ")
			fmt.Println(string(data))
		},
	}
}

func logStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Summarize canvas activity",
		Run: func(cmd *cobra.Command, args []string) {
			s, err := activity.Open(activity.DefaultPath()).Summarize()
			if err != nil {
				fail("%v", err)
			}
			if s.Total == 0 {
				fmt.Println("  No activity recorded yet.")
				return
			}
			ui.Banner("activity stats")
			fmt.Printf("  Changes:      %d\n", s.Total)
			fmt.Printf("  Cards added:  %d (%d live)\n", s.CardsAdded, s.CardsLive)
			fmt.Printf("  Imports:      %d\n", s.Imports)
			fmt.Printf("  First:        %s\n", s.FirstChange.Local().Format("2006-01-02 15:04"))
			fmt.Printf("  Last:         %s\n", s.LastChange.Local().Format("2006-01-02 15:04"))
			fmt.Println()
			var rows [][]string
			for _, a := range s.Actions() {
				rows = append(rows, []string{a, strconv.Itoa(s.ByAction[a])})
			}
			ui.Table([]string{"Action", "Count"}, rows)
		},
	}
}
