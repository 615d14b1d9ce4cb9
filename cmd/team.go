package cmd

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/msalah0e/horizon/internal/roster"
	"github.com/msalah0e/horizon/internal/ui"
)

func teamCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "team",
		Aliases: []string{"teams", "roster"},
		Short:   "Manage team locations and put them on the canvas",
	}
	cmd.AddCommand(
		teamListCmd(),
		teamAddCmd(),
		teamRemoveCmd(),
		teamCardCmd(),
		teamCoverageCmd(),
	)
	return cmd
}

func loadRoster() *roster.Roster {
	r, err := roster.Load(roster.DefaultPath())
	if err != nil {
		fail("Cannot read roster: %v", err)
	}
	return r
}

func teamListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List team locations with their local time",
		Run: func(cmd *cobra.Command, args []string) {
			r := loadRoster()
			if len(r.Locations) == 0 {
				fmt.Println("  No team locations yet.")
				fmt.Println("  Run `horizon team add Europe/London` to add one")
				return
			}
			ui.Banner("team locations")
			now := time.Now()
			var rows [][]string
			for _, l := range r.Locations {
				rows = append(rows, []string{
					l.City,
					l.Timezone,
					l.Role,
					strconv.Itoa(l.TeamSize),
					fmt.Sprintf("%d:00-%d:00", l.WorkHours.Start, l.WorkHours.End),
					roster.Now(l, now).Format("15:04"),
					ui.StatusIcon(roster.InWorkHours(l, now)),
				})
			}
			ui.Table([]string{"City", "Timezone", "Role", "Size", "Hours", "Local", "Working"}, rows)
		},
	}
}

func teamAddCmd() *cobra.Command {
	var (
		city  string
		role  string
		size  int
		hours string
		local bool
	)
	cmd := &cobra.Command{
		Use:   "add <timezone>",
		Short: "Add a team location by IANA timezone",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			start, end, err := parseHours(hours)
			if err != nil {
				fail("%v", err)
			}
			r := loadRoster()
			loc, err := r.Add(roster.Location{
				Timezone:  args[0],
				City:      city,
				Role:      role,
				TeamSize:  size,
				WorkHours: roster.WorkHours{Start: start, End: end},
				IsLocal:   local,
			})
			if err != nil {
				fail("%v", err)
			}
			if err := roster.Save(roster.DefaultPath(), r); err != nil {
				fail("Cannot save roster: %v", err)
			}
			ui.Good.Printf("  %s %s (%s) added\n", ui.StatusIcon(true), loc.City, loc.Timezone)
		},
	}
	cmd.Flags().StringVar(&city, "city", "", "Display name (default from timezone)")
	cmd.Flags().StringVar(&role, "role", "", "Team role (default Engineering)")
	cmd.Flags().IntVar(&size, "size", 1, "Team size")
	cmd.Flags().StringVar(&hours, "hours", "9-17", "Local work hours as start-end")
	cmd.Flags().BoolVar(&local, "local", false, "Mark as your own location")
	return cmd
}

func parseHours(s string) (int, int, error) {
	a, b, ok := strings.Cut(s, "-")
	if !ok {
		return 0, 0, fmt.Errorf("%w: %q, want start-end", roster.ErrInvalidHours, s)
	}
	start, err1 := strconv.Atoi(strings.TrimSpace(a))
	end, err2 := strconv.Atoi(strings.TrimSpace(b))
	if err1 != nil || err2 != nil {
		return 0, 0, fmt.Errorf("%w: %q", roster.ErrInvalidHours, s)
	}
	return start, end, nil
}

func teamRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "remove <city|timezone|id>",
		Aliases: []string{"rm"},
		Short:   "Remove a team location",
		Args:    cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			r := loadRoster()
			if err := r.Remove(args[0]); err != nil {
				fail("%v", err)
			}
			if err := roster.Save(roster.DefaultPath(), r); err != nil {
				fail("Cannot save roster: %v", err)
			}
			ui.Good.Printf("  %s %s removed\n", ui.StatusIcon(true), args[0])
		},
	}
}

func teamCardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "card <city|timezone|id>",
		Short: "Add a team card for a location to the canvas",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			loc := loadRoster().Find(args[0])
			if loc == nil {
				fail("%v: %s", roster.ErrNotFound, args[0])
			}
			s, _, done := openSession(cmd.Context(), sessionOptions{})
			defer done()

			c := s.MaterializeTeam(*loc)
			ui.Good.Printf("  %s Team card %d for %s at %.0f,%.0f\n", ui.StatusIcon(true), c.ID, loc.City, c.X, c.Y)
		},
	}
}

func teamCoverageCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "coverage",
		Short: "Show 24-hour coverage, handoff efficiency and overlaps",
		Run: func(cmd *cobra.Command, args []string) {
			r := loadRoster()
			if len(r.Locations) == 0 {
				fmt.Println("  No team locations yet.")
				return
			}
			now := time.Now()
			ui.Banner("coverage")
			fmt.Printf("  Coverage:      %d/24 hours\n", roster.Coverage(r.Locations, now))
			fmt.Printf("  Handoff:       %d%%\n", roster.HandoffEfficiency(r.Locations, now))
			fmt.Printf("  Productivity:  %d\n", roster.ProductivityScore(r.Locations, now))

			if len(r.Locations) < 2 {
				return
			}
			fmt.Println()
			var rows [][]string
			for i, a := range r.Locations {
				for _, b := range r.Locations[i+1:] {
					rows = append(rows, []string{a.City, b.City, fmt.Sprintf("%dh", roster.Overlap(a, b, now))})
				}
			}
			ui.Table([]string{"From", "To", "Overlap"}, rows)
		},
	}
}
