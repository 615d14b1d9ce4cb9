package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/msalah0e/horizon/internal/prompt"
	"github.com/msalah0e/horizon/internal/ui"
)

func promptsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "prompts",
		Aliases: []string{"templates"},
		Short:   "Manage saved advisor questions",
		Long: `Saved questions for ` + "`horizon assist --template`" + `. Use {{name}}
placeholders and fill them with --var name=value.`,
		Run: func(cmd *cobra.Command, args []string) {
			listPrompts()
		},
	}
	cmd.AddCommand(promptsListCmd(), promptsSaveCmd(), promptsShowCmd(), promptsRmCmd())
	return cmd
}

func listPrompts() {
	list, err := prompt.Open(prompt.DefaultDir()).List()
	if err != nil {
		fail("%v", err)
	}
	if len(list) == 0 {
		fmt.Println("  No saved prompts.")
		fmt.Println("  Run `horizon prompts save hiring \"Should we hire in {{city}}?\"` to add one")
		return
	}
	ui.Banner("prompts")
	var rows [][]string
	for _, t := range list {
		vars := "-"
		if len(t.Variables) > 0 {
			vars = strings.Join(t.Variables, ", ")
		}
		rows = append(rows, []string{t.Name, truncate(strings.ReplaceAll(t.Content, "\n", " "), 48), vars})
	}
	ui.Table([]string{"Name", "Question", "Variables"}, rows)
}

func promptsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List saved prompts",
		Run: func(cmd *cobra.Command, args []string) {
			listPrompts()
		},
	}
}

func promptsSaveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "save <name> [question...]",
		Short: "Save a question (read from stdin when none is given)",
		Args:  cobra.MinimumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			content := strings.Join(args[1:], " ")
			if content == "" {
				data, err := io.ReadAll(os.Stdin)
				if err != nil {
					fail("%v", err)
				}
				content = string(data)
			}
			if err := prompt.Open(prompt.DefaultDir()).Save(args[0], content); err != nil {
				fail("%v", err)
			}
			ui.Good.Printf("  %s Saved %s", ui.StatusIcon(true), args[0])
			if vars := prompt.Variables(content); len(vars) > 0 {
				fmt.Printf(" %s", ui.Subtle.Sprintf("(needs %s)", strings.Join(vars, ", ")))
			}
			fmt.Println()
		},
	}
}

func promptsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:               "show <name>",
		Short:             "Print a saved prompt",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: promptCompletionFunc,
		Run: func(cmd *cobra.Command, args []string) {
			t, err := prompt.Open(prompt.DefaultDir()).Load(args[0])
			if err != nil {
				fail("%v", err)
			}
			fmt.Println(strings.TrimRight(t.Content, "\n"))
		},
	}
}

func promptsRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:               "rm <name>",
		Aliases:           []string{"remove", "delete"},
		Short:             "Delete a saved prompt",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: promptCompletionFunc,
		Run: func(cmd *cobra.Command, args []string) {
			if err := prompt.Open(prompt.DefaultDir()).Delete(args[0]); err != nil {
				fail("%v", err)
			}
			ui.Good.Printf("  %s Deleted %s\n", ui.StatusIcon(true), args[0])
		},
	}
}
