package cmd

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/msalah0e/horizon/internal/assist"
	"github.com/msalah0e/horizon/internal/config"
	"github.com/msalah0e/horizon/internal/prompt"
	"github.com/msalah0e/horizon/internal/tokens"
	"github.com/msalah0e/horizon/internal/ui"
	"github.com/msalah0e/horizon/internal/vault"
)

// newAssistant builds the assistant from config. A missing key gives an
// unconfigured assistant rather than an error.
func newAssistant(cmd *cobra.Command, cfg *config.Config) *assist.Assistant {
	opts := assist.Options{
		Model:        cfg.Assist.Model,
		MaxPromptLen: cfg.Assist.MaxPromptLen,
		Timeout:      cfg.Assist.Timeout(),
		Logger:       logger,
	}
	gen, src, err := assist.NewGeminiFromVault(cmd.Context(), vault.New(), cfg.Assist.APIKeyEnv, cfg.Assist.Model)
	switch {
	case err == nil:
		logger.Debug("assist key resolved", zap.String("source", string(src)))
		opts.Generator = gen
	case errors.Is(err, assist.ErrNoKey):
		logger.Debug("assist not configured", zap.Error(err))
	default:
		logger.Warn("assist client", zap.Error(err))
	}
	return assist.New(opts)
}

func assistCmd() *cobra.Command {
	var (
		noContext bool
		template  string
		vars      map[string]string
	)
	cmd := &cobra.Command{
		Use:   "assist <question...>",
		Short: "Ask the AI advisor about coverage, hiring and handoffs",
		Long: `Ask Gemini for team coordination advice. The roster (locations, coverage
and handoff efficiency) is sent along unless --no-context is given.

The API key is read from $GEMINI_API_KEY or the vault (` + "`horizon keys set GEMINI_API_KEY`" + `).

  horizon assist how do we cover APAC mornings?
  horizon assist --template hiring --var city=Lagos`,
		Args: func(cmd *cobra.Command, args []string) error {
			if template != "" {
				return cobra.NoArgs(cmd, args)
			}
			return cobra.MinimumNArgs(1)(cmd, args)
		},
		Run: func(cmd *cobra.Command, args []string) {
			cfg := config.Load()
			a := newAssistant(cmd, cfg)
			question := strings.Join(args, " ")
			if template != "" {
				tpl, err := prompt.Open(prompt.DefaultDir()).Load(template)
				if err != nil {
					fail("%v", err)
				}
				if question, err = prompt.Render(tpl.Content, vars); err != nil {
					fail("Template %s: %v", template, err)
				}
			}

			req := assist.Request{Prompt: question}
			if !noContext {
				req.Context = assist.ContextFromRoster(loadRoster().Locations, time.Now())
			}

			var resp *assist.Response
			if a.Configured() {
				var err error
				resp, err = a.Ask(cmd.Context(), req)
				if err != nil {
					fail("%v", err)
				}
			} else {
				if err := a.Validate(&req); err != nil {
					fail("%v", err)
				}
				ui.Warn.Printf("  %s No %s set, showing offline advice\n\n", ui.WarnIcon(), cfg.Assist.APIKeyEnv)
				resp = a.Fallback(req.Prompt)
			}
			printAnswer(resp)
		},
	}
	cmd.Flags().BoolVar(&noContext, "no-context", false, "Do not send the team roster")
	cmd.Flags().StringVarP(&template, "template", "t", "", "Ask a saved question (see `horizon prompts`)")
	cmd.Flags().StringToStringVar(&vars, "var", nil, "Template values as name=value")
	_ = cmd.RegisterFlagCompletionFunc("template", promptCompletionFunc)
	return cmd
}

func printAnswer(resp *assist.Response) {
	ans := resp.Response
	ui.Banner(strings.ReplaceAll(ans.Type, "_", " "))
	for _, line := range strings.Split(strings.TrimSpace(ans.Text), "\n") {
		fmt.Printf("  %s\n", line)
	}
	if len(ans.Suggestions) > 0 {
		fmt.Println()
		ui.Info.Println("  Suggestions")
		for _, s := range ans.Suggestions {
			fmt.Printf("    • %s\n", s)
		}
	}
	if resp.APIError != "" {
		fmt.Println()
		ui.Warn.Printf("  %s Fell back to offline advice: %s\n", ui.WarnIcon(), resp.APIError)
	}
	fmt.Println()
	fmt.Println(ui.Subtle.Sprintf("  %s · %s tokens · %s", ans.Metadata.Model, tokens.Format(ans.Metadata.Tokens), ans.Metadata.RequestID))
}
