// Package assist answers team-coordination questions about the canvas. It
// wraps a text generator with input checks, a context-aware prompt, reply
// classification and an offline fallback.
package assist

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/msalah0e/horizon/internal/roster"
	"github.com/msalah0e/horizon/internal/tokens"
)

// Reply types.
const (
	TypeCoverage = "coverage_analysis"
	TypeHiring   = "hiring_recommendation"
	TypeHandoff  = "handoff_optimization"
	TypeMeeting  = "meeting_optimization"
	TypeGeneral  = "general_advice"
)

// FallbackModel is reported in metadata when no generator answered.
const FallbackModel = "fallback"

var bannedKeywords = []string{"hack", "exploit", "malware", "illegal", "harmful"}

// Generator produces text for a prompt. model names what answered.
type Generator interface {
	Generate(ctx context.Context, prompt string) (text, model string, err error)
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(ctx context.Context, prompt string) (string, string, error)

func (f GeneratorFunc) Generate(ctx context.Context, prompt string) (string, string, error) {
	return f(ctx, prompt)
}

// Error is a rejected request. Status is the HTTP status it maps to.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string { return e.Message }

// StatusOf returns the HTTP status for err, 500 for anything that is not an
// *Error.
func StatusOf(err error) int {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Status
	}
	return http.StatusInternalServerError
}

// ErrNotConfigured is returned when there is no generator.
var ErrNotConfigured = &Error{Status: http.StatusServiceUnavailable, Message: "AI service not configured"}

// ─── Request / response ─────────────────────────────────────

// TeamMember describes one location in the prompt context.
type TeamMember struct {
	City      string            `json:"city,omitempty"`
	Role      string            `json:"role,omitempty"`
	TeamSize  int               `json:"teamSize,omitempty"`
	WorkHours *roster.WorkHours `json:"workHours,omitempty"`
}

// Context is what the caller knows about the team.
type Context struct {
	TeamStructure     []TeamMember `json:"teamStructure,omitempty"`
	CurrentCoverage   *float64     `json:"currentCoverage,omitempty"`
	HandoffEfficiency *float64     `json:"handoffEfficiency,omitempty"`
}

func (c *Context) empty() bool {
	return c == nil || (len(c.TeamStructure) == 0 && c.CurrentCoverage == nil && c.HandoffEfficiency == nil)
}

// Request is one question.
type Request struct {
	Prompt  string   `json:"prompt"`
	Context *Context `json:"context,omitempty"`
}

// Metadata describes how an answer was produced.
type Metadata struct {
	Timestamp string `json:"timestamp"`
	Model     string `json:"model"`
	Tokens    int    `json:"tokens"`
	RequestID string `json:"requestId"`
}

// Answer is the structured reply.
type Answer struct {
	Text        string   `json:"text"`
	Type        string   `json:"type"`
	Suggestions []string `json:"suggestions"`
	Metadata    Metadata `json:"metadata"`
}

// Response is the success envelope.
type Response struct {
	Success  bool   `json:"success"`
	Response Answer `json:"response"`
	Fallback bool   `json:"fallback,omitempty"`
	APIError string `json:"api_error,omitempty"`
}

// ContextFromRoster summarizes locs at time t.
func ContextFromRoster(locs []roster.Location, t time.Time) *Context {
	c := &Context{}
	for _, l := range locs {
		hours := l.WorkHours
		c.TeamStructure = append(c.TeamStructure, TeamMember{
			City: l.City, Role: l.Role, TeamSize: l.TeamSize, WorkHours: &hours,
		})
	}
	if len(locs) > 0 {
		cov := float64(roster.Coverage(locs, t))
		eff := float64(roster.HandoffEfficiency(locs, t))
		c.CurrentCoverage, c.HandoffEfficiency = &cov, &eff
	}
	return c
}

// ─── Assistant ──────────────────────────────────────────────

// Options configures an Assistant.
type Options struct {
	Generator    Generator // nil means not configured
	Model        string
	MaxPromptLen int
	Timeout      time.Duration
	Logger       *zap.Logger
	Now          func() time.Time
	NewID        func() string
}

// Assistant validates questions, asks the generator and shapes the reply.
type Assistant struct {
	gen       Generator
	model     string
	maxPrompt int
	timeout   time.Duration
	log       *zap.Logger
	now       func() time.Time
	newID     func() string
}

// New returns an Assistant with defaults filled in.
func New(opts Options) *Assistant {
	a := &Assistant{
		gen:       opts.Generator,
		model:     opts.Model,
		maxPrompt: opts.MaxPromptLen,
		timeout:   opts.Timeout,
		log:       opts.Logger,
		now:       opts.Now,
		newID:     opts.NewID,
	}
	if a.model == "" {
		a.model = DefaultModel
	}
	if a.maxPrompt <= 0 {
		a.maxPrompt = 10000
	}
	if a.timeout <= 0 {
		a.timeout = 30 * time.Second
	}
	if a.log == nil {
		a.log = zap.NewNop()
	}
	if a.now == nil {
		a.now = time.Now
	}
	if a.newID == nil {
		a.newID = uuid.NewString
	}
	return a
}

// Configured reports whether a generator is present.
func (a *Assistant) Configured() bool { return a.gen != nil }

// Validate trims the prompt and rejects empty, oversized or disallowed
// input.
func (a *Assistant) Validate(req *Request) error {
	req.Prompt = strings.TrimSpace(req.Prompt)
	if req.Prompt == "" {
		return &Error{Status: http.StatusBadRequest, Message: "Prompt is required"}
	}
	if len(req.Prompt) > a.maxPrompt {
		return &Error{Status: http.StatusRequestEntityTooLarge, Message: "Prompt too long"}
	}
	lower := strings.ToLower(req.Prompt)
	for _, kw := range bannedKeywords {
		if strings.Contains(lower, kw) {
			return &Error{Status: http.StatusBadRequest, Message: "Content not allowed"}
		}
	}
	return nil
}

// Ask answers req. Generator failures and empty replies produce a fallback
// answer rather than an error; only rejected input and a missing generator
// return one.
func (a *Assistant) Ask(ctx context.Context, req Request) (*Response, error) {
	if a.gen == nil {
		return nil, ErrNotConfigured
	}
	if err := a.Validate(&req); err != nil {
		return nil, err
	}

	id := a.newID()
	prompt := BuildPrompt(req.Prompt, req.Context)
	if !tokens.Fits(a.model, prompt) {
		return nil, &Error{Status: http.StatusRequestEntityTooLarge, Message: "Prompt too long"}
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	start := time.Now()
	text, model, err := a.gen.Generate(ctx, prompt)
	log := a.log.With(zap.String("request_id", id), zap.Int("prompt_tokens", tokens.Estimate(prompt)))
	if err != nil {
		log.Warn("generator failed, using fallback", zap.Error(err), zap.Duration("elapsed", time.Since(start)))
		resp := a.fallback(req.Prompt, id)
		resp.APIError = err.Error()
		return resp, nil
	}
	if strings.TrimSpace(text) == "" {
		log.Warn("empty reply, using fallback")
		return a.fallback(req.Prompt, id), nil
	}
	if model == "" {
		model = a.model
	}
	log.Debug("answered", zap.String("model", model), zap.Duration("elapsed", time.Since(start)))

	return &Response{
		Success: true,
		Response: Answer{
			Text:        text,
			Type:        DetectType(text),
			Suggestions: ExtractSuggestions(text),
			Metadata:    a.metadata(model, text, id),
		},
	}, nil
}

func (a *Assistant) metadata(model, text, id string) Metadata {
	return Metadata{
		Timestamp: a.now().Format(time.RFC3339),
		Model:     model,
		Tokens:    tokens.Estimate(text),
		RequestID: id,
	}
}

// ─── Prompt ─────────────────────────────────────────────────

// BuildPrompt wraps the user's question with the advisor role, any team
// context and answer guidelines.
func BuildPrompt(question string, c *Context) string {
	var b strings.Builder
	b.WriteString("You are an expert global team coordination advisor for HorizonSync. ")
	b.WriteString("Your role is to provide strategic recommendations for optimizing distributed teams across time zones.\n\n")

	if !c.empty() {
		b.WriteString("Current Team Context:\n")
		if len(c.TeamStructure) > 0 {
			b.WriteString("Team Locations:\n")
			for _, m := range c.TeamStructure {
				city, role, size := m.City, m.Role, m.TeamSize
				if city == "" {
					city = "Unknown"
				}
				if role == "" {
					role = "Team"
				}
				if size == 0 {
					size = 1
				}
				hours := roster.WorkHours{Start: 9, End: 17}
				if m.WorkHours != nil {
					hours = *m.WorkHours
				}
				fmt.Fprintf(&b, "- %s: %s team, %d members, work hours %d:00-%d:00\n", city, role, size, hours.Start, hours.End)
			}
		}
		if c.CurrentCoverage != nil {
			fmt.Fprintf(&b, "Current Coverage: %v/24 hours\n", *c.CurrentCoverage)
		}
		if c.HandoffEfficiency != nil {
			fmt.Fprintf(&b, "Handoff Efficiency: %v%%\n", *c.HandoffEfficiency)
		}
		b.WriteString("\n")
	}

	b.WriteString("Guidelines for responses:\n" +
		"1. Focus on actionable, specific recommendations\n" +
		"2. Consider timezone impact on team productivity\n" +
		"3. Suggest optimal work hour overlaps for handoffs\n" +
		"4. Recommend strategic hiring locations\n" +
		"5. Provide clear implementation steps\n" +
		"6. Keep responses concise but comprehensive\n\n")
	fmt.Fprintf(&b, "User Request: %s\n\n", question)
	b.WriteString("Provide a strategic response with specific recommendations:")
	return b.String()
}

// ─── Reply analysis ─────────────────────────────────────────

// DetectType classifies a reply by the first matching topic.
func DetectType(text string) string {
	lower := strings.ToLower(text)
	has := func(words ...string) bool {
		for _, w := range words {
			if strings.Contains(lower, w) {
				return true
			}
		}
		return false
	}
	switch {
	case has("coverage", "24-hour"):
		return TypeCoverage
	case has("hire", "hiring"):
		return TypeHiring
	case has("handoff", "transition"):
		return TypeHandoff
	case has("meeting", "schedule"):
		return TypeMeeting
	default:
		return TypeGeneral
	}
}

var suggestionRe = regexp.MustCompile(`(?i)(?:recommend|suggest|consider|try)(?:ed|ing)?\s+([^.!?]+)`)

// ExtractSuggestions pulls up to three short recommendation phrases out of
// text.
func ExtractSuggestions(text string) []string {
	out := []string{}
	for _, m := range suggestionRe.FindAllStringSubmatch(text, -1) {
		s := strings.TrimSpace(m[1])
		if len(s) > 10 && len(s) < 100 {
			out = append(out, s)
			if len(out) == 3 {
				break
			}
		}
	}
	return out
}

// ─── Fallback ───────────────────────────────────────────────

type canned struct {
	typ         string
	text        string
	suggestions []string
}

var (
	cannedCoverage = canned{TypeCoverage,
		"To achieve better coverage, consider adding team members in complementary time zones. " +
			"Focus on locations that fill current gaps in your 24-hour cycle. " +
			"Europe/London and America/New_York are often strategic choices for global teams.",
		[]string{
			"Add team members in Europe for better coverage",
			"Consider Americas timezone for complete global reach",
			"Analyze current coverage gaps for strategic hiring",
		}}
	cannedHiring = canned{TypeHiring,
		"When expanding your team, prioritize locations that complement your existing coverage. " +
			"Look for timezones that create natural handoff points and minimize coverage gaps. " +
			"Consider factors like talent availability, cost, and cultural alignment.",
		[]string{
			"Evaluate timezone overlap for smooth handoffs",
			"Research talent pools in target locations",
			"Plan gradual expansion for better integration",
		}}
	cannedHandoff = canned{TypeHandoff,
		"Optimize team handoffs by creating overlap periods between shifts. " +
			"Implement clear documentation standards and establish routine handoff meetings. " +
			"Use asynchronous communication tools to bridge timezone gaps effectively.",
		[]string{
			"Establish 1-2 hour overlap windows between teams",
			"Create standardized handoff documentation",
			"Use async tools for seamless communication",
		}}
	cannedGeneral = canned{TypeGeneral,
		"For effective global team coordination, focus on three key areas: " +
			"coverage optimization, strategic hiring, and smooth handoff processes. " +
			"Each location should complement your existing team structure.",
		[]string{
			"How can I achieve 24-hour coverage?",
			"Where should I hire my next team member?",
			"Optimize our current workflow handoffs",
		}}
)

func pickCanned(question string) canned {
	lower := strings.ToLower(question)
	switch {
	case strings.Contains(lower, "coverage") || strings.Contains(lower, "24"):
		return cannedCoverage
	case strings.Contains(lower, "hire") || strings.Contains(lower, "location"):
		return cannedHiring
	case strings.Contains(lower, "handoff") || strings.Contains(lower, "optimize"):
		return cannedHandoff
	default:
		return cannedGeneral
	}
}

// Fallback answers question from canned advice.
func (a *Assistant) Fallback(question string) *Response {
	return a.fallback(question, a.newID())
}

func (a *Assistant) fallback(question, id string) *Response {
	c := pickCanned(question)
	return &Response{
		Success: true,
		Response: Answer{
			Text:        c.text,
			Type:        c.typ,
			Suggestions: append([]string(nil), c.suggestions...),
			Metadata:    a.metadata(FallbackModel, c.text, id),
		},
		Fallback: true,
	}
}
