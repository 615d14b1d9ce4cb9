// Package tokens estimates prompt and reply sizes for the assistant.
package tokens

import (
	"fmt"
	"strings"
)

// ContextWindows maps model families to their approximate input limit.
var ContextWindows = map[string]int{
	"gemini-1.5-flash": 1000000,
	"gemini-1.5-pro":   2000000,
	"gemini-2.0-flash": 1000000,
	"gemini-2.5-flash": 1000000,
	"gemini-2.5-pro":   1000000,
}

// DefaultWindow applies to models missing from ContextWindows.
const DefaultWindow = 32768

// Estimate approximates the token count of text at four bytes per token,
// rounding up.
func Estimate(text string) int {
	return (len(text) + 3) / 4
}

// Window returns the context window for model. Versioned names such as
// "gemini-1.5-flash-002" match their family.
func Window(model string) int {
	if w, ok := ContextWindows[model]; ok {
		return w
	}
	best, window := "", DefaultWindow
	for name, w := range ContextWindows {
		if strings.HasPrefix(model, name) && len(name) > len(best) {
			best, window = name, w
		}
	}
	return window
}

// Fits reports whether text fits in model's window.
func Fits(model, text string) bool {
	return Estimate(text) <= Window(model)
}

// Format returns a human-readable token count.
func Format(n int) string {
	if n >= 1000000 {
		return fmt.Sprintf("%.1fM", float64(n)/1000000)
	}
	if n >= 1000 {
		return fmt.Sprintf("%.1fK", float64(n)/1000)
	}
	return fmt.Sprintf("%d", n)
}
