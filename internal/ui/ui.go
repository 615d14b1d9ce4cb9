package ui

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/fatih/color"
)

// Brand colors
var (
	Brand  = color.New(color.FgHiCyan, color.Bold)
	Subtle = color.New(color.FgHiBlack)
	Warn   = color.New(color.FgYellow)
	Info   = color.New(color.FgCyan)
	Good   = color.New(color.FgGreen)
	Bad    = color.New(color.FgRed)
)

const Globe = "\U0001F310" // 🌐

// Emoji toggles the globe prefix in Banner.
var Emoji = true

// Banner prints the horizon banner.
func Banner(subtitle string) {
	prefix := ""
	if Emoji {
		prefix = Globe + " "
	}
	fmt.Printf("%s%s — %s\n\n", prefix, Brand.Sprint("horizon"), subtitle)
}

// Table prints rows under headers with columns padded to the widest cell.
// Width counts runes so cells like "200×120" line up.
func Table(headers []string, rows [][]string) {
	if len(rows) == 0 {
		return
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = utf8.RuneCountInString(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) {
				widths[i] = max(widths[i], utf8.RuneCountInString(cell))
			}
		}
	}

	var head, sep strings.Builder
	for i, h := range headers {
		head.WriteString("  " + pad(h, widths[i]))
		sep.WriteString("  " + strings.Repeat("─", widths[i]))
	}
	Subtle.Println(head.String())
	Subtle.Println(sep.String())

	for _, row := range rows {
		var line strings.Builder
		for i, cell := range row {
			if i < len(widths) {
				line.WriteString("  " + pad(cell, widths[i]))
			}
		}
		fmt.Println(strings.TrimRight(line.String(), " "))
	}
}

func pad(s string, width int) string {
	if n := utf8.RuneCountInString(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}

// StatusIcon returns a status icon string.
func StatusIcon(ok bool) string {
	if ok {
		return Good.Sprint("✓")
	}
	return Bad.Sprint("✗")
}

// WarnIcon returns a warning icon.
func WarnIcon() string {
	return Warn.Sprint("⚠")
}

// Notice prints a one-line message coloured by level ("info", "success",
// "warning" or "error").
func Notice(w io.Writer, level, message string) {
	var icon string
	switch level {
	case "success":
		icon = StatusIcon(true)
	case "warning":
		icon = WarnIcon()
	case "error":
		icon = StatusIcon(false)
	default:
		icon = Info.Sprint("i")
	}
	fmt.Fprintf(w, "  %s %s\n", icon, message)
}

// AskYesNo prints title and message and reads a y/N answer from in. Anything
// other than y or yes is a refusal. EOF before a newline is a refusal too.
func AskYesNo(in io.Reader, out io.Writer, title, message string) (bool, error) {
	fmt.Fprintf(out, "%s %s\n", WarnIcon(), Warn.Sprint(title))
	if message != "" {
		fmt.Fprintf(out, "  %s\n", message)
	}
	fmt.Fprint(out, "  Continue? [y/N] ")

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
