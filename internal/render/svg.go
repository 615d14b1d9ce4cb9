package render

import (
	"bufio"
	"encoding/xml"
	"fmt"
	"html"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var tagRe = regexp.MustCompile(`<[^>]*>`)

// PlainText strips inline markup, decodes entities and collapses whitespace,
// for places that cannot show rich text.
func PlainText(s string) string {
	s = strings.NewReplacer("<br>", " ", "<br/>", " ", "<br />", " ").Replace(s)
	s = tagRe.ReplaceAllString(s, "")
	s = html.UnescapeString(s)
	return strings.Join(strings.Fields(s), " ")
}

func esc(s string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}

func f(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// CardIDs returns the scene's card ids in ascending order.
func (s *Scene) CardIDs() []int {
	ids := make([]int, 0, len(s.Cards))
	for id := range s.Cards {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// LineIDs returns the scene's line ids in ascending order.
func (s *Scene) LineIDs() []int {
	ids := make([]int, 0, len(s.Lines))
	for id := range s.Lines {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// WriteSVG writes the scene as a standalone SVG document of the given screen
// size. Output is deterministic for a given scene.
func (s *Scene) WriteSVG(w io.Writer, width, height int) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`+"\n", width, height, width, height)
	if s.Grid {
		bw.WriteString(`  <defs><pattern id="grid" width="20" height="20" patternUnits="userSpaceOnUse"><path d="M 20 0 L 0 0 0 20" fill="none" stroke="#e5e7eb" stroke-width="1"/></pattern></defs>` + "\n")
		bw.WriteString(`  <rect width="100%" height="100%" fill="url(#grid)"/>` + "\n")
	}
	fmt.Fprintf(bw, `  <g id="workflow-viewport" transform="%s">`+"\n", s.Transform)

	bw.WriteString(`    <g id="workflow-connections-layer">` + "\n")
	for _, id := range s.LineIDs() {
		lv := s.Lines[id]
		class := "workflow-connection-line"
		if lv.HighlightDelete {
			class += " highlight-delete"
		}
		fmt.Fprintf(bw, `      <line id="workflow-conn-%d" class="%s" x1="%s" y1="%s" x2="%s" y2="%s" stroke="#64748b" stroke-width="2"/>`+"\n",
			lv.ID, class, f(lv.X1), f(lv.Y1), f(lv.X2), f(lv.Y2))
	}
	bw.WriteString("    </g>\n")

	bw.WriteString(`    <g id="workflow-cards-layer">` + "\n")
	for _, id := range s.CardIDs() {
		cv := s.Cards[id]
		class := "workflow-card " + string(cv.Kind) + "-card"
		if cv.Selected {
			class += " selected"
		}
		stroke := "#cbd5e1"
		if cv.Anchor {
			stroke = "#2563eb"
		}
		fmt.Fprintf(bw, `      <g id="workflow-card-%d" class="%s" transform="translate(%s, %s)">`+"\n", cv.ID, class, f(cv.X), f(cv.Y))
		fmt.Fprintf(bw, `        <rect width="%s" height="%s" rx="8" fill="#ffffff" stroke="%s" stroke-width="2"/>`+"\n", f(cv.W), f(cv.H), stroke)
		fmt.Fprintf(bw, `        <text x="12" y="24" font-weight="bold">%s</text>`+"\n", esc(PlainText(cv.Title)))
		fmt.Fprintf(bw, `        <text x="12" y="48">%s</text>`+"\n", esc(PlainText(cv.Content)))
		bw.WriteString("      </g>\n")
	}
	bw.WriteString("    </g>\n")

	bw.WriteString("  </g>\n</svg>\n")
	return bw.Flush()
}

// DOT returns the scene as an undirected Graphviz graph.
func (s *Scene) DOT() string {
	var b strings.Builder
	b.WriteString("graph horizon_workflow {\n")
	b.WriteString("  node [shape=box, style=rounded];\n\n")

	for _, id := range s.CardIDs() {
		cv := s.Cards[id]
		label := PlainText(cv.Title)
		if label == "" {
			label = fmt.Sprintf("#%d", cv.ID)
		}
		if cv.Kind != "" {
			label += "\n(" + string(cv.Kind) + ")"
		}
		b.WriteString(fmt.Sprintf("  c%d [label=%q];\n", cv.ID, label))
	}

	if len(s.Lines) > 0 {
		b.WriteString("\n")
	}
	for _, id := range s.LineIDs() {
		lv := s.Lines[id]
		b.WriteString(fmt.Sprintf("  c%d -- c%d;\n", lv.From, lv.To))
	}

	b.WriteString("}\n")
	return b.String()
}
