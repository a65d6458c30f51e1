package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// minValueWidth keeps wrapped values readable on narrow terminals.
const minValueWidth = 12

// Terminal renders blocks as styled terminal text. A width of zero or less
// disables wrapping.
func Terminal(blocks []Block, p Palette, width int) string {
	if len(blocks) == 0 {
		return ""
	}

	heading := p.Heading.Lipgloss()
	key := p.Key.Lipgloss()

	rows := make([]string, 0, len(blocks)+len(blocks)/4)
	for i, b := range blocks {
		switch b.Kind {
		case KindHeading:
			if i > 0 {
				rows = append(rows, "")
			}
			st := heading
			if width > 0 {
				st = st.Width(width)
			}
			rows = append(rows, st.Render(b.Text))
		case KindField:
			label := key.Render(b.Key + ":")
			value := p.TagStyle(b.Tag).Lipgloss()
			if width > 0 {
				if w := width - lipgloss.Width(label) - 1; w >= minValueWidth {
					value = value.Width(w)
				}
			}
			rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, label, " ", value.Render(b.Value)))
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// Summary describes the field counts per tag, e.g. "2 mutation • 1 drug".
// Tags without fields are omitted.
func Summary(blocks []Block) string {
	counts := Tally(blocks)
	var parts []string
	for _, tag := range Tags {
		if n := counts[tag]; n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, tag))
		}
	}
	if len(parts) == 0 {
		return "no fields"
	}
	return strings.Join(parts, " • ")
}

// Legend renders one swatch per tag in its own color.
func Legend(p Palette) string {
	parts := make([]string, 0, len(Tags))
	for _, tag := range Tags {
		parts = append(parts, p.TagStyle(tag).Lipgloss().Render("■ "+string(tag)))
	}
	return strings.Join(parts, "  ")
}
