package render

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/pelletier/go-toml/v2"
)

//go:embed palette.toml
var paletteTOML []byte

// Style is a declarative text style.
type Style struct {
	Foreground string `toml:"foreground"`
	Bold       bool   `toml:"bold"`
	Italic     bool   `toml:"italic"`
}

// Lipgloss converts s to a lipgloss style.
func (s Style) Lipgloss() lipgloss.Style {
	st := lipgloss.NewStyle().Bold(s.Bold).Italic(s.Italic)
	if s.Foreground != "" {
		st = st.Foreground(lipgloss.Color(s.Foreground))
	}
	return st
}

// Palette maps block kinds and field tags to styles.
type Palette struct {
	Title   Style            `toml:"title"`
	Heading Style            `toml:"heading"`
	Key     Style            `toml:"key"`
	Tags    map[string]Style `toml:"tags"`
}

var (
	defaultPalette     Palette
	defaultPaletteOnce sync.Once
)

// DefaultPalette returns the embedded palette.
func DefaultPalette() Palette {
	defaultPaletteOnce.Do(func() {
		p, err := LoadPalette(paletteTOML)
		if err != nil {
			panic(fmt.Sprintf("render: embedded palette: %v", err))
		}
		defaultPalette = p
	})
	return defaultPalette.clone()
}

// LoadPalette parses a TOML palette definition.
func LoadPalette(data []byte) (Palette, error) {
	var p Palette
	if err := toml.Unmarshal(data, &p); err != nil {
		return Palette{}, fmt.Errorf("parsing palette: %w", err)
	}
	if p.Tags == nil {
		p.Tags = map[string]Style{}
	}
	return p, nil
}

// WithColors returns a copy of p with foreground colors replaced. Keys are
// tag names plus "title", "heading" and "key"; empty values are ignored.
func (p Palette) WithColors(colors map[string]string) Palette {
	out := p.clone()
	for name, color := range colors {
		color = strings.TrimSpace(color)
		if color == "" {
			continue
		}
		switch name = strings.ToLower(name); name {
		case "title":
			out.Title.Foreground = color
		case "heading":
			out.Heading.Foreground = color
		case "key":
			out.Key.Foreground = color
		default:
			st := out.Tags[name]
			st.Foreground = color
			out.Tags[name] = st
		}
	}
	return out
}

// TagStyle returns the style for tag, falling back to the default tag.
func (p Palette) TagStyle(tag Tag) Style {
	if st, ok := p.Tags[string(tag)]; ok {
		return st
	}
	return p.Tags[string(TagDefault)]
}

// Color returns the foreground color identifier for tag.
func (p Palette) Color(tag Tag) string {
	return p.TagStyle(tag).Foreground
}

func (p Palette) clone() Palette {
	out := p
	out.Tags = make(map[string]Style, len(p.Tags))
	for k, v := range p.Tags {
		out.Tags[k] = v
	}
	return out
}
