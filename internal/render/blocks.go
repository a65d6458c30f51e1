// Package render turns the freeform text returned by the analysis service
// into display blocks grouped by article.
package render

import (
	"fmt"
	"strings"
)

// Kind distinguishes heading blocks from key/value fields.
type Kind int

const (
	KindHeading Kind = iota
	KindField
)

func (k Kind) String() string {
	switch k {
	case KindHeading:
		return "heading"
	case KindField:
		return "field"
	default:
		return "unknown"
	}
}

// MarshalText lets blocks serialize kind as a readable string.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText accepts the strings produced by MarshalText.
func (k *Kind) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "heading":
		*k = KindHeading
	case "field":
		*k = KindField
	default:
		return fmt.Errorf("unknown block kind %q", text)
	}
	return nil
}

// Tag is the classification of a field, derived from its key.
type Tag string

const (
	TagDefault  Tag = "default"
	TagMutation Tag = "mutation"
	TagPathogen Tag = "pathogen"
	TagDrug     Tag = "drug"
)

// Tags lists every classification in display order.
var Tags = []Tag{TagMutation, TagPathogen, TagDrug, TagDefault}

// Block is one unit of rendered output. Headings carry Text; fields carry
// Key, Value and Tag.
type Block struct {
	Section int    `json:"section"`
	Kind    Kind   `json:"kind"`
	Text    string `json:"text,omitempty"`
	Key     string `json:"key,omitempty"`
	Value   string `json:"value,omitempty"`
	Tag     Tag    `json:"tag,omitempty"`
}

// IsField reports whether b is a key/value field.
func (b Block) IsField() bool {
	return b.Kind == KindField
}

// Sections groups blocks by their section index, preserving order.
func Sections(blocks []Block) [][]Block {
	var out [][]Block
	for i, b := range blocks {
		if i == 0 || b.Section != blocks[i-1].Section {
			out = append(out, nil)
		}
		out[len(out)-1] = append(out[len(out)-1], b)
	}
	return out
}

// Tally counts field blocks per tag.
func Tally(blocks []Block) map[Tag]int {
	counts := make(map[Tag]int, len(Tags))
	for _, b := range blocks {
		if b.IsField() {
			counts[b.Tag]++
		}
	}
	return counts
}
