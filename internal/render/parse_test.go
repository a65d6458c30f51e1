package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stringer struct{ s string }

func (s stringer) String() string { return s.s }

type ptrStringer struct{ s string }

func (p *ptrStringer) String() string { return p.s }

func TestRender_EmptyAndNonText(t *testing.T) {
	var nilStr *string
	var nilStringer *ptrStringer

	inputs := []struct {
		name  string
		input any
	}{
		{"empty string", ""},
		{"whitespace only", "  \n\t\n   "},
		{"nil", nil},
		{"nil string pointer", nilStr},
		{"nil stringer", nilStringer},
		{"int", 42},
		{"map", map[string]any{"answer": "x"}},
		{"slice", []string{"Mutation: E484K"}},
		{"asterisks only", "****\n**"},
	}

	for _, tt := range inputs {
		t.Run(tt.name, func(t *testing.T) {
			var blocks []Block
			require.NotPanics(t, func() { blocks = Render(tt.input) })
			assert.Empty(t, blocks)
		})
	}
}

func TestRender_Fields(t *testing.T) {
	blocks := Render("Mutation: E484K\nPathogen: SARS-CoV-2\nDrug: Remdesivir")
	require.Len(t, blocks, 3)

	expected := []struct {
		key   string
		value string
		tag   Tag
	}{
		{"Mutation", "E484K", TagMutation},
		{"Pathogen", "SARS-CoV-2", TagPathogen},
		{"Drug", "Remdesivir", TagDrug},
	}

	for i, want := range expected {
		b := blocks[i]
		assert.Equal(t, KindField, b.Kind)
		assert.Equal(t, want.key, b.Key)
		assert.Equal(t, want.value, b.Value)
		assert.Equal(t, want.tag, b.Tag)
		assert.Equal(t, 0, b.Section)
	}
}

func TestRender_SplitsOnFirstColonOnly(t *testing.T) {
	tests := []struct {
		line  string
		key   string
		value string
	}{
		{"Notes: see section 2: details", "Notes", "see section 2: details"},
		{"Binding ratio: 3:1", "Binding ratio", "3:1"},
		{"Source: https://journals.asm.org/doi/10.1128/x", "Source", "https://journals.asm.org/doi/10.1128/x"},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			blocks := Render(tt.line)
			require.Len(t, blocks, 1)
			assert.Equal(t, KindField, blocks[0].Kind)
			assert.Equal(t, tt.key, blocks[0].Key)
			assert.Equal(t, tt.value, blocks[0].Value)
		})
	}
}

func TestRender_Headings(t *testing.T) {
	tests := []struct {
		name string
		line string
		text string
	}{
		{"plain heading", "Article 1", "Article 1"},
		{"trailing colon", "Article 1:", "Article 1"},
		{"prose", "Summary of findings", "Summary of findings"},
		{"bold marker", "**Article 2:**", "Article 2"},
		{"bare url", "https://doi.org/10.1000/182", "https://doi.org/10.1000/182"},
		{"empty key", ": orphan value", ": orphan value"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			blocks := Render(tt.line)
			require.Len(t, blocks, 1)
			assert.Equal(t, KindHeading, blocks[0].Kind)
			assert.Equal(t, tt.text, blocks[0].Text)
			assert.Empty(t, blocks[0].Tag)
		})
	}
}

func TestRender_SkipsBlankLines(t *testing.T) {
	blocks := Render("Mutation: A\n\n   \r\nDrug: B\r\n")
	require.Len(t, blocks, 2)
	assert.Equal(t, "A", blocks[0].Value)
	assert.Equal(t, "B", blocks[1].Value)
}

func TestRender_StripsAsterisks(t *testing.T) {
	blocks := Render("**Mutation**: *E484K*\n**Drug:** **Remdesivir**")
	require.Len(t, blocks, 2)

	for _, b := range blocks {
		assert.NotContains(t, b.Key, "*")
		assert.NotContains(t, b.Value, "*")
	}
	assert.Equal(t, "Mutation", blocks[0].Key)
	assert.Equal(t, "E484K", blocks[0].Value)
	assert.Equal(t, TagMutation, blocks[0].Tag)
	assert.Equal(t, "Remdesivir", blocks[1].Value)
}

func TestRender_Sections(t *testing.T) {
	text := strings.Join([]string{
		"**Article 1:** Spike protein escape",
		"Amino Acid Mutation: E484K",
		"Pathogen: SARS-CoV-2",
		"",
		"**Article 2:**",
		"Drug: Remdesivir",
		"Notes: in vitro only",
	}, "\n")

	blocks := Render(text)
	require.Len(t, blocks, 6)

	assert.Equal(t, KindHeading, blocks[0].Kind)
	assert.Equal(t, "Article 1: Spike protein escape", blocks[0].Text)
	assert.Equal(t, 0, blocks[0].Section)
	assert.Equal(t, TagMutation, blocks[1].Tag)
	assert.Equal(t, 0, blocks[2].Section)

	assert.Equal(t, KindHeading, blocks[3].Kind)
	assert.Equal(t, "Article 2", blocks[3].Text)
	assert.Equal(t, 1, blocks[3].Section)
	assert.Equal(t, 1, blocks[5].Section)

	sections := Sections(blocks)
	require.Len(t, sections, 2)
	assert.Len(t, sections[0], 3)
	assert.Len(t, sections[1], 3)
}

func TestRender_PreambleBeforeFirstArticle(t *testing.T) {
	blocks := Render("Here is what I found\nArticle 1\nDrug: X\narticle 2\nDrug: Y")
	require.Len(t, blocks, 5)

	assert.Equal(t, 0, blocks[0].Section)
	assert.Equal(t, 1, blocks[1].Section)
	assert.Equal(t, 1, blocks[2].Section)
	assert.Equal(t, 2, blocks[3].Section)
	assert.Equal(t, 2, blocks[4].Section)
}

func TestRender_DoesNotModifyInput(t *testing.T) {
	input := "**Mutation**: E484K"
	original := input
	_ = Render(&input)
	assert.Equal(t, original, input)
}

func TestRender_AcceptsByteSliceAndStringer(t *testing.T) {
	assert.Len(t, Render([]byte("Drug: A")), 1)
	assert.Len(t, Render(stringer{"Drug: A\nDrug: B"}), 2)
	assert.Len(t, Render(&ptrStringer{"Pathogen: P"}), 1)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		key  string
		want Tag
	}{
		{"Mutation", TagMutation},
		{"MUTATION", TagMutation},
		{"mutation", TagMutation},
		{"Amino Acid Mutation", TagMutation},
		{"Pathogen", TagPathogen},
		{"Target pathogens", TagPathogen},
		{"Drug", TagDrug},
		{"Candidate Drugs", TagDrug},
		{"Notes", TagDefault},
		{"", TagDefault},
		// Later keywords win.
		{"Drug-resistance mutation", TagDrug},
		{"Pathogen mutation", TagPathogen},
		{"Pathogen drug", TagDrug},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.key))
		})
	}
}

func TestSplitField(t *testing.T) {
	key, value, ok := SplitField("Key : value: more ")
	require.True(t, ok)
	assert.Equal(t, "Key", key)
	assert.Equal(t, "value: more", value)

	_, _, ok = SplitField("no colon here")
	assert.False(t, ok)

	_, _, ok = SplitField("Heading:")
	assert.False(t, ok)
}

func TestNormalize(t *testing.T) {
	s := "text"
	assert.Equal(t, "text", Normalize(s))
	assert.Equal(t, "text", Normalize(&s))
	assert.Equal(t, "text", Normalize([]byte(s)))
	assert.Equal(t, "", Normalize(3.14))
	assert.Equal(t, "", Normalize(nil))
}

func FuzzRender(f *testing.F) {
	f.Add("Mutation: E484K\nPathogen: SARS-CoV-2\nDrug: Remdesivir")
	f.Add("**Article 1:**\n: \n::\n*")
	f.Add("")
	f.Fuzz(func(t *testing.T, s string) {
		for _, b := range Render(s) {
			if strings.Contains(b.Text+b.Key+b.Value, "*") {
				t.Fatalf("asterisk leaked into block %+v", b)
			}
			if b.IsField() && (b.Key == "" || b.Value == "") {
				t.Fatalf("field with empty side: %+v", b)
			}
		}
	})
}
