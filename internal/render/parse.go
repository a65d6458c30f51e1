package render

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"
)

// articleMarker matches section titles such as "Article 2" or "article #3".
var articleMarker = regexp.MustCompile(`(?i)^article\s*#?\s*\d+$`)

// keywords are checked in order; a later match overrides an earlier one, so
// drug takes precedence over pathogen, which takes precedence over mutation.
var keywords = []struct {
	word string
	tag  Tag
}{
	{"mutation", TagMutation},
	{"pathogen", TagPathogen},
	{"drug", TagDrug},
}

// Render parses the service answer into display blocks. Any input that is not
// text is treated as empty, and Render never fails: malformed lines degrade
// to headings.
func Render(input any) []Block {
	text := Sanitize(Normalize(input))
	blocks := make([]Block, 0)

	section := 0
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		b, marker, ok := parseLine(line)
		if !ok {
			continue
		}
		// A marker opens a new section unless the current one is still empty.
		if marker && len(blocks) > 0 {
			section++
		}
		b.Section = section
		blocks = append(blocks, b)
	}

	return blocks
}

// Normalize coerces the renderer input to text. Strings, byte slices,
// string pointers and fmt.Stringer values are accepted; anything else,
// including nil, yields "".
func Normalize(input any) (text string) {
	defer func() {
		if recover() != nil {
			text = ""
		}
	}()

	switch v := input.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	case *string:
		if v == nil {
			return ""
		}
		return *v
	case fmt.Stringer:
		if rv := reflect.ValueOf(v); rv.Kind() == reflect.Ptr && rv.IsNil() {
			return ""
		}
		return v.String()
	default:
		return ""
	}
}

// Sanitize removes emphasis markers. Asterisks are structural in the answer
// text and never part of a finding.
func Sanitize(s string) string {
	return strings.ReplaceAll(s, "*", "")
}

// SplitField splits line on its first colon. ok is false when the line has no
// colon or either side is blank.
func SplitField(line string) (key, value string, ok bool) {
	i := strings.IndexByte(line, ':')
	if i < 0 {
		return "", "", false
	}
	key = strings.TrimSpace(line[:i])
	value = strings.TrimSpace(line[i+1:])
	if key == "" || value == "" {
		return "", "", false
	}
	return key, value, true
}

// Classify maps a field key to its tag by case-insensitive substring match.
func Classify(key string) Tag {
	k := strings.ToLower(key)
	tag := TagDefault
	for _, kw := range keywords {
		if strings.Contains(k, kw.word) {
			tag = kw.tag
		}
	}
	return tag
}

// parseLine builds the block for a single non-blank line. marker reports
// whether the line opens an article section.
func parseLine(line string) (b Block, marker, ok bool) {
	if key, value, isField := SplitField(line); isField {
		if articleMarker.MatchString(key) {
			return Block{Kind: KindHeading, Text: line}, true, true
		}
		if !isBareURL(key, value) {
			return Block{Kind: KindField, Key: key, Value: value, Tag: Classify(key)}, false, true
		}
		return Block{Kind: KindHeading, Text: line}, false, true
	}

	text := strings.TrimSpace(strings.TrimSuffix(line, ":"))
	if text == "" {
		return Block{}, false, false
	}
	return Block{Kind: KindHeading, Text: text}, articleMarker.MatchString(text), true
}

// isBareURL catches lines like "https://doi.org/..." whose only colon
// belongs to the scheme.
func isBareURL(key, value string) bool {
	k := strings.ToLower(key)
	return (k == "http" || k == "https") && strings.HasPrefix(value, "//")
}
