package editor

import (
	"errors"
	"fmt"
	"strings"
)

// Kind is a formatting action.
type Kind string

const (
	Bold   Kind = "bold"
	Italic Kind = "italic"
	Bullet Kind = "bullet"
)

const bulletMarker = "- "

var (
	ErrInvalidSelection = errors.New("invalid selection")
	ErrUnknownFormat    = errors.New("unknown format")
)

// Selection is a half-open range of rune offsets into the text.
type Selection struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// ParseKind maps a client-supplied name to a Kind.
func ParseKind(raw string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(raw))); k {
	case Bold, Italic, Bullet:
		return k, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, raw)
	}
}

// Apply formats the selected part of text and returns the new text together
// with a selection covering exactly the replacement.
func Apply(text string, sel Selection, kind Kind) (string, Selection, error) {
	runes := []rune(text)
	if sel.Start < 0 || sel.End < sel.Start || sel.End > len(runes) {
		return text, sel, fmt.Errorf("%w: [%d,%d) of %d", ErrInvalidSelection, sel.Start, sel.End, len(runes))
	}
	selected := string(runes[sel.Start:sel.End])

	var replacement string
	switch kind {
	case Bold:
		replacement = "**" + selected + "**"
	case Italic:
		replacement = "*" + selected + "*"
	case Bullet:
		replacement = bulletLines(selected)
	default:
		return text, sel, fmt.Errorf("%w: %q", ErrUnknownFormat, kind)
	}

	var b strings.Builder
	b.WriteString(string(runes[:sel.Start]))
	b.WriteString(replacement)
	b.WriteString(string(runes[sel.End:]))

	next := Selection{Start: sel.Start, End: sel.Start + len([]rune(replacement))}
	return b.String(), next, nil
}

func bulletLines(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if !strings.HasPrefix(line, bulletMarker) {
			lines[i] = bulletMarker + line
		}
	}
	return strings.Join(lines, "\n")
}
