package export

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// headerMaxChars is the length under which a leading paragraph is treated as
// a name/contact header.
const headerMaxChars = 200

var (
	headingMarker = regexp.MustCompile(`#{1,6}\s?`)
	paragraphGap  = regexp.MustCompile(`\n\s*\n`)
)

// StripMarkdown removes heading markers and bold/italic emphasis.
func StripMarkdown(text string) string {
	out := headingMarker.ReplaceAllString(text, "")
	out = strings.ReplaceAll(out, "**", "")
	out = strings.ReplaceAll(out, "*", "")
	return strings.TrimSpace(out)
}

// SplitParagraphs splits on blank lines.
func SplitParagraphs(text string) []string {
	return paragraphGap.Split(text, -1)
}

// PDFDocument prepares text for the PDF path: markdown stripped, paragraphs
// trimmed, first paragraph a header when short.
func PDFDocument(title, text string) Document {
	parts := SplitParagraphs(StripMarkdown(text))
	doc := Document{Title: title, Paragraphs: make([]Paragraph, 0, len(parts))}
	for i, p := range parts {
		doc.Paragraphs = append(doc.Paragraphs, Paragraph{
			Text:   strings.TrimSpace(p),
			Header: i == 0 && utf8.RuneCountInString(p) < headerMaxChars,
		})
	}
	return doc
}

// WordDocument prepares raw text for the Word path: paragraphs kept as
// written, first paragraph always the header.
func WordDocument(title, text string) Document {
	parts := SplitParagraphs(text)
	doc := Document{Title: title, Paragraphs: make([]Paragraph, 0, len(parts))}
	for i, p := range parts {
		doc.Paragraphs = append(doc.Paragraphs, Paragraph{Text: p, Header: i == 0})
	}
	return doc
}
