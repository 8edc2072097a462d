package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PDFExtractor reads every page in order. A page's text items are joined with
// single spaces and the page is followed by a newline.
type PDFExtractor struct{}

func (PDFExtractor) Extract(ctx context.Context, data []byte) (text string, err error) {
	// The parser panics on some malformed files.
	defer func() {
		if rec := recover(); rec != nil {
			text, err = "", fmt.Errorf("malformed pdf: %v", rec)
		}
	}()
	if len(data) == 0 {
		return "", errors.New("empty pdf data")
	}
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	return collectPages(ctx, reader.NumPage(), func(i int) (string, bool, error) {
		page := reader.Page(i)
		if page.V.IsNull() {
			return "", true, nil
		}
		return strings.Join(textItems(page), " "), false, nil
	})
}

// textItems returns the strings shown by each text operator of the page, in
// content stream order. A TJ array is one item.
func textItems(page pdf.Page) []string {
	contents := page.V.Key("Contents")
	if contents.Kind() == pdf.Null {
		return nil
	}
	encoders := make(map[string]pdf.TextEncoding)
	for _, name := range page.Fonts() {
		encoders[name] = page.Font(name).Encoder()
	}

	var (
		items []string
		enc   pdf.TextEncoding
	)
	decode := func(raw string) string {
		if enc == nil {
			return raw
		}
		return enc.Decode(raw)
	}
	pdf.Interpret(contents, func(stk *pdf.Stack, op string) {
		args := make([]pdf.Value, stk.Len())
		for i := len(args) - 1; i >= 0; i-- {
			args[i] = stk.Pop()
		}
		if len(args) == 0 {
			return
		}
		switch op {
		case "Tf":
			enc = encoders[args[0].Name()]
		case "Tj", "'", "\"":
			items = append(items, decode(args[len(args)-1].RawString()))
		case "TJ":
			var b strings.Builder
			arr := args[0]
			for i := 0; i < arr.Len(); i++ {
				if part := arr.Index(i); part.Kind() == pdf.String {
					b.WriteString(decode(part.RawString()))
				}
			}
			items = append(items, b.String())
		}
	})
	return items
}

// pageFunc returns the text of 1-based page i, or skip=true for a missing page.
type pageFunc func(i int) (text string, skip bool, err error)

func collectPages(ctx context.Context, n int, page pageFunc) (string, error) {
	var b strings.Builder
	for i := 1; i <= n; i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		text, skip, err := page(i)
		if err != nil {
			return "", err
		}
		if skip {
			continue
		}
		b.WriteString(text)
		b.WriteString("\n")
	}
	return b.String(), nil
}
