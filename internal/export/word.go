package export

import (
	"bytes"
	"context"
	"html/template"
	"strings"
)

const shellTemplate = `<html xmlns:o='urn:schemas-microsoft-com:office:office' xmlns:w='urn:schemas-microsoft-com:office:word' xmlns='http://www.w3.org/TR/REC-html40'>
<head>
<meta charset='utf-8'>
<title>{{.Title}}</title>
<style>
body { font-family: 'Arial', sans-serif; line-height: 1.5; padding: 1in; }
p { margin-bottom: 12pt; text-align: justify; }
.header { font-weight: bold; font-size: 14pt; margin-bottom: 20pt; }
</style>
</head>
<body>
{{range .Paragraphs}}<p{{if .Header}} class="header"{{end}}>{{range $i, $line := lines .Text}}{{if $i}}<br>{{end}}{{$line}}{{end}}</p>
{{end}}</body></html>`

var shell = template.Must(template.New("shell").Funcs(template.FuncMap{
	"lines": func(s string) []string { return strings.Split(s, "\n") },
}).Parse(shellTemplate))

// renderHTML writes doc into the Word-compatible HTML shell.
func renderHTML(doc Document) ([]byte, error) {
	var buf bytes.Buffer
	if err := shell.Execute(&buf, doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WordRenderer produces an HTML document that word processors open as .doc.
type WordRenderer struct{}

func (WordRenderer) ContentType() string { return "application/vnd.ms-word" }

func (WordRenderer) Extension() string { return "doc" }

func (WordRenderer) Render(ctx context.Context, doc Document) ([]byte, error) {
	return renderHTML(doc)
}
