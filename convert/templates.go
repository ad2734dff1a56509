package convert

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"text/template"

	sprig "github.com/go-task/slim-sprig/v3"
	"github.com/russross/blackfriday/v2"

	"mdocx/config"
	"mdocx/content"
)

// Values is a struct that holds variables we make available for template expansion
type Values struct {
	Context    string
	Title      string
	Headings   []string
	SourceFile string
	SourceDir  string
	Creator    string
	Format     string
}

// topHeadings returns text of level 1 headings in document order.
func topHeadings(c *content.Content) []string {
	var result []string
	if c.Doc == nil {
		return result
	}
	for n := c.Doc.FirstChild; n != nil; n = n.Next {
		if n.Type == blackfriday.Heading && n.Level == 1 {
			result = append(result, strings.TrimSpace(content.PlainText(n)))
		}
	}
	return result
}

func expandTemplate(c *content.Content, name config.TemplateFieldName, field string, cfg *config.DocumentConfig) (string, error) {
	funcMap := sprig.FuncMap()

	tmpl, err := template.New(string(name)).Funcs(funcMap).Parse(field)
	if err != nil {
		return "", fmt.Errorf("unable to parse template field %s: %w", name, err)
	}

	dir := filepath.ToSlash(filepath.Dir(c.SrcName))
	if dir == "." {
		dir = ""
	}
	values := Values{
		Context:    string(name),
		Title:      c.Title,
		Headings:   topHeadings(c),
		SourceFile: strings.TrimSuffix(filepath.Base(c.SrcName), filepath.Ext(c.SrcName)),
		SourceDir:  dir,
		Creator:    cfg.Metainformation.Creator,
		Format:     "docx",
	}

	buf := new(bytes.Buffer)
	if err := tmpl.Execute(buf, values); err != nil {
		return "", err
	}
	return buf.String(), nil
}
