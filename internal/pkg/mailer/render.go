package mailer

import (
	"embed"
	"strings"
	"text/template"

	"github.com/pkg/errors"

	"properly.homes/backend/internal/constant"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var ErrUnknownKind = errors.New("mailer: unknown mail kind")

type Renderer struct {
	templates map[string]*template.Template
}

func NewRenderer() (*Renderer, error) {
	entries, err := templateFS.ReadDir("templates")
	if err != nil {
		return nil, err
	}
	r := &Renderer{templates: make(map[string]*template.Template, len(entries))}
	for _, entry := range entries {
		name := strings.TrimSuffix(entry.Name(), ".tmpl")
		t, err := template.New(name).Option("missingkey=zero").ParseFS(templateFS, "templates/"+entry.Name())
		if err != nil {
			return nil, errors.Wrapf(err, "parse template %s", name)
		}
		r.templates[name] = t
	}
	return r, nil
}

// Render builds the subject and body of a mail of kind in lang, falling back to the default language.
func (r *Renderer) Render(kind, lang string, data map[string]string) (subject, body string, err error) {
	t, ok := r.templates[kind+"."+lang]
	if !ok {
		t, ok = r.templates[kind+"."+constant.DefaultLanguage]
	}
	if !ok {
		return "", "", errors.Wrap(ErrUnknownKind, kind)
	}

	var sb strings.Builder
	if err := t.ExecuteTemplate(&sb, "subject", data); err != nil {
		return "", "", errors.Wrap(err, "render subject")
	}
	subject = strings.TrimSpace(sb.String())

	sb.Reset()
	if err := t.ExecuteTemplate(&sb, "body", data); err != nil {
		return "", "", errors.Wrap(err, "render body")
	}
	return subject, strings.TrimSpace(sb.String()) + "\n", nil
}
