// Package mail renders transactional emails and delivers them over SMTP.
package mail

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"

	domainMail "aspire-wishlist/internal/domain/mail"
)

//go:embed templates/*.html
var templateFS embed.FS

var knownTemplates = []domainMail.Template{
	domainMail.TemplateVerifyEmail,
	domainMail.TemplatePasswordReset,
	domainMail.TemplatePasswordResetSuccess,
	domainMail.TemplatePasswordChanged,
}

// Renderer turns a template name and its data into an HTML body.
type Renderer struct {
	templates map[domainMail.Template]*template.Template
}

func NewRenderer() (*Renderer, error) {
	r := &Renderer{templates: make(map[domainMail.Template]*template.Template, len(knownTemplates))}
	for _, name := range knownTemplates {
		tmpl, err := template.New("layout").
			Option("missingkey=error").
			ParseFS(templateFS, "templates/layout.html", "templates/"+string(name)+".html")
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
		}
		r.templates[name] = tmpl
	}
	return r, nil
}

func (r *Renderer) Render(name domainMail.Template, data map[string]any) (string, error) {
	tmpl, ok := r.templates[name]
	if !ok {
		return "", fmt.Errorf("unknown mail template %q", name)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		return "", fmt.Errorf("failed to render template %s: %w", name, err)
	}
	return buf.String(), nil
}
