// Package notify queues outbound notifications on Redis and delivers them
// from a background dispatcher, so a slow mail server never holds up a
// complaint transition.
package notify

import (
	"bytes"
	"embed"
	"fmt"
	"text/template"

	"actionflow/backend/internal/localization"
	"actionflow/backend/internal/models"
)

//go:embed locales/*.json
var locales embed.FS

// Renderer turns a notification into a subject and a plain-text body using
// the embedded template catalogue.
type Renderer struct {
	loc *localization.Localizer
}

func NewRenderer() (*Renderer, error) {
	loc, err := localization.NewLocalizer(locales, "locales")
	if err != nil {
		return nil, err
	}
	return &Renderer{loc: loc}, nil
}

func (r *Renderer) Render(n models.Notification) (subject, body string, err error) {
	lang := n.Lang
	if lang == "" {
		lang = localization.DefaultLanguage
	}
	if subject, err = r.execute(lang, string(n.Kind)+".subject", n.Payload); err != nil {
		return "", "", err
	}
	if body, err = r.execute(lang, string(n.Kind)+".body", n.Payload); err != nil {
		return "", "", err
	}
	return subject, body, nil
}

func (r *Renderer) execute(lang, key string, payload map[string]string) (string, error) {
	text, ok := r.loc.Lookup(lang, key)
	if !ok {
		return "", fmt.Errorf("notify: no template %q", key)
	}
	tmpl, err := template.New(key).Option("missingkey=error").Parse(text)
	if err != nil {
		return "", fmt.Errorf("notify: parse %q: %w", key, err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, payload); err != nil {
		return "", fmt.Errorf("notify: render %q: %w", key, err)
	}
	return buf.String(), nil
}
