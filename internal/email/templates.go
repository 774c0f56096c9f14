package email

import (
	"fmt"
	"strings"
	"text/template"
)

// fallbackLanguage is tried when neither the requested language nor its base
// tag has a registered template.
const fallbackLanguage = "en"

// Template is one renderable mail, subject and body.
type Template struct {
	Subject *template.Template
	Body    *template.Template
}

// TemplateSet holds mail templates keyed by template key and language tag.
type TemplateSet struct {
	templates map[string]map[string]*Template
}

// NewTemplateSet returns an empty set.
func NewTemplateSet() *TemplateSet {
	return &TemplateSet{templates: make(map[string]map[string]*Template)}
}

// NewDefaultTemplateSet returns a set pre-loaded with the built-in templates.
func NewDefaultTemplateSet() *TemplateSet {
	set := NewTemplateSet()
	for _, def := range defaultTemplates {
		if err := set.Register(def.key, def.language, def.subject, def.body); err != nil {
			panic(fmt.Sprintf("invalid built-in mail template %s/%s: %v", def.key, def.language, err))
		}
	}
	return set
}

// Register parses and stores a template for the given key and language.
func (s *TemplateSet) Register(key, language, subject, body string) error {
	subjectTmpl, err := template.New(key + ".subject").Parse(subject)
	if err != nil {
		return fmt.Errorf("failed to parse subject template: %w", err)
	}

	bodyTmpl, err := template.New(key + ".body").Parse(body)
	if err != nil {
		return fmt.Errorf("failed to parse body template: %w", err)
	}

	if s.templates[key] == nil {
		s.templates[key] = make(map[string]*Template)
	}
	s.templates[key][normalizeLanguage(language)] = &Template{Subject: subjectTmpl, Body: bodyTmpl}

	return nil
}

// Render produces the subject and body for a key in the closest matching
// language: exact tag, then base tag, then the fallback language.
func (s *TemplateSet) Render(key, language string, data map[string]string) (string, string, error) {
	tmpl, err := s.lookup(key, language)
	if err != nil {
		return "", "", err
	}

	var subject, body strings.Builder
	if err := tmpl.Subject.Execute(&subject, data); err != nil {
		return "", "", fmt.Errorf("failed to render subject: %w", err)
	}
	if err := tmpl.Body.Execute(&body, data); err != nil {
		return "", "", fmt.Errorf("failed to render body: %w", err)
	}

	return subject.String(), body.String(), nil
}

func (s *TemplateSet) lookup(key, language string) (*Template, error) {
	byLanguage, ok := s.templates[key]
	if !ok {
		return nil, fmt.Errorf("no mail template registered for key %q", key)
	}

	language = normalizeLanguage(language)
	for _, candidate := range []string{language, baseTag(language), fallbackLanguage} {
		if candidate == "" {
			continue
		}
		if tmpl, ok := byLanguage[candidate]; ok {
			return tmpl, nil
		}
	}

	return nil, fmt.Errorf("no mail template for key %q in language %q", key, language)
}

func normalizeLanguage(language string) string {
	return strings.ToLower(strings.TrimSpace(language))
}

func baseTag(language string) string {
	if idx := strings.IndexAny(language, "-_"); idx > 0 {
		return language[:idx]
	}
	return ""
}

var defaultTemplates = []struct {
	key      string
	language string
	subject  string
	body     string
}{
	{
		key:      TemplateFirstNotification,
		language: "en",
		subject:  `[{{.sitename}}] Please review: {{.title}}`,
		body: `Hello,

the article "{{.title}}" on {{.sitename}} has not been changed for more than {{.age}} {{.age_unit}}.
It was created on {{.created}} and last modified on {{.last_modified}}.

Please check whether the content is still up to date.

View the article: {{.public_url}}
Edit the article: {{.edit_url}}
Edit in the backend: {{.backend_url}}

{{.sitename}} - {{.url}}
`,
	},
	{
		key:      TemplateSecondNotification,
		language: "en",
		subject:  `[{{.sitename}}] Reminder, please review: {{.title}}`,
		body: `Hello,

this is a reminder that the article "{{.title}}" on {{.sitename}} is still unchanged.
It was created on {{.created}} and last modified on {{.last_modified}}.

Please check whether the content is still up to date.

View the article: {{.public_url}}
Edit the article: {{.edit_url}}
Edit in the backend: {{.backend_url}}

{{.sitename}} - {{.url}}
`,
	},
	{
		key:      TemplateFirstNotification,
		language: "de",
		subject:  `[{{.sitename}}] Bitte pruefen: {{.title}}`,
		body: `Hallo,

der Beitrag "{{.title}}" auf {{.sitename}} wurde seit mehr als {{.age}} {{.age_unit}} nicht geaendert.
Er wurde am {{.created}} erstellt und zuletzt am {{.last_modified}} bearbeitet.

Bitte pruefen Sie, ob der Inhalt noch aktuell ist.

Beitrag ansehen: {{.public_url}}
Beitrag bearbeiten: {{.edit_url}}
Im Backend bearbeiten: {{.backend_url}}

{{.sitename}} - {{.url}}
`,
	},
	{
		key:      TemplateSecondNotification,
		language: "de",
		subject:  `[{{.sitename}}] Erinnerung, bitte pruefen: {{.title}}`,
		body: `Hallo,

dies ist eine Erinnerung, dass der Beitrag "{{.title}}" auf {{.sitename}} weiterhin unveraendert ist.
Er wurde am {{.created}} erstellt und zuletzt am {{.last_modified}} bearbeitet.

Bitte pruefen Sie, ob der Inhalt noch aktuell ist.

Beitrag ansehen: {{.public_url}}
Beitrag bearbeiten: {{.edit_url}}
Im Backend bearbeiten: {{.backend_url}}

{{.sitename}} - {{.url}}
`,
	},
}
