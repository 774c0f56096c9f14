package email

import (
	"context"

	"golang.org/x/time/rate"
	"gopkg.in/gomail.v2"
)

// SMTPConfig holds outbound mail settings.
type SMTPConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`

	// RatePerSecond throttles outbound sends; zero means unlimited.
	RatePerSecond float64 `mapstructure:"rate_per_second"`
	Burst         int     `mapstructure:"burst"`
}

// SMTPMailer renders a template and delivers it over SMTP.
type SMTPMailer struct {
	dialer    *gomail.Dialer
	from      string
	templates *TemplateSet
	limiter   *rate.Limiter
	enabled   bool
}

func NewSMTPMailer(cfg SMTPConfig, templates *TemplateSet) *SMTPMailer {
	limit := rate.Inf
	burst := cfg.Burst
	if cfg.RatePerSecond > 0 {
		limit = rate.Limit(cfg.RatePerSecond)
		if burst <= 0 {
			burst = 1
		}
	}

	return &SMTPMailer{
		dialer:    gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:      cfg.From,
		templates: templates,
		limiter:   rate.NewLimiter(limit, burst),
		enabled:   cfg.Enabled,
	}
}

func (m *SMTPMailer) Send(ctx context.Context, templateKey, to, language string, data map[string]string) error {
	if !m.enabled {
		return ErrMailDisabled
	}

	subject, body, err := m.templates.Render(templateKey, language, data)
	if err != nil {
		return &TransportError{Err: err}
	}

	if err := m.limiter.Wait(ctx); err != nil {
		return &TransportError{Err: err}
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return &TransportError{Err: err}
	}

	return nil
}
