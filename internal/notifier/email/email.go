package email

import (
	"context"
	"fmt"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/gomail.v2"

	"github.com/clinicore/records-api/internal/notifier"
)

// Config is read from the environment; like the WhatsApp adapter, missing
// credentials leave the sender in a queryable unconfigured state.
type Config struct {
	Host     string `envconfig:"SMTP_HOST"`
	Port     int    `envconfig:"SMTP_PORT" default:"587"`
	Username string `envconfig:"SMTP_USERNAME"`
	Password string `envconfig:"SMTP_PASSWORD"`
	From     string `envconfig:"SMTP_FROM"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to load smtp config: %w", err)
	}
	return cfg, nil
}

type Sender struct {
	cfg    Config
	dialer *gomail.Dialer
}

func NewSender(cfg Config) *Sender {
	s := &Sender{cfg: cfg}
	if s.configured() {
		s.dialer = gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	}
	return s
}

func (s *Sender) configured() bool {
	return s.cfg.Host != "" && s.cfg.From != ""
}

func (s *Sender) Status() notifier.Status {
	st := notifier.Status{Channel: "email", Configured: s.configured()}
	if !st.Configured {
		st.Detail = "missing SMTP_HOST or SMTP_FROM"
	}
	return st
}

// Send delivers a plain-text message. The subject rides on the first line
// convention used by callers; SendWithSubject is the explicit form.
func (s *Sender) Send(_ context.Context, to, message string) error {
	return s.SendWithSubject(to, "Notification from your clinic", message)
}

func (s *Sender) SendWithSubject(to, subject, body string) error {
	if !s.configured() {
		return notifier.ErrNotConfigured
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.cfg.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
