package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog"

	"github.com/clinicore/records-api/internal/notifier"
	"github.com/clinicore/records-api/pkg/circuitbreaker"
)

// Config is read from the environment. All fields are optional: without
// credentials the client reports itself unconfigured and refuses sends
// with ErrNotConfigured instead of failing startup.
type Config struct {
	APIURL      string `envconfig:"WHATSAPP_API_URL" default:"https://graph.facebook.com/v19.0"`
	Token       string `envconfig:"WHATSAPP_TOKEN"`
	PhoneID     string `envconfig:"WHATSAPP_PHONE_ID"`
	VerifyToken string `envconfig:"WHATSAPP_VERIFY_TOKEN"`
	Timeout     time.Duration `envconfig:"WHATSAPP_TIMEOUT" default:"10s"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to load whatsapp config: %w", err)
	}
	return cfg, nil
}

type Client struct {
	cfg    Config
	http   *http.Client
	cb     *circuitbreaker.CircuitBreaker
	logger zerolog.Logger
}

func NewClient(cfg Config, logger zerolog.Logger) *Client {
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
		cb: circuitbreaker.New(circuitbreaker.Settings{
			Name:        "whatsapp",
			MaxFailures: 5,
			Timeout:     30 * time.Second,
		}),
		logger: logger,
	}
}

func (c *Client) configured() bool {
	return c.cfg.Token != "" && c.cfg.PhoneID != ""
}

func (c *Client) Status() notifier.Status {
	s := notifier.Status{Channel: "whatsapp", Configured: c.configured()}
	if !s.Configured {
		s.Detail = "missing WHATSAPP_TOKEN or WHATSAPP_PHONE_ID"
	} else if c.cb.State() != circuitbreaker.StateClosed {
		s.Detail = fmt.Sprintf("circuit breaker %s", c.cb.State())
	}
	return s
}

type sendRequest struct {
	MessagingProduct string   `json:"messaging_product"`
	To               string   `json:"to"`
	Type             string   `json:"type"`
	Text             sendText `json:"text"`
}

type sendText struct {
	Body string `json:"body"`
}

// Send delivers a text message to a country-coded phone number.
func (c *Client) Send(ctx context.Context, to, message string) error {
	if !c.configured() {
		return notifier.ErrNotConfigured
	}

	body, err := json.Marshal(sendRequest{
		MessagingProduct: "whatsapp",
		To:               to,
		Type:             "text",
		Text:             sendText{Body: message},
	})
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	url := fmt.Sprintf("%s/%s/messages", c.cfg.APIURL, c.cfg.PhoneID)

	return c.cb.Execute(func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("failed to build request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			return fmt.Errorf("whatsapp request failed: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 300 {
			detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
			c.logger.Warn().
				Int("status", resp.StatusCode).
				Str("to", to).
				Bytes("response", detail).
				Msg("whatsapp send rejected")
			return fmt.Errorf("whatsapp API returned status %d", resp.StatusCode)
		}
		return nil
	})
}

// VerifyWebhookToken checks a webhook subscription challenge token.
func (c *Client) VerifyWebhookToken(token string) bool {
	return c.cfg.VerifyToken != "" && token == c.cfg.VerifyToken
}
