package whatsapp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinicore/records-api/internal/notifier"
)

func TestUnconfiguredClient(t *testing.T) {
	c := NewClient(Config{Timeout: time.Second}, zerolog.Nop())

	status := c.Status()
	assert.False(t, status.Configured)
	assert.Equal(t, "whatsapp", status.Channel)
	assert.NotEmpty(t, status.Detail)

	err := c.Send(context.Background(), "525512345678", "hello")
	assert.ErrorIs(t, err, notifier.ErrNotConfigured)
}

func TestSend(t *testing.T) {
	var got sendRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/phone-1/messages", r.URL.Path)
		assert.Equal(t, "Bearer token-1", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(Config{
		APIURL:  srv.URL,
		Token:   "token-1",
		PhoneID: "phone-1",
		Timeout: time.Second,
	}, zerolog.Nop())

	require.NoError(t, c.Send(context.Background(), "525512345678", "your appointment is tomorrow"))
	assert.Equal(t, "whatsapp", got.MessagingProduct)
	assert.Equal(t, "525512345678", got.To)
	assert.Equal(t, "your appointment is tomorrow", got.Text.Body)
}

func TestSendUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClient(Config{
		APIURL:  srv.URL,
		Token:   "bad",
		PhoneID: "phone-1",
		Timeout: time.Second,
	}, zerolog.Nop())

	err := c.Send(context.Background(), "525512345678", "hello")
	assert.Error(t, err)
}

func TestVerifyWebhookToken(t *testing.T) {
	c := NewClient(Config{VerifyToken: "secret"}, zerolog.Nop())
	assert.True(t, c.VerifyWebhookToken("secret"))
	assert.False(t, c.VerifyWebhookToken("other"))

	unset := NewClient(Config{}, zerolog.Nop())
	assert.False(t, unset.VerifyWebhookToken(""))
}
