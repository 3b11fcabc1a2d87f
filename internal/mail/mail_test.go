package mail

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nao1215/reminder/internal/config"
)

func TestNew(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		provider string
		want     any
	}{
		{name: "smtp", provider: config.EmailSMTP, want: &SMTP{}},
		{name: "http", provider: config.EmailHTTP, want: &API{}},
		{name: "log", provider: config.EmailLog, want: &Log{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s, err := New(config.Config{EmailProvider: tt.provider, MailAPIURL: "http://localhost"}, zerolog.Nop())
			require.NoError(t, err)
			assert.IsType(t, tt.want, s)
		})
	}

	t.Run("未知の送信手段はエラーになること", func(t *testing.T) {
		t.Parallel()

		_, err := New(config.Config{EmailProvider: "pigeon"}, zerolog.Nop())
		assert.Error(t, err)
	})
}

func TestLog_Send(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	sender := NewLog(zerolog.New(&buf))

	require.NoError(t, sender.Send(context.Background(), "cliente@example.com", "Recordatorio de Factura", "body"))
	assert.Contains(t, buf.String(), `"to":"cliente@example.com"`)
	assert.Contains(t, buf.String(), `"subject":"Recordatorio de Factura"`)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, sender.Send(ctx, "cliente@example.com", "s", "b"), context.Canceled)
}
