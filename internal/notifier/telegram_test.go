package notifier

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-telegram/bot"
	"github.com/stretchr/testify/require"
)

const sendMessageOK = `{"ok":true,"result":{"message_id":1,"date":0,"chat":{"id":42,"type":"private"},"text":"x"}}`

// TestNewTelegram_RequiresCredentials checks constructor validation.
func TestNewTelegram_RequiresCredentials(t *testing.T) {
	t.Parallel()

	_, err := NewTelegram("", "42")
	require.ErrorIs(t, err, errBotTokenRequired)

	_, err = NewTelegram("123:abc", "")
	require.ErrorIs(t, err, errChatIDRequired)
}

// TestTelegram_Notify sends a message through a fake Bot API server.
func TestTelegram_Notify(t *testing.T) {
	t.Parallel()

	type call struct {
		path, chatID, text string
	}

	calls := make(chan call, 1)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))

		calls <- call{
			path:   r.URL.Path,
			chatID: r.FormValue("chat_id"),
			text:   r.FormValue("text"),
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(sendMessageOK))
	}))
	t.Cleanup(srv.Close)

	tg, err := NewTelegram("123:abc", "42", bot.WithServerURL(srv.URL))
	require.NoError(t, err)

	require.NoError(t, tg.Notify(context.Background(), SeverityAlert, "[ALERT] boiler"))

	got := <-calls
	require.True(t, strings.HasSuffix(got.path, "/sendMessage"), got.path)
	require.Equal(t, "42", got.chatID)
	require.Equal(t, "[ALERT] boiler", got.text)
}

// TestTelegram_NotifyError surfaces Bot API failures.
func TestTelegram_NotifyError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"ok":false,"error_code":400,"description":"Bad Request: chat not found"}`))
	}))
	t.Cleanup(srv.Close)

	tg, err := NewTelegram("123:abc", "42", bot.WithServerURL(srv.URL))
	require.NoError(t, err)

	require.ErrorContains(t, tg.Notify(context.Background(), SeverityAlert, "x"), "send telegram message")
}
