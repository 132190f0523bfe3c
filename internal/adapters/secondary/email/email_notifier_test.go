package email

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/lorrc/asset-desk-backend/internal/core/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func logLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		out = append(out, entry)
	}
	return out
}

func TestMockSMTPNotifier(t *testing.T) {
	var buf bytes.Buffer
	n := NewMockSMTPNotifier(slog.New(slog.NewJSONHandler(&buf, nil)))

	n.Notify(context.Background(), ports.NotificationParams{
		Recipient: " Carlos ",
		Subject:   "2 chamado(s) em atraso",
		Message:   "- [t1] A\n- [t2] B\n",
	})

	entries := logLines(t, &buf)
	require.Len(t, entries, 1, "body is only logged at debug level")
	assert.Equal(t, "mock email sent", entries[0]["msg"])
	assert.Equal(t, "Carlos", entries[0]["to"])
	assert.Equal(t, "email_notifier", entries[0]["component"])
	assert.EqualValues(t, 2, entries[0]["lines"])
}

func TestMockSMTPNotifier_NoRecipient(t *testing.T) {
	var buf bytes.Buffer
	n := NewMockSMTPNotifier(slog.New(slog.NewJSONHandler(&buf, nil)))

	n.Notify(context.Background(), ports.NotificationParams{Subject: "x"})

	entries := logLines(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "WARN", entries[0]["level"])
}
