package mailer

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCompose(t *testing.T) {
	date := time.Date(2024, 12, 1, 10, 0, 0, 0, time.UTC)
	b := string(Compose("santa@example.com", Message{
		To:      "alice@example.com",
		Subject: "Your Secret Santa Match",
		HTML:    "<h2>Hi Alice!</h2>",
	}, date))

	header, body, found := strings.Cut(b, "\r\n\r\n")
	require.True(t, found)
	require.Contains(t, header, "From: santa@example.com")
	require.Contains(t, header, "To: alice@example.com")
	require.Contains(t, header, "Subject: Your Secret Santa Match")
	require.Contains(t, header, "Content-Type: text/html")
	require.Equal(t, "<h2>Hi Alice!</h2>", body)
}

func TestSMTPSender_UnreachableRelay(t *testing.T) {
	sender := NewSMTPSender(SMTPConfigs{Addr: "127.0.0.1:1", Host: "127.0.0.1"})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	err := sender.Send(ctx, Message{To: "alice@example.com"})
	require.Error(t, err)
}
