package mailprocessor

import (
	"context"
	"encoding/json"
	"time"

	"github.com/questx-lab/secretsanta/internal/common"
	"github.com/questx-lab/secretsanta/pkg/mailer"
	"github.com/questx-lab/secretsanta/pkg/pubsub"
	"github.com/questx-lab/secretsanta/pkg/xcontext"
)

const (
	maxAttempts  = 3
	retryBackoff = time.Second
)

type MailSubscribeHandler interface {
	Subscribe(ctx context.Context, pack *pubsub.Pack, t time.Time)
}

type mailSubscribeHandler struct {
	sender  mailer.Sender
	timeout time.Duration
	backoff time.Duration
}

// NewMailSubscribeHandler delivers the mails queued by the api. Each attempt
// is bounded by timeout.
func NewMailSubscribeHandler(sender mailer.Sender, timeout time.Duration) *mailSubscribeHandler {
	return &mailSubscribeHandler{
		sender:  sender,
		timeout: timeout,
		backoff: retryBackoff,
	}
}

func (h *mailSubscribeHandler) Subscribe(ctx context.Context, pack *pubsub.Pack, t time.Time) {
	var msg mailer.Message
	if err := json.Unmarshal(pack.Msg, &msg); err != nil {
		xcontext.Logger(ctx).Errorf("Unable to unmarshal: %v", err)
		return
	}

	for attempt := 1; ; attempt++ {
		err := h.send(ctx, msg)
		if err == nil {
			common.IncMailCounter("queued", "success")
			xcontext.Logger(ctx).Debugf("Delivered mail to %s queued at %s", msg.To, t.Format(time.RFC3339))
			return
		}

		if attempt == maxAttempts {
			common.IncMailCounter("queued", "failure")
			xcontext.Logger(ctx).Errorf("Unable to deliver mail to %s after %d attempts: %v", msg.To, attempt, err)
			return
		}

		xcontext.Logger(ctx).Warnf("Unable to deliver mail to %s, retrying: %v", msg.To, err)
		select {
		case <-time.After(h.backoff * time.Duration(attempt)):
		case <-ctx.Done():
			return
		}
	}
}

func (h *mailSubscribeHandler) send(ctx context.Context, msg mailer.Message) error {
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	return h.sender.Send(ctx, msg)
}
