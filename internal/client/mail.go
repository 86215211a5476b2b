package client

import (
	"context"
	"encoding/json"

	"github.com/questx-lab/secretsanta/pkg/mailer"
	"github.com/questx-lab/secretsanta/pkg/pubsub"
	"github.com/questx-lab/secretsanta/pkg/xcontext"
)

// MailCaller hands a rendered mail to the delivery infrastructure. A nil
// error means the mail was accepted, not necessarily delivered.
type MailCaller interface {
	Send(ctx context.Context, msg mailer.Message) error
}

type directMailCaller struct {
	sender mailer.Sender
}

// NewDirectMailCaller delivers synchronously through sender.
func NewDirectMailCaller(sender mailer.Sender) *directMailCaller {
	return &directMailCaller{sender: sender}
}

func (c *directMailCaller) Send(ctx context.Context, msg mailer.Message) error {
	return c.sender.Send(ctx, msg)
}

type queueMailCaller struct {
	publisher pubsub.Publisher
	topic     string
}

// NewQueueMailCaller publishes mails to topic, they are delivered later by
// the mailer worker.
func NewQueueMailCaller(publisher pubsub.Publisher, topic string) *queueMailCaller {
	return &queueMailCaller{publisher: publisher, topic: topic}
}

func (c *queueMailCaller) Send(ctx context.Context, msg mailer.Message) error {
	b, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	return c.publisher.Publish(ctx, c.topic, &pubsub.Pack{Key: []byte(msg.To), Msg: b})
}

type logMailCaller struct{}

// NewLogMailCaller only writes a log line per mail. The body is never logged,
// it may carry a passcode.
func NewLogMailCaller() *logMailCaller {
	return &logMailCaller{}
}

func (c *logMailCaller) Send(ctx context.Context, msg mailer.Message) error {
	xcontext.Logger(ctx).Infof("Mail to %s: %s", msg.To, msg.Subject)
	return nil
}
