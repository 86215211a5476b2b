package main

import (
	"os/signal"
	"strings"
	"syscall"

	"github.com/questx-lab/secretsanta/internal/mailprocessor"
	"github.com/questx-lab/secretsanta/pkg/kafka"
	"github.com/urfave/cli/v2"
)

func (s *srv) startMailer(*cli.Context) error {
	handler := mailprocessor.NewMailSubscribeHandler(s.newSMTPSender(), s.configs.Notification.Timeout)

	subscriber, err := kafka.NewSubscriber(
		s.configs.Kafka.GroupID,
		strings.Split(s.configs.Kafka.Addr, ","),
		[]string{s.configs.Notification.Topic},
		handler.Subscribe,
	)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(s.ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	s.logger.Infof("Starting mailer on topic %s", s.configs.Notification.Topic)
	subscriber.Subscribe(ctx)

	return subscriber.Stop(s.ctx)
}
