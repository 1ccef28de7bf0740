package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/example/ec-catalog-cart/internal/config"
	"github.com/example/ec-catalog-cart/internal/email"
	"github.com/example/ec-catalog-cart/internal/infrastructure/kafka"
	"github.com/example/ec-catalog-cart/internal/logging"
	"github.com/example/ec-catalog-cart/internal/notification"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("load config")
	}
	if err := logging.Setup(cfg.LogLevel, cfg.LogFormat); err != nil {
		log.WithError(err).Fatal("configure logging")
	}
	logger := log.WithField("component", "notifier")

	if !cfg.KafkaEnabled() {
		logger.Fatal("KAFKA_BROKERS is required")
	}

	logger.WithFields(log.Fields{
		"brokers": cfg.KafkaBrokers,
		"topic":   cfg.KafkaTopic,
		"group":   cfg.KafkaConsumerGroup,
		"smtp":    cfg.SMTPHost + ":" + cfg.SMTPPort,
		"to":      cfg.AlertEmail,
	}).Info("starting low stock notifier")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	emailSvc := email.NewService(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPFrom)
	handler := notification.NewHandler(emailSvc, cfg.AlertEmail)

	consumer := kafka.NewConsumer(cfg.KafkaBrokers, cfg.KafkaTopic, cfg.KafkaConsumerGroup)
	defer consumer.Close()

	if err := consumer.Consume(ctx, handler.HandleEvent); err != nil && !errors.Is(err, context.Canceled) {
		logger.WithError(err).Error("consumer stopped")
		return
	}
	logger.Info("shutting down")
}
