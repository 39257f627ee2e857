package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/example/order-service/internal/config"
	"github.com/example/order-service/internal/email"
	"github.com/example/order-service/internal/kafka"
	"github.com/example/order-service/internal/notification"
	"github.com/example/order-service/internal/retry"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := config.Load()

	log.Println("[Notifier] Order confirmation service starting")
	log.Printf("[Notifier] Kafka: %v topic=%s group=%s", cfg.KafkaBrokers, cfg.KafkaTopic, cfg.ConsumerGroup)
	log.Printf("[Notifier] SMTP: %s:%s from=%s", cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPFrom)

	emailSvc := email.NewService(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPFrom)
	handler := notification.NewHandler(emailSvc)

	consumer := kafka.NewConsumer(cfg.KafkaBrokers, cfg.KafkaTopic, cfg.ConsumerGroup, retry.Policy{
		MaxAttempts: cfg.ConsumerMaxAttempts,
		Interval:    cfg.ConsumerRetryDelay,
	})
	defer consumer.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		log.Println("[Notifier] Starting event consumer...")
		if err := consumer.Consume(ctx, handler.HandleEvent); err != nil && ctx.Err() == nil {
			log.Printf("[Notifier] Consumer stopped: %v", err)
		}
	}()

	// Wait for shutdown signal or consumer exhaustion
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigCh:
		log.Println("[Notifier] Shutting down...")
	case <-done:
		log.Println("[Notifier] Consumer terminated, exiting")
	}
	cancel()
	<-done
}
