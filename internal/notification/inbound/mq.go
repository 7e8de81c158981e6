package inbound

import (
	"context"
	"log/slog"

	"github.com/samber/lo"
	"github.com/shandysiswandi/smsauth/internal/pkg/config"
	"github.com/shandysiswandi/smsauth/internal/pkg/goroutine"
	"github.com/shandysiswandi/smsauth/internal/pkg/instrument"
	"github.com/shandysiswandi/smsauth/internal/pkg/messaging"
	"github.com/shandysiswandi/smsauth/internal/pkg/uid"
	"github.com/shandysiswandi/smsauth/internal/shared/event"
)

const defaultMaxAttempts = 3

// RegisterMQConsumer starts every consumer listed in
// modules.notification.consumer_names on the goroutine manager.
func RegisterMQConsumer(
	ctx context.Context,
	cfg config.Config,
	routine *goroutine.Manager,
	messenger messaging.Consumer,
	uuid uid.StringID,
	uc uc,
	ins instrument.Instrumentation,
) int {
	maxAttempts := cfg.GetInt("modules.notification.max_attempts")
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}
	concurrency := cfg.GetInt("modules.notification.concurrency")
	if concurrency <= 0 {
		concurrency = 10
	}

	handler := &MQHandler{uc: uc, uuid: uuid, ins: ins, maxAttempts: maxAttempts}

	consumers := []struct {
		name    string
		topic   string
		handler messaging.Handler
	}{
		{
			name:    event.OTPRequestedConsumerNotification,
			topic:   event.OTPRequestedDestination,
			handler: handler.OTPRequested,
		},
	}

	enabled := cfg.GetArray("modules.notification.consumer_names")
	started := 0
	for _, consumer := range consumers {
		if !lo.Contains(enabled, consumer.name) {
			continue
		}

		ok := routine.Go(ctx, consumer.name, func(ctx context.Context) error {
			slog.InfoContext(ctx, "running consumer", "consumer", consumer.name, "topic", consumer.topic)
			return messenger.Consume(ctx,
				consumer.topic,
				consumer.handler,
				messaging.WithGroup(consumer.name),
				messaging.WithConcurrency(concurrency),
				messaging.WithMaxInFlight(concurrency),
			)
		})
		if ok {
			started++
		}
	}

	return started
}
