package notifications

import (
	"context"
	"log"

	"vereinsportal/internal/shared/config"
	"vereinsportal/internal/waitlist"
)

// Service renders waitlist notifications and hands them to the delivery
// pipeline. With Kafka enabled it publishes to the notification topic and
// a consumer group delivers asynchronously; without Kafka it sends
// directly over SMTP.
type Service struct {
	sender   EmailSender
	producer Producer
	consumer *KafkaConsumer
}

var _ waitlist.Notifier = (*Service)(nil)

// NewService wires the notification pipeline from configuration
func NewService(cfg *config.Config) (*Service, error) {
	var sender EmailSender
	if cfg.Email.SMTPHost != "" {
		smtpSender, err := NewSMTPEmailSender(cfg.Email)
		if err != nil {
			return nil, err
		}
		sender = smtpSender
	} else {
		log.Printf("📧 SMTP not configured, notifications are logged only")
		sender = &LogEmailSender{}
	}

	service := &Service{sender: sender}

	if cfg.Kafka.Enabled {
		producer, err := NewKafkaProducer(cfg.Kafka.Brokers, cfg.Kafka.NotificationTopic)
		if err != nil {
			return nil, err
		}
		consumer, err := NewKafkaConsumer(cfg.Kafka.Brokers, cfg.Kafka.ConsumerGroup, cfg.Kafka.NotificationTopic, sender)
		if err != nil {
			producer.Close()
			return nil, err
		}
		service.producer = producer
		service.consumer = consumer
	}

	return service, nil
}

// Start launches the Kafka consumer when the pipeline runs through Kafka
func (s *Service) Start(ctx context.Context) {
	if s.consumer != nil {
		s.consumer.Start(ctx)
	}
}

// Stop shuts down the Kafka producer and consumer
func (s *Service) Stop() {
	if s.consumer != nil {
		if err := s.consumer.Stop(); err != nil {
			log.Printf("⚠️ Error stopping notification consumer: %v", err)
		}
	}
	if s.producer != nil {
		if err := s.producer.Close(); err != nil {
			log.Printf("⚠️ Error closing notification producer: %v", err)
		}
	}
}

// SendPromotionOffer mails a family that spots became available
func (s *Service) SendPromotionOffer(ctx context.Context, recipient string, offer waitlist.PromotionOffer) error {
	return s.dispatch(ctx, renderPromotionOffer(recipient, offer))
}

// SendExpiryNotice tells an administrator a promotion lapsed unconfirmed
func (s *Service) SendExpiryNotice(ctx context.Context, recipient string, notice waitlist.ExpiryNotice) error {
	return s.dispatch(ctx, renderExpiryNotice(recipient, notice))
}

// SendConfirmationReceipt acknowledges a confirmed registration
func (s *Service) SendConfirmationReceipt(ctx context.Context, recipient string, receipt waitlist.ConfirmationReceipt) error {
	return s.dispatch(ctx, renderConfirmationReceipt(recipient, receipt))
}

func (s *Service) dispatch(ctx context.Context, msg *Message) error {
	if s.producer != nil {
		return s.producer.Publish(ctx, msg)
	}
	return s.sender.Send(ctx, msg)
}
