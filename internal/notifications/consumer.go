package notifications

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/IBM/sarama"
)

// KafkaConsumer consumes notification messages and delivers them via email
type KafkaConsumer struct {
	group  sarama.ConsumerGroup
	topic  string
	sender EmailSender
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewKafkaConsumer creates a consumer group member for the notification topic
func NewKafkaConsumer(brokers []string, groupID, topic string, sender EmailSender) (*KafkaConsumer, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Consumer.Group.Rebalance.GroupStrategies = []sarama.BalanceStrategy{sarama.NewBalanceStrategyRoundRobin()}
	saramaConfig.Consumer.Offsets.Initial = sarama.OffsetNewest
	saramaConfig.Consumer.Return.Errors = true

	group, err := sarama.NewConsumerGroup(brokers, groupID, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka consumer group: %w", err)
	}

	return &KafkaConsumer{group: group, topic: topic, sender: sender}, nil
}

// Start begins consuming in the background until Stop is called
func (kc *KafkaConsumer) Start(ctx context.Context) {
	ctx, kc.cancel = context.WithCancel(ctx)

	kc.wg.Add(1)
	go func() {
		defer kc.wg.Done()
		handler := &deliveryHandler{sender: kc.sender}
		for {
			if err := kc.group.Consume(ctx, []string{kc.topic}, handler); err != nil {
				if errors.Is(err, sarama.ErrClosedConsumerGroup) {
					return
				}
				log.Printf("⚠️ Kafka consume error: %v", err)
			}
			if ctx.Err() != nil {
				return
			}
		}
	}()

	kc.wg.Add(1)
	go func() {
		defer kc.wg.Done()
		for err := range kc.group.Errors() {
			log.Printf("⚠️ Kafka consumer group error: %v", err)
		}
	}()

	log.Printf("📥 Kafka notification consumer started on topic %s", kc.topic)
}

// Stop shuts the consumer down and waits for in-flight deliveries
func (kc *KafkaConsumer) Stop() error {
	if kc.cancel != nil {
		kc.cancel()
	}
	err := kc.group.Close()
	kc.wg.Wait()
	return err
}

// deliveryHandler implements sarama.ConsumerGroupHandler
type deliveryHandler struct {
	sender EmailSender
}

func (h *deliveryHandler) Setup(sarama.ConsumerGroupSession) error {
	log.Printf("📥 Notification consumer session started")
	return nil
}

func (h *deliveryHandler) Cleanup(sarama.ConsumerGroupSession) error {
	log.Printf("📥 Notification consumer session ended")
	return nil
}

func (h *deliveryHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case message, ok := <-claim.Messages():
			if !ok {
				return nil
			}
			if err := h.processMessage(session.Context(), message); err != nil {
				// Delivery ultimately failed. Mark anyway: redelivering mail
				// on every rebalance is worse than dropping one message.
				log.Printf("⚠️ Dropping undeliverable notification at offset %d: %v", message.Offset, err)
			}
			session.MarkMessage(message, "")
		case <-session.Context().Done():
			return nil
		}
	}
}

func (h *deliveryHandler) processMessage(ctx context.Context, message *sarama.ConsumerMessage) error {
	msg, err := MessageFromJSON(message.Value)
	if err != nil {
		return err
	}
	return h.deliverWithRetry(ctx, msg)
}

// deliverWithRetry attempts delivery with exponential backoff
func (h *deliveryHandler) deliverWithRetry(ctx context.Context, msg *Message) error {
	const maxRetries = 3
	backoff := time.Second

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(backoff * time.Duration(1<<(attempt-1))):
			case <-ctx.Done():
				return ctx.Err()
			}
			log.Printf("📧 Retrying %s notification to %s (attempt %d/%d)",
				msg.Kind, msg.Recipient, attempt, maxRetries)
		}

		if lastErr = h.sender.Send(ctx, msg); lastErr == nil {
			return nil
		}
	}

	return fmt.Errorf("delivery failed after %d attempts: %w", maxRetries+1, lastErr)
}
