package notifications

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/IBM/sarama"
)

// Producer publishes rendered messages to the notification topic
type Producer interface {
	Publish(ctx context.Context, msg *Message) error
	Close() error
}

// KafkaProducer publishes notification messages to Kafka
type KafkaProducer struct {
	producer sarama.SyncProducer
	topic    string
}

// NewKafkaProducer creates a synchronous Kafka producer for the notification topic
func NewKafkaProducer(brokers []string, topic string) (*KafkaProducer, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Producer.Return.Successes = true
	saramaConfig.Producer.Return.Errors = true
	saramaConfig.Producer.RequiredAcks = sarama.WaitForAll
	saramaConfig.Producer.Compression = sarama.CompressionSnappy
	saramaConfig.Producer.Retry.Max = 3
	saramaConfig.Producer.Timeout = 10 * time.Second
	saramaConfig.Producer.Idempotent = true
	saramaConfig.Net.MaxOpenRequests = 1

	// Hash partitioner keeps all mail for one recipient in order
	saramaConfig.Producer.Partitioner = sarama.NewHashPartitioner

	producer, err := sarama.NewSyncProducer(brokers, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}

	log.Printf("📤 Kafka notification producer connected to %v", brokers)
	return &KafkaProducer{producer: producer, topic: topic}, nil
}

// Publish sends a single message to the notification topic
func (kp *KafkaProducer) Publish(ctx context.Context, msg *Message) error {
	messageBytes, err := msg.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to marshal notification message: %w", err)
	}

	kafkaMessage := &sarama.ProducerMessage{
		Topic: kp.topic,
		Key:   sarama.StringEncoder(msg.PartitionKey()),
		Value: sarama.ByteEncoder(messageBytes),
		Headers: []sarama.RecordHeader{
			{Key: []byte("kind"), Value: []byte(msg.Kind)},
			{Key: []byte("message_id"), Value: []byte(msg.ID.String())},
		},
		Timestamp: msg.CreatedAt,
	}

	partition, offset, err := kp.producer.SendMessage(kafkaMessage)
	if err != nil {
		return fmt.Errorf("failed to publish notification: %w", err)
	}

	log.Printf("📤 Published %s notification %s to partition %d at offset %d",
		msg.Kind, msg.ID, partition, offset)
	return nil
}

// Close shuts down the producer
func (kp *KafkaProducer) Close() error {
	return kp.producer.Close()
}
