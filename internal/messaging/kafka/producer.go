package kafka

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	log "github.com/sirupsen/logrus"
)

// Producer публикует JSON-события через идемпотентный SyncProducer.
// Хранит клиента кластера, чтобы health-проверки могли опрашивать брокеров.
type Producer struct {
	producer sarama.SyncProducer
	client   sarama.Client
	logger   *log.Entry
}

// newProducerConfig — продюсер без потерь и дублей: подтверждение от всех
// ISR-реплик, идемпотентная запись (требует MaxOpenRequests=1), snappy.
func newProducerConfig() *sarama.Config {
	config := sarama.NewConfig()
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5
	config.Producer.Return.Successes = true
	config.Producer.Compression = sarama.CompressionSnappy
	config.Producer.Idempotent = true
	config.Net.MaxOpenRequests = 1
	return config
}

// NewProducer подключается к кластеру и создаёт producer поверх клиента.
func NewProducer(brokers []string) (*Producer, error) {
	client, err := sarama.NewClient(brokers, newProducerConfig())
	if err != nil {
		return nil, fmt.Errorf("connect to kafka cluster: %w", err)
	}

	producer, err := sarama.NewSyncProducerFromClient(client)
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("create kafka producer: %w", err)
	}

	return &Producer{
		producer: producer,
		client:   client,
		logger:   log.WithField("component", "kafka-producer"),
	}, nil
}

// PublishEvent сериализует событие в JSON и публикует его в topic под ключом key.
func (p *Producer) PublishEvent(topic string, key string, event interface{}) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event for topic %s: %w", topic, err)
	}

	partition, offset, err := p.producer.SendMessage(&sarama.ProducerMessage{
		Topic:     topic,
		Key:       sarama.StringEncoder(key),
		Value:     sarama.ByteEncoder(payload),
		Timestamp: time.Now(),
	})
	if err != nil {
		p.logger.WithError(err).WithFields(log.Fields{
			"topic": topic,
			"key":   key,
		}).Error("failed to send message to kafka")
		return fmt.Errorf("send message to topic %s: %w", topic, err)
	}

	p.logger.WithFields(log.Fields{
		"topic":     topic,
		"key":       key,
		"partition": partition,
		"offset":    offset,
	}).Debug("message sent to kafka")

	return nil
}

// HealthCheck обновляет метаданные кластера и убеждается, что есть
// хотя бы один доступный брокер.
func (p *Producer) HealthCheck() error {
	if p.client == nil {
		return errors.New("kafka client is not initialized")
	}
	if err := p.client.RefreshMetadata(); err != nil {
		return fmt.Errorf("refresh kafka metadata: %w", err)
	}
	if len(p.client.Brokers()) == 0 {
		return errors.New("no reachable kafka brokers")
	}
	return nil
}

// Close закрывает producer и клиента кластера.
func (p *Producer) Close() error {
	err := p.producer.Close()
	if p.client != nil && !p.client.Closed() {
		if clientErr := p.client.Close(); err == nil {
			err = clientErr
		}
	}
	if err != nil {
		return fmt.Errorf("close kafka producer: %w", err)
	}
	return nil
}
