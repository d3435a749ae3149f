package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/orders/internal/domain"
)

const defaultValidationTimeout = 5 * time.Second

// ProductValidator проверяет продукты через каталог по схеме request-reply:
// запрос уходит в requestTopic, ответ с тем же correlation id приходит
// в replyTopic. HandleReply нужно подключить к Consumer, читающему replyTopic.
type ProductValidator struct {
	producer     *Producer
	requestTopic string
	replyTopic   string
	timeout      time.Duration
	logger       *log.Entry

	mu      sync.Mutex
	pending map[string]chan ValidationReply
}

// NewProductValidator создает validator поверх готового producer.
// timeout<=0 заменяется на значение по умолчанию.
func NewProductValidator(producer *Producer, requestTopic, replyTopic string, timeout time.Duration) *ProductValidator {
	if timeout <= 0 {
		timeout = defaultValidationTimeout
	}
	return &ProductValidator{
		producer:     producer,
		requestTopic: requestTopic,
		replyTopic:   replyTopic,
		timeout:      timeout,
		logger:       log.WithField("component", "kafka-product-validator"),
		pending:      make(map[string]chan ValidationReply),
	}
}

// Validate отправляет каталогу единый запрос на весь набор продуктов и ждёт
// ответ. Недоступность каталога или истечение таймаута превращаются
// в domain.ErrProductValidatorUnavailable.
func (v *ProductValidator) Validate(ctx context.Context, productIDs []string) ([]domain.Product, error) {
	correlationID := uuid.NewString()
	replyCh := v.register(correlationID)
	defer v.unregister(correlationID)

	request := &ValidationRequest{
		CorrelationID: correlationID,
		ReplyTopic:    v.replyTopic,
		ProductIDs:    productIDs,
		Timestamp:     time.Now().UTC(),
	}
	if err := v.producer.PublishEvent(v.requestTopic, correlationID, request); err != nil {
		return nil, fmt.Errorf("%w: publish validation request: %v", domain.ErrProductValidatorUnavailable, err)
	}

	timer := time.NewTimer(v.timeout)
	defer timer.Stop()

	select {
	case reply := <-replyCh:
		return reply.ToProducts(), nil
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %v", domain.ErrProductValidatorUnavailable, ctx.Err())
	case <-timer.C:
		v.logger.WithFields(log.Fields{
			"correlation_id": correlationID,
			"timeout":        v.timeout,
		}).Warn("validation reply timed out")
		return nil, fmt.Errorf("%w: no reply within %s", domain.ErrProductValidatorUnavailable, v.timeout)
	}
}

// HandleReply — MessageHandler для replyTopic. Ответы с неизвестным
// correlation id игнорируются: их запрос уже завершился по таймауту
// или был обслужен другим экземпляром сервиса.
func (v *ProductValidator) HandleReply(_ context.Context, message *sarama.ConsumerMessage) error {
	var reply ValidationReply
	if err := json.Unmarshal(message.Value, &reply); err != nil {
		return fmt.Errorf("failed to unmarshal validation reply: %w", err)
	}

	v.mu.Lock()
	ch, ok := v.pending[reply.CorrelationID]
	v.mu.Unlock()
	if !ok {
		v.logger.WithField("correlation_id", reply.CorrelationID).Debug("dropping reply without pending request")
		return nil
	}

	select {
	case ch <- reply:
	default:
		// Канал буферизован на один ответ, дубликаты отбрасываются.
	}
	return nil
}

func (v *ProductValidator) register(correlationID string) chan ValidationReply {
	ch := make(chan ValidationReply, 1)
	v.mu.Lock()
	v.pending[correlationID] = ch
	v.mu.Unlock()
	return ch
}

func (v *ProductValidator) unregister(correlationID string) {
	v.mu.Lock()
	delete(v.pending, correlationID)
	v.mu.Unlock()
}

var _ domain.ProductValidator = (*ProductValidator)(nil)
