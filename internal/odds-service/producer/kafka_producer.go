package producer

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/radieske/odds-cache-service/pkg/contracts/events"
)

// MessageWriter é a parte do *kafka.Writer usada pelo publisher
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// KafkaPublisher publica OddsChanged com a chave = id da odd,
// garantindo ordem por registro dentro da partição
type KafkaPublisher struct {
	Writer  MessageWriter
	Timeout time.Duration
}

func NewKafkaPublisher(w MessageWriter) *KafkaPublisher {
	return &KafkaPublisher{Writer: w, Timeout: 2 * time.Second}
}

func (p *KafkaPublisher) PublishOddsChanged(ctx context.Context, e events.OddsChanged) error {
	b, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode odds_changed: %w", err)
	}

	if p.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.Timeout)
		defer cancel()
	}

	return p.Writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strconv.FormatInt(e.OddsID, 10)),
		Value: b,
		Time:  e.UpdatedAt,
	})
}
