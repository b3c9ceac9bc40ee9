package kafka

import (
	"testing"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
)

func TestSplitBrokers(t *testing.T) {
	assert.Equal(t, []string{"a:9092", "b:9092"}, splitBrokers(" a:9092, b:9092 ,"))
	assert.Equal(t, []string{"localhost:9092"}, splitBrokers("localhost:9092"))
	assert.Empty(t, splitBrokers(""))
}

func TestNewWriter_HashesByKey(t *testing.T) {
	w := NewWriter("a:9092,b:9092", "odds_changed")
	defer w.Close()

	assert.Equal(t, "odds_changed", w.Topic)
	assert.IsType(t, &kafkago.Hash{}, w.Balancer)
}
