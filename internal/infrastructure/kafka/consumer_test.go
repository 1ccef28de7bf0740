package kafka

import (
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
)

func TestHeaderValue(t *testing.T) {
	headers := []kafka.Header{
		{Key: "trace", Value: []byte("abc")},
		{Key: HeaderEventType, Value: []byte("product.stock_low")},
	}

	assert.Equal(t, "product.stock_low", headerValue(headers, HeaderEventType))
	assert.Equal(t, "", headerValue(headers, "missing"))
	assert.Equal(t, "", headerValue(nil, HeaderEventType))
}
