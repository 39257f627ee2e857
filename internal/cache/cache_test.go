package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderKey(t *testing.T) {
	assert.Equal(t, "order:42", OrderKey(42))
	assert.Equal(t, "order:0", OrderKey(0))
}

func TestProductKey(t *testing.T) {
	assert.Equal(t, "product:7", ProductKey(7))
}

func TestNewRedisCache_DefaultTTL(t *testing.T) {
	c := NewRedisCache("localhost:6379", 0)
	assert.Equal(t, DefaultTTL, c.ttl)
}
