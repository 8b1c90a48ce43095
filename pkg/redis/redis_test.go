package redis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfig_Enabled(t *testing.T) {
	assert.False(t, (&Config{}).Enabled())
	assert.True(t, (&Config{URL: "redis://localhost:6379/0"}).Enabled())
}

func TestConfig_NewRejectsBadURL(t *testing.T) {
	_, err := (&Config{URL: "http://not-redis"}).New()
	assert.Error(t, err)
}
