package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseEnvironment(t *testing.T) {
	tests := map[string]Environment{
		"production": Production,
		" PROD ":     Production,
		"test":       Testing,
		"testing":    Testing,
		"":           Development,
		"staging":    Development,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseEnvironment(in), in)
	}
}

func TestEnvironment_Decode(t *testing.T) {
	var e Environment
	assert.NoError(t, e.Decode("prod"))
	assert.True(t, e.IsProduction())
	assert.Equal(t, "production", e.String())
}
