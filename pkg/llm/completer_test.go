package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ducklingk58/medical-product-overview-system/internal/types"
)

func TestNewWithConfigDefaults(t *testing.T) {
	engine, err := NewWithConfig(types.CompleterConfig{})
	require.NoError(t, err)
	require.NotNil(t, engine)

	assert.Equal(t, "mistral", engine.config.Model)
	assert.Equal(t, "http://localhost:11434", engine.config.BaseURL)
	assert.Equal(t, 512, engine.config.MaxTokens)
	assert.Equal(t, 2.0, engine.config.RateLimit)
}

func TestNewWithConfigValidation(t *testing.T) {
	_, err := NewWithConfig(types.CompleterConfig{Temperature: 3.0})
	assert.Error(t, err)

	_, err = NewWithConfig(types.CompleterConfig{MaxTokens: -1})
	assert.Error(t, err)
}

func TestNewWithConfigCustom(t *testing.T) {
	engine, err := NewWithConfig(types.CompleterConfig{
		Model:       "llama3",
		BaseURL:     "http://remote:11434",
		MaxTokens:   256,
		Temperature: 0.7,
		RateLimit:   5,
	})
	require.NoError(t, err)

	assert.Equal(t, "llama3", engine.config.Model)
	assert.Equal(t, "http://remote:11434", engine.config.BaseURL)
	assert.Equal(t, 256, engine.config.MaxTokens)
}
