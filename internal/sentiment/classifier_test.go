package sentiment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSelectsEngine(t *testing.T) {
	c, err := New(Config{Engine: EngineVADER})
	require.NoError(t, err)
	assert.IsType(t, &VADERClassifier{}, c)

	c, err = New(Config{})
	require.NoError(t, err)
	assert.IsType(t, &VADERClassifier{}, c)
}

func TestNewRejectsUnknownEngine(t *testing.T) {
	_, err := New(Config{Engine: "bayes"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bayes")
}
