package suggest

import (
	"testing"

	types "github.com/agent-api/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLastContent(t *testing.T) {
	_, err := lastContent(nil)
	require.Error(t, err)

	// The run aggregates the prompt and the reply; only the final message
	// is the model's answer.
	got, err := lastContent([]*types.Message{
		{Content: "analyze this transcript"},
		{Content: `[{"timestamp": 1.5}]`},
	})
	require.NoError(t, err)
	assert.Equal(t, `[{"timestamp": 1.5}]`, got)
}
