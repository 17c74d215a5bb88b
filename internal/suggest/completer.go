package suggest

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	types "github.com/agent-api/core"
	"github.com/agent-api/core/agent"
	"github.com/agent-api/core/agent/bootstrap"
	"github.com/agent-api/ollama"
	"github.com/go-logr/logr"
)

// Completer sends a prompt to an external language model and returns the
// raw text completion. The analyzer owns all schema enforcement over it.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// AgentCompleter adapts an agent-api agent to the Completer interface.
type AgentCompleter struct {
	agent *agent.Agent
}

// NewOllamaCompleter builds a Completer backed by a local Ollama instance.
// It fails when Ollama is unreachable, so callers can fall back to the
// deterministic analysis paths.
func NewOllamaCompleter(ctx context.Context, logger *slog.Logger, baseURL string, port int, model string) (*AgentCompleter, error) {
	// Check if Ollama is running before wiring the provider.
	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get(fmt.Sprintf("%s:%d/api/tags", baseURL, port))
	if err != nil {
		return nil, fmt.Errorf("ollama not reachable: %w", err)
	}
	resp.Body.Close()

	logrLogger := logr.FromSlogHandler(logger.Handler())

	opts := &ollama.ProviderOpts{
		Logger:  &logrLogger,
		BaseURL: baseURL,
		Port:    port,
	}
	provider := ollama.NewProvider(opts)
	provider.UseModel(ctx, &types.Model{ID: model})

	a, err := agent.NewAgent(
		bootstrap.WithProvider(provider),
		bootstrap.WithLogger(&logrLogger),
		bootstrap.WithSystemPrompt("You are an expert video editor and viral content strategist. Always answer in the exact JSON structure the user asks for, with no surrounding commentary."),
	)
	if err != nil {
		return nil, err
	}

	return &AgentCompleter{agent: a}, nil
}

// Complete runs the prompt through the agent and returns the final message.
func (c *AgentCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	response, err := c.agent.Run(ctx, agent.WithInput(prompt))
	if err != nil {
		return "", err
	}
	return lastContent(response.Messages)
}

// lastContent extracts the model's reply, the final message of the run.
func lastContent(messages []*types.Message) (string, error) {
	if len(messages) == 0 {
		return "", fmt.Errorf("no response messages received from model")
	}
	return messages[len(messages)-1].Content, nil
}
