// Package model wraps the language-model capability behind a narrow client
// contract: a system instruction plus user content in, structured output
// validated against a declared schema back out.
package model

import (
	"context"
	"fmt"

	"github.com/JaimeStill/go-agents/pkg/agent"
	gaconfig "github.com/JaimeStill/go-agents/pkg/config"
)

// Client is the outbound model capability. Implementations must treat every
// call as a single attempt; retry policy belongs to callers.
type Client interface {
	Generate(ctx context.Context, system, user string) (string, error)
}

type agentClient struct {
	cfg gaconfig.AgentConfig
}

// NewAgentClient returns a Client backed by a go-agents agent. A fresh agent
// is constructed per call from the captured configuration.
func NewAgentClient(cfg *gaconfig.AgentConfig) Client {
	return &agentClient{cfg: *cfg}
}

func (c *agentClient) Generate(ctx context.Context, system, user string) (string, error) {
	a, err := agent.New(&c.cfg)
	if err != nil {
		return "", fmt.Errorf("create agent: %w", err)
	}

	resp, err := a.Chat(ctx, system+"\n\n"+user)
	if err != nil {
		return "", fmt.Errorf("chat call: %w", err)
	}

	return resp.Content(), nil
}
