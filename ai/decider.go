package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/hyunwoooim-star/ai-market-sub000/core"
)

// MarketContext is everything an agent sees when deciding its next move.
type MarketContext struct {
	Peers  []core.Agent
	Skills []core.Skill
	Event  core.MarketEvent
}

// DecisionProvider proposes one trade intent for an agent. It is the only
// nondeterministic dependency of the epoch pipeline; everything downstream
// stays unit-testable against fixture decisions.
type DecisionProvider interface {
	ProposeDecision(ctx context.Context, agent core.Agent, market MarketContext) (core.Decision, error)
}

// LLMConfig holds configuration for LLM interactions
type LLMConfig struct {
	Model       string
	MaxTokens   int
	Temperature float32
	Timeout     time.Duration
}

// DefaultLLMConfig returns standard LLM configuration
func DefaultLLMConfig() LLMConfig {
	return LLMConfig{
		Model:       openai.GPT4oMini,
		MaxTokens:   512,
		Temperature: 0.7,
		Timeout:     20 * time.Second,
	}
}

// OpenAIDecider asks an OpenAI chat model for one decision per agent.
type OpenAIDecider struct {
	client *openai.Client
	config LLMConfig
}

// NewOpenAIDecider creates a decider. An empty API key leaves the client nil;
// every proposal then falls back to WAIT, so the simulation still progresses.
func NewOpenAIDecider(apiKey string) *OpenAIDecider {
	d := &OpenAIDecider{config: DefaultLLMConfig()}
	if apiKey == "" {
		log.Println("Warning: OPENAI_API_KEY not set, agents will WAIT")
		return d
	}
	d.client = openai.NewClient(apiKey)
	return d
}

// ProposeDecision queries the model and extracts the embedded decision JSON.
// Any failure is returned to the caller, who isolates it as a WAIT.
func (d *OpenAIDecider) ProposeDecision(ctx context.Context, agent core.Agent, market MarketContext) (core.Decision, error) {
	if d.client == nil {
		return core.Decision{}, fmt.Errorf("OpenAI client not initialized")
	}

	ctx, cancel := context.WithTimeout(ctx, d.config.Timeout)
	defer cancel()

	resp, err := d.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: d.config.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: "You are an autonomous agent trading skills in a simulated marketplace."},
			{Role: openai.ChatMessageRoleUser, Content: BuildDecisionPrompt(agent, market)},
		},
		MaxTokens:   d.config.MaxTokens,
		Temperature: d.config.Temperature,
	})
	if err != nil {
		return core.Decision{}, err
	}
	if len(resp.Choices) == 0 {
		return core.Decision{}, fmt.Errorf("empty completion response")
	}

	decision, err := ExtractDecision(resp.Choices[0].Message.Content)
	if err != nil {
		return core.Decision{}, err
	}
	decision.AgentID = agent.ID
	return decision, nil
}

// BuildDecisionPrompt describes the agent's situation and asks for one JSON
// decision object.
func BuildDecisionPrompt(agent core.Agent, market MarketContext) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "You are %s. %s\n", agent.Name, agent.Persona)
	fmt.Fprintf(&sb, "Your balance: %.2f credits (earned %.2f, spent %.2f so far).\n",
		agent.Balance, agent.TotalEarned, agent.TotalSpent)
	fmt.Fprintf(&sb, "Current market: prices are multiplied by %.2f this round.\n", market.Event.PriceMultiplier)

	sb.WriteString("Skills you can trade (with base prices):\n")
	for _, s := range market.Skills {
		fmt.Fprintf(&sb, "- %s: %.2f\n", s.Name, s.BasePrice)
	}

	sb.WriteString("Other agents in the market:\n")
	for _, p := range market.Peers {
		if p.ID == agent.ID {
			continue
		}
		fmt.Fprintf(&sb, "- %s (balance %.2f)\n", p.Name, p.Balance)
	}

	sb.WriteString("\nChoose exactly one action for this round: SELL a skill, BUY a skill, or WAIT.\n")
	sb.WriteString("Reply with a single JSON object, nothing else:\n")
	sb.WriteString(`{"action": "SELL|BUY|WAIT", "skill": "name", "price": 10.0, "target": "optional agent name", "reason": "one sentence"}`)

	return sb.String()
}

// ExtractDecision pulls the first {...} object out of a model reply. Models
// wrap JSON in prose often enough that strict parsing of the whole reply is
// useless.
func ExtractDecision(response string) (core.Decision, error) {
	var decision core.Decision

	raw, err := firstJSONObject(response)
	if err != nil {
		return decision, err
	}
	if err := json.Unmarshal([]byte(raw), &decision); err != nil {
		return decision, fmt.Errorf("failed to parse decision JSON: %v", err)
	}

	decision.Action = strings.ToUpper(strings.TrimSpace(decision.Action))
	if decision.Action == "" {
		return decision, fmt.Errorf("decision missing action")
	}
	if !core.ValidAction(decision.Action) {
		return decision, fmt.Errorf("unknown action %q", decision.Action)
	}
	if decision.Price < 0 {
		return decision, fmt.Errorf("negative price %.4f", decision.Price)
	}

	return decision, nil
}

// firstJSONObject returns the first balanced {...} substring.
func firstJSONObject(s string) (string, error) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", fmt.Errorf("no JSON object in response")
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		switch {
		case escaped:
			escaped = false
		case c == '\\' && inString:
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				return s[start : i+1], nil
			}
		}
	}
	return "", fmt.Errorf("unterminated JSON object in response")
}
