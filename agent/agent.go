// Package agent runs the conversational loop around the LLM
// collaborator. It keeps a bounded in-memory conversation buffer; the
// wallet itself is only ever described to the model, never handed over.
package agent

import (
	"context"
	"fmt"
	"log/slog"
)

const (
	systemPromptFormat = "You are a helpful agent with your own blockchain wallet. " +
		"Your wallet address is %s on the %s network. " +
		"You cannot sign or broadcast transactions yet; if asked to, explain that " +
		"transaction support is not available and share your wallet details instead. " +
		"Be concise and helpful with your responses."

	// AutonomousThought is the fixed instruction fed to the model on each
	// autonomous-mode tick.
	AutonomousThought = "Be creative and do something interesting with your wallet knowledge. " +
		"Choose an action or set of actions and describe how you would execute it."

	// maxMessages bounds the conversation buffer. The system prompt is
	// always retained; the oldest exchanges are dropped first.
	maxMessages = 40
)

// Agent holds conversation state for one wallet-backed session.
type Agent struct {
	llm      Completer
	logger   *slog.Logger
	messages []Message
}

// New creates an agent whose system prompt describes the given wallet.
func New(llm Completer, address, networkID string, logger *slog.Logger) *Agent {
	if logger == nil {
		logger = slog.Default()
	}
	return &Agent{
		llm:    llm,
		logger: logger,
		messages: []Message{
			{Role: "system", Content: fmt.Sprintf(systemPromptFormat, address, networkID)},
		},
	}
}

// Step sends one user input through the model and records both sides of
// the exchange in the conversation buffer.
func (a *Agent) Step(ctx context.Context, input string) (string, error) {
	a.append(Message{Role: "user", Content: input})

	reply, err := a.llm.Complete(ctx, a.messages)
	if err != nil {
		return "", err
	}

	a.append(Message{Role: "assistant", Content: reply})
	a.logger.Debug("agent step", "messages", len(a.messages))
	return reply, nil
}

func (a *Agent) append(msg Message) {
	a.messages = append(a.messages, msg)
	if len(a.messages) <= maxMessages {
		return
	}
	// Keep the system prompt, drop the oldest user/assistant pair.
	trimmed := a.messages[:1]
	trimmed = append(trimmed, a.messages[3:]...)
	a.messages = trimmed
}
