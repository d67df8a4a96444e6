package agent

import (
	"context"
	"errors"
	"fmt"

	"github.com/skillscout/skillscout/models"
	"github.com/skillscout/skillscout/provider"
)

// ErrTripwire signals that the relevance gate rejected the input. The
// orchestrator aborts the turn before any downstream work runs.
var ErrTripwire = errors.New("guardrail tripwire triggered")

// Guardrail is a one-shot classifier that decides whether the conversation
// remains on-topic before the pipeline proceeds.
type Guardrail struct {
	llm provider.Provider
}

func NewGuardrail(llm provider.Provider) *Guardrail {
	return &Guardrail{llm: llm}
}

// Check classifies the latest user input against the conversation so far.
// A negative verdict is returned as ErrTripwire.
func (g *Guardrail) Check(ctx context.Context, query string, history []models.Message) error {
	messages := make([]models.Message, 0, len(history)+2)
	messages = append(messages, models.Message{Role: "system", Content: guardrailInstructions()})
	messages = append(messages, history...)
	messages = append(messages, models.Message{Role: "user", Content: query})

	out, err := g.llm.Complete(ctx, messages)
	if err != nil {
		return fmt.Errorf("guardrail completion: %w", err)
	}
	var verdict models.RelevanceVerdict
	if err := decodeJSON(out, &verdict); err != nil {
		return fmt.Errorf("guardrail verdict parse: %w", err)
	}
	if !verdict.IsRelevant {
		return ErrTripwire
	}
	return nil
}
