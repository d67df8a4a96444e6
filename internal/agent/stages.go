package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/skillscout/skillscout/models"
	"github.com/skillscout/skillscout/provider"
)

// decodeJSON parses a model response that should be a bare JSON object,
// tolerating markdown code fences around it.
func decodeJSON(raw string, out any) error {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
		s = strings.TrimSpace(s)
	}
	return json.Unmarshal([]byte(s), out)
}

// GatherOutcome is the requirement-gathering stage's decision for one turn.
type GatherOutcome struct {
	Action       string `json:"action"` // ask | handoff
	Message      string `json:"message,omitempty"`
	Requirements string `json:"requirements,omitempty"`
}

const (
	ActionAsk     = "ask"
	ActionHandoff = "handoff"
)

// ErrBadOutcome marks a non-conforming gather response; the orchestrator
// retries the stage within its turn budget instead of failing the request.
var ErrBadOutcome = errors.New("non-conforming gather outcome")

// Gatherer collects the learner's preferences over conversational turns and
// decides when to hand off to the research stage.
type Gatherer struct {
	llm provider.Provider
}

func NewGatherer(llm provider.Provider) *Gatherer {
	return &Gatherer{llm: llm}
}

func (g *Gatherer) Next(ctx context.Context, profile models.UserProfile, query string, history []models.Message) (GatherOutcome, error) {
	messages := make([]models.Message, 0, len(history)+2)
	messages = append(messages, models.Message{Role: "system", Content: gatherInstructions(profile)})
	messages = append(messages, history...)
	messages = append(messages, models.Message{Role: "user", Content: query})

	out, err := g.llm.Complete(ctx, messages)
	if err != nil {
		return GatherOutcome{}, fmt.Errorf("gather completion: %w", err)
	}
	var outcome GatherOutcome
	if err := decodeJSON(out, &outcome); err != nil {
		return GatherOutcome{}, fmt.Errorf("%w: %v", ErrBadOutcome, err)
	}
	if outcome.Action != ActionAsk && outcome.Action != ActionHandoff {
		return GatherOutcome{}, fmt.Errorf("%w: unknown action %q", ErrBadOutcome, outcome.Action)
	}
	return outcome, nil
}

// Planner turns gathered requirements into a master query plus refined
// sub-queries. The five-sub-query cardinality is the model's contract; the
// core does not enforce it.
type Planner struct {
	llm provider.Provider
}

func NewPlanner(llm provider.Provider) *Planner {
	return &Planner{llm: llm}
}

func (p *Planner) Plan(ctx context.Context, profile models.UserProfile, requirements string) (models.ResearchPlan, error) {
	messages := []models.Message{
		{Role: "system", Content: plannerInstructions(profile)},
		{Role: "user", Content: requirements},
	}
	out, err := p.llm.Complete(ctx, messages)
	if err != nil {
		return models.ResearchPlan{}, fmt.Errorf("planner completion: %w", err)
	}
	var plan models.ResearchPlan
	if err := decodeJSON(out, &plan); err != nil {
		return models.ResearchPlan{}, fmt.Errorf("research plan parse: %w", err)
	}
	if plan.MasterQuery == "" || len(plan.RefinedQueries) == 0 {
		return models.ResearchPlan{}, fmt.Errorf("research plan missing queries")
	}
	return plan, nil
}

// Synthesizer turns raw extracted content into deduplicated, themed notes
// with source attribution.
type Synthesizer struct {
	llm provider.Provider
}

func NewSynthesizer(llm provider.Provider) *Synthesizer {
	return &Synthesizer{llm: llm}
}

func (s *Synthesizer) Synthesize(ctx context.Context, profile models.UserProfile, plan models.ResearchPlan, docs []models.ExtractedDoc) (string, error) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Master query: %s\n\nExtracted sources:\n", plan.MasterQuery)
	for _, d := range docs {
		fmt.Fprintf(&sb, "\n--- %s", d.URL)
		if d.Title != "" {
			fmt.Fprintf(&sb, " (%s)", d.Title)
		}
		fmt.Fprintf(&sb, " ---\n%s\n", d.Content)
	}
	messages := []models.Message{
		{Role: "system", Content: synthesisInstructions(profile)},
		{Role: "user", Content: sb.String()},
	}
	out, err := s.llm.Complete(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("synthesis completion: %w", err)
	}
	return out, nil
}

// Writer produces the polished Markdown report from synthesized notes.
type Writer struct {
	llm provider.Provider
}

func NewWriter(llm provider.Provider) *Writer {
	return &Writer{llm: llm}
}

func (w *Writer) Write(ctx context.Context, profile models.UserProfile, notes string) (string, error) {
	messages := []models.Message{
		{Role: "system", Content: writerInstructions(profile)},
		{Role: "user", Content: notes},
	}
	out, err := w.llm.Complete(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("writer completion: %w", err)
	}
	return out, nil
}

// Reviewer is the final quality pass. Its output is the report the caller
// sees, streamed delta by delta.
type Reviewer struct {
	llm provider.Provider
}

func NewReviewer(llm provider.Provider) *Reviewer {
	return &Reviewer{llm: llm}
}

func (r *Reviewer) Review(ctx context.Context, profile models.UserProfile, report string, onDelta func(string) error) error {
	messages := []models.Message{
		{Role: "system", Content: reviewInstructions(profile)},
		{Role: "user", Content: report},
	}
	if err := r.llm.Stream(ctx, messages, onDelta); err != nil {
		return fmt.Errorf("review stream: %w", err)
	}
	return nil
}
