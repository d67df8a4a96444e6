package agent

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/skillscout/skillscout/models"
	"github.com/skillscout/skillscout/session"
	"github.com/skillscout/skillscout/session/inmemory"
)

// scriptedLLM routes completions by the system instruction of each stage so
// one fake can drive the whole pipeline.
type scriptedLLM struct {
	relevant      bool
	gatherOutcome GatherOutcome
	plan          models.ResearchPlan
	reviewDeltas  []string
}

func (s *scriptedLLM) Complete(_ context.Context, messages []models.Message) (string, error) {
	system := messages[0].Content
	switch {
	case strings.Contains(system, "validation assistant"):
		b, _ := json.Marshal(models.RelevanceVerdict{IsRelevant: s.relevant})
		return string(b), nil
	case strings.Contains(system, "Requirement Gathering"):
		b, _ := json.Marshal(s.gatherOutcome)
		return string(b), nil
	case strings.Contains(system, "Query Generator"):
		b, _ := json.Marshal(s.plan)
		return string(b), nil
	case strings.Contains(system, "Synthesis Agent"):
		return "synthesized notes", nil
	case strings.Contains(system, "Writer Agent"):
		return "# Draft Report", nil
	}
	return "", errors.New("unexpected stage")
}

func (s *scriptedLLM) Stream(_ context.Context, _ []models.Message, onDelta func(string) error) error {
	for _, d := range s.reviewDeltas {
		if err := onDelta(d); err != nil {
			return err
		}
	}
	return nil
}

// faultyStore wraps the in-memory store and fails AddItems to simulate a
// persistence fault.
type faultyStore struct {
	*inmemory.Store
}

func (f *faultyStore) AddItems(_ context.Context, _ string, _ []models.Item) error {
	return errors.New("storage down")
}

var testProfile = models.UserProfile{Name: "Ayesha", City: "Karachi", UID: "u1"}

func newTestOrchestrator(llm *scriptedLLM, store session.Store, searcher *fakeSearcher, extractor *fakeExtractor) *Orchestrator {
	return NewOrchestrator(
		store,
		NewGuardrail(llm),
		NewGatherer(llm),
		NewPlanner(llm),
		NewResearch(searcher, extractor, 5, nil),
		NewSynthesizer(llm),
		NewWriter(llm),
		NewReviewer(llm),
		nil,
		DefaultMaxTurns,
	)
}

func collect(out <-chan string) []string {
	var fragments []string
	for f := range out {
		fragments = append(fragments, f)
	}
	return fragments
}

func TestRunTripwireEndsStreamSilently(t *testing.T) {
	store := inmemory.New()
	llm := &scriptedLLM{relevant: false}
	o := newTestOrchestrator(llm, store, &fakeSearcher{}, &fakeExtractor{})

	fragments := collect(o.Run(context.Background(), "what's the weather", testProfile))
	if len(fragments) != 0 {
		t.Fatalf("expected no output on tripwire, got %v", fragments)
	}

	// Only the rejected user message is persisted; no downstream artifacts.
	items, _ := store.GetItems(context.Background(), "u1", 0)
	if len(items) != 1 {
		t.Fatalf("expected only the user item persisted, got %d", len(items))
	}
	var m models.Message
	_ = json.Unmarshal(items[0].Data, &m)
	if m.Role != "user" {
		t.Fatalf("unexpected persisted item: %+v", m)
	}
}

func TestRunAskEmitsQuestionAndAwaitsInput(t *testing.T) {
	store := inmemory.New()
	llm := &scriptedLLM{
		relevant:      true,
		gatherOutcome: GatherOutcome{Action: ActionAsk, Message: "What is your experience level?"},
	}
	o := newTestOrchestrator(llm, store, &fakeSearcher{}, &fakeExtractor{})

	fragments := collect(o.Run(context.Background(), "I want to learn Golang", testProfile))
	if len(fragments) != 1 || fragments[0] != "What is your experience level?" {
		t.Fatalf("unexpected fragments: %v", fragments)
	}

	items, _ := store.GetItems(context.Background(), "u1", 0)
	if len(items) != 2 {
		t.Fatalf("expected user + assistant items, got %d", len(items))
	}
}

func TestRunFullPipelineStreamsReport(t *testing.T) {
	store := inmemory.New()
	llm := &scriptedLLM{
		relevant:      true,
		gatherOutcome: GatherOutcome{Action: ActionHandoff, Requirements: "learn golang, beginner, free resources"},
		plan: models.ResearchPlan{
			MasterQuery:    "learn golang roadmap",
			RefinedQueries: []string{"golang tutorial", "golang best courses"},
		},
		reviewDeltas: []string{"# Final ", "Report"},
	}
	searcher := &fakeSearcher{results: map[string][]models.SourceItem{
		"golang tutorial":     {{URL: "https://go.dev/tour", Score: 0.92}},
		"golang best courses": {{URL: "https://example.com/course", Score: 0.88}},
	}}
	extractor := &fakeExtractor{}
	o := newTestOrchestrator(llm, store, searcher, extractor)

	fragments := collect(o.Run(context.Background(), "I want to learn Golang", testProfile))
	if strings.Join(fragments, "") != "# Final Report" {
		t.Fatalf("unexpected streamed report: %v", fragments)
	}
	if len(extractor.extracted) != 2 {
		t.Fatalf("expected both sources extracted, got %v", extractor.extracted)
	}

	items, _ := store.GetItems(context.Background(), "u1", 0)
	if len(items) != 2 {
		t.Fatalf("expected user + assistant items, got %d", len(items))
	}
	var last models.Message
	_ = json.Unmarshal(items[1].Data, &last)
	if last.Role != "assistant" || last.Content != "# Final Report" {
		t.Fatalf("unexpected persisted report: %+v", last)
	}
}

func TestRunUnexpectedFailureEmitsFallback(t *testing.T) {
	store := inmemory.New()
	llm := &scriptedLLM{
		relevant:      true,
		gatherOutcome: GatherOutcome{Action: ActionHandoff, Requirements: "learn golang"},
		plan: models.ResearchPlan{
			MasterQuery:    "learn golang",
			RefinedQueries: []string{"golang tutorial"},
		},
	}
	searcher := &fakeSearcher{err: errors.New("search provider down")}
	o := newTestOrchestrator(llm, store, searcher, &fakeExtractor{})

	fragments := collect(o.Run(context.Background(), "I want to learn Golang", testProfile))
	if len(fragments) != 1 || fragments[0] != FallbackMessage {
		t.Fatalf("expected single fallback fragment, got %v", fragments)
	}
}

func TestRunPersistenceFaultDoesNotInterruptStream(t *testing.T) {
	store := &faultyStore{inmemory.New()}
	llm := &scriptedLLM{
		relevant:      true,
		gatherOutcome: GatherOutcome{Action: ActionHandoff, Requirements: "learn golang"},
		plan: models.ResearchPlan{
			MasterQuery:    "learn golang",
			RefinedQueries: []string{"golang tutorial"},
		},
		reviewDeltas: []string{"# Report"},
	}
	searcher := &fakeSearcher{results: map[string][]models.SourceItem{
		"golang tutorial": {{URL: "https://go.dev/tour", Score: 0.92}},
	}}
	o := newTestOrchestrator(llm, store, searcher, &fakeExtractor{})

	fragments := collect(o.Run(context.Background(), "I want to learn Golang", testProfile))
	if strings.Join(fragments, "") != "# Report" {
		t.Fatalf("stream interrupted by persistence fault: %v", fragments)
	}
}

func TestGatherRetriesBadOutcomeUpToMaxTurns(t *testing.T) {
	store := inmemory.New()
	llm := &badGatherLLM{scriptedLLM: scriptedLLM{relevant: true}}
	o := newTestOrchestrator(&llm.scriptedLLM, store, &fakeSearcher{}, &fakeExtractor{})
	o.gatherer = NewGatherer(llm)
	o.maxTurns = 3

	fragments := collect(o.Run(context.Background(), "I want to learn Golang", testProfile))
	if len(fragments) != 1 || fragments[0] != FallbackMessage {
		t.Fatalf("expected fallback after exhausting turns, got %v", fragments)
	}
	if llm.gatherCalls != 3 {
		t.Fatalf("expected 3 gather attempts, got %d", llm.gatherCalls)
	}
}

// badGatherLLM answers the guardrail normally but returns malformed gather
// outcomes.
type badGatherLLM struct {
	scriptedLLM
	gatherCalls int
}

func (b *badGatherLLM) Complete(ctx context.Context, messages []models.Message) (string, error) {
	if strings.Contains(messages[0].Content, "Requirement Gathering") {
		b.gatherCalls++
		return "not json at all", nil
	}
	return b.scriptedLLM.Complete(ctx, messages)
}
