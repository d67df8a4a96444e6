package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/skillscout/skillscout/models"
	"github.com/skillscout/skillscout/session"
)

// FallbackMessage is the single user-visible fragment emitted when an
// unexpected failure is caught at the orchestrator boundary.
const FallbackMessage = "An unexpected error occurred. Please try again later."

// ErrMaxTurns bounds agent-to-agent handoff loops within one request.
var ErrMaxTurns = errors.New("max internal turns exceeded")

const (
	DefaultMaxTurns = 50
	historyLimit    = 50
)

// State names the orchestrator's per-request phases, for logging.
type State string

const (
	StateGating      State = "gating"
	StateRejected    State = "rejected"
	StateGathering   State = "requirement_gathering"
	StateAwaiting    State = "awaiting_more_input"
	StateResearching State = "handed_off_to_research"
	StateStreaming   State = "streaming_output"
	StateDone        State = "done"
)

// Orchestrator drives the research pipeline for one request: gate the
// input, gather requirements, hand off to research, stream the final report
// and persist the turn.
type Orchestrator struct {
	store       session.Store
	guardrail   *Guardrail
	gatherer    *Gatherer
	planner     *Planner
	research    *Research
	synthesizer *Synthesizer
	writer      *Writer
	reviewer    *Reviewer
	logger      *log.Logger
	maxTurns    int
}

func NewOrchestrator(store session.Store, guardrail *Guardrail, gatherer *Gatherer, planner *Planner, research *Research, synthesizer *Synthesizer, writer *Writer, reviewer *Reviewer, logger *log.Logger, maxTurns int) *Orchestrator {
	if logger == nil {
		logger = log.New(log.Writer(), "[ORCH] ", log.LstdFlags)
	}
	if maxTurns <= 0 {
		maxTurns = DefaultMaxTurns
	}
	return &Orchestrator{
		store:       store,
		guardrail:   guardrail,
		gatherer:    gatherer,
		planner:     planner,
		research:    research,
		synthesizer: synthesizer,
		writer:      writer,
		reviewer:    reviewer,
		logger:      logger,
		maxTurns:    maxTurns,
	}
}

// Run processes one (query, profile) turn and returns a channel of text
// fragments, closed when the turn reaches its terminal state. Tripwire
// rejections end the stream silently; any other failure ends it with the
// single fallback fragment. Errors never escape to the caller.
func (o *Orchestrator) Run(ctx context.Context, query string, profile models.UserProfile) <-chan string {
	out := make(chan string)
	go func() {
		defer close(out)
		emit := func(fragment string) error {
			select {
			case out <- fragment:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		err := o.run(ctx, query, profile, emit)
		switch {
		case err == nil:
		case errors.Is(err, ErrTripwire):
			o.logger.Printf("tripwire triggered for user %s", profile.UID)
		case errors.Is(err, context.Canceled):
			o.logger.Printf("request cancelled for user %s", profile.UID)
		default:
			o.logger.Printf("unexpected error for user %s: %v", profile.UID, err)
			_ = emit(FallbackMessage)
		}
	}()
	return out
}

func (o *Orchestrator) run(ctx context.Context, query string, profile models.UserProfile, emit func(string) error) error {
	sessionID := profile.UID
	if err := o.store.Ensure(ctx, sessionID); err != nil {
		// Persistence faults never interrupt the stream.
		o.logger.Printf("ensure session %s: %v", sessionID, err)
	}
	history := o.loadHistory(ctx, sessionID)
	o.persist(ctx, sessionID, models.NewMessageItem("user", query))

	o.transition(sessionID, StateGating)
	if err := o.guardrail.Check(ctx, query, history); err != nil {
		if errors.Is(err, ErrTripwire) {
			o.transition(sessionID, StateRejected)
		}
		return err
	}

	o.transition(sessionID, StateGathering)
	requirements, done, err := o.gather(ctx, query, profile, history, emit)
	if err != nil {
		return err
	}
	if done {
		// Clarifying question emitted; turn ends awaiting more input.
		o.transition(sessionID, StateAwaiting)
		return nil
	}

	o.transition(sessionID, StateResearching)
	report, err := o.researchStage(ctx, profile, requirements, emit)
	if err != nil {
		return err
	}

	o.persist(ctx, sessionID, models.NewMessageItem("assistant", report))
	o.transition(sessionID, StateDone)
	return nil
}

// gather runs the requirement-gathering stage. It returns the gathered
// requirements, or done=true when a clarifying question was emitted and the
// turn should end awaiting the user's next input.
func (o *Orchestrator) gather(ctx context.Context, query string, profile models.UserProfile, history []models.Message, emit func(string) error) (string, bool, error) {
	for turn := 0; turn < o.maxTurns; turn++ {
		outcome, err := o.gatherer.Next(ctx, profile, query, history)
		if errors.Is(err, ErrBadOutcome) {
			o.logger.Printf("gather turn %d for user %s: %v", turn, profile.UID, err)
			continue
		}
		if err != nil {
			return "", false, err
		}
		switch outcome.Action {
		case ActionAsk:
			if err := emit(outcome.Message); err != nil {
				return "", false, err
			}
			o.persist(ctx, profile.UID, models.NewMessageItem("assistant", outcome.Message))
			return "", true, nil
		case ActionHandoff:
			return outcome.Requirements, false, nil
		}
	}
	return "", false, ErrMaxTurns
}

// researchStage runs plan -> search/extract -> synthesize -> write ->
// review, streaming the reviewed report and returning the full text.
func (o *Orchestrator) researchStage(ctx context.Context, profile models.UserProfile, requirements string, emit func(string) error) (string, error) {
	plan, err := o.planner.Plan(ctx, profile, requirements)
	if err != nil {
		return "", err
	}
	docs, err := o.research.Collect(ctx, plan.RefinedQueries)
	if err != nil {
		return "", fmt.Errorf("research collect: %w", err)
	}
	notes, err := o.synthesizer.Synthesize(ctx, profile, plan, docs)
	if err != nil {
		return "", err
	}
	draft, err := o.writer.Write(ctx, profile, notes)
	if err != nil {
		return "", err
	}

	o.transition(profile.UID, StateStreaming)
	var report []byte
	err = o.reviewer.Review(ctx, profile, draft, func(delta string) error {
		report = append(report, delta...)
		return emit(delta)
	})
	if err != nil {
		return "", err
	}
	return string(report), nil
}

// loadHistory returns the session's recent items as messages, degrading to
// an empty history on a storage fault.
func (o *Orchestrator) loadHistory(ctx context.Context, sessionID string) []models.Message {
	items, err := o.store.GetItems(ctx, sessionID, historyLimit)
	if err != nil {
		o.logger.Printf("load history for %s: %v", sessionID, err)
		return nil
	}
	messages := make([]models.Message, 0, len(items))
	for _, it := range items {
		var m models.Message
		if err := json.Unmarshal(it.Data, &m); err != nil || m.Role == "" {
			continue
		}
		messages = append(messages, m)
	}
	return messages
}

func (o *Orchestrator) persist(ctx context.Context, sessionID string, items ...models.Item) {
	if err := o.store.AddItems(ctx, sessionID, items); err != nil {
		o.logger.Printf("persist items for %s: %v", sessionID, err)
	}
}

func (o *Orchestrator) transition(sessionID string, state State) {
	o.logger.Printf("session %s -> %s", sessionID, state)
}
