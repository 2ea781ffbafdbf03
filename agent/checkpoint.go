package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/bytedance/sonic"
	"github.com/tbxark/talentscout/dialogue"
	"github.com/tbxark/talentscout/patch"
	"github.com/tbxark/talentscout/types"
)

const checkpointVersion = "1.0"

var ErrPrefillTooLate = errors.New("profile can only be prefilled before the technical questions")

type Checkpoint struct {
	Version   string    `json:"version"`
	Session   *Session  `json:"session"`
	Timestamp time.Time `json:"timestamp"`
}

// CreateCheckpoint serializes s so an interview can be resumed later.
func CreateCheckpoint(s *Session) ([]byte, error) {
	if s == nil {
		return nil, errors.New("nil session")
	}
	data, err := sonic.Marshal(Checkpoint{
		Version:   checkpointVersion,
		Session:   s,
		Timestamp: time.Now(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal checkpoint: %w", err)
	}
	return data, nil
}

func RestoreCheckpoint(data []byte) (*Session, error) {
	var cp Checkpoint
	if err := sonic.Unmarshal(data, &cp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal checkpoint: %w", err)
	}
	if cp.Version != checkpointVersion {
		return nil, fmt.Errorf("incompatible checkpoint version: %s (expected %s)", cp.Version, checkpointVersion)
	}
	if cp.Session == nil {
		return nil, errors.New("checkpoint has no session")
	}
	switch cp.Session.State {
	case types.StateGreeting, types.StateCollectingInfo, types.StateAskingQuestions, types.StateCompleted:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownState, cp.Session.State)
	}
	if cp.Session.State == types.StateAskingQuestions {
		if _, _, ok := cp.Session.CurrentQuestion(); !ok {
			return nil, fmt.Errorf("checkpoint cursor (%d, %d) is out of range", cp.Session.TechCursor, cp.Session.QuestionCursor)
		}
	}
	cp.Session.ensureMaps()
	return cp.Session, nil
}

// Prefill copies the non-empty profile values of initial onto s and marks
// them collected, so the interview skips those prompts. The state is left
// alone and the next turn asks for the first field still missing; while
// collecting, LatestQuestion is moved to that field's prompt. The tech
// stack is never prefilled because answering it starts the questions.
func (f *InterviewFlow) Prefill(ctx context.Context, s *Session, initial types.Candidate) error {
	if s.State != types.StateGreeting && s.State != types.StateCollectingInfo {
		return ErrPrefillTooLate
	}
	s.ensureMaps()
	initial.TechStack = nil
	if phone, ok := NormalizePhone(initial.Phone); ok {
		initial.Phone = phone
	}

	allowed := map[string]bool{}
	for _, info := range f.spec.MissingFacts(s.Collected) {
		if fieldOf(info) != types.FieldTechStack {
			allowed[info.JSONPointer] = true
		}
	}

	ops, err := patch.GeneratePatchesFromInitial(s.Candidate, initial)
	if err != nil {
		return fmt.Errorf("failed to generate patches from initial values: %w", err)
	}
	kept := ops[:0]
	for _, op := range ops {
		if allowed[op.Path] {
			kept = append(kept, op)
			continue
		}
		slog.Debug("prefill skipped field", "session_id", s.ID, "path", op.Path)
	}
	if len(kept) == 0 {
		return nil
	}

	next := s.Clone()
	next.Candidate, err = patch.ApplyRFC6902(s.Candidate, kept, allowed)
	if err != nil {
		return fmt.Errorf("failed to apply initial values: %w", err)
	}
	for _, op := range kept {
		field := types.Field(op.Path[1:])
		if err := f.spec.Check(next.Candidate, field); err != nil {
			return err
		}
		next.Collected[field] = true
	}
	next.Dirty = true

	if next.State == types.StateCollectingInfo {
		missing := f.spec.MissingFacts(next.Collected)
		if len(missing) == 0 {
			return fmt.Errorf("form spec must end with %s", types.FieldTechStack)
		}
		next.LatestQuestion, err = f.generate(ctx, &dialogue.Request{Kind: dialogue.KindFieldPrompt, Field: fieldOf(missing[0])})
		if err != nil {
			return err
		}
	}

	*s = *next
	slog.Info("profile prefilled", "session_id", s.ID, "fields", len(kept))
	return nil
}
