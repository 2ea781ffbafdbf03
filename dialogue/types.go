package dialogue

import (
	"context"

	"github.com/tbxark/talentscout/types"
)

// Kind selects which fixed reply a Request asks for.
type Kind string

const (
	KindFieldPrompt     Kind = "field_prompt"
	KindInvalidField    Kind = "invalid_field"
	KindQuestion        Kind = "question"
	KindCompleted       Kind = "completed"
	KindNoMoreQuestions Kind = "no_more_questions"
	KindFarewell        Kind = "farewell"
	KindClarification   Kind = "clarification"
	KindFailure         Kind = "failure"
)

type Request struct {
	Kind Kind

	// Field is the field being asked for (KindFieldPrompt, KindInvalidField).
	Field types.Field
	// Problem describes why the last answer was rejected.
	Problem string

	// Question data for KindQuestion.
	Technology string
	Number     int
	Total      int
	Question   string

	Candidate types.Candidate
	Collected []types.Field

	// Recorded is set on KindFarewell when the candidate's data is on file.
	Recorded bool
	// Saving is set on KindFailure when writing the record failed.
	Saving bool
	Err    error
}

type Generator interface {
	GenerateDialogue(ctx context.Context, req *Request) (string, error)
}
