package dialogue

import (
	"context"
	"fmt"
	"strings"

	"github.com/tbxark/talentscout/types"
)

const (
	FarewellMessage        = "Thank you for your time! Your details have been recorded and our recruitment team will get back to you soon. Goodbye!"
	GoodbyeMessage         = "Thank you for stopping by! Nothing was recorded. Goodbye!"
	NoMoreQuestionsMessage = "There are no more questions. Type **exit** to end the conversation."
	ClarificationMessage   = "Sorry, I didn't understand that. Could you rephrase?"
	FailureMessage         = "Sorry, something went wrong. Please try again."
	SaveFailureMessage     = "Sorry, something went wrong while saving your progress. Please try again."
)

// LocalDialogueGenerator renders fixed, deterministic replies.
type LocalDialogueGenerator struct{}

func NewLocalDialogueGenerator() *LocalDialogueGenerator {
	return &LocalDialogueGenerator{}
}

func (g *LocalDialogueGenerator) GenerateDialogue(ctx context.Context, req *Request) (string, error) {
	switch req.Kind {
	case KindFieldPrompt:
		return formatFieldPrompt(req.Field), nil
	case KindInvalidField:
		var sb strings.Builder
		if req.Problem != "" {
			sb.WriteString(req.Problem)
		} else {
			sb.WriteString(fmt.Sprintf("That doesn't look like a valid %s.", strings.ToLower(req.Field.DisplayName())))
		}
		sb.WriteString("\n\n")
		sb.WriteString(formatFieldPrompt(req.Field))
		return sb.String(), nil
	case KindQuestion:
		return formatQuestion(req.Technology, req.Number, req.Total, req.Question), nil
	case KindCompleted:
		var sb strings.Builder
		sb.WriteString("That was the last question, thank you! Here is a summary of your profile:\n\n")
		sb.WriteString(types.FormatCandidate(req.Candidate, req.Collected))
		sb.WriteString("\nOur recruitment team will review your answers and contact you about next steps. Type **exit** to end the conversation.")
		return sb.String(), nil
	case KindNoMoreQuestions:
		return NoMoreQuestionsMessage, nil
	case KindFarewell:
		if req.Recorded {
			return FarewellMessage, nil
		}
		return GoodbyeMessage, nil
	case KindFailure:
		if req.Saving {
			return SaveFailureMessage, nil
		}
		return FailureMessage, nil
	case KindClarification:
		return ClarificationMessage, nil
	default:
		return ClarificationMessage, nil
	}
}
