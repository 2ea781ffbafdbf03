package agent

import (
	"time"

	"github.com/tbxark/talentscout/types"
)

// Session is the state of one candidate conversation.
type Session struct {
	ID        string               `json:"id"`
	State     types.State          `json:"state"`
	Collected map[types.Field]bool `json:"collected"`
	Candidate types.Candidate      `json:"candidate"`
	CreatedAt time.Time            `json:"created_at"`

	TechQuestions  []types.TechQuestionSet         `json:"tech_questions,omitempty"`
	Answers        map[string]map[int]types.Answer `json:"answers,omitempty"`
	TechCursor     int                             `json:"tech_cursor"`
	QuestionCursor int                             `json:"question_cursor"`

	// LatestQuestion is the last reply shown to the user.
	LatestQuestion string `json:"latest_question,omitempty"`
	// Dirty is set when the session changed since it was last persisted.
	Dirty bool `json:"dirty"`
}

type Request struct {
	Session   *Session `json:"session"`
	UserInput string   `json:"user_input"`
}

type Response struct {
	Message  string            `json:"message,omitempty"`
	Session  *Session          `json:"session,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
}
