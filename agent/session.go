package agent

import (
	"time"

	"github.com/google/uuid"
	"github.com/tbxark/talentscout/types"
)

func NewSession() *Session {
	return &Session{
		ID:        uuid.NewString(),
		State:     types.StateGreeting,
		Collected: map[types.Field]bool{},
		Answers:   map[string]map[int]types.Answer{},
		CreatedAt: time.Now(),
	}
}

// Clone returns a deep copy of s.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	out := *s
	out.Collected = make(map[types.Field]bool, len(s.Collected))
	for f, ok := range s.Collected {
		out.Collected[f] = ok
	}
	out.Candidate.TechStack = append([]string(nil), s.Candidate.TechStack...)
	if s.TechQuestions != nil {
		out.TechQuestions = make([]types.TechQuestionSet, len(s.TechQuestions))
		for i, set := range s.TechQuestions {
			out.TechQuestions[i] = types.TechQuestionSet{
				Technology: set.Technology,
				Questions:  append([]string(nil), set.Questions...),
			}
		}
	}
	out.Answers = make(map[string]map[int]types.Answer, len(s.Answers))
	for tech, byNumber := range s.Answers {
		m := make(map[int]types.Answer, len(byNumber))
		for n, a := range byNumber {
			m[n] = a
		}
		out.Answers[tech] = m
	}
	return &out
}

// CollectedFields lists collected fields in collection order.
func (s *Session) CollectedFields() []types.Field {
	var out []types.Field
	for _, f := range types.FieldOrder {
		if s.Collected[f] {
			out = append(out, f)
		}
	}
	return out
}

func (s *Session) HasCandidateData() bool {
	for _, ok := range s.Collected {
		if ok {
			return true
		}
	}
	return false
}

// CurrentQuestion returns the question addressed by the cursors.
func (s *Session) CurrentQuestion() (types.TechQuestionSet, int, bool) {
	if s.TechCursor < 0 || s.TechCursor >= len(s.TechQuestions) {
		return types.TechQuestionSet{}, 0, false
	}
	set := s.TechQuestions[s.TechCursor]
	if s.QuestionCursor < 0 || s.QuestionCursor >= len(set.Questions) {
		return types.TechQuestionSet{}, 0, false
	}
	return set, s.QuestionCursor, true
}

// TotalQuestions is the number of questions across all technologies.
func (s *Session) TotalQuestions() int {
	total := 0
	for _, set := range s.TechQuestions {
		total += len(set.Questions)
	}
	return total
}

func (s *Session) ensureMaps() {
	if s.Collected == nil {
		s.Collected = map[types.Field]bool{}
	}
	if s.Answers == nil {
		s.Answers = map[string]map[int]types.Answer{}
	}
}
