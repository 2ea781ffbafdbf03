package agent

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tbxark/talentscout/catalog"
	"github.com/tbxark/talentscout/command"
	"github.com/tbxark/talentscout/dialogue"
	"github.com/tbxark/talentscout/record"
	"github.com/tbxark/talentscout/types"
)

type memorySink struct {
	mu      sync.Mutex
	records []record.CandidateRecord
	err     error
}

func (m *memorySink) Append(ctx context.Context, rec record.CandidateRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.records = append(m.records, rec)
	return nil
}

func (m *memorySink) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}

type failingSource struct{}

func (failingSource) Questions(ctx context.Context, req *types.QuestionRequest) ([]string, error) {
	return nil, errors.New("catalog offline")
}

var fixedNow = time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)

func newTestFlow(sink record.Sink, opts ...FlowOption) *InterviewFlow {
	opts = append([]FlowOption{WithClock(func() time.Time { return fixedNow })}, opts...)
	return NewInterviewFlow(sink, opts...)
}

func say(t *testing.T, f *InterviewFlow, s *Session, inputs ...string) string {
	t.Helper()
	var last string
	for _, in := range inputs {
		last = f.ProcessInput(context.Background(), s, in)
	}
	return last
}

var adaProfile = []string{"hi", "Ada", "ada@x.com", "5551234567", "5", "Engineer", "Remote"}

func TestFlow_AdaScenario(t *testing.T) {
	sink := &memorySink{}
	f := newTestFlow(sink)
	s := NewSession()

	msg := say(t, f, s, adaProfile...)
	assert.Contains(t, msg, "tech stack")
	assert.Equal(t, types.StateCollectingInfo, s.State)

	msg = say(t, f, s, "Python")
	assert.Equal(t, types.StateAskingQuestions, s.State)
	assert.Contains(t, msg, "1/5")
	assert.Contains(t, msg, "What are the key differences between lists and tuples in Python?")
	assert.Equal(t, 0, sink.count())

	for i := 1; i <= 4; i++ {
		msg = say(t, f, s, "answer")
		assert.Contains(t, msg, "Python")
	}
	assert.Contains(t, msg, "5/5")
	assert.Equal(t, types.StateAskingQuestions, s.State)

	msg = say(t, f, s, "final answer")
	assert.Equal(t, types.StateCompleted, s.State)
	assert.Contains(t, msg, "last question")
	assert.Contains(t, msg, "Ada")
	require.Equal(t, 1, sink.count())

	rec := sink.records[0]
	assert.Equal(t, record.StatusCompleted, rec.Status)
	assert.Equal(t, s.ID, rec.SessionID)
	assert.Equal(t, "Ada", rec.FullName)
	assert.Equal(t, "ada@x.com", rec.Email)
	assert.Equal(t, []string{"Python"}, rec.TechStack)
	assert.Equal(t, 5, *rec.YearsExperience)
	require.Len(t, rec.Answers["Python"], 5)
	assert.Equal(t, "answer", rec.Answers["Python"][1].Answer)
	assert.Equal(t, "final answer", rec.Answers["Python"][5].Answer)
	assert.Equal(t, "What are the key differences between lists and tuples in Python?", rec.Answers["Python"][1].Question)
	assert.True(t, rec.Timestamp.Equal(fixedNow))
	assert.False(t, s.Dirty)
}

func TestFlow_GreetingDiscardsInput(t *testing.T) {
	f := newTestFlow(&memorySink{})
	s := NewSession()
	msg := say(t, f, s, "My name is Grace")
	assert.Contains(t, msg, "full name")
	assert.Equal(t, types.StateCollectingInfo, s.State)
	assert.Empty(t, s.Candidate.FullName)
	assert.False(t, s.HasCandidateData())
}

func TestFlow_FieldOrder(t *testing.T) {
	f := newTestFlow(&memorySink{})
	s := NewSession()
	say(t, f, s, "hi")

	inputs := map[types.Field]string{
		types.FieldFullName:        "Ada",
		types.FieldEmail:           "ada@x.com",
		types.FieldPhone:           "5551234567",
		types.FieldYearsExperience: "5",
		types.FieldDesiredPosition: "Engineer",
		types.FieldCurrentLocation: "Remote",
	}
	for i, field := range types.FieldOrder[:len(types.FieldOrder)-1] {
		say(t, f, s, inputs[field])
		assert.Equal(t, types.FieldOrder[:i+1], s.CollectedFields())
	}
}

func TestFlow_EmailValidation(t *testing.T) {
	f := newTestFlow(&memorySink{})
	s := NewSession()
	say(t, f, s, "hi", "Ada")

	msg := say(t, f, s, "not-an-email")
	assert.Contains(t, msg, "valid email")
	assert.Contains(t, msg, "email address")
	assert.False(t, s.Collected[types.FieldEmail])

	msg = say(t, f, s, "still wrong@")
	assert.Contains(t, msg, "valid email")

	msg = say(t, f, s, "a@b.co")
	assert.True(t, s.Collected[types.FieldEmail])
	assert.Equal(t, "a@b.co", s.Candidate.Email)
	assert.Contains(t, msg, "phone number")
}

func TestFlow_PhoneValidation(t *testing.T) {
	f := newTestFlow(&memorySink{})
	s := NewSession()
	say(t, f, s, "hi", "Ada", "ada@x.com")

	msg := say(t, f, s, "12345")
	assert.Contains(t, msg, "valid phone")
	assert.False(t, s.Collected[types.FieldPhone])

	say(t, f, s, "123-456-7890")
	assert.True(t, s.Collected[types.FieldPhone])
	assert.Equal(t, "1234567890", s.Candidate.Phone)
}

func TestFlow_YearsValidation(t *testing.T) {
	for _, tc := range []struct {
		input string
		ok    bool
		want  int
	}{
		{"51", false, 0},
		{"-1", false, 0},
		{"3.5", false, 0},
		{"five", false, 0},
		{"0", true, 0},
		{"50", true, 50},
		{" 7 ", true, 7},
	} {
		t.Run(tc.input, func(t *testing.T) {
			f := newTestFlow(&memorySink{})
			s := NewSession()
			say(t, f, s, "hi", "Ada", "ada@x.com", "5551234567")
			msg := say(t, f, s, tc.input)
			assert.Equal(t, tc.ok, s.Collected[types.FieldYearsExperience])
			if tc.ok {
				assert.Equal(t, tc.want, s.Candidate.YearsExperience)
				assert.Contains(t, msg, "position")
			} else {
				assert.Contains(t, msg, "between 0 and 50")
			}
		})
	}
}

func TestFlow_TechStackParsing(t *testing.T) {
	f := newTestFlow(&memorySink{})
	s := NewSession()
	say(t, f, s, adaProfile...)

	msg := say(t, f, s, " , ,")
	assert.Contains(t, msg, "tech stack")
	assert.Equal(t, types.StateCollectingInfo, s.State)

	msg = say(t, f, s, "Python, Java,, React")
	assert.Equal(t, types.StateAskingQuestions, s.State)
	assert.Equal(t, []string{"Python", "Java", "React"}, s.Candidate.TechStack)
	require.Len(t, s.TechQuestions, 3)
	assert.Equal(t, 15, s.TotalQuestions())
	assert.Equal(t, "Java", s.TechQuestions[1].Technology)
	assert.Contains(t, msg, "**Python** (question 1/5)")

	msg = say(t, f, s, "a1", "a2", "a3", "a4", "a5")
	assert.Contains(t, msg, "**Java** (question 1/5)")
	assert.Equal(t, 1, s.TechCursor)
	assert.Equal(t, 0, s.QuestionCursor)
}

func TestFlow_UnknownTechnology(t *testing.T) {
	f := newTestFlow(&memorySink{})
	s := NewSession()
	say(t, f, s, adaProfile...)
	msg := say(t, f, s, "Elixir")
	assert.Contains(t, msg, "**Elixir** (question 1/5)")
	require.Len(t, s.TechQuestions, 1)
	for _, q := range s.TechQuestions[0].Questions {
		assert.Contains(t, q, "Elixir")
	}
}

func TestFlow_CompletedIgnoresInput(t *testing.T) {
	sink := &memorySink{}
	f := newTestFlow(sink)
	s := NewSession()
	say(t, f, s, adaProfile...)
	say(t, f, s, "Go", "1", "2", "3", "4", "5")
	require.Equal(t, types.StateCompleted, s.State)
	techCursor, questionCursor := s.TechCursor, s.QuestionCursor

	msg := say(t, f, s, "one more thing")
	assert.Equal(t, dialogue.NoMoreQuestionsMessage, msg)
	assert.Equal(t, types.StateCompleted, s.State)
	assert.Equal(t, techCursor, s.TechCursor)
	assert.Equal(t, questionCursor, s.QuestionCursor)
	assert.Equal(t, 1, sink.count())
}

func TestFlow_ExitPersistsOnce(t *testing.T) {
	sink := &memorySink{}
	f := newTestFlow(sink)
	s := NewSession()
	say(t, f, s, "hi", "Ada", "ada@x.com")
	before := s.Clone()

	msg := say(t, f, s, "I'm done, bye")
	assert.Equal(t, dialogue.FarewellMessage, msg)
	require.Equal(t, 1, sink.count())
	rec := sink.records[0]
	assert.Equal(t, record.StatusExited, rec.Status)
	assert.Equal(t, "Ada", rec.FullName)
	assert.Equal(t, "ada@x.com", rec.Email)
	assert.Empty(t, rec.Phone)
	assert.Nil(t, rec.YearsExperience)

	assert.Equal(t, before.State, s.State)
	assert.Equal(t, before.Collected, s.Collected)
	assert.Equal(t, before.Candidate, s.Candidate)

	msg = say(t, f, s, "quit")
	assert.Equal(t, dialogue.FarewellMessage, msg)
	assert.Equal(t, 1, sink.count())
}

func TestFlow_ExitAbandonsAnswer(t *testing.T) {
	sink := &memorySink{}
	f := newTestFlow(sink)
	s := NewSession()
	say(t, f, s, adaProfile...)
	say(t, f, s, "Python", "first")

	msg := say(t, f, s, "thanks, that's all")
	assert.Equal(t, dialogue.FarewellMessage, msg)
	assert.Equal(t, 1, s.QuestionCursor)
	assert.Len(t, s.Answers["Python"], 1)
	require.Equal(t, 1, sink.count())
	assert.Len(t, sink.records[0].Answers["Python"], 1)
}

func TestFlow_ExitWithoutData(t *testing.T) {
	sink := &memorySink{}
	f := newTestFlow(sink)
	s := NewSession()
	assert.Equal(t, dialogue.GoodbyeMessage, say(t, f, s, "exit"))
	assert.Equal(t, types.StateGreeting, s.State)
	assert.Zero(t, sink.count())
}

func TestFlow_ExitAfterCompletionDoesNotDuplicate(t *testing.T) {
	sink := &memorySink{}
	f := newTestFlow(sink)
	s := NewSession()
	say(t, f, s, adaProfile...)
	say(t, f, s, "SQL", "1", "2", "3", "4", "5")
	require.Equal(t, 1, sink.count())

	assert.Equal(t, dialogue.FarewellMessage, say(t, f, s, "goodbye"))
	assert.Equal(t, 1, sink.count())
}

func TestFlow_WholeWordExitMatching(t *testing.T) {
	sink := &memorySink{}
	parser := command.NewLocalCommandParser().WithMode(command.MatchWholeWord)
	f := newTestFlow(sink, WithCommandParser(parser))
	s := NewSession()
	say(t, f, s, adaProfile...)
	say(t, f, s, "Go")

	msg := say(t, f, s, "I would stop the exiting process, never byebye")
	assert.Contains(t, msg, "question 2/5")
	assert.Zero(t, sink.count())
}

func TestFlow_PersistenceFailureLeavesSessionUnchanged(t *testing.T) {
	sink := &memorySink{err: errors.New("disk full")}
	f := newTestFlow(sink)
	s := NewSession()
	say(t, f, s, adaProfile...)
	say(t, f, s, "Python", "1", "2", "3", "4")
	before := s.Clone()

	resp, err := f.Invoke(context.Background(), &Request{Session: s, UserInput: "5"})
	require.NoError(t, err)
	assert.Equal(t, dialogue.SaveFailureMessage, resp.Message)
	assert.Contains(t, resp.Metadata["error"], "disk full")
	assert.Equal(t, before, s)

	sink.err = nil
	msg := say(t, f, s, "5")
	assert.Equal(t, types.StateCompleted, s.State)
	assert.Contains(t, msg, "last question")
	assert.Equal(t, 1, sink.count())
}

func TestFlow_ExitPersistenceFailure(t *testing.T) {
	sink := &memorySink{err: errors.New("read-only")}
	f := newTestFlow(sink)
	s := NewSession()
	say(t, f, s, "hi", "Ada")

	resp, err := f.Invoke(context.Background(), &Request{Session: s, UserInput: "exit"})
	require.NoError(t, err)
	assert.Equal(t, dialogue.SaveFailureMessage, resp.Message)
	assert.NotEmpty(t, resp.Metadata["error"])
	assert.True(t, s.Dirty)

	sink.err = nil
	assert.Equal(t, dialogue.FarewellMessage, say(t, f, s, "exit"))
	assert.Equal(t, 1, sink.count())
}

func TestFlow_QuestionSourceFailure(t *testing.T) {
	f := newTestFlow(&memorySink{}, WithQuestionSource(failingSource{}))
	s := NewSession()
	say(t, f, s, adaProfile...)

	resp, err := f.Invoke(context.Background(), &Request{Session: s, UserInput: "Python"})
	require.NoError(t, err)
	assert.Equal(t, dialogue.FailureMessage, resp.Message)
	assert.Contains(t, resp.Metadata["error"], "catalog offline")
	assert.Equal(t, types.StateCollectingInfo, s.State)
	assert.False(t, s.Collected[types.FieldTechStack])
	assert.Empty(t, s.TechQuestions)
}

func TestFlow_FailbackQuestionSource(t *testing.T) {
	f := newTestFlow(&memorySink{}, WithQuestionSource(catalog.NewFailbackSource(failingSource{}, catalog.NewStaticSource())))
	s := NewSession()
	say(t, f, s, adaProfile...)
	msg := say(t, f, s, "Python")
	assert.Contains(t, msg, "lists and tuples")
}

func TestFlow_UnknownState(t *testing.T) {
	sink := &memorySink{}
	f := newTestFlow(sink)
	s := NewSession()
	s.State = types.State("interviewing")
	before := s.Clone()

	assert.Equal(t, dialogue.ClarificationMessage, say(t, f, s, "hello"))
	assert.Equal(t, before, s)
}

func TestFlow_InvokeCreatesSession(t *testing.T) {
	f := newTestFlow(nil)
	resp, err := f.Invoke(context.Background(), &Request{UserInput: "hello"})
	require.NoError(t, err)
	require.NotNil(t, resp.Session)
	assert.Equal(t, types.StateCollectingInfo, resp.Session.State)
	assert.Equal(t, resp.Message, resp.Session.LatestQuestion)

	_, err = f.Invoke(context.Background(), nil)
	assert.Error(t, err)
}

func TestFlow_FileStoreMasksPersistedCopy(t *testing.T) {
	path := filepath.Join(t.TempDir(), "candidates.json")
	store, err := record.NewFileStore(path)
	require.NoError(t, err)
	f := newTestFlow(store)
	s := NewSession()
	say(t, f, s, "hi", "Ada", "ada@x.com", "5551234567", "exit")

	records, err := store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "a*a@x.com", records[0].Email)
	assert.Equal(t, "******4567", records[0].Phone)
	assert.Equal(t, "ada@x.com", s.Candidate.Email)
	assert.Equal(t, "5551234567", s.Candidate.Phone)
}
