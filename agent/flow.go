package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/components/model"
	"github.com/tbxark/talentscout/catalog"
	"github.com/tbxark/talentscout/command"
	"github.com/tbxark/talentscout/dialogue"
	"github.com/tbxark/talentscout/record"
	"github.com/tbxark/talentscout/types"
)

var (
	ErrUnknownState = errors.New("unknown session state")
	ErrPersist      = errors.New("failed to persist candidate record")
)

// InterviewFlow drives one session through greeting, profile collection
// and the technical questions. Each Invoke handles exactly one user turn.
type InterviewFlow struct {
	spec              FormSpec
	questionSource    catalog.Source
	dialogueGenerator dialogue.Generator
	commandParser     command.Parser
	sink              record.Sink
	now               func() time.Time
}

type flowOptions struct {
	spec              FormSpec
	questionSource    catalog.Source
	dialogueGenerator dialogue.Generator
	commandParser     command.Parser
	now               func() time.Time
}

type FlowOption func(*flowOptions)

func WithFormSpec(spec FormSpec) FlowOption {
	return func(o *flowOptions) {
		o.spec = spec
	}
}

func WithQuestionSource(src catalog.Source) FlowOption {
	return func(o *flowOptions) {
		o.questionSource = src
	}
}

func WithDialogueGenerator(gen dialogue.Generator) FlowOption {
	return func(o *flowOptions) {
		o.dialogueGenerator = gen
	}
}

func WithCommandParser(parser command.Parser) FlowOption {
	return func(o *flowOptions) {
		o.commandParser = parser
	}
}

func WithClock(now func() time.Time) FlowOption {
	return func(o *flowOptions) {
		o.now = now
	}
}

// NewInterviewFlow builds a flow writing finished sessions to sink. A nil
// sink disables persistence.
func NewInterviewFlow(sink record.Sink, opts ...FlowOption) *InterviewFlow {
	o := flowOptions{
		spec:              CandidateSpec{},
		questionSource:    catalog.NewStaticSource(),
		dialogueGenerator: dialogue.NewLocalDialogueGenerator(),
		commandParser:     command.NewLocalCommandParser(),
		now:               time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return &InterviewFlow{
		spec:              o.spec,
		questionSource:    o.questionSource,
		dialogueGenerator: o.dialogueGenerator,
		commandParser:     o.commandParser,
		sink:              sink,
		now:               o.now,
	}
}

// NewToolBasedInterviewFlow asks chatModel for the technical questions and
// falls back to the static catalog when the model fails.
func NewToolBasedInterviewFlow(chatModel model.ToolCallingChatModel, sink record.Sink, opts ...FlowOption) (*InterviewFlow, error) {
	llm, err := catalog.NewToolBasedSource(chatModel)
	if err != nil {
		return nil, fmt.Errorf("failed to create tool-based question source: %w", err)
	}
	src := catalog.NewFailbackSource(llm, catalog.NewStaticSource())
	return NewInterviewFlow(sink, append([]FlowOption{WithQuestionSource(src)}, opts...)...), nil
}

func (f *InterviewFlow) Invoke(ctx context.Context, req *Request) (*Response, error) {
	if req == nil {
		return nil, errors.New("nil request")
	}
	if req.Session == nil {
		req.Session = NewSession()
	}
	req.Session.ensureMaps()

	ctx = callbacks.EnsureRunInfo(ctx, "InterviewFlow", "Flow")
	ctx = callbacks.OnStart(ctx, map[string]any{
		"input":      req.UserInput,
		"session_id": req.Session.ID,
		"state":      string(req.Session.State),
	})

	resp, err := f.runInternal(ctx, req)
	if err != nil {
		callbacks.OnError(ctx, err)
		return nil, err
	}

	callbacks.OnEnd(ctx, map[string]any{
		"response": resp.Message,
		"state":    string(resp.Session.State),
	})
	return resp, nil
}

// ProcessInput runs one turn on s and returns the reply text.
func (f *InterviewFlow) ProcessInput(ctx context.Context, s *Session, input string) string {
	resp, err := f.Invoke(ctx, &Request{Session: s, UserInput: input})
	if err != nil {
		slog.Error("interview turn failed", "err", err)
		return dialogue.FailureMessage
	}
	return resp.Message
}

func (f *InterviewFlow) runInternal(ctx context.Context, req *Request) (*Response, error) {
	session := req.Session
	input := req.UserInput

	cmd, err := f.commandParser.ParseCommand(ctx, &command.Request{
		Question: session.LatestQuestion,
		Answer:   input,
	})
	if err != nil {
		slog.Warn("command parse failed, treating input as an answer", "err", err)
		cmd = command.None
	}
	if cmd == command.Exit {
		return f.handleExit(ctx, session)
	}

	next := session.Clone()
	var message string
	switch next.State {
	case types.StateGreeting:
		message, err = f.handleGreeting(ctx, next)
	case types.StateCollectingInfo:
		message, err = f.handleCollecting(ctx, next, input)
	case types.StateAskingQuestions:
		message, err = f.handleAnswer(ctx, next, input)
	case types.StateCompleted:
		return f.reply(ctx, session, &dialogue.Request{Kind: dialogue.KindNoMoreQuestions}, nil)
	default:
		slog.Warn("unreachable dialogue state", "session_id", session.ID, "state", session.State, "err", ErrUnknownState)
		return f.reply(ctx, session, &dialogue.Request{Kind: dialogue.KindClarification}, nil)
	}
	if err != nil {
		return f.handleError(ctx, err, session)
	}

	next.LatestQuestion = message
	*session = *next
	slog.Debug("turn committed", "session_id", session.ID, "state", session.State,
		"tech_cursor", session.TechCursor, "question_cursor", session.QuestionCursor)
	return &Response{Message: message, Session: session, Metadata: map[string]string{}}, nil
}

func (f *InterviewFlow) handleGreeting(ctx context.Context, s *Session) (string, error) {
	s.State = types.StateCollectingInfo
	s.Dirty = true
	missing := f.spec.MissingFacts(s.Collected)
	if len(missing) == 0 {
		return "", fmt.Errorf("form spec has no fields")
	}
	return f.generate(ctx, &dialogue.Request{Kind: dialogue.KindFieldPrompt, Field: fieldOf(missing[0])})
}

func (f *InterviewFlow) handleCollecting(ctx context.Context, s *Session, input string) (string, error) {
	missing := f.spec.MissingFacts(s.Collected)
	if len(missing) == 0 {
		slog.Warn("collecting info with no missing field", "session_id", s.ID)
		return f.generate(ctx, &dialogue.Request{Kind: dialogue.KindClarification})
	}
	field := fieldOf(missing[0])

	if err := f.spec.Apply(&s.Candidate, field, input); err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			slog.Debug("answer rejected", "session_id", s.ID, "field", field, "err", err)
			return f.generate(ctx, &dialogue.Request{
				Kind:    dialogue.KindInvalidField,
				Field:   field,
				Problem: problemText(verr.Err),
			})
		}
		return "", err
	}

	if field == types.FieldTechStack {
		return f.startQuestions(ctx, s)
	}

	s.Collected[field] = true
	s.Dirty = true
	missing = f.spec.MissingFacts(s.Collected)
	if len(missing) == 0 {
		return "", fmt.Errorf("form spec must end with %s", types.FieldTechStack)
	}
	return f.generate(ctx, &dialogue.Request{Kind: dialogue.KindFieldPrompt, Field: fieldOf(missing[0])})
}

func (f *InterviewFlow) startQuestions(ctx context.Context, s *Session) (string, error) {
	sets, err := catalog.Build(ctx, f.questionSource, s.Candidate, s.Candidate.TechStack)
	if err != nil {
		return "", fmt.Errorf("failed to build questions: %w", err)
	}
	s.Collected[types.FieldTechStack] = true
	s.TechQuestions = sets
	s.TechCursor = 0
	s.QuestionCursor = 0
	s.State = types.StateAskingQuestions
	s.Dirty = true
	slog.Info("technical questions ready", "session_id", s.ID, "technologies", len(sets), "questions", s.TotalQuestions())
	return f.questionPrompt(ctx, s)
}

func (f *InterviewFlow) handleAnswer(ctx context.Context, s *Session, input string) (string, error) {
	set, idx, ok := s.CurrentQuestion()
	if !ok {
		return "", fmt.Errorf("%w: cursor (%d, %d) out of range", ErrUnknownState, s.TechCursor, s.QuestionCursor)
	}
	if s.Answers[set.Technology] == nil {
		s.Answers[set.Technology] = map[int]types.Answer{}
	}
	s.Answers[set.Technology][idx+1] = types.Answer{Question: set.Questions[idx], Answer: input}
	s.Dirty = true

	s.QuestionCursor++
	if s.QuestionCursor >= len(set.Questions) {
		s.QuestionCursor = 0
		s.TechCursor++
	}
	if s.TechCursor < len(s.TechQuestions) {
		return f.questionPrompt(ctx, s)
	}

	s.State = types.StateCompleted
	if err := f.persist(ctx, s, record.StatusCompleted); err != nil {
		return "", err
	}
	slog.Info("interview completed", "session_id", s.ID, "answers", s.TotalQuestions())
	return f.generate(ctx, &dialogue.Request{
		Kind:      dialogue.KindCompleted,
		Candidate: s.Candidate,
		Collected: s.CollectedFields(),
	})
}

// handleExit ends the conversation without changing the state. An exited
// record is written only when some field is collected and the session has
// changed since its last record, so a repeated exit or an exit after
// completion writes nothing new.
func (f *InterviewFlow) handleExit(ctx context.Context, s *Session) (*Response, error) {
	if s.HasCandidateData() && s.Dirty {
		next := s.Clone()
		if err := f.persist(ctx, next, record.StatusExited); err != nil {
			return f.handleError(ctx, err, s)
		}
		*s = *next
	}
	slog.Info("session ended by user", "session_id", s.ID, "state", s.State)
	return f.reply(ctx, s, &dialogue.Request{
		Kind:     dialogue.KindFarewell,
		Recorded: s.HasCandidateData() && !s.Dirty,
	}, nil)
}

func (f *InterviewFlow) handleError(ctx context.Context, err error, s *Session) (*Response, error) {
	slog.Error("interview turn failed, session left unchanged", "session_id", s.ID, "state", s.State, "err", err)
	return f.reply(ctx, s, &dialogue.Request{
		Kind:   dialogue.KindFailure,
		Saving: errors.Is(err, ErrPersist),
		Err:    err,
	}, map[string]string{
		"error": err.Error(),
	})
}

// reply renders req without touching the session beyond LatestQuestion.
func (f *InterviewFlow) reply(ctx context.Context, s *Session, req *dialogue.Request, metadata map[string]string) (*Response, error) {
	message, err := f.generate(ctx, req)
	if err != nil {
		return nil, err
	}
	if metadata == nil {
		metadata = map[string]string{}
	}
	return &Response{Message: message, Session: s, Metadata: metadata}, nil
}

func (f *InterviewFlow) persist(ctx context.Context, s *Session, status record.Status) error {
	if f.sink == nil {
		slog.Debug("no record sink configured, skipping persistence", "session_id", s.ID)
		s.Dirty = false
		return nil
	}
	rec := record.New(s.ID, status, s.Candidate, s.Collected, s.Answers, f.now())
	if err := f.sink.Append(ctx, rec); err != nil {
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}
	s.Dirty = false
	return nil
}

func (f *InterviewFlow) questionPrompt(ctx context.Context, s *Session) (string, error) {
	set, idx, ok := s.CurrentQuestion()
	if !ok {
		return "", fmt.Errorf("%w: cursor (%d, %d) out of range", ErrUnknownState, s.TechCursor, s.QuestionCursor)
	}
	return f.generate(ctx, &dialogue.Request{
		Kind:       dialogue.KindQuestion,
		Technology: set.Technology,
		Number:     idx + 1,
		Total:      len(set.Questions),
		Question:   set.Questions[idx],
	})
}

func (f *InterviewFlow) generate(ctx context.Context, req *dialogue.Request) (string, error) {
	message, err := f.dialogueGenerator.GenerateDialogue(ctx, req)
	if err != nil {
		return "", fmt.Errorf("failed to generate dialogue: %w", err)
	}
	return message, nil
}

func fieldOf(info types.FieldInfo) types.Field {
	return types.Field(info.JSONPointer[1:])
}

func problemText(err error) string {
	switch {
	case errors.Is(err, ErrInvalidEmail):
		return "That doesn't look like a valid email address. Please use the form name@example.com."
	case errors.Is(err, ErrInvalidPhone):
		return "That doesn't look like a valid phone number. Please enter at least 10 digits."
	case errors.Is(err, ErrInvalidYears):
		return "Please enter your years of experience as a whole number between 0 and 50."
	case errors.Is(err, ErrEmptyTechStack):
		return "I couldn't find any technologies in that answer."
	default:
		return ""
	}
}
