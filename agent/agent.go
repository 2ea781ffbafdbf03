package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cloudwego/eino/adk"
	"github.com/cloudwego/eino/schema"
	"github.com/tbxark/talentscout/types"
)

var _ adk.Agent = (*Agent)(nil)

// Agent exposes an InterviewFlow as an eino ADK agent. The session for each
// run is loaded from and saved back to the SessionReadWriter using the key
// set by WithStateKey.
type Agent struct {
	name        string
	description string
	flow        *InterviewFlow
	sessions    SessionReadWriter
	transcripts TranscriptReadWriter
}

// NewAgent wires flow to session storage. transcripts may be nil.
func NewAgent(name, description string, flow *InterviewFlow, sessions SessionReadWriter, transcripts TranscriptReadWriter) *Agent {
	if sessions == nil {
		sessions = NewMemorySessionStore()
	}
	return &Agent{
		name:        name,
		description: description,
		flow:        flow,
		sessions:    sessions,
		transcripts: transcripts,
	}
}

func (a *Agent) Name(ctx context.Context) string {
	return a.name
}

func (a *Agent) Description(ctx context.Context) string {
	return a.description
}

// Reset drops the stored session and transcript so the next run starts
// with a new greeting.
func (a *Agent) Reset(ctx context.Context) error {
	var errs []error
	if err := a.sessions.Remove(ctx); err != nil {
		errs = append(errs, fmt.Errorf("remove session: %w", err))
	}
	if a.transcripts != nil {
		if err := a.transcripts.Clear(ctx); err != nil {
			errs = append(errs, fmt.Errorf("clear transcript: %w", err))
		}
	}
	return errors.Join(errs...)
}

// Session returns the stored session for the context key.
func (a *Agent) Session(ctx context.Context) (*Session, error) {
	return a.sessions.Read(ctx)
}

// Prefill applies a known partial profile to the stored session.
func (a *Agent) Prefill(ctx context.Context, initial types.Candidate) (*Session, error) {
	session, err := a.sessions.Read(ctx)
	if err != nil {
		return nil, err
	}
	if err := a.flow.Prefill(ctx, session, initial); err != nil {
		return nil, err
	}
	if err := a.sessions.Write(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// Chat runs one turn for input and saves the resulting session.
func (a *Agent) Chat(ctx context.Context, input string) (*Response, error) {
	session, err := a.sessions.Read(ctx)
	if err != nil {
		return nil, err
	}
	resp, err := a.flow.Invoke(ctx, &Request{Session: session, UserInput: input})
	if err != nil {
		return nil, fmt.Errorf("flow invoke failed: %w", err)
	}
	if err := a.sessions.Write(ctx, resp.Session); err != nil {
		return nil, err
	}
	if a.transcripts != nil {
		_, err := a.transcripts.Append(ctx,
			schema.UserMessage(input),
			schema.AssistantMessage(resp.Message, nil),
		)
		if err != nil {
			slog.Warn("failed to append transcript", "session_id", resp.Session.ID, "err", err)
		}
	}
	return resp, nil
}

func (a *Agent) Run(ctx context.Context, input *adk.AgentInput, options ...adk.AgentRunOption) *adk.AsyncIterator[*adk.AgentEvent] {
	iter, gen := adk.NewAsyncIteratorPair[*adk.AgentEvent]()
	go func() {
		defer func() {
			e := recover()
			if e != nil {
				gen.Send(&adk.AgentEvent{
					Err: fmt.Errorf("recover from panic: %v", e),
				})
			}
			gen.Close()
		}()
		if input == nil || len(input.Messages) == 0 {
			gen.Send(&adk.AgentEvent{
				Err: fmt.Errorf("no messages in input"),
			})
			return
		}
		resp, err := a.Chat(ctx, input.Messages[len(input.Messages)-1].Content)
		if err != nil {
			gen.Send(&adk.AgentEvent{Err: err})
			return
		}
		gen.Send(&adk.AgentEvent{
			AgentName: a.name,
			Output: &adk.AgentOutput{
				MessageOutput: &adk.MessageVariant{
					IsStreaming: false,
					Message:     schema.AssistantMessage(resp.Message, nil),
					Role:        schema.Assistant,
				},
				CustomizedOutput: resp.Metadata,
			},
		})
	}()
	return iter
}
