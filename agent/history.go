package agent

import (
	"context"

	"github.com/cloudwego/eino/schema"
)

type Trimmer interface {
	Trim(transcript []*schema.Message) []*schema.Message
}

// LastNTrimmer keeps the last N messages. N <= 0 keeps everything.
type LastNTrimmer struct {
	N int
}

func (t LastNTrimmer) Trim(transcript []*schema.Message) []*schema.Message {
	if t.N <= 0 || len(transcript) <= t.N {
		return transcript
	}
	return transcript[len(transcript)-t.N:]
}

// TranscriptReadWriter keeps the chat transcript shown to the candidate.
type TranscriptReadWriter interface {
	Load(ctx context.Context) ([]*schema.Message, error)
	Clear(ctx context.Context) error
	// Append adds msgs, skipping consecutive duplicates, and returns the
	// saved transcript.
	Append(ctx context.Context, msgs ...*schema.Message) ([]*schema.Message, error)
}

type TranscriptStore struct {
	store   Store[[]*schema.Message]
	trimmer Trimmer
}

func NewTranscriptStore(core Cache[[]*schema.Message], trimmer Trimmer) *TranscriptStore {
	return &TranscriptStore{
		store:   NewStore(core, "talentscout:transcript", stateKeyOrDefault),
		trimmer: trimmer,
	}
}

func NewMemoryTranscriptStore(trimmer Trimmer) *TranscriptStore {
	return NewTranscriptStore(NewMemoryCache[[]*schema.Message](), trimmer)
}

func (s *TranscriptStore) Load(ctx context.Context) ([]*schema.Message, error) {
	transcript, ok, err := s.store.Get(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return transcript, nil
}

func (s *TranscriptStore) Clear(ctx context.Context) error {
	return s.store.Del(ctx)
}

func (s *TranscriptStore) Append(ctx context.Context, msgs ...*schema.Message) ([]*schema.Message, error) {
	transcript, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	transcript = appendTranscript(transcript, msgs...)
	if s.trimmer != nil {
		transcript = s.trimmer.Trim(transcript)
	}
	if err := s.store.Set(ctx, transcript); err != nil {
		return nil, err
	}
	return transcript, nil
}

func appendTranscript(transcript []*schema.Message, msgs ...*schema.Message) []*schema.Message {
	out := make([]*schema.Message, 0, len(transcript)+len(msgs))
	for _, m := range transcript {
		if m != nil {
			out = append(out, m)
		}
	}
	for _, msg := range msgs {
		if msg == nil {
			continue
		}
		if len(out) > 0 {
			last := out[len(out)-1]
			if last.Role == msg.Role && last.Content == msg.Content {
				continue
			}
		}
		out = append(out, msg)
	}
	return out
}

var _ TranscriptReadWriter = (*TranscriptStore)(nil)
