package catalog

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tbxark/talentscout/types"
)

// Source produces the question list for one technology.
type Source interface {
	Questions(ctx context.Context, req *types.QuestionRequest) ([]string, error)
}

type StaticSource struct{}

func NewStaticSource() *StaticSource {
	return &StaticSource{}
}

func (StaticSource) Questions(ctx context.Context, req *types.QuestionRequest) ([]string, error) {
	return QuestionsFor(req.Technology), nil
}

type FailbackSource struct {
	sources []Source
}

func NewFailbackSource(sources ...Source) *FailbackSource {
	return &FailbackSource{sources: sources}
}

func (s *FailbackSource) Questions(ctx context.Context, req *types.QuestionRequest) ([]string, error) {
	var lastErr error
	for _, src := range s.sources {
		qs, err := src.Questions(ctx, req)
		if err == nil {
			return qs, nil
		}
		slog.Debug("question source failed, trying next", "technology", req.Technology, "err", err)
		lastErr = err
	}
	if lastErr == nil {
		return nil, fmt.Errorf("no question source configured")
	}
	return nil, fmt.Errorf("all question sources failed: %w", lastErr)
}

// Build asks src for every technology in order.
func Build(ctx context.Context, src Source, candidate types.Candidate, technologies []string) ([]types.TechQuestionSet, error) {
	sets := make([]types.TechQuestionSet, 0, len(technologies))
	for _, tech := range technologies {
		qs, err := src.Questions(ctx, &types.QuestionRequest{
			Technology: tech,
			Count:      QuestionCount,
			Candidate:  candidate,
		})
		if err != nil {
			return nil, fmt.Errorf("questions for %q: %w", tech, err)
		}
		if len(qs) == 0 {
			return nil, fmt.Errorf("questions for %q: empty list", tech)
		}
		sets = append(sets, types.TechQuestionSet{Technology: tech, Questions: qs})
	}
	return sets, nil
}
