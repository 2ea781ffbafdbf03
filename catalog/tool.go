package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/tbxark/talentscout/structured"
	"github.com/tbxark/talentscout/types"
)

const (
	generateQuestionsToolName        = "generate_questions"
	generateQuestionsToolDescription = "Generate technical interview questions for one technology."
)

// DefaultQuestionSystemPromptTemplate is the system prompt used by
// ToolBasedSource. Its single "%s" placeholder is the tool name.
const DefaultQuestionSystemPromptTemplate = `You are an expert technical interviewer screening job candidates.

Write interview questions for the technology given below, tailored to the candidate's experience and desired position.

Rules:
- Produce exactly the requested number of questions.
- Each question must mention the technology by name.
- Keep every question to one or two sentences.
- The last question must be an optional coding task and start with "(Optional) Coding task:".

Call the '%s' tool with the result.`

type generateQuestionsOutput struct {
	Questions []string `json:"questions" jsonschema:"required,description=Interview questions in the order they should be asked"`
}

// ToolBasedSource asks a chat model for questions. It is meant to sit in
// front of StaticSource inside a FailbackSource.
type ToolBasedSource struct {
	chain  *structured.Chain[*types.QuestionRequest, generateQuestionsOutput]
	schema string
}

func NewToolBasedSource(chatModel model.ToolCallingChatModel) (*ToolBasedSource, error) {
	systemPrompt := fmt.Sprintf(DefaultQuestionSystemPromptTemplate, generateQuestionsToolName)
	candidateSchema, err := types.CandidateSchema()
	if err != nil {
		return nil, err
	}
	chain, err := structured.NewChain[*types.QuestionRequest, generateQuestionsOutput](
		chatModel,
		buildQuestionPrompt(systemPrompt),
		generateQuestionsToolName,
		generateQuestionsToolDescription,
	)
	if err != nil {
		return nil, err
	}
	chain.WithValidator(validateQuestions)
	return &ToolBasedSource{chain: chain, schema: candidateSchema}, nil
}

func (s *ToolBasedSource) Questions(ctx context.Context, req *types.QuestionRequest) ([]string, error) {
	if strings.TrimSpace(req.Technology) == "" {
		return nil, errors.New("technology is empty")
	}
	r := *req
	if r.Count <= 0 {
		r.Count = QuestionCount
	}
	r.CandidateSchema = s.schema
	result, err := s.chain.Invoke(ctx, &r)
	if err != nil {
		return nil, fmt.Errorf("LLM call failed: %w", err)
	}
	if len(result.Questions) != r.Count {
		return nil, fmt.Errorf("expected %d questions, got %d", r.Count, len(result.Questions))
	}
	out := make([]string, len(result.Questions))
	for i, q := range result.Questions {
		out[i] = strings.TrimSpace(q)
	}
	return out, nil
}

func validateQuestions(out *generateQuestionsOutput) error {
	if len(out.Questions) == 0 {
		return errors.New("no questions returned")
	}
	for i, q := range out.Questions {
		if strings.TrimSpace(q) == "" {
			return fmt.Errorf("question %d is blank", i+1)
		}
	}
	return nil
}

func buildQuestionPrompt(systemPrompt string) structured.PromptBuilder[*types.QuestionRequest] {
	return func(ctx context.Context, req *types.QuestionRequest) ([]*schema.Message, error) {
		message, err := types.FormatQuestionRequest(req)
		if err != nil {
			return nil, fmt.Errorf("convert to prompt message failed: %w", err)
		}
		return []*schema.Message{
			schema.SystemMessage(systemPrompt),
			schema.UserMessage(message),
		}, nil
	}
}
