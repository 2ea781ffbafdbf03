package command

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/tbxark/talentscout/structured"
)

const (
	parseCommandToolName        = "parse_command_intent"
	parseCommandToolDescription = "Analyze user input and determine whether the user wants to end the interview: exit, none."
)

type parseCommandInput struct {
	Intent Command `json:"intent" jsonschema:"required,enum=exit,enum=none,description=The user's command intent"`
}

// ToolBasedCommandParser asks a chat model whether the answer is a request
// to leave. It reads the question together with the answer, so an answer
// like "I used exit codes" is not treated as leaving.
type ToolBasedCommandParser struct {
	chain *structured.Chain[*Request, parseCommandInput]
}

func NewToolBasedCommandParser(chatModel model.ToolCallingChatModel) (*ToolBasedCommandParser, error) {
	chain, err := structured.NewChain[*Request, parseCommandInput](
		chatModel,
		buildParseCommandPrompt,
		parseCommandToolName,
		parseCommandToolDescription,
	)
	if err != nil {
		return nil, err
	}
	return &ToolBasedCommandParser{chain: chain}, nil
}

func (p *ToolBasedCommandParser) ParseCommand(ctx context.Context, req *Request) (Command, error) {
	result, err := p.chain.Invoke(ctx, req)
	if err != nil {
		return None, err
	}
	switch result.Intent {
	case Exit, None:
		return result.Intent, nil
	case "":
		return None, fmt.Errorf("empty intent returned by %s", parseCommandToolName)
	default:
		return None, fmt.Errorf("unknown intent %q returned by %s", result.Intent, parseCommandToolName)
	}
}

func buildParseCommandPrompt(ctx context.Context, req *Request) ([]*schema.Message, error) {
	systemPrompt := fmt.Sprintf(`You are an assistant for a hiring screening chatbot.

Analyze the latest exchange between the assistant and the candidate and decide whether the candidate wants to end the conversation.

IMPORTANT: Always combine the assistant's question with the candidate's answer. An answer that merely mentions words like "exit" or "quit" while answering the question is not a request to leave.

Choose one intent:
- exit: the candidate explicitly wants to stop, leave, or says goodbye.
- none: anything else, including answers to the question.

Call the '%s' tool with the result.`, parseCommandToolName)

	user := fmt.Sprintf("## Assistant Question:\n%s\n\n## User Answer:\n%s", req.Question, req.Answer)
	return []*schema.Message{
		schema.SystemMessage(systemPrompt),
		schema.UserMessage(user),
	}, nil
}
