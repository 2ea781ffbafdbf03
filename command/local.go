package command

import (
	"context"
	"strings"
	"unicode"
)

// MatchMode controls how exit keywords are located in the input.
type MatchMode string

const (
	// MatchSubstring fires when a keyword appears anywhere in the input,
	// so "I can't exit this role" counts as an exit.
	MatchSubstring MatchMode = "substring"
	// MatchWholeWord fires only when the keyword appears as whole words.
	MatchWholeWord MatchMode = "word"
)

// DefaultExitKeywords end the conversation from any state.
var DefaultExitKeywords = []string{"exit", "quit", "bye", "thank you", "thanks", "goodbye"}

type LocalCommandParser struct {
	ExitKeywords []string
	Mode         MatchMode
}

func NewLocalCommandParser() *LocalCommandParser {
	keywords := make([]string, len(DefaultExitKeywords))
	copy(keywords, DefaultExitKeywords)
	return &LocalCommandParser{
		ExitKeywords: keywords,
		Mode:         MatchSubstring,
	}
}

func (p *LocalCommandParser) WithMode(mode MatchMode) *LocalCommandParser {
	p.Mode = mode
	return p
}

func (p *LocalCommandParser) ParseCommand(ctx context.Context, req *Request) (Command, error) {
	if p.IsExit(req.Answer) {
		return Exit, nil
	}
	return None, nil
}

func (p *LocalCommandParser) IsExit(input string) bool {
	normalized := strings.ToLower(input)
	if p.Mode == MatchWholeWord {
		words := strings.Join(strings.FieldsFunc(normalized, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
		}), " ")
		padded := " " + words + " "
		for _, keyword := range p.ExitKeywords {
			if strings.Contains(padded, " "+strings.ToLower(keyword)+" ") {
				return true
			}
		}
		return false
	}
	for _, keyword := range p.ExitKeywords {
		if strings.Contains(normalized, strings.ToLower(keyword)) {
			return true
		}
	}
	return false
}

type FailbackCommandParser struct {
	parsers []Parser
}

func NewFailbackCommandParser(parsers ...Parser) *FailbackCommandParser {
	return &FailbackCommandParser{parsers: parsers}
}

func (p *FailbackCommandParser) ParseCommand(ctx context.Context, req *Request) (Command, error) {
	var lastErr error
	for _, parser := range p.parsers {
		cmd, err := parser.ParseCommand(ctx, req)
		if err == nil {
			return cmd, nil
		}
		lastErr = err
	}
	return None, lastErr
}
