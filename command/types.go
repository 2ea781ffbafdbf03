package command

import "context"

type Command string

const (
	Exit Command = "exit"
	None Command = "none"
)

// Request carries the latest exchange so parsers can judge the user's input
// against the question it answers.
type Request struct {
	Question string
	Answer   string
}

type Parser interface {
	ParseCommand(ctx context.Context, req *Request) (Command, error)
}
