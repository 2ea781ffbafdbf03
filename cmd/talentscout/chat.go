package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/cloudwego/eino/adk"
	"github.com/cloudwego/eino/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tbxark/talentscout"
	"github.com/tbxark/talentscout/agent"
	"github.com/tbxark/talentscout/types"
)

const chatHelp = `Commands: /reset starts over, /save <file> writes a checkpoint, /quit leaves without saving.`

func newChatCmd(v *viper.Viper) *cobra.Command {
	var (
		sessionKey string
		resume     string
		profile    string
	)
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive screening interview",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(v)
			if err != nil {
				return err
			}
			ctx := agent.WithStateKey(cmd.Context(), sessionKey)
			app, err := talentscout.New(ctx, cfg)
			if err != nil {
				return err
			}
			defer app.Close()

			if resume != "" {
				if err := restoreSession(ctx, app, resume); err != nil {
					return err
				}
			}
			if profile != "" {
				if err := prefillProfile(ctx, app, profile); err != nil {
					return err
				}
			}
			return runChat(ctx, app, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&sessionKey, "session", "cli", "session key used to store the conversation")
	cmd.Flags().StringVar(&resume, "resume", "", "checkpoint file to resume from")
	cmd.Flags().StringVar(&profile, "profile", "", "JSON file with known candidate details to skip their prompts")
	return cmd
}

func restoreSession(ctx context.Context, app *talentscout.App, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read checkpoint: %w", err)
	}
	session, err := agent.RestoreCheckpoint(data)
	if err != nil {
		return err
	}
	return app.Sessions.Write(ctx, session)
}

func prefillProfile(ctx context.Context, app *talentscout.App, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read profile: %w", err)
	}
	var initial types.Candidate
	if err := sonic.Unmarshal(data, &initial); err != nil {
		return fmt.Errorf("decode profile %s: %w", path, err)
	}
	if _, err := app.Agent.Prefill(ctx, initial); err != nil {
		return fmt.Errorf("prefill profile: %w", err)
	}
	return nil
}

func runChat(ctx context.Context, app *talentscout.App, in io.Reader, out io.Writer) error {
	runner := adk.NewRunner(ctx, adk.RunnerConfig{Agent: app.Agent})
	fmt.Fprintln(out, chatHelp)

	session, err := app.Agent.Session(ctx)
	if err != nil {
		return err
	}
	if session.State == types.StateGreeting {
		if err := turn(ctx, runner, out, ""); err != nil {
			return err
		}
	} else if session.LatestQuestion != "" {
		fmt.Fprintf(out, "\nAssistant: %s\n", session.LatestQuestion)
	}

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "\nYou: ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		input := strings.TrimSpace(scanner.Text())

		switch {
		case input == "/quit":
			return nil
		case input == "/reset":
			if err := app.Agent.Reset(ctx); err != nil {
				return err
			}
			if err := turn(ctx, runner, out, ""); err != nil {
				return err
			}
			continue
		case strings.HasPrefix(input, "/save"):
			path := strings.TrimSpace(strings.TrimPrefix(input, "/save"))
			if err := saveCheckpoint(ctx, app, path); err != nil {
				fmt.Fprintf(out, "could not save checkpoint: %v\n", err)
			} else {
				fmt.Fprintf(out, "checkpoint written to %s\n", path)
			}
			continue
		}

		if err := turn(ctx, runner, out, input); err != nil {
			return err
		}
	}
}

func turn(ctx context.Context, runner *adk.Runner, out io.Writer, input string) error {
	iter := runner.Run(ctx, []adk.Message{schema.UserMessage(input)})
	for {
		event, ok := iter.Next()
		if !ok {
			return nil
		}
		if event.Err != nil {
			return event.Err
		}
		if event.Output == nil || event.Output.MessageOutput == nil {
			continue
		}
		msg, err := event.Output.MessageOutput.GetMessage()
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "\nAssistant: %s\n", msg.Content)
	}
}

func saveCheckpoint(ctx context.Context, app *talentscout.App, path string) error {
	if path == "" {
		return errors.New("usage: /save <file>")
	}
	session, err := app.Agent.Session(ctx)
	if err != nil {
		return err
	}
	data, err := agent.CreateCheckpoint(session)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
