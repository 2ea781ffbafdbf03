package talentscout

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tbxark/talentscout/agent"
	"github.com/tbxark/talentscout/internal/fakemodel"
	"github.com/tbxark/talentscout/types"
)

func testConfig(t *testing.T) Config {
	t.Helper()
	cfg := DefaultConfig()
	cfg.RecordsPath = filepath.Join(t.TempDir(), "candidates.json")
	return cfg
}

func chat(t *testing.T, ctx context.Context, app *App, inputs ...string) string {
	t.Helper()
	var last string
	for _, in := range inputs {
		resp, err := app.Agent.Chat(ctx, in)
		require.NoError(t, err)
		last = resp.Message
	}
	return last
}

func TestConfig_Validate(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	bad := cfg
	bad.ExitMatch = "regex"
	assert.ErrorContains(t, bad.Validate(), "exit_match")

	bad = cfg
	bad.QuestionSource = "remote"
	assert.ErrorContains(t, bad.Validate(), "question_source")

	bad = cfg
	bad.QuestionSource = QuestionSourceLLM
	assert.ErrorContains(t, bad.Validate(), "api_key")

	bad = cfg
	bad.RecordsPath = ""
	assert.Error(t, bad.Validate())
}

func TestApp_StaticInterview(t *testing.T) {
	ctx := agent.WithStateKey(context.Background(), "cli")
	app, err := New(ctx, testConfig(t))
	require.NoError(t, err)
	defer app.Close()

	msg := chat(t, ctx, app, "hi", "Ada", "ada@x.com", "5551234567", "5", "Engineer", "Remote", "Python")
	assert.Contains(t, msg, "1/5")
	msg = chat(t, ctx, app, "a", "b", "c", "d", "e")
	assert.Contains(t, msg, "last question")

	records, err := app.Records.List(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "a*a@x.com", records[0].Email)
	assert.Equal(t, "Ada", records[0].FullName)
}

func TestApp_LLMQuestionSource(t *testing.T) {
	ctx := agent.WithStateKey(context.Background(), "llm")
	cfg := testConfig(t)
	cfg.QuestionSource = QuestionSourceLLM
	cfg.OpenAI.APIKey = "test"
	cm := &fakemodel.ChatModel{
		ToolName:  "generate_questions",
		Arguments: `{"questions":["Rust q1","Rust q2","Rust q3","Rust q4","(Optional) Coding task: Rust q5"]}`,
	}
	app, err := New(ctx, cfg, WithChatModel(cm))
	require.NoError(t, err)

	msg := chat(t, ctx, app, "hi", "Ada", "ada@x.com", "5551234567", "5", "Engineer", "Remote", "Rust")
	assert.Equal(t, "**Rust** (question 1/5): Rust q1", msg)

	cm.Err = errors.New("rate limited")
	require.NoError(t, app.Agent.Reset(ctx))
	msg = chat(t, ctx, app, "hi", "Ada", "ada@x.com", "5551234567", "5", "Engineer", "Remote", "Python")
	assert.Contains(t, msg, "lists and tuples")
}

func TestApp_LLMExitMatch(t *testing.T) {
	ctx := agent.WithStateKey(context.Background(), "intent")
	cfg := testConfig(t)
	cfg.ExitMatch = ExitMatchLLM
	cfg.OpenAI.APIKey = "test"
	cm := &fakemodel.ChatModel{ToolName: "parse_command_intent", Arguments: `{"intent":"none"}`}
	app, err := New(ctx, cfg, WithChatModel(cm))
	require.NoError(t, err)

	chat(t, ctx, app, "hi")
	chat(t, ctx, app, "Quitterie Exitman")
	s, err := app.Agent.Session(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Quitterie Exitman", s.Candidate.FullName)

	cm.Err = errors.New("offline")
	msg := chat(t, ctx, app, "exit")
	assert.Contains(t, msg, "Goodbye")
}

func TestApp_RedisSessions(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := agent.WithStateKey(context.Background(), "shared")
	cfg := testConfig(t)
	cfg.RedisAddr = mr.Addr()

	first, err := New(ctx, cfg)
	require.NoError(t, err)
	chat(t, ctx, first, "hi", "Ada")
	require.NoError(t, first.Close())

	second, err := New(ctx, cfg)
	require.NoError(t, err)
	defer second.Close()
	s, err := second.Agent.Session(ctx)
	require.NoError(t, err)
	assert.Equal(t, types.StateCollectingInfo, s.State)
	assert.Equal(t, "Ada", s.Candidate.FullName)

	cfg.RedisAddr = "127.0.0.1:1"
	_, err = New(ctx, cfg)
	assert.ErrorContains(t, err, "connect redis")
}
