package testcases

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/cloudwego/eino/components/model"
	"github.com/tbxark/talentscout"
	"github.com/tbxark/talentscout/agent"
)

func loadConfig(path string) (*talentscout.OpenAIConfig, error) {
	file, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var conf talentscout.OpenAIConfig
	if err := sonic.Unmarshal(file, &conf); err != nil {
		return nil, err
	}
	return &conf, nil
}

// InitChatModel returns a live chat model or skips the test.
func InitChatModel(t *testing.T) model.ToolCallingChatModel {
	t.Helper()
	if os.Getenv("TALENTSCOUT_RUN_LIVE_TESTS") != "1" {
		t.Skip("set TALENTSCOUT_RUN_LIVE_TESTS=1 to run live LLM tests")
		return nil
	}
	conf, err := loadConfig("../config.json")
	if err != nil {
		t.Skipf("failed to load config: %v", err)
		return nil
	}
	if conf.APIKey == "" {
		t.Skip("config.json api_key is empty")
		return nil
	}
	chatModel, err := talentscout.NewChatModel(context.Background(), *conf)
	if err != nil {
		t.Fatalf("failed to init chat model: %v", err)
		return nil
	}
	return chatModel
}

// NewTestApp builds an app whose LLM-backed parts talk to the live model.
func NewTestApp(t *testing.T, questionSource, exitMatch string) *talentscout.App {
	t.Helper()
	chatModel := InitChatModel(t)
	cfg := talentscout.DefaultConfig()
	cfg.RecordsPath = filepath.Join(t.TempDir(), "candidates.json")
	cfg.QuestionSource = questionSource
	cfg.ExitMatch = exitMatch
	cfg.OpenAI.APIKey = "live"
	app, err := talentscout.New(context.Background(), cfg, talentscout.WithChatModel(chatModel))
	if err != nil {
		t.Fatalf("failed to create app: %v", err)
	}
	t.Cleanup(func() { _ = app.Close() })
	return app
}

func say(t *testing.T, ctx context.Context, app *talentscout.App, inputs ...string) *agent.Response {
	t.Helper()
	var resp *agent.Response
	for _, in := range inputs {
		var err error
		resp, err = app.Agent.Chat(ctx, in)
		if err != nil {
			t.Fatalf("turn %q failed: %v", in, err)
		}
		if resp.Metadata["error"] != "" {
			t.Fatalf("turn %q reported an error: %s", in, resp.Metadata["error"])
		}
	}
	return resp
}

var profile = []string{"hi", "Ada Lovelace", "ada@example.com", "+44 20 7946 0958", "7", "Backend Engineer", "London"}
