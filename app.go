// Package talentscout assembles the interview flow, its stores and the
// ADK agent from a single Config.
package talentscout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/redis/go-redis/v9"
	"github.com/tbxark/talentscout/agent"
	"github.com/tbxark/talentscout/command"
	"github.com/tbxark/talentscout/record"
)

const (
	QuestionSourceStatic = "static"
	QuestionSourceLLM    = "llm"

	// ExitMatchLLM asks the chat model whether the answer is an exit
	// request and falls back to substring matching when it fails.
	ExitMatchLLM = "llm"
)

type OpenAIConfig struct {
	APIKey  string `mapstructure:"api_key" json:"api_key"`
	BaseURL string `mapstructure:"base_url" json:"base_url"`
	Model   string `mapstructure:"model" json:"model"`
}

type Config struct {
	RecordsPath    string        `mapstructure:"records_path" json:"records_path"`
	LogFile        string        `mapstructure:"log_file" json:"log_file"`
	LogLevel       string        `mapstructure:"log_level" json:"log_level"`
	ExitMatch      string        `mapstructure:"exit_match" json:"exit_match"`
	SessionTTL     time.Duration `mapstructure:"session_ttl" json:"session_ttl"`
	TranscriptSize int           `mapstructure:"transcript_size" json:"transcript_size"`
	RedisAddr      string        `mapstructure:"redis_addr" json:"redis_addr"`
	QuestionSource string        `mapstructure:"question_source" json:"question_source"`
	OpenAI         OpenAIConfig  `mapstructure:"openai" json:"openai"`
}

func DefaultConfig() Config {
	return Config{
		RecordsPath:    "candidates.json",
		LogLevel:       "info",
		ExitMatch:      string(command.MatchSubstring),
		SessionTTL:     2 * time.Hour,
		TranscriptSize: 100,
		QuestionSource: QuestionSourceStatic,
		OpenAI: OpenAIConfig{
			Model: "gpt-4o-mini",
		},
	}
}

func (c Config) Validate() error {
	if c.RecordsPath == "" {
		return errors.New("records_path is required")
	}
	switch c.ExitMatch {
	case string(command.MatchSubstring), string(command.MatchWholeWord), ExitMatchLLM:
	default:
		return fmt.Errorf("unknown exit_match %q", c.ExitMatch)
	}
	switch c.QuestionSource {
	case QuestionSourceStatic, QuestionSourceLLM:
	default:
		return fmt.Errorf("unknown question_source %q", c.QuestionSource)
	}
	if c.needsModel() && c.OpenAI.APIKey == "" {
		return errors.New("openai.api_key is required when a chat model is used")
	}
	return nil
}

func (c Config) needsModel() bool {
	return c.QuestionSource == QuestionSourceLLM || c.ExitMatch == ExitMatchLLM
}

// App holds everything a chat frontend needs.
type App struct {
	Config      Config
	Flow        *agent.InterviewFlow
	Agent       *agent.Agent
	Sessions    *agent.SessionStore
	Transcripts *agent.TranscriptStore
	Records     *record.FileStore

	redis redis.UniversalClient
}

type options struct {
	chatModel model.ToolCallingChatModel
	flowOpts  []agent.FlowOption
}

type Option func(*options)

// WithChatModel overrides the OpenAI model built from Config.
func WithChatModel(cm model.ToolCallingChatModel) Option {
	return func(o *options) {
		o.chatModel = cm
	}
}

func WithFlowOptions(opts ...agent.FlowOption) Option {
	return func(o *options) {
		o.flowOpts = append(o.flowOpts, opts...)
	}
}

func New(ctx context.Context, cfg Config, opts ...Option) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	o := options{}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	records, err := record.NewFileStore(cfg.RecordsPath)
	if err != nil {
		return nil, err
	}

	cm := o.chatModel
	if cm == nil && cfg.needsModel() {
		cm, err = NewChatModel(ctx, cfg.OpenAI)
		if err != nil {
			return nil, err
		}
	}

	flowOpts := make([]agent.FlowOption, 0, len(o.flowOpts)+2)
	parser, err := newCommandParser(cfg, cm)
	if err != nil {
		return nil, err
	}
	flowOpts = append(flowOpts, agent.WithCommandParser(parser))
	flowOpts = append(flowOpts, o.flowOpts...)
	var flow *agent.InterviewFlow
	if cfg.QuestionSource == QuestionSourceLLM {
		flow, err = agent.NewToolBasedInterviewFlow(cm, records, flowOpts...)
		if err != nil {
			return nil, err
		}
	} else {
		flow = agent.NewInterviewFlow(records, flowOpts...)
	}

	app := &App{
		Config:  cfg,
		Flow:    flow,
		Records: records,
	}
	var sessionCache agent.Cache[*agent.Session]
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("connect redis %s: %w", cfg.RedisAddr, err)
		}
		app.redis = client
		sessionCache = agent.NewRedisCache[*agent.Session](client, cfg.SessionTTL)
		slog.Info("sessions stored in redis", "addr", cfg.RedisAddr, "ttl", cfg.SessionTTL)
	} else {
		sessionCache = agent.NewExpiringCache[*agent.Session](cfg.SessionTTL)
	}
	app.Sessions = agent.NewSessionStore(sessionCache)
	app.Transcripts = agent.NewTranscriptStore(
		agent.NewExpiringCache[[]*schema.Message](cfg.SessionTTL),
		agent.LastNTrimmer{N: cfg.TranscriptSize},
	)
	app.Agent = agent.NewAgent(
		"TalentScout",
		"A hiring assistant that collects a candidate profile and asks technical screening questions",
		flow,
		app.Sessions,
		app.Transcripts,
	)
	return app, nil
}

func (a *App) Close() error {
	if a.redis != nil {
		return a.redis.Close()
	}
	return nil
}

func NewChatModel(ctx context.Context, conf OpenAIConfig) (*openai.ChatModel, error) {
	cm, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		APIKey:  conf.APIKey,
		Model:   conf.Model,
		BaseURL: conf.BaseURL,
	})
	if err != nil {
		return nil, fmt.Errorf("create chat model: %w", err)
	}
	return cm, nil
}

func newCommandParser(cfg Config, cm model.ToolCallingChatModel) (command.Parser, error) {
	switch cfg.ExitMatch {
	case ExitMatchLLM:
		llm, err := command.NewToolBasedCommandParser(cm)
		if err != nil {
			return nil, fmt.Errorf("failed to create tool-based command parser: %w", err)
		}
		return command.NewFailbackCommandParser(llm, command.NewLocalCommandParser()), nil
	case string(command.MatchWholeWord):
		return command.NewLocalCommandParser().WithMode(command.MatchWholeWord), nil
	default:
		return command.NewLocalCommandParser(), nil
	}
}
