package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tbxark/talentscout"
	"gopkg.in/natefinch/lumberjack.v2"
)

const envPrefix = "TALENTSCOUT"

func newRootCmd() *cobra.Command {
	v := viper.New()
	var cfgFile string

	root := &cobra.Command{
		Use:           "talentscout",
		Short:         "TalentScout hiring assistant",
		Long:          `TalentScout collects a candidate profile over chat, asks technical screening questions for the candidate's tech stack and stores the results in a local JSON file.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(v, cfgFile)
		},
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (yaml or json)")
	root.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
	root.PersistentFlags().String("records", "", "path of the candidate records file")
	_ = v.BindPFlag("log_level", root.PersistentFlags().Lookup("log-level"))
	_ = v.BindPFlag("records_path", root.PersistentFlags().Lookup("records"))

	root.AddCommand(newChatCmd(v), newRecordsCmd(v))
	return root
}

func setDefaults(v *viper.Viper) {
	def := talentscout.DefaultConfig()
	v.SetDefault("records_path", def.RecordsPath)
	v.SetDefault("log_file", def.LogFile)
	v.SetDefault("log_level", def.LogLevel)
	v.SetDefault("exit_match", def.ExitMatch)
	v.SetDefault("session_ttl", def.SessionTTL)
	v.SetDefault("transcript_size", def.TranscriptSize)
	v.SetDefault("redis_addr", def.RedisAddr)
	v.SetDefault("question_source", def.QuestionSource)
	v.SetDefault("openai.api_key", def.OpenAI.APIKey)
	v.SetDefault("openai.base_url", def.OpenAI.BaseURL)
	v.SetDefault("openai.model", def.OpenAI.Model)
}

func initConfig(v *viper.Viper, cfgFile string) error {
	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config %s: %w", cfgFile, err)
		}
	}

	cfg, err := loadConfig(v)
	if err != nil {
		return err
	}
	slog.SetDefault(newLogger(cfg))
	if used := v.ConfigFileUsed(); used != "" {
		slog.Info("using config file", "file", used)
	}
	return nil
}

func loadConfig(v *viper.Viper) (talentscout.Config, error) {
	var cfg talentscout.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

func newLogger(cfg talentscout.Config) *slog.Logger {
	var w io.Writer = os.Stderr
	if cfg.LogFile != "" {
		w = &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    10,
			MaxBackups: 5,
			MaxAge:     30,
			Compress:   true,
		}
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: parseLevel(cfg.LogLevel)}))
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
