package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/ashimXtimila/Aqore-AI-Hackathon/internal/agent"
	"github.com/ashimXtimila/Aqore-AI-Hackathon/internal/config"
	"github.com/ashimXtimila/Aqore-AI-Hackathon/internal/engine"
	"github.com/ashimXtimila/Aqore-AI-Hackathon/internal/ingestion"
	"github.com/ashimXtimila/Aqore-AI-Hackathon/internal/jobs"
	"github.com/ashimXtimila/Aqore-AI-Hackathon/internal/llm"
	"github.com/ashimXtimila/Aqore-AI-Hackathon/internal/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const appName = "screener"

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:           appName,
		Short:         "screener ranks resumes against a job posting with anonymized, bias-flagged scores",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is screener.yaml or screener.json in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	cobra.CheckErr(viper.BindPFlag("log.debug", rootCmd.PersistentFlags().Lookup("debug")))
	cobra.CheckErr(viper.BindPFlag("log.json", rootCmd.PersistentFlags().Lookup("json")))
}

// runtime holds everything a subcommand needs
type runtime struct {
	cfg    *config.Config
	logger *zap.Logger
	store  *jobs.Store
	files  *ingestion.FileHandler
	engine *engine.Engine
	agent  *agent.ScreeningAgent

	closers []func() error
}

// setup loads configuration from path and wires the screening stack
func setup(ctx context.Context, path string) (*runtime, error) {
	cfg, err := config.Load(viper.GetViper(), path)
	if err != nil {
		return nil, err
	}

	log, err := logger.New(cfg.Log.JSON, cfg.Log.Debug)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	rt := &runtime{cfg: cfg, logger: log}

	opts := []engine.Option{engine.WithLogger(log)}
	if cfg.Scoring.Provider == engine.ProviderVertex {
		client, err := llm.NewVertexAIClient(ctx, llm.Options{
			ProjectID: cfg.Google.Project,
			Location:  cfg.Google.Location,
			Model:     cfg.Google.Model,
		})
		if err != nil {
			return nil, err
		}
		rt.closers = append(rt.closers, client.Close)
		opts = append(opts, engine.WithGenerator(llm.WithRetry(client, log)))
		log.Info("using Vertex AI scoring", zap.String(logger.FieldProvider, client.ModelName()))
	}

	rt.engine, err = engine.New(cfg.Engine(), opts...)
	if err != nil {
		rt.Close()
		return nil, err
	}

	rt.store = jobs.NewStore(cfg.Store.JobsFile, log)
	rt.files = ingestion.NewFileHandler(cfg.Uploads.Dir, cfg.Uploads.MaxFiles, log)

	agentOpts := []agent.Option{agent.WithLogger(log)}
	if src := rt.gmailSource(ctx); src != nil {
		agentOpts = append(agentOpts, agent.WithGmail(src))
	}
	rt.agent = agent.New(rt.files, rt.engine, agentOpts...)

	return rt, nil
}

// gmailSource returns a Gmail handler when credentials and a token exist
func (rt *runtime) gmailSource(ctx context.Context) agent.AttachmentSource {
	oauthCfg, err := ingestion.LoadOAuthConfig(rt.cfg.Gmail.CredentialsPath)
	if err != nil {
		rt.logger.Debug("gmail intake disabled", zap.Error(err))
		return nil
	}
	h, err := ingestion.NewGmailHandler(ctx, oauthCfg, rt.cfg.Gmail.TokenPath, rt.files, rt.logger)
	if err != nil {
		if errors.Is(err, ingestion.ErrTokenMissing) {
			rt.logger.Info("gmail credentials found but not authorized, run `screener gmail auth`")
		} else {
			rt.logger.Warn("gmail intake disabled", zap.Error(err))
		}
		return nil
	}
	return h
}

// Close releases clients and flushes the logger
func (rt *runtime) Close() {
	for _, c := range rt.closers {
		if err := c(); err != nil {
			rt.logger.Warn("failed to close client", zap.Error(err))
		}
	}
	_ = rt.logger.Sync()
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
