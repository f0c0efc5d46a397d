package app

import (
	"context"
	"fmt"
	"log"

	"github.com/antoniostano/taskpal/internal/config"
	"github.com/antoniostano/taskpal/internal/dialog"
	"github.com/antoniostano/taskpal/internal/history"
	"github.com/antoniostano/taskpal/internal/httpapi"
	"github.com/antoniostano/taskpal/internal/nlu"
	"github.com/antoniostano/taskpal/internal/observability"
	"github.com/antoniostano/taskpal/internal/session"
	"github.com/antoniostano/taskpal/internal/speech"
	"github.com/antoniostano/taskpal/internal/taskapi"
	"github.com/antoniostano/taskpal/internal/telegram"
)

type BuildResult struct {
	Config   config.Config
	API      *httpapi.Server
	Sessions *session.Store
	Engine   *dialog.Engine
	Poller   *telegram.Poller
	Metrics  *observability.Metrics

	// Cleanup should be called on shutdown to release external resources.
	Cleanup func() error
}

func Build(ctx context.Context, cfg config.Config) (*BuildResult, error) {
	metrics := observability.NewMetrics(cfg.MetricsNamespace)

	turnLog, err := history.NewStore(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("history store init failed: %w", err)
	}
	if cfg.HistoryEnabled() {
		log.Printf("conversation history: postgres")
	} else {
		log.Printf("conversation history: in-memory")
	}

	var transcriber speech.Transcriber
	if cfg.VoiceEnabled() {
		transcriber = speech.NewAssemblyAITranscriber(cfg.AssemblyAIAPIKey)
		log.Printf("voice transcription: assemblyai")
	} else {
		log.Printf("voice transcription: disabled (no ASSEMBLYAI_API_KEY)")
	}

	tasksClient := taskapi.NewClient(cfg.TasksAPIBaseURL, cfg.ExternalCallTimeout)
	analyzer := nlu.NewClient(cfg.GeminiBaseURL, cfg.GeminiAPIKey, cfg.GeminiModel, cfg.ExternalCallTimeout)

	sessions := session.NewStore()
	engine := dialog.NewEngine(
		sessions,
		tasksClient,
		analyzer,
		tasksClient,
		transcriber,
		turnLog,
		metrics,
		cfg.FuzzyMatchThreshold,
	)

	botClient := telegram.NewClient(cfg.TelegramAPIBaseURL, cfg.TelegramBotToken, cfg.TelegramPollTimeout)
	poller := telegram.NewPoller(botClient, engine, sessions, cfg.ExternalCallTimeout)

	return &BuildResult{
		Config:   cfg,
		API:      httpapi.New(cfg),
		Sessions: sessions,
		Engine:   engine,
		Poller:   poller,
		Metrics:  metrics,
		Cleanup:  turnLog.Close,
	}, nil
}
