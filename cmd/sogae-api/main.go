package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"google.golang.org/genai"

	httpadapter "github.com/sogaelab/sogae-coach/internal/adapters/http"
	"github.com/sogaelab/sogae-coach/internal/adapters/llm"
	"github.com/sogaelab/sogae-coach/internal/adapters/speech"
	"github.com/sogaelab/sogae-coach/internal/app/practice"
	"github.com/sogaelab/sogae-coach/internal/config"
	"github.com/sogaelab/sogae-coach/internal/domain"
	"github.com/sogaelab/sogae-coach/internal/observability"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		observability.Logger().Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	observability.Init(cfg.LogLevel)
	log := observability.Logger()

	var (
		completer   domain.ChatCompleter
		transcriber domain.Transcriber
		synthesizer domain.Synthesizer
	)

	if cfg.UseMockLLM {
		log.Info("using mock collaborators")
		completer = llm.NewMockLLM()
		transcriber = &speech.MockTranscriber{}
		synthesizer = &speech.MockSynthesizer{}
	} else {
		client, err := newGenaiClient(ctx, cfg)
		if err != nil {
			log.Error("failed to initialize genai client", "error", err)
			os.Exit(1)
		}
		log.Info("genai client initialized", "backend", string(cfg.Backend), "model", cfg.ChatModel)

		completer = llm.NewGeminiClient(client, cfg.ChatModel)
		sp := speech.NewGeminiSpeech(client, cfg.ChatModel, cfg.TTSModel)
		transcriber = sp
		synthesizer = sp
	}

	svc := practice.NewService(completer, transcriber, synthesizer, practice.Config{
		PersonaInstruction:  llm.PersonaInstruction,
		FeedbackInstruction: llm.FeedbackInstruction,
		Voice:               cfg.Voice,
		Language:            cfg.STTLanguage,
	})

	handler := httpadapter.NewServer(svc, cfg.AllowedOrigin)

	srv := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     handler,
		ReadTimeout: 30 * time.Second,
		// No write timeout: turns wait on the model and websocket
		// connections stay open.
		WriteTimeout: 0,
	}

	go func() {
		log.Info("sogae-coach API listening", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown failed", "error", err)
	}
}

func newGenaiClient(ctx context.Context, cfg *config.Config) (*genai.Client, error) {
	if cfg.Backend == config.BackendVertex {
		return genai.NewClient(ctx, &genai.ClientConfig{
			Project:  cfg.GCPProjectID,
			Location: cfg.GCPLocation,
			Backend:  genai.BackendVertexAI,
		})
	}
	return genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
}
