package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/acialhadi25/my-wuxia-journey-sub001/internal/config"
	"github.com/acialhadi25/my-wuxia-journey-sub001/internal/memory"
	"github.com/acialhadi25/my-wuxia-journey-sub001/internal/narrative"
	"github.com/acialhadi25/my-wuxia-journey-sub001/internal/repository"
	"github.com/acialhadi25/my-wuxia-journey-sub001/internal/story"
	"github.com/acialhadi25/my-wuxia-journey-sub001/internal/types"
)

func main() {
	cfg := config.Load()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Println("\nThe story rests here.")
		cancel()
		os.Exit(0)
	}()

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to open event store: %v", err)
	}
	defer closeStore()

	var embedder memory.Embedder
	if cfg.GoogleAPIKey != "" {
		genaiEmbedder, err := memory.NewGenAIEmbedder(ctx, cfg.GoogleAPIKey, cfg.EmbeddingModel)
		if err != nil {
			log.Fatalf("failed to create embedder: %v", err)
		}
		embedder = genaiEmbedder
	}

	generator, err := narrative.NewClient(cfg.LLMAPIKey, cfg.LLMBaseURL, cfg.LLMModel)
	if err != nil {
		log.Fatalf("failed to create narrative client: %v", err)
	}

	engine, err := story.NewEngine(story.Config{
		Store:               store,
		Embedder:            embedder,
		Generator:           generator,
		Hero:                story.Protagonist{ID: cfg.CharacterID, Name: cfg.CharacterName},
		MinChapterGap:       cfg.MinChapterGap,
		TopK:                cfg.TopK,
		SimilarityThreshold: cfg.SimilarityThreshold,
		HistoryLimit:        cfg.HistoryLimit,
	})
	if err != nil {
		log.Fatalf("failed to create story engine: %v", err)
	}

	fmt.Printf("Chapter %d. What does %s do?\n", engine.Chapter(), cfg.CharacterName)
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		action := strings.TrimSpace(scanner.Text())
		if action == "" {
			continue
		}
		if action == "/next" {
			fmt.Printf("Chapter %d begins.\n", engine.AdvanceChapter())
			continue
		}

		result, err := engine.PlayTurn(ctx, action)
		if err != nil {
			var typed *types.Error
			if errors.As(err, &typed) {
				switch typed.Kind {
				case types.KindRateLimited:
					fmt.Println("The storyteller pauses for breath. Try again shortly.")
				case types.KindQuotaExhausted:
					fmt.Println("The storyteller has no more ink today.")
				default:
					fmt.Printf("The storyteller falters: %v\n", err)
				}
				continue
			}
			log.Fatalf("turn failed: %v", err)
		}

		fmt.Println()
		fmt.Println(result.Narrative)
		fmt.Println()
	}
	if err := scanner.Err(); err != nil {
		log.Fatalf("failed to read input: %v", err)
	}
}

func openStore(ctx context.Context, cfg config.Config) (memory.EventStore, func(), error) {
	if cfg.DatabaseURL != "" {
		store, err := repository.NewStore(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return store.Events, store.Close, nil
	}

	store, err := repository.NewSQLiteStore(cfg.SavePath)
	if err != nil {
		return nil, nil, err
	}
	return store, func() { _ = store.Close() }, nil
}
