/*
Copyright © 2025 tieubaoca
*/
package cmd

import (
	"fmt"

	"github.com/tieubaoca/invoice-agent-be/config"
	"github.com/tieubaoca/invoice-agent-be/database"
	"github.com/tieubaoca/invoice-agent-be/repository"
	"github.com/tieubaoca/invoice-agent-be/service"
	"github.com/tieubaoca/invoice-agent-be/types"
)

// app bundles the wired service stack shared by the server and CLI commands.
type app struct {
	cfg       *config.Config
	vectorDB  database.VectorStore
	vendors   *service.VendorService
	agent     *service.AgentService
	extractor *service.ExtractService
	search    *service.SearchService
}

func buildApp(cfgPath string) (*app, error) {
	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	vectorDB, err := buildVectorStore(cfg)
	if err != nil {
		return nil, err
	}

	oracle, docExtractor, err := buildOracle(cfg)
	if err != nil {
		return nil, err
	}

	vendorRepo := repository.NewFileVendorRepo(cfg.VendorDBPath)
	vendors, err := service.NewVendorService(vendorRepo)
	if err != nil {
		return nil, fmt.Errorf("failed to load vendor store: %w", err)
	}

	chunker := service.NewChunkService(types.ChunkerConfig{
		ChunkSize: cfg.Chunker.ChunkSize,
		Overlap:   cfg.Chunker.Overlap,
	})
	selector := service.NewContextService(vectorDB, cfg.RetrievalTopK)
	parser := service.NewParserService(oracle, service.NewMergeService())
	agent := service.NewAgentService(chunker, vectorDB, selector, parser, vendors)

	var search *service.SearchService
	if cfg.Search.APIKey != "" {
		search = service.NewSearchService(cfg.Search.APIKey, cfg.Search.EngineID)
	}

	return &app{
		cfg:       cfg,
		vectorDB:  vectorDB,
		vendors:   vendors,
		agent:     agent,
		extractor: service.NewExtractService(docExtractor),
		search:    search,
	}, nil
}

func buildVectorStore(cfg *config.Config) (database.VectorStore, error) {
	switch cfg.VectorStore.Backend {
	case "chroma":
		store, err := database.NewChromaStore(cfg.VectorStore.Chroma)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to Chroma: %w", err)
		}
		return store, nil
	case "weaviate", "":
		store, err := database.NewWeaviateStore(cfg.VectorStore.Weaviate)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to Weaviate: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown vector store backend: %s", cfg.VectorStore.Backend)
	}
}

func buildOracle(cfg *config.Config) (service.Oracle, service.DocumentExtractor, error) {
	switch cfg.Oracle.Backend {
	case "openai":
		oracle := service.NewOpenAIService(cfg.Oracle.OpenAIBaseURL, cfg.Oracle.OpenAIAPIKey, cfg.Oracle.Model)
		return oracle, nil, nil
	case "gemini", "":
		gemini, err := service.NewGeminiService(cfg.Oracle.GeminiAPIKeys, cfg.Oracle.Model)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create Gemini service: %w", err)
		}
		return gemini, gemini, nil
	default:
		return nil, nil, fmt.Errorf("unknown oracle backend: %s", cfg.Oracle.Backend)
	}
}
