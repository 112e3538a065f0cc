// Command docqa answers questions about uploaded documents.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/docqa/internal/adapters/driven/ai"
	"github.com/custodia-labs/docqa/internal/adapters/driven/config/file"
	"github.com/custodia-labs/docqa/internal/adapters/driven/secrets/keyring"
	"github.com/custodia-labs/docqa/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/docqa/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/docqa/internal/adapters/driven/vector/flat"
	"github.com/custodia-labs/docqa/internal/adapters/driving/cli"
	"github.com/custodia-labs/docqa/internal/connectors/filesystem"
	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/core/services"
	"github.com/custodia-labs/docqa/internal/logger"
	"github.com/custodia-labs/docqa/internal/normalisers"
	"github.com/custodia-labs/docqa/internal/postprocessors/chunker"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// A missing .env is normal.
	_ = godotenv.Load()

	if err := cli.Execute(ctx, version, bootstrap); err != nil {
		stop()
		os.Exit(1)
	}
}

// bootstrap wires the driven adapters into the core services.
func bootstrap(ctx context.Context, home string) (*cli.Services, error) {
	home, err := resolveHome(home)
	if err != nil {
		return nil, err
	}

	configStore, err := file.NewConfigStore(home)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	prompts, err := file.NewPromptStore(filepath.Join(home, "prompts"))
	if err != nil {
		return nil, fmt.Errorf("opening prompts: %w", err)
	}

	settingsService := services.NewSettingsService(configStore, ai.NewConfigValidator(), keyring.NewStore(keyring.DefaultService))
	settings, err := settingsService.Get()
	if err != nil {
		return nil, fmt.Errorf("reading settings: %w", err)
	}

	store, closeStore, err := openStore(settings.Storage, filepath.Join(home, "data"))
	if err != nil {
		return nil, err
	}

	splitter, err := chunker.FromSettings(settings.Chunking)
	if err != nil {
		_ = closeStore()
		return nil, fmt.Errorf("chunking settings: %w", err)
	}

	// Commands that never call a provider (document list, settings) must
	// still work before one is configured.
	var embedder driven.EmbeddingService
	opts := []services.OrchestratorOption{
		services.WithPromptStore(prompts),
		services.WithRetrievalSettings(settings.Retrieval),
	}
	aiServices, err := ai.Initialise(*settings)
	if err != nil {
		logger.Warn("AI services unavailable: %v", err)
	} else {
		embedder = aiServices.EmbeddingService
		opts = append(opts, services.WithLLMService(aiServices.LLMService))
	}

	index := flat.New()
	orchestrator := services.NewRetrievalOrchestrator(splitter, embedder, index, store, opts...)
	if n, err := orchestrator.Restore(ctx); err != nil {
		logger.Warn("Restoring index: %v", err)
	} else {
		logger.Debug("Restored %d documents", n)
	}

	documentService := services.NewDocumentService(store, index, orchestrator,
		services.WithWorkers(settings.Ingest.Workers))
	importService := services.NewImportService(normalisers.NewDefaultRegistry(), documentService,
		func(dir string, recursive bool) driven.Connector {
			return filesystem.New(dir, filesystem.WithRecursive(recursive))
		})

	return &cli.Services{
		Document: documentService,
		Query:    orchestrator,
		Settings: settingsService,
		Import:   importService,
		Close: func() error {
			if aiServices != nil {
				aiServices.Close()
			}
			return closeStore()
		},
	}, nil
}

// resolveHome picks the state directory: --home, then DOCQA_HOME, then ~/.docqa.
func resolveHome(home string) (string, error) {
	if home == "" {
		home = os.Getenv("DOCQA_HOME")
	}
	if home == "" {
		return file.DefaultDir()
	}
	return home, nil
}

func openStore(backend domain.StorageBackend, dataDir string) (driven.DocumentStore, func() error, error) {
	switch backend {
	case domain.StorageMemory:
		return memory.NewDocumentStore(), func() error { return nil }, nil
	case domain.StorageSQLite, "":
		store, err := sqlite.NewStore(dataDir)
		if err != nil {
			return nil, nil, fmt.Errorf("opening store: %w", err)
		}
		return store.DocumentStore(), store.Close, nil
	default:
		return nil, nil, errors.New("unknown storage backend: " + string(backend))
	}
}
