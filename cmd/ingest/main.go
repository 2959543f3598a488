package main

import (
	"context"
	"flag"
	"log"
	"os"
	"path/filepath"
	"strings"

	"chat-agent-be/internal/config"
	"chat-agent-be/internal/entity"
	"chat-agent-be/internal/repository/contract"
	"chat-agent-be/internal/repository/implementation"
	"chat-agent-be/pkg/database"
	"chat-agent-be/pkg/embedding"
	"chat-agent-be/pkg/embedding/jina"
	"chat-agent-be/pkg/utils"
)

const (
	chunkSize    = 1200
	chunkOverlap = 150
)

// ingest reads markdown knowledge files and rebuilds the vector index for
// each namespace. The namespace is the file name without extension, so
// knowledge/menu.md becomes the "menu" namespace.
func main() {
	dir := flag.String("dir", "knowledge", "directory of markdown knowledge files")
	flag.Parse()

	cfg := config.Load()

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Fatalf("Error: Failed to connect to database: %v", err)
	}
	repo := implementation.NewKnowledgeEmbeddingRepository(db)

	var embedder embedding.EmbeddingProvider
	switch cfg.Ai.EmbeddingProvider {
	case "ollama":
		embedder = embedding.NewOllamaProvider(cfg.Ai.OllamaBaseURL, cfg.Ai.OllamaModel)
	case "jina":
		embedder = jina.NewJinaProvider(cfg.Keys.Jina)
	default:
		embedder = embedding.NewGeminiProvider(cfg.Keys.GoogleGemini)
	}

	entries, err := os.ReadDir(*dir)
	if err != nil {
		log.Fatalf("Error: Failed to read knowledge directory: %v", err)
	}

	ctx := context.Background()
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}
		namespace := strings.TrimSuffix(entry.Name(), ".md")
		path := filepath.Join(*dir, entry.Name())

		if err := ingestFile(ctx, repo, embedder, namespace, path); err != nil {
			log.Fatalf("Error: Ingest failed for %s: %v", path, err)
		}
	}

	log.Println("✅ Success: Knowledge base ingested.")
}

func ingestFile(
	ctx context.Context,
	repo contract.KnowledgeEmbeddingRepository,
	embedder embedding.EmbeddingProvider,
	namespace, path string,
) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	// Rebuild the namespace from scratch so removed sections disappear.
	if err := repo.DeleteByNamespace(ctx, namespace); err != nil {
		return err
	}

	total := 0
	for _, section := range utils.SplitSections(string(raw)) {
		for i, chunkText := range utils.SplitText(section.Body, chunkSize, chunkOverlap) {
			emb, err := embedder.Generate(chunkText, embedding.TaskRetrievalDocument)
			if err != nil {
				return err
			}

			chunk := &entity.KnowledgeChunk{
				Namespace:  namespace,
				SectionId:  section.Id,
				Title:      section.Title,
				Document:   chunkText,
				ChunkIndex: i,
			}
			if err := repo.Create(ctx, chunk, emb.Embedding.Values); err != nil {
				return err
			}
			total++
		}
	}

	log.Printf("Ingested %s: %d chunks into namespace %q", path, total, namespace)
	return nil
}
