// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/poiesic/indexit/ai"
	"github.com/poiesic/indexit/ai/openai"
	"github.com/poiesic/indexit/core"
	"github.com/poiesic/indexit/ingestion"
	"github.com/poiesic/indexit/storage/badger"
	"github.com/poiesic/indexit/vector"
)

func main() {
	app := &cli.App{
		Name:  "indexit",
		Usage: "Flatten and vector-index knowledge object graphs",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "ingest",
				Usage:     "Ingest JSON document files into the index",
				ArgsUsage: "FILE [FILE...]",
				Action:    ingestCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "embedding-host",
						Usage: "Embedding service host URL",
						Value: "http://localhost:11434/v1",
					},
					&cli.StringFlag{
						Name:     "embedding-model",
						Usage:    "Embedding model name",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of objects to embed in each batch",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry attempts for failed embedding calls",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 1 * time.Second,
					},
				},
			},
			{
				Name:      "search",
				Usage:     "Search a vector index by text query",
				ArgsUsage: "QUERY",
				Action:    searchCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "embedding-host",
						Usage: "Embedding service host URL",
						Value: "http://localhost:11434/v1",
					},
					&cli.StringFlag{
						Name:     "embedding-model",
						Usage:    "Embedding model name",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "type",
						Usage:    "Type name of the index to search",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "field",
						Usage:    "Field name of the index to search",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of results",
						Value: 10,
					},
					&cli.Float64Flag{
						Name:  "min-similarity",
						Usage: "Minimum cosine similarity for a match",
						Value: 0.5,
					},
				},
			},
			{
				Name:   "indexes",
				Usage:  "List the vector indexes in a database",
				Action: indexesCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func ingestCommand(c *cli.Context) error {
	ctx := context.Background()

	if c.NArg() == 0 {
		return fmt.Errorf("at least one document file is required")
	}
	if c.Int("batch-size") <= 0 {
		return fmt.Errorf("batch-size must be greater than 0")
	}
	if c.Int("max-retries") <= 0 {
		return fmt.Errorf("max-retries must be greater than 0")
	}

	embedder, err := newEmbedder(c)
	if err != nil {
		return err
	}

	backend, err := badger.OpenBackend(c.String("db"), false)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer backend.Close()

	objects, err := badger.NewObjectRepository(backend)
	if err != nil {
		return fmt.Errorf("failed to create repository: %w", err)
	}
	defer objects.Close()

	vectors, err := badger.NewVectorStore(backend, embedder,
		badger.WithBatchSize(c.Int("batch-size")),
		badger.WithMaxRetries(c.Int("max-retries")),
		badger.WithRetryDelay(c.Duration("retry-delay")),
	)
	if err != nil {
		return fmt.Errorf("failed to create vector store: %w", err)
	}
	defer vectors.Close()

	pipeline, err := ingestion.NewPipeline(objects, vectors)
	if err != nil {
		return fmt.Errorf("failed to create pipeline: %w", err)
	}

	var total int
	for _, path := range c.Args().Slice() {
		roots, err := loadDocumentFile(path)
		if err != nil {
			return err
		}

		flattened, err := pipeline.Ingest(ctx, roots...)
		if err != nil {
			return fmt.Errorf("ingesting %s: %w", path, err)
		}

		fmt.Fprintf(os.Stderr, "%s: %d documents, %d objects\n", path, len(roots), len(flattened))
		total += len(flattened)
	}

	fmt.Fprintf(os.Stderr, "Ingested %d objects\n", total)
	return nil
}

func searchCommand(c *cli.Context) error {
	ctx := context.Background()

	if c.NArg() != 1 {
		return fmt.Errorf("exactly one query argument is required")
	}
	query := c.Args().First()

	embedder, err := newEmbedder(c)
	if err != nil {
		return err
	}

	backend, err := badger.OpenBackend(c.String("db"), false)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer backend.Close()

	vectors, err := badger.NewVectorStore(backend, embedder)
	if err != nil {
		return fmt.Errorf("failed to create vector store: %w", err)
	}
	defer vectors.Close()

	queryVector, err := embedder.EmbedText(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to embed query: %w", err)
	}
	queryVector = vector.NormalizeVector(queryVector)

	matches, err := vectors.FindSimilar(ctx, c.String("type"), c.String("field"),
		queryVector, float32(c.Float64("min-similarity")), c.Int("limit"))
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if len(matches) == 0 {
		fmt.Println("No matches")
		return nil
	}

	for _, m := range matches {
		fmt.Printf("%.4f  %s.%s  %d  %s\n", m.Score, m.TypeName, m.FieldName, m.ObjectId, m.Text)
	}
	return nil
}

func indexesCommand(c *cli.Context) error {
	ctx := context.Background()

	backend, err := badger.OpenBackend(c.String("db"), false)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer backend.Close()

	// The vector store needs an embedder; listing never calls it, but the
	// constructor requires one, so a throwaway config suffices here.
	embedder, err := openai.NewEmbedder(ai.DefaultConfig())
	if err != nil {
		return fmt.Errorf("failed to create embedder: %w", err)
	}

	vectors, err := badger.NewVectorStore(backend, embedder)
	if err != nil {
		return fmt.Errorf("failed to create vector store: %w", err)
	}
	defer vectors.Close()

	indexes, err := vectors.ListIndexes(ctx)
	if err != nil {
		return fmt.Errorf("failed to list indexes: %w", err)
	}

	if len(indexes) == 0 {
		fmt.Println("No indexes")
		return nil
	}

	for _, idx := range indexes {
		fmt.Printf("%s.%s  created %s\n", idx.TypeName, idx.FieldName,
			idx.CreatedAt.Format(time.RFC3339))
	}
	return nil
}

func newEmbedder(c *cli.Context) (ai.Embedder, error) {
	aiConfig := ai.NewConfig(
		ai.WithEmbeddingHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
	)
	if err := aiConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid AI configuration: %w", err)
	}

	embedder, err := openai.NewEmbedder(aiConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}
	return embedder, nil
}

func loadDocumentFile(path string) ([]*core.KnowledgeObject, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	roots, err := ingestion.LoadDocuments(f)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return roots, nil
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	// Map string to slog.Level
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	// Configure slog with the specified level
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
