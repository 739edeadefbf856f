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
	"bufio"
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/poiesic/recall"
	"github.com/poiesic/recall/ai"
	"github.com/poiesic/recall/config"
	"github.com/poiesic/recall/core"
	"github.com/poiesic/recall/source"
)

func main() {
	app := &cli.App{
		Name:  "recall",
		Usage: "Per-user document ingestion and grounded question answering",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setup,
		Commands: []*cli.Command{
			{
				Name:   "ingest",
				Usage:  "Ingest documents from files, URLs, or MongoDB into a new collection",
				Action: ingestCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "user",
						Aliases:  []string{"u"},
						Usage:    "User the collection belongs to",
						Required: true,
					},
					&cli.StringSliceFlag{
						Name:    "file",
						Aliases: []string{"f"},
						Usage:   "Path to a .txt, .md, .pdf, or .docx file (repeatable)",
					},
					&cli.StringSliceFlag{
						Name:  "url",
						Usage: "HTTP endpoint returning text or a JSON array (repeatable)",
					},
					&cli.StringFlag{
						Name:  "mongo-uri",
						Usage: "MongoDB connection URI",
					},
					&cli.StringFlag{
						Name:  "mongo-db",
						Usage: "MongoDB database name",
					},
					&cli.StringFlag{
						Name:  "mongo-collection",
						Usage: "MongoDB collection name",
					},
					&cli.StringFlag{
						Name:  "mongo-filter",
						Usage: "Extended JSON filter for MongoDB records",
					},
					&cli.StringFlag{
						Name:    "name",
						Aliases: []string{"n"},
						Usage:   "Collection name (generated when omitted)",
					},
				},
			},
			{
				Name:   "ask",
				Usage:  "Ask questions interactively against everything a user has ingested",
				Action: askCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "user",
						Aliases:  []string{"u"},
						Usage:    "User whose collections to answer from",
						Required: true,
					},
				},
			},
			{
				Name:   "collections",
				Usage:  "List ingested collections, per user or for everyone",
				Action: collectionsCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "user",
						Aliases: []string{"u"},
						Usage:   "Limit to one user",
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func setup(c *cli.Context) error {
	// Missing .env is fine, the environment may already be populated.
	_ = godotenv.Load()
	return setupLogger(c)
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

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

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
	return nil
}

func openEngine() (*recall.Engine, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	aiConfig := ai.NewConfig(
		ai.WithEmbeddingHost(cfg.EmbeddingHost),
		ai.WithChatHost(cfg.ChatHost),
		ai.WithEmbeddingModel(cfg.EmbeddingModel),
		ai.WithChatModel(cfg.ChatModel),
		ai.WithAPIToken(cfg.APIToken),
		ai.WithCallTimeout(cfg.CallTimeout),
	)
	if err := aiConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid AI configuration: %w", err)
	}

	return recall.Open(cfg.VectorDir(), cfg.RegistryDir(), recall.WithAIConfig(aiConfig))
}

func ingestCommand(c *cli.Context) error {
	var sources []source.Source
	for _, path := range c.StringSlice("file") {
		sources = append(sources, source.NewFile(path))
	}
	for _, url := range c.StringSlice("url") {
		sources = append(sources, source.NewEndpoint(url))
	}
	if uri := c.String("mongo-uri"); uri != "" {
		if c.String("mongo-db") == "" || c.String("mongo-collection") == "" {
			return fmt.Errorf("mongo-uri requires mongo-db and mongo-collection")
		}
		sources = append(sources, source.NewMongo(
			uri,
			c.String("mongo-db"),
			c.String("mongo-collection"),
			c.String("mongo-filter"),
		))
	}
	if len(sources) == 0 {
		return fmt.Errorf("at least one of --file, --url, or --mongo-uri is required")
	}

	engine, err := openEngine()
	if err != nil {
		return fmt.Errorf("failed to open engine: %w", err)
	}
	defer engine.Close()

	result, err := engine.IngestSources(context.Background(), c.String("user"), c.String("name"), sources...)
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}
	if result.Collection == "" {
		fmt.Println("Nothing to ingest: the sources produced no documents")
		return nil
	}

	fmt.Printf("Ingested %d segments into %s\n", len(result.IDs), result.Collection)
	return nil
}

func askCommand(c *cli.Context) error {
	engine, err := openEngine()
	if err != nil {
		return fmt.Errorf("failed to open engine: %w", err)
	}
	defer engine.Close()

	ctx := context.Background()
	userID := c.String("user")
	scanner := bufio.NewScanner(os.Stdin)
	var history []core.Turn

	fmt.Println("Ask away. Empty line or Ctrl-D to quit.")
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		question := strings.TrimSpace(scanner.Text())
		if question == "" {
			break
		}

		resp, err := engine.Query(ctx, userID, question, history, func(token string) {
			fmt.Print(token)
		})
		if err != nil {
			return fmt.Errorf("query failed: %w", err)
		}
		fmt.Println()
		history = resp.History
	}
	return scanner.Err()
}

func collectionsCommand(c *cli.Context) error {
	engine, err := openEngine()
	if err != nil {
		return fmt.Errorf("failed to open engine: %w", err)
	}
	defer engine.Close()

	ctx := context.Background()

	users := []string{c.String("user")}
	if users[0] == "" {
		users, err = engine.Users(ctx)
		if err != nil {
			return err
		}
	}

	for _, user := range users {
		collections, err := engine.Collections(ctx, user)
		if err != nil {
			return err
		}
		fmt.Printf("%s (%d collections)\n", user, len(collections))
		for _, collection := range collections {
			fmt.Printf("  %s\n", collection)
		}
	}
	return nil
}
