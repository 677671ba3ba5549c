// Copyright 2026 Scribelight
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
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

func main() {
	// Missing .env is fine; flags and real env still apply.
	_ = godotenv.Load()

	app := &cli.App{
		Name:  "minutes",
		Usage: "Meeting transcript ingestion and semantic search",
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
				Name:   "serve",
				Usage:  "Run the HTTP server, batch poller, and optional inbox watcher",
				Action: serveCommand,
				Flags: append(aiFlags(),
					dbFlag(),
					&cli.StringFlag{
						Name:  "addr",
						Usage: "HTTP listen address",
						Value: ":8080",
					},
					&cli.StringFlag{
						Name:    "fireflies-api-key",
						Usage:   "Fireflies API key; enables provider polling and webhooks",
						EnvVars: []string{"FIREFLIES_API_KEY"},
					},
					&cli.StringFlag{
						Name:  "inbox-dir",
						Usage: "Directory to watch for dropped transcript files",
					},
					&cli.DurationFlag{
						Name:  "poll-interval",
						Usage: "Interval between batch polls over the pending stages",
						Value: 30 * time.Second,
					},
				),
			},
			{
				Name:      "ingest",
				Usage:     "Ingest markdown transcript files and run them to completion",
				ArgsUsage: "<file> [file...]",
				Action:    ingestCommand,
				Flags:     append(aiFlags(), dbFlag()),
			},
			{
				Name:   "backfill",
				Usage:  "Re-ingest raw transcript blobs from the object store",
				Action: backfillCommand,
				Flags: append(aiFlags(),
					dbFlag(),
					&cli.StringFlag{
						Name:  "prefix",
						Usage: "Only scan blob paths under this prefix",
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of blobs to scan",
						Value: 1000,
					},
					&cli.BoolFlag{
						Name:  "dry-run",
						Usage: "Report what would be ingested without ingesting",
					},
				),
			},
			{
				Name:      "status",
				Usage:     "Show job status for a source id, or stage counts with no argument",
				ArgsUsage: "[sourceId]",
				Action:    statusCommand,
				Flags:     []cli.Flag{dbFlag()},
			},
			{
				Name:   "reset-errors",
				Usage:  "Return errored jobs to a retryable stage",
				Action: resetErrorsCommand,
				Flags: []cli.Flag{
					dbFlag(),
					&cli.StringFlag{
						Name:  "stage",
						Usage: "Stage to return errored jobs to",
						Value: "raw_ingested",
					},
				},
			},
			{
				Name:      "search",
				Usage:     "Semantic search over embedded transcript chunks",
				ArgsUsage: "<query>",
				Action:    searchCommand,
				Flags: append(aiFlags(),
					dbFlag(),
					&cli.IntFlag{
						Name:  "max-hits",
						Usage: "Maximum number of results",
						Value: 10,
					},
				),
			},
			{
				Name:   "reembed",
				Usage:  "Reembed all stored chunks, segments, and items",
				Action: reembedCommand,
				Flags: []cli.Flag{
					dbFlag(),
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
						Usage: "Number of documents to process in each batch",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N documents",
						Value: 10,
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
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func dbFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     "db",
		Aliases:  []string{"d"},
		Usage:    "Path to BadgerDB database directory",
		Required: true,
	}
}

func aiFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "embedding-host",
			Usage: "Embedding service host URL",
			Value: "http://localhost:11434/v1",
		},
		&cli.StringFlag{
			Name:  "embedding-model",
			Usage: "Embedding model name",
			Value: "embeddinggemma",
		},
		&cli.StringFlag{
			Name:  "chat-host",
			Usage: "Chat-completion service host URL for segmentation and extraction",
			Value: "http://localhost:11434/v1",
		},
		&cli.StringFlag{
			Name:  "chat-model",
			Usage: "Chat model name for segmentation and extraction",
			Value: "qwen2.5:3b",
		},
		&cli.StringFlag{
			Name:    "api-key",
			Usage:   "API key for the embedding and chat hosts",
			EnvVars: []string{"OPENAI_API_KEY"},
			Value:   "none",
		},
	}
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
		return cli.Exit("invalid log level "+levelStr+": must be one of debug, info, warn, error", 1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
