package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/scribelight/minutes"
	"github.com/scribelight/minutes/ai"
	"github.com/scribelight/minutes/ai/openai"
	"github.com/scribelight/minutes/core"
	"github.com/scribelight/minutes/inbox"
	"github.com/scribelight/minutes/pipeline"
	"github.com/scribelight/minutes/reembed"
	"github.com/scribelight/minutes/server"
	"github.com/scribelight/minutes/storage/badger"
)

// openSystem builds a System from the common --db and AI flags.
func openSystem(c *cli.Context, opts ...minutes.SystemOption) (*minutes.System, error) {
	aiConfig := ai.NewConfig(
		ai.WithEmbeddingHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
		ai.WithChatHost(c.String("chat-host")),
		ai.WithChatModel(c.String("chat-model")),
		ai.WithAPIKey(c.String("api-key")),
	)
	if err := aiConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid AI configuration: %w", err)
	}

	opts = append([]minutes.SystemOption{minutes.WithAIConfig(aiConfig)}, opts...)
	sys, err := minutes.Open(c.String("db"), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to open system: %w", err)
	}
	return sys, nil
}

func serveCommand(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var sysOpts []minutes.SystemOption
	if key := c.String("fireflies-api-key"); key != "" {
		sysOpts = append(sysOpts, minutes.WithFireflies(key))
	}

	sys, err := openSystem(c, sysOpts...)
	if err != nil {
		return err
	}
	defer sys.Close()

	p, err := sys.NewPipeline()
	if err != nil {
		return fmt.Errorf("failed to build pipeline: %w", err)
	}
	defer p.Release()

	srv, err := sys.NewServer(p, server.WithAddr(c.String("addr")))
	if err != nil {
		return fmt.Errorf("failed to build server: %w", err)
	}

	go p.RunPoller(ctx, c.Duration("poll-interval"))

	if dir := c.String("inbox-dir"); dir != "" {
		watcher, err := inbox.New(dir, p)
		if err != nil {
			return fmt.Errorf("failed to build inbox watcher: %w", err)
		}
		go func() {
			if err := watcher.Run(ctx); err != nil && ctx.Err() == nil {
				fmt.Fprintf(os.Stderr, "inbox watcher stopped: %v\n", err)
			}
		}()
	}

	return srv.ListenAndServe(ctx)
}

func ingestCommand(c *cli.Context) error {
	if c.NArg() == 0 {
		return cli.Exit("at least one transcript file is required", 1)
	}

	ctx := context.Background()

	sys, err := openSystem(c)
	if err != nil {
		return err
	}
	defer sys.Close()

	// Run each transcript through every stage before moving on, so the
	// command exits with all work done.
	p, err := sys.NewPipeline(pipeline.WithAsyncKickoff(false))
	if err != nil {
		return fmt.Errorf("failed to build pipeline: %w", err)
	}
	defer p.Release()

	for _, path := range c.Args().Slice() {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}

		result, err := p.IngestFile(ctx, path, string(data))
		if err != nil {
			return fmt.Errorf("failed to ingest %s: %w", path, err)
		}
		if result.Duplicate {
			fmt.Printf("%s: duplicate of document %s\n", path, result.DocumentID)
			continue
		}

		if err := p.ProcessDocument(ctx, result.SourceID); err != nil {
			return fmt.Errorf("failed to process %s: %w", path, err)
		}
		fmt.Printf("%s: document %s (source %s) done\n", path, result.DocumentID, result.SourceID)
	}

	return nil
}

func backfillCommand(c *cli.Context) error {
	ctx := context.Background()

	sys, err := openSystem(c)
	if err != nil {
		return err
	}
	defer sys.Close()

	p, err := sys.NewPipeline(pipeline.WithAsyncKickoff(false))
	if err != nil {
		return fmt.Errorf("failed to build pipeline: %w", err)
	}
	defer p.Release()

	var (
		objects    = sys.ObjectStore()
		prefix     = c.String("prefix")
		limit      = c.Int("limit")
		dryRun     = c.Bool("dry-run")
		startAfter string
		scanned    int
		ingested   int
		duplicate  int
		failed     int
	)
	if limit <= 0 {
		limit = 1000
	}

	for scanned < limit {
		pageSize := min(100, limit-scanned)
		paths, err := objects.List(ctx, prefix, pageSize, startAfter)
		if err != nil {
			return fmt.Errorf("failed to list blobs: %w", err)
		}
		if len(paths) == 0 {
			break
		}

		for _, path := range paths {
			scanned++
			startAfter = path

			if dryRun {
				fmt.Printf("%s: would ingest\n", path)
				continue
			}

			data, err := objects.Get(ctx, path)
			if err != nil {
				failed++
				fmt.Printf("%s: read failed: %v\n", path, err)
				continue
			}

			result, err := p.IngestFile(ctx, path, string(data))
			if err != nil {
				failed++
				fmt.Printf("%s: ingest failed: %v\n", path, err)
				continue
			}
			if result.Duplicate {
				duplicate++
				continue
			}
			ingested++
			fmt.Printf("%s: document %s\n", path, result.DocumentID)
		}
	}

	fmt.Printf("scanned %d, ingested %d, duplicate %d, failed %d\n",
		scanned, ingested, duplicate, failed)
	return nil
}

func statusCommand(c *cli.Context) error {
	ctx := context.Background()

	stores, err := badger.NewStores(c.String("db"))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer stores.Close()

	if c.NArg() == 0 {
		counts, err := stores.Ledger.CountByStage(ctx)
		if err != nil {
			return fmt.Errorf("failed to count jobs: %w", err)
		}
		for _, stage := range append(core.ForwardStages, core.StageError) {
			if n := counts[stage]; n > 0 {
				fmt.Printf("%-14s %d\n", stage, n)
			}
		}
		return nil
	}

	job, err := stores.Ledger.Get(ctx, c.Args().First())
	if err != nil {
		return fmt.Errorf("failed to look up job: %w", err)
	}

	fmt.Printf("source:     %s\n", job.SourceID)
	fmt.Printf("document:   %s\n", job.DocumentID)
	fmt.Printf("stage:      %s\n", job.Stage)
	fmt.Printf("attempts:   %d\n", job.AttemptCount)
	if job.ErrorMessage != "" {
		fmt.Printf("last error: %s\n", job.ErrorMessage)
	}
	if !job.LastAttemptAt.IsZero() {
		fmt.Printf("last tried: %s\n", job.LastAttemptAt.Format("2006-01-02 15:04:05 MST"))
	}
	return nil
}

func resetErrorsCommand(c *cli.Context) error {
	ctx := context.Background()

	target := core.Stage(c.String("stage"))
	if err := core.ValidateStage(target); err != nil {
		return err
	}
	if target == core.StageError {
		return cli.Exit("cannot reset errored jobs to the error stage", 1)
	}

	stores, err := badger.NewStores(c.String("db"))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer stores.Close()

	moved, err := stores.Ledger.ResetErrors(ctx, target)
	if err != nil {
		return fmt.Errorf("failed to reset errors: %w", err)
	}
	fmt.Printf("reset %d jobs to %s\n", moved, target)
	return nil
}

func searchCommand(c *cli.Context) error {
	if c.NArg() == 0 {
		return cli.Exit("a search query is required", 1)
	}
	query := c.Args().First()

	ctx := context.Background()

	sys, err := openSystem(c)
	if err != nil {
		return err
	}
	defer sys.Close()

	searcher, err := sys.NewSearcher()
	if err != nil {
		return fmt.Errorf("failed to build searcher: %w", err)
	}

	hits, err := searcher.Search(ctx, query, c.Int("max-hits"))
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}
	if len(hits) == 0 {
		fmt.Println("no results")
		return nil
	}

	for i, hit := range hits {
		fmt.Printf("%d. [%.2f] %s (%s)\n", i+1, hit.Score, hit.DocumentTitle, hit.StartedAt)
		fmt.Printf("   %s\n", hit.Chunk.Content)
	}
	return nil
}

func reembedCommand(c *cli.Context) error {
	ctx := context.Background()

	stores, err := badger.NewStores(c.String("db"))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer stores.Close()

	// Chat settings are irrelevant here; only the embedder is used.
	aiConfig := ai.NewConfig(
		ai.WithEmbeddingHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
	)
	if err := aiConfig.Validate(); err != nil {
		return fmt.Errorf("invalid AI configuration: %w", err)
	}

	embedder, err := openai.NewEmbedder(aiConfig)
	if err != nil {
		return fmt.Errorf("failed to create embedder: %w", err)
	}

	config := &reembed.Config{
		BatchSize:      c.Int("batch-size"),
		ReportInterval: c.Int("report-interval"),
		MaxRetries:     c.Int("max-retries"),
		RetryDelay:     c.Duration("retry-delay"),
	}
	if err := config.Validate(); err != nil {
		return err
	}

	r := reembed.NewReembedder(stores.Documents, stores.Segments, stores.Chunks,
		stores.Items, embedder, config, os.Stderr)

	fmt.Fprintf(os.Stderr, "Database: %s\n", c.String("db"))
	fmt.Fprintf(os.Stderr, "Embedding host: %s\n", c.String("embedding-host"))
	fmt.Fprintf(os.Stderr, "Embedding model: %s\n", c.String("embedding-model"))

	if err := r.Run(ctx); err != nil {
		return fmt.Errorf("reembedding failed: %w", err)
	}
	return nil
}
