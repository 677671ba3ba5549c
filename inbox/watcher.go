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


// Package inbox watches a drop directory and feeds markdown files into the
// ingestion pipeline. It is the local-filesystem analog of the storage
// webhook: drop a transcript export into the directory and it gets
// ingested. Re-dropping a file is harmless; ingestion dedup treats it as a
// duplicate.
package inbox

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/scribelight/minutes/pipeline"
)

// DefaultSettle is how long a file must stay quiet after its last write
// before it is ingested. Exports are often written in several chunks.
const DefaultSettle = 500 * time.Millisecond

var (
	// ErrDirRequired is returned when no drop directory is provided.
	ErrDirRequired = errors.New("drop directory required")

	// ErrIngesterRequired is returned when no ingester is provided.
	ErrIngesterRequired = errors.New("ingester required")
)

// Ingester is the slice of the pipeline the watcher needs.
// *pipeline.Pipeline satisfies it.
type Ingester interface {
	IngestFile(ctx context.Context, filename, markdown string) (*pipeline.IngestResult, error)
}

// Watcher ingests markdown files dropped into a directory.
type Watcher struct {
	dir      string
	ingester Ingester
	settle   time.Duration
	logger   *slog.Logger

	mu     sync.Mutex
	timers map[string]*time.Timer
}

// Option configures a Watcher.
type Option func(*Watcher) error

// WithSettle sets the per-file quiet period before ingestion.
// Default is DefaultSettle.
func WithSettle(d time.Duration) Option {
	return func(w *Watcher) error {
		if d > 0 {
			w.settle = d
		}
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(w *Watcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		w.logger = logger
		return nil
	}
}

// New creates a watcher over dir feeding ingester.
func New(dir string, ingester Ingester, opts ...Option) (*Watcher, error) {
	if dir == "" {
		return nil, ErrDirRequired
	}
	if ingester == nil {
		return nil, ErrIngesterRequired
	}

	w := &Watcher{
		dir:      dir,
		ingester: ingester,
		settle:   DefaultSettle,
		logger:   slog.Default().With("component", "inbox"),
		timers:   make(map[string]*time.Timer),
	}

	for _, opt := range opts {
		if err := opt(w); err != nil {
			return nil, err
		}
	}

	return w, nil
}

// Run sweeps files already present in the directory, then watches for new
// ones until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	if err := w.Sweep(ctx); err != nil {
		return err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fsw.Close()

	if err := fsw.Add(w.dir); err != nil {
		return err
	}
	w.logger.Info("watching drop directory", "dir", w.dir)

	for {
		select {
		case <-ctx.Done():
			w.cancelTimers()
			return nil
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			w.handleEvent(ctx, event)
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("watch error", "err", err)
		}
	}
}

// Sweep ingests every eligible file currently in the directory.
func (w *Watcher) Sweep(ctx context.Context) error {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(w.dir, entry.Name())
		if !eligible(path) {
			continue
		}
		w.ingest(ctx, path)
	}
	return nil
}

// handleEvent schedules ingestion for create and write events on eligible
// files. The per-file timer resets on every event, so a file is only read
// after it has settled.
func (w *Watcher) handleEvent(ctx context.Context, event fsnotify.Event) {
	if !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Write) {
		return
	}
	if !eligible(event.Name) {
		return
	}
	if info, err := os.Stat(event.Name); err != nil || info.IsDir() {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if timer, ok := w.timers[event.Name]; ok {
		timer.Stop()
	}
	path := event.Name
	w.timers[path] = time.AfterFunc(w.settle, func() {
		w.mu.Lock()
		delete(w.timers, path)
		w.mu.Unlock()
		w.ingest(ctx, path)
	})
}

func (w *Watcher) ingest(ctx context.Context, path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		w.logger.Error("failed to read dropped file", "path", path, "err", err)
		return
	}

	result, err := w.ingester.IngestFile(ctx, filepath.Base(path), string(data))
	if err != nil {
		w.logger.Error("failed to ingest dropped file", "path", path, "err", err)
		return
	}
	if result.Duplicate {
		w.logger.Debug("dropped file already ingested",
			"path", path, "source_id", result.SourceID)
		return
	}
	w.logger.Info("ingested dropped file",
		"path", path,
		"source_id", result.SourceID,
		"document_id", result.DocumentID)
}

func (w *Watcher) cancelTimers() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for path, timer := range w.timers {
		timer.Stop()
		delete(w.timers, path)
	}
}

// eligible reports whether path looks like a transcript drop: a visible
// markdown or text file.
func eligible(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") {
		return false
	}
	switch strings.ToLower(filepath.Ext(base)) {
	case ".md", ".markdown", ".txt":
		return true
	default:
		return false
	}
}
