// Package watch monitors a policy document inbox directory. Files dropped
// into the inbox are parsed and their contents exposed as policy data for
// tasks that carry none of their own.
package watch

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/ShryukGrandhi/urban/internal/capability"
)

// Inbox watches a directory of policy documents and keeps their parsed
// forms in memory. It satisfies the orchestrator's policy source.
type Inbox struct {
	dir    string
	parser capability.DocumentParser
	logger *log.Logger

	mu   sync.RWMutex
	docs map[string]*capability.Document

	watcher *fsnotify.Watcher
	done    chan struct{}
}

// NewInbox creates the inbox over dir, parsing any documents already
// present and then watching for changes. The directory is created when
// missing.
func NewInbox(dir string, parser capability.DocumentParser) (*Inbox, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating inbox directory: %w", err)
	}

	in := &Inbox{
		dir:    dir,
		parser: parser,
		logger: log.Default(),
		docs:   make(map[string]*capability.Document),
		done:   make(chan struct{}),
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading inbox directory: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		in.ingest(filepath.Join(dir, entry.Name()))
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		// Continue without live updates; the startup scan still applies.
		in.logger.Printf("[watch] watcher unavailable, inbox is static: %v", err)
		return in, nil
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		in.logger.Printf("[watch] cannot watch %s, inbox is static: %v", dir, err)
		return in, nil
	}
	in.watcher = watcher

	go in.watch()
	return in, nil
}

func (in *Inbox) watch() {
	for {
		select {
		case <-in.done:
			return
		case event, ok := <-in.watcher.Events:
			if !ok {
				return
			}
			switch {
			case event.Op&(fsnotify.Create|fsnotify.Write) != 0:
				in.ingest(event.Name)
			case event.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
				in.forget(event.Name)
			}
		case <-in.watcher.Errors:
			// Keep watching
		}
	}
}

// ingest parses one file and records its document. Unparseable files are
// skipped, never fatal: a half-written file gets another chance on the
// write event that completes it.
func (in *Inbox) ingest(path string) {
	name := filepath.Base(path)
	if strings.HasPrefix(name, ".") {
		return
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return
	}

	doc, err := in.parser.Parse(name, raw)
	if err != nil {
		in.logger.Printf("[watch] skipping %s: %v", name, err)
		return
	}

	in.mu.Lock()
	in.docs[name] = doc
	in.mu.Unlock()
	in.logger.Printf("[watch] ingested policy document %s (%d sections, %d metrics)", name, len(doc.Sections), len(doc.Metrics))
}

func (in *Inbox) forget(path string) {
	name := filepath.Base(path)

	in.mu.Lock()
	_, had := in.docs[name]
	delete(in.docs, name)
	in.mu.Unlock()

	if had {
		in.logger.Printf("[watch] removed policy document %s", name)
	}
}

// PolicyData returns the parsed documents shaped as task policy input,
// keyed by file name. Nil when the inbox is empty so tasks without policy
// documents carry no policy section at all.
func (in *Inbox) PolicyData() map[string]any {
	in.mu.RLock()
	defer in.mu.RUnlock()

	if len(in.docs) == 0 {
		return nil
	}
	out := make(map[string]any, len(in.docs))
	for name, doc := range in.docs {
		out[name] = map[string]any{
			"full_text": doc.FullText,
			"sections":  doc.Sections,
			"metrics":   doc.Metrics,
		}
	}
	return out
}

// Documents returns the current document count.
func (in *Inbox) Documents() int {
	in.mu.RLock()
	defer in.mu.RUnlock()
	return len(in.docs)
}

// Close stops watching. The last ingested state remains readable.
func (in *Inbox) Close() {
	close(in.done)
	if in.watcher != nil {
		in.watcher.Close()
	}
}
