package audio

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"map-assistant/internal/domain"
)

var audioExtensions = []string{".wav", ".mp3", ".m4a", ".webm"}

// FileSource picks up audio files dropped into a directory. Each file is
// returned once and then renamed with a .processed suffix.
type FileSource struct {
	dir       string
	rescan    time.Duration
	processed map[string]bool
	mu        sync.Mutex
	watcher   *fsnotify.Watcher
}

func NewFileSource(dir string) *FileSource {
	return &FileSource{
		dir:       dir,
		rescan:    2 * time.Second,
		processed: make(map[string]bool),
	}
}

func (f *FileSource) Name() string {
	return "file"
}

func (f *FileSource) Start(_ context.Context) error {
	if err := os.MkdirAll(f.dir, 0o755); err != nil {
		return fmt.Errorf("creating audio dir: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	if err := watcher.Add(f.dir); err != nil {
		watcher.Close()
		return fmt.Errorf("watching %s: %w", f.dir, err)
	}

	f.mu.Lock()
	f.watcher = watcher
	f.mu.Unlock()
	return nil
}

func (f *FileSource) Stop() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.watcher == nil {
		return nil
	}
	err := f.watcher.Close()
	f.watcher = nil
	return err
}

func (f *FileSource) NextCommand(ctx context.Context) ([]byte, error) {
	f.mu.Lock()
	watcher := f.watcher
	f.mu.Unlock()
	if watcher == nil {
		return nil, fmt.Errorf("file source not started")
	}

	// The periodic rescan covers events dropped by the watcher.
	ticker := time.NewTicker(f.rescan)
	defer ticker.Stop()

	for {
		audio, err := f.checkForNewFile()
		if err != nil {
			return nil, err
		}
		if audio != nil {
			return audio, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		case _, ok := <-watcher.Events:
			if !ok {
				return nil, domain.ErrSourceClosed
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil, domain.ErrSourceClosed
			}
			return nil, fmt.Errorf("watching %s: %w", f.dir, err)
		}
	}
}

func (f *FileSource) checkForNewFile() ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	entries, err := os.ReadDir(f.dir)
	if err != nil {
		return nil, fmt.Errorf("reading dir: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !isAudioFile(entry.Name()) {
			continue
		}

		path := filepath.Join(f.dir, entry.Name())
		if f.processed[path] {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading file %s: %w", path, err)
		}

		f.processed[path] = true
		// A failed rename only means the file stays; processed already skips it.
		_ = os.Rename(path, path+".processed")

		return data, nil
	}

	return nil, nil
}

func isAudioFile(name string) bool {
	return slices.Contains(audioExtensions, strings.ToLower(filepath.Ext(name)))
}
