package watch

import (
	"context"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// DefaultInterval is how often the watched paths are scanned.
const DefaultInterval = 200 * time.Millisecond

// Config configures a Watcher.
type Config struct {
	// Paths are the files and directories to watch. Directories are
	// walked recursively.
	Paths []string

	// Ext limits the watched files to one extension, such as ".rsx".
	// Empty watches every file.
	Ext string

	// Interval is the delay between scans.
	Interval time.Duration
}

// Watcher reports files that were created, modified or removed between
// two scans.
type Watcher struct {
	config Config

	mu      sync.Mutex
	modTime map[string]time.Time
}

// New creates a watcher. The current state of the paths is recorded
// immediately so the first Run only reports later changes.
func New(config Config) *Watcher {
	if config.Interval <= 0 {
		config.Interval = DefaultInterval
	}
	w := &Watcher{config: config}
	w.modTime = w.scan()
	return w
}

// Run scans the paths every interval and calls fn with the sorted list of
// changed files, until ctx is done. Scans without changes do not call fn.
func (w *Watcher) Run(ctx context.Context, fn func(changed []string)) error {
	ticker := time.NewTicker(w.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if changed := w.Poll(); len(changed) > 0 {
				fn(changed)
			}
		}
	}
}

// Poll scans once and returns the files that changed since the previous
// scan.
func (w *Watcher) Poll() []string {
	current := w.scan()

	w.mu.Lock()
	defer w.mu.Unlock()

	var changed []string
	for p, mod := range current {
		if last, ok := w.modTime[p]; !ok || !mod.Equal(last) {
			changed = append(changed, p)
		}
	}
	for p := range w.modTime {
		if _, ok := current[p]; !ok {
			changed = append(changed, p)
		}
	}
	w.modTime = current

	sort.Strings(changed)
	return changed
}

func (w *Watcher) scan() map[string]time.Time {
	files := make(map[string]time.Time)
	for _, root := range w.config.Paths {
		_ = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil
			}
			if d.IsDir() {
				if p != root && hidden(d.Name()) {
					return filepath.SkipDir
				}
				return nil
			}
			if hidden(d.Name()) || (w.config.Ext != "" && filepath.Ext(p) != w.config.Ext) {
				return nil
			}
			info, err := d.Info()
			if err != nil {
				return nil
			}
			files[p] = info.ModTime()
			return nil
		})
	}
	return files
}

// hidden skips dot files and editor backups.
func hidden(name string) bool {
	return strings.HasPrefix(name, ".") || strings.HasSuffix(name, "~")
}
