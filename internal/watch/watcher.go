// Package watch reports ref changes of a repository as they happen.
//
// Refs are watched with fsnotify on the git directory and every directory
// below refs/. Bursts of events are debounced into a single rescan, and an
// optional gocron job rescans periodically to catch changes the kernel
// did not report (network filesystems, overflowed queues).
package watch

import (
	"context"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	ferrors "github.com/NicolasDP/git/internal/foundation/errors"
	"github.com/NicolasDP/git/internal/logfields"
	"github.com/NicolasDP/git/internal/repository"
)

// Handler receives each non-empty batch of changes.
type Handler func(ctx context.Context, changes []Change)

// Options configures a Watcher.
type Options struct {
	Debounce time.Duration
	// Rescan enables a periodic full rescan when positive.
	Rescan   time.Duration
	OnChange Handler
}

// Watcher follows the refs of one repository.
type Watcher struct {
	repo     *repository.Repository
	opts     Options
	fsw      *fsnotify.Watcher
	sched    *scheduler
	mu       sync.Mutex
	last     Snapshot
	trigger  chan struct{}
	watching map[string]bool
}

// New creates a watcher for repo. Run starts it.
func New(repo *repository.Repository, opts Options) (*Watcher, error) {
	if opts.OnChange == nil {
		opts.OnChange = func(context.Context, []Change) {}
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryRuntime, "create file watcher").Build()
	}
	return &Watcher{
		repo:     repo,
		opts:     opts,
		fsw:      fsw,
		trigger:  make(chan struct{}, 1),
		watching: map[string]bool{},
	}, nil
}

// Run watches until ctx is cancelled. The initial state is recorded
// without being reported.
func (w *Watcher) Run(ctx context.Context) error {
	defer func() { _ = w.fsw.Close() }()

	snap, err := Take(w.repo)
	if err != nil {
		return err
	}
	w.mu.Lock()
	w.last = snap
	w.mu.Unlock()

	if err := w.addTree(w.repo.Dir(), false); err != nil {
		return err
	}
	if err := w.addTree(w.repo.RefsDir(), true); err != nil {
		return err
	}

	if w.opts.Rescan > 0 {
		w.sched, err = newScheduler()
		if err != nil {
			return err
		}
		if err := w.sched.every("ref-rescan", w.opts.Rescan, w.Trigger); err != nil {
			_ = w.sched.stop()
			return err
		}
		w.sched.start()
		defer func() { _ = w.sched.stop() }()
	}

	slog.Info("Watching refs",
		logfields.Repository(w.repo.Dir()),
		logfields.Count(len(snap)),
		slog.Duration("debounce", w.opts.Debounce))

	go w.eventLoop(ctx)
	w.scanLoop(ctx)
	return nil
}

// Trigger requests a debounced rescan.
func (w *Watcher) Trigger() {
	select {
	case w.trigger <- struct{}{}:
	default:
	}
}

// Scan compares the repository with the last snapshot, reports any
// changes and returns them.
func (w *Watcher) Scan(ctx context.Context) ([]Change, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	snap, err := Take(w.repo)
	if err != nil {
		return nil, err
	}
	changes := Diff(w.last, snap)
	w.last = snap
	if len(changes) > 0 {
		for _, c := range changes {
			slog.InfoContext(ctx, "Ref changed",
				logfields.Ref(c.Ref),
				slog.String("change", string(c.Kind)),
				logfields.Hash(c.New.String()))
		}
		w.opts.OnChange(ctx, changes)
	}
	return changes, nil
}

func (w *Watcher) eventLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if event.Op&fsnotify.Create != 0 && strings.HasPrefix(event.Name, w.repo.RefsDir()) {
				// New ref directories (refs/heads/feature/...) need their own watch.
				if err := w.addTree(event.Name, true); err != nil {
					slog.Debug("Could not watch new path", logfields.Path(event.Name), logfields.Error(err))
				}
			}
			if relevant(w.repo.Dir(), event.Name) {
				slog.Debug("Ref event", logfields.Path(event.Name), slog.String("op", event.Op.String()))
				w.Trigger()
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			slog.Error("Ref watcher error", logfields.Error(err))
			w.Trigger()
		}
	}
}

func (w *Watcher) scanLoop(ctx context.Context) {
	var timer *time.Timer
	fire := make(chan struct{}, 1)
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return
		case <-w.trigger:
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(w.opts.Debounce, func() {
				select {
				case fire <- struct{}{}:
				default:
				}
			})
		case <-fire:
			if _, err := w.Scan(ctx); err != nil {
				slog.Error("Ref rescan failed", logfields.Error(err))
			}
		}
	}
}

// addTree watches dir, and every directory below it when recursive.
func (w *Watcher) addTree(dir string, recursive bool) error {
	add := func(path string) error {
		if w.watching[path] {
			return nil
		}
		if err := w.fsw.Add(path); err != nil {
			return ferrors.WrapError(err, ferrors.CategoryFileSystem, "watch directory").
				WithContext("path", path).Build()
		}
		w.watching[path] = true
		return nil
	}
	if !recursive {
		return add(dir)
	}
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		return add(path)
	})
}

// relevant reports whether a change to path can move a ref.
func relevant(gitDir, path string) bool {
	if strings.HasSuffix(path, ".lock") {
		return false
	}
	rel, err := filepath.Rel(gitDir, path)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	switch rel {
	case "HEAD", "packed-refs":
		return true
	}
	return strings.HasPrefix(rel, "refs/")
}
