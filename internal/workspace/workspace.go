package workspace

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	ferrors "github.com/NicolasDP/git/internal/foundation/errors"
	"github.com/NicolasDP/git/internal/logfields"
)

// Manager owns one workspace directory.
type Manager struct {
	baseDir    string
	prefix     string
	dir        string
	persistent bool
	now        func() time.Time
}

// NewManager returns a manager creating <baseDir>/<prefix>-<timestamp>
// directories. An empty baseDir uses the system temp directory.
func NewManager(baseDir, prefix string) *Manager {
	if baseDir == "" {
		baseDir = os.TempDir()
	}
	if prefix == "" {
		prefix = "gitfs"
	}
	return &Manager{baseDir: baseDir, prefix: prefix, now: time.Now}
}

// NewPersistentManager returns a manager for a fixed directory that Cleanup
// leaves in place.
func NewPersistentManager(dir string) *Manager {
	return &Manager{dir: dir, persistent: true, now: time.Now}
}

// Create makes the workspace directory. Ephemeral names get a numeric
// suffix when the timestamp is already taken.
func (m *Manager) Create() error {
	if m.persistent {
		if err := os.MkdirAll(m.dir, 0o750); err != nil {
			return ferrors.WrapError(err, ferrors.CategoryFileSystem, "create persistent workspace").
				WithContext("path", m.dir).Build()
		}
		slog.Debug("Using persistent workspace", logfields.Path(m.dir))
		return nil
	}

	if err := os.MkdirAll(m.baseDir, 0o750); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "create workspace base").
			WithContext("path", m.baseDir).Build()
	}
	stamp := m.now().Format("20060102-150405")
	for i := 0; i < 100; i++ {
		name := fmt.Sprintf("%s-%s", m.prefix, stamp)
		if i > 0 {
			name = fmt.Sprintf("%s-%d", name, i)
		}
		dir := filepath.Join(m.baseDir, name)
		err := os.Mkdir(dir, 0o750)
		if os.IsExist(err) {
			continue
		}
		if err != nil {
			return ferrors.WrapError(err, ferrors.CategoryFileSystem, "create workspace").
				WithContext("path", dir).Build()
		}
		m.dir = dir
		slog.Debug("Created workspace", logfields.Path(dir))
		return nil
	}
	return ferrors.FileSystemError("no free workspace name").WithContext("base", m.baseDir).Build()
}

// Path returns the workspace directory, empty before Create.
func (m *Manager) Path() string { return m.dir }

// Persistent reports whether Cleanup keeps the directory.
func (m *Manager) Persistent() bool { return m.persistent }

// Cleanup removes an ephemeral workspace.
func (m *Manager) Cleanup() error {
	if m.dir == "" || m.persistent {
		return nil
	}
	if err := os.RemoveAll(m.dir); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "remove workspace").
			WithContext("path", m.dir).Build()
	}
	slog.Debug("Cleaned up workspace", logfields.Path(m.dir))
	m.dir = ""
	return nil
}

// Subdir creates and returns a directory inside the workspace.
func (m *Manager) Subdir(name string) (string, error) {
	if m.dir == "" {
		return "", ferrors.ValidationError("workspace not created").Build()
	}
	sub := filepath.Join(m.dir, name)
	if err := os.MkdirAll(sub, 0o750); err != nil {
		return "", ferrors.WrapError(err, ferrors.CategoryFileSystem, "create workspace subdirectory").
			WithContext("path", sub).Build()
	}
	return sub, nil
}
