package policy

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// Registry holds published policy sets by version. Published sets are
// immutable snapshots shared read-only across concurrent cycles; the registry
// only ever adds versions, it never replaces one in place.
type Registry struct {
	mu     sync.RWMutex
	sets   map[string]*Set
	logger *slog.Logger
}

// NewRegistry creates an empty policy registry.
func NewRegistry() *Registry {
	return &Registry{
		sets:   make(map[string]*Set),
		logger: slog.Default().With("component", "policy.registry"),
	}
}

// Publish adds a sealed set under its version. Republishing the same version
// with identical content is a no-op; republishing with different content is
// rejected, because versions are immutable.
func (r *Registry) Publish(set *Set) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.sets[set.Version]; ok {
		if existing.RefHash == set.RefHash {
			return nil
		}
		return fmt.Errorf("%w: version %q", ErrVersionConflict, set.Version)
	}

	r.sets[set.Version] = set
	r.logger.Info("policy set published",
		"set_id", set.SetID,
		"version", set.Version,
		"rules", len(set.Rules),
		"default", string(set.Default),
		"ref_hash", set.RefHash,
	)
	return nil
}

// Get returns the immutable set published under version.
func (r *Registry) Get(version string) (*Set, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	set, ok := r.sets[version]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrVersionNotFound, version)
	}
	return set, nil
}

// Versions returns all published versions in ascending order.
func (r *Registry) Versions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	versions := make([]string, 0, len(r.sets))
	for v := range r.sets {
		versions = append(versions, v)
	}
	sort.Strings(versions)
	return versions
}

// LoadDir loads every policy set file in dir (non-recursive, .yaml/.yml) and
// publishes it. A file that fails to load aborts the whole load so a broken
// directory is caught at startup, not at decision time.
func (r *Registry) LoadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return &LoadError{Source: dir, Message: "failed to read policy directory", Cause: err}
	}

	for _, entry := range entries {
		if entry.IsDir() || !isPolicyFile(entry.Name()) {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		set, err := LoadFile(path)
		if err != nil {
			return err
		}
		if err := r.Publish(set); err != nil {
			return &LoadError{Source: path, Message: "failed to publish", Cause: err}
		}
	}
	return nil
}

func isPolicyFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".yaml" || ext == ".yml"
}
