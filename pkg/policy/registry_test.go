package policy

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestRegistryPublishAndGet(t *testing.T) {
	r := NewRegistry()
	set := mustLoad(t, validSetYAML)

	if err := r.Publish(set); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	got, err := r.Get("v1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != set {
		t.Error("Get returned a different set than published")
	}

	if _, err := r.Get("v99"); !errors.Is(err, ErrVersionNotFound) {
		t.Errorf("unknown version error = %v, want ErrVersionNotFound", err)
	}
}

func TestRegistryVersionsImmutable(t *testing.T) {
	r := NewRegistry()
	set := mustLoad(t, validSetYAML)
	if err := r.Publish(set); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	// Republishing identical content is a no-op.
	same := mustLoad(t, validSetYAML)
	if err := r.Publish(same); err != nil {
		t.Errorf("identical republish rejected: %v", err)
	}

	// Republishing different content under the same version is rejected.
	altered := mustLoad(t, `
setId: payments
version: v1
default: halt
rules: []
`)
	if err := r.Publish(altered); !errors.Is(err, ErrVersionConflict) {
		t.Errorf("conflicting republish error = %v, want ErrVersionConflict", err)
	}

	// The original must be untouched.
	got, err := r.Get("v1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Default != OutcomeSuppress {
		t.Error("published set was mutated by rejected republish")
	}
}

func TestRegistryLoadDir(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) {
		t.Helper()
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}

	write("v1.yaml", validSetYAML)
	write("v2.yml", `
setId: payments
version: v2
default: halt
rules: []
`)
	write("notes.txt", "ignored")

	r := NewRegistry()
	if err := r.LoadDir(dir); err != nil {
		t.Fatalf("LoadDir failed: %v", err)
	}

	if got := r.Versions(); !reflect.DeepEqual(got, []string{"v1", "v2"}) {
		t.Errorf("versions = %v", got)
	}
}

func TestRegistryLoadDirAbortsOnBrokenFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "broken.yaml"), []byte("setId: s\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	r := NewRegistry()
	if err := r.LoadDir(dir); err == nil {
		t.Error("expected error for broken policy file")
	}
}
