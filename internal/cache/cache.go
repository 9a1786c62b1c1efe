// Package cache stores finished fat frameworks on disk, keyed by target
// name, version and distribution variant.
//
// The cache root is an explicit value so tests can point it at a temporary
// directory. Nothing here locks: concurrent invocations against the same
// target and version must be serialized by the caller.
package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/mod/semver"
)

// Variant is the namespace separating the two supported distribution modes
// of the same artifact.
type Variant string

const (
	Dynamic Variant = ""
	Static  Variant = "static"
)

// Cache is the long-lived owner of every stored artifact below Root.
type Cache struct {
	Root string
}

func New(root string) *Cache {
	return &Cache{Root: root}
}

// workspaceDir holds in-flight build workspaces below Root. It is reserved:
// Targets never reports it, and keeping it on the cache's own filesystem is
// what lets Store move finished artifacts with a plain rename.
const workspaceDir = "tmp"

// Dir returns the directory that holds the artifact for one target version.
func (c *Cache) Dir(target, version string, v Variant) string {
	return filepath.Join(c.Root, string(v), target, version)
}

// Workspace creates a fresh temporary build directory on the same
// filesystem as the cache, so the artifact built inside it can be Stored
// with a rename rather than a cross-device copy. The caller removes it when
// the build is done.
func (c *Cache) Workspace(target, version string) (string, error) {
	root := filepath.Join(c.Root, workspaceDir)
	if err := os.MkdirAll(root, 0o755); err != nil {
		return "", fmt.Errorf("failed to create workspace root: %w", err)
	}
	dir, err := os.MkdirTemp(root, fmt.Sprintf("build-%s-%s-*", target, version))
	if err != nil {
		return "", fmt.Errorf("failed to create workspace: %w", err)
	}
	return dir, nil
}

// Has reports whether an artifact for the target version is already cached.
func (c *Cache) Has(target, version string, v Variant) bool {
	entries, err := os.ReadDir(c.Dir(target, version, v))
	return err == nil && len(entries) > 0
}

// Store moves a built framework into the cache and returns its new path. A
// prior artifact at the destination is removed first; the move requires the
// destination to be absent. Any filesystem failure is fatal — there is no
// partial-state recovery, the caller re-runs the build.
func (c *Cache) Store(target, version, builtPath string, v Variant) (string, error) {
	dir := c.Dir(target, version, v)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create cache dir: %w", err)
	}

	dest := filepath.Join(dir, filepath.Base(builtPath))
	if _, err := os.Lstat(dest); err == nil {
		if err := os.RemoveAll(dest); err != nil {
			return "", fmt.Errorf("failed to remove cached artifact: %w", err)
		}
	}
	if err := os.Rename(builtPath, dest); err != nil {
		return "", fmt.Errorf("failed to move %s into cache: %w", builtPath, err)
	}
	return dest, nil
}

// Path returns the location of a cached framework, or an error when nothing
// is cached for the target version.
func (c *Cache) Path(target, version string, v Variant) (string, error) {
	dir := c.Dir(target, version, v)
	entries, err := os.ReadDir(dir)
	if err != nil || len(entries) == 0 {
		return "", fmt.Errorf("no cached artifact for %s@%s", target, version)
	}
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".framework") {
			return filepath.Join(dir, e.Name()), nil
		}
	}
	return "", fmt.Errorf("no cached framework for %s@%s", target, version)
}

// Targets lists the cached target names for a variant, sorted.
func (c *Cache) Targets(v Variant) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(c.Root, string(v)))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var targets []string
	for _, e := range entries {
		// The static namespace and the build workspace live inside the
		// dynamic root.
		if !e.IsDir() {
			continue
		}
		if v == Dynamic && (e.Name() == string(Static) || e.Name() == workspaceDir) {
			continue
		}
		targets = append(targets, e.Name())
	}
	sort.Strings(targets)
	return targets, nil
}

// Versions lists the cached versions of a target, oldest first. Versions are
// ordered by semver where they parse as such, falling back to a plain string
// comparison.
func (c *Cache) Versions(target string, v Variant) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(c.Root, string(v), target))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var versions []string
	for _, e := range entries {
		if e.IsDir() {
			versions = append(versions, e.Name())
		}
	}
	sort.Slice(versions, func(i, j int) bool {
		if cmp := semver.Compare(canonical(versions[i]), canonical(versions[j])); cmp != 0 {
			return cmp < 0
		}
		return versions[i] < versions[j]
	})
	return versions, nil
}

// canonical maps a pod-style version ("1.2.3") onto the "v"-prefixed form
// the semver package expects.
func canonical(version string) string {
	if strings.HasPrefix(version, "v") {
		return version
	}
	return "v" + version
}
