// Package headers flattens a tree of aliased (symlinked) header files into a
// canonical copy that preserves relative import paths.
//
// CocoaPods lays out public headers as forests of symlinks under
// Pods/Headers/. Distributing those verbatim would ship dangling links, so
// every header reachable from a subtree is resolved to its real file and
// copied under the destination at the same path it had relative to the
// subtree.
package headers

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// anchor is the canonical marker every header path must sit under. Paths are
// made relative to it rather than to the source root verbatim, so alternate
// absolute prefixes naming the same location (such as a resolved /private
// prefix on darwin) cannot skew the layout.
const anchor = "Pods/Headers"

// Flatten copies every header file reachable from srcRoot, through any
// symbolic links, into destRoot at its path relative to srcRoot. A path
// without the Pods/Headers anchor is a malformed layout and fails the whole
// operation.
func Flatten(srcRoot, destRoot string) error {
	rootRel, err := anchored(srcRoot)
	if err != nil {
		return err
	}

	return walk(srcRoot, func(path string) error {
		if !strings.HasSuffix(path, ".h") {
			return nil
		}
		pathRel, err := anchored(path)
		if err != nil {
			return err
		}
		rel := strings.TrimPrefix(strings.TrimPrefix(pathRel, rootRel), string(filepath.Separator))

		dest := filepath.Join(destRoot, rel)
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return fmt.Errorf("failed to create header dir: %w", err)
		}
		return copyResolved(path, dest)
	})
}

// anchored returns the portion of path below the Pods/Headers anchor.
func anchored(path string) (string, error) {
	i := strings.Index(path, anchor)
	if i < 0 {
		return "", fmt.Errorf("malformed header layout: %q is not under %s", path, anchor)
	}
	return strings.Trim(path[i+len(anchor):], string(filepath.Separator)), nil
}

// walk visits every regular file reachable from dir, descending through
// symlinked directories the way find -L does.
func walk(dir string, fn func(path string) error) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		path := filepath.Join(dir, e.Name())
		info, err := os.Stat(path)
		if err != nil {
			return err
		}
		if info.IsDir() {
			if err := walk(path, fn); err != nil {
				return err
			}
			continue
		}
		if err := fn(path); err != nil {
			return err
		}
	}
	return nil
}

// copyResolved copies the file at src, following it to its canonical
// location first, to dest.
func copyResolved(src, dest string) error {
	resolved, err := filepath.EvalSymlinks(src)
	if err != nil {
		return fmt.Errorf("failed to resolve header %s: %w", src, err)
	}
	in, err := os.Open(resolved)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
