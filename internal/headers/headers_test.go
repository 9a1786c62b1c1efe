package headers

import (
	"os"
	"path/filepath"
	"testing"
)

func write(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestFlattenResolvesAliasedDir(t *testing.T) {
	tmp := t.TempDir()

	// Real headers live outside the Headers tree; the tree only links to
	// them, the way CocoaPods lays out Pods/Headers/Public.
	realDir := filepath.Join(tmp, "Pods", "Lib", "Sources")
	write(t, filepath.Join(realDir, "b.h"), "// contents of b.h")

	srcRoot := filepath.Join(tmp, "Pods", "Headers", "Public", "Lib")
	if err := os.MkdirAll(srcRoot, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink(realDir, filepath.Join(srcRoot, "A")); err != nil {
		t.Fatal(err)
	}

	destRoot := filepath.Join(tmp, "flat")
	if err := Flatten(srcRoot, destRoot); err != nil {
		t.Fatalf("Flatten: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(destRoot, "A", "b.h"))
	if err != nil {
		t.Fatalf("flattened header missing: %v", err)
	}
	if got, want := string(data), "// contents of b.h"; got != want {
		t.Errorf("flattened content = %q, want %q", got, want)
	}
}

func TestFlattenResolvesFileAliases(t *testing.T) {
	tmp := t.TempDir()

	write(t, filepath.Join(tmp, "elsewhere", "real.h"), "#import <real>")
	srcRoot := filepath.Join(tmp, "Pods", "Headers", "Private", "Lib")
	if err := os.MkdirAll(srcRoot, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink(filepath.Join(tmp, "elsewhere", "real.h"), filepath.Join(srcRoot, "real.h")); err != nil {
		t.Fatal(err)
	}

	destRoot := filepath.Join(tmp, "flat")
	if err := Flatten(srcRoot, destRoot); err != nil {
		t.Fatalf("Flatten: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(destRoot, "real.h"))
	if err != nil {
		t.Fatalf("flattened header missing: %v", err)
	}
	if got, want := string(data), "#import <real>"; got != want {
		t.Errorf("flattened content = %q, want %q", got, want)
	}
}

func TestFlattenPreservesNesting(t *testing.T) {
	tmp := t.TempDir()
	srcRoot := filepath.Join(tmp, "Pods", "Headers", "Public", "Lib")
	write(t, filepath.Join(srcRoot, "core", "deep", "c.h"), "// c")
	write(t, filepath.Join(srcRoot, "top.h"), "// top")
	write(t, filepath.Join(srcRoot, "README.md"), "not a header")

	destRoot := filepath.Join(tmp, "flat")
	if err := Flatten(srcRoot, destRoot); err != nil {
		t.Fatalf("Flatten: %v", err)
	}

	for _, rel := range []string{filepath.Join("core", "deep", "c.h"), "top.h"} {
		if _, err := os.Stat(filepath.Join(destRoot, rel)); err != nil {
			t.Errorf("missing %s: %v", rel, err)
		}
	}
	if _, err := os.Stat(filepath.Join(destRoot, "README.md")); !os.IsNotExist(err) {
		t.Error("non-header file was copied")
	}
}

func TestFlattenRejectsUnanchoredRoot(t *testing.T) {
	tmp := t.TempDir()
	write(t, filepath.Join(tmp, "somewhere", "a.h"), "// a")

	err := Flatten(filepath.Join(tmp, "somewhere"), filepath.Join(tmp, "flat"))
	if err == nil {
		t.Fatal("Flatten accepted a root outside Pods/Headers")
	}
}
