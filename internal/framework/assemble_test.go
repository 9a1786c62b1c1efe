package framework

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/podforge/podforge/internal/arch"
	"github.com/podforge/podforge/internal/localexec"
	"github.com/podforge/podforge/internal/xcode"
)

// writeThin lays out the framework a successful thin build would have left
// under buildRoot.
func writeThin(t *testing.T, buildRoot, folder, target, product string) {
	t.Helper()
	dir := filepath.Join(buildRoot, "Release-"+folder, target, product+".framework")
	if err := os.MkdirAll(filepath.Join(dir, "Headers"), 0o755); err != nil {
		t.Fatal(err)
	}
	files := map[string]string{
		product:      "thin-binary-" + folder,
		"Info.plist": "<plist/>",
	}
	files[filepath.Join("Headers", product+".h")] = "// umbrella"
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func newAssembler(t *testing.T, fake *localexec.FakeRunner) *Assembler {
	t.Helper()
	root := t.TempDir()
	return &Assembler{
		Runner:    fake,
		Builder:   &xcode.Builder{Runner: fake, ProjectDir: root},
		OutputDir: filepath.Join(root, "out"),
		BuildDir:  filepath.Join(root, "build"),
		LogDir:    filepath.Join(root, "logs"),
	}
}

func TestAssembleMergesGroups(t *testing.T) {
	fake := localexec.NewFakeRunner()
	a := newAssembler(t, fake)
	writeThin(t, a.BuildDir, "iphoneos", "Alamofire", "Alamofire")
	writeThin(t, a.BuildDir, "iphonesimulator", "Alamofire", "Alamofire")

	merged, err := a.Assemble(context.Background(), "Alamofire",
		[]arch.Architecture{arch.ARMv7, arch.ARM64, arch.X8664})
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}

	if want := filepath.Join(a.OutputDir, "Alamofire.framework"); merged != want {
		t.Errorf("merged path = %q, want %q", merged, want)
	}
	for _, name := range []string{"Alamofire", "Info.plist", filepath.Join("Headers", "Alamofire.h")} {
		if _, err := os.Stat(filepath.Join(merged, name)); err != nil {
			t.Errorf("merged framework missing %s: %v", name, err)
		}
	}

	calls := fake.Calls()
	if len(calls) != 3 {
		t.Fatalf("ran %d commands, want 2 xcodebuild + 1 lipo", len(calls))
	}
	lipo := calls[2]
	if lipo.Argv[0] != "lipo" || lipo.Argv[1] != "-create" {
		t.Fatalf("final command = %q, want lipo -create", lipo.String())
	}
	line := lipo.String()
	deviceThin := filepath.Join(a.BuildDir, "Release-iphoneos", "Alamofire", "Alamofire.framework", "Alamofire")
	simThin := filepath.Join(a.BuildDir, "Release-iphonesimulator", "Alamofire", "Alamofire.framework", "Alamofire")
	mergedBin := filepath.Join(merged, "Alamofire")
	for _, p := range []string{deviceThin, simThin, "-output " + mergedBin} {
		if !strings.Contains(line, p) {
			t.Errorf("lipo invocation missing %q:\n%s", p, line)
		}
	}
}

func TestAssembleRealNameRemap(t *testing.T) {
	fake := localexec.NewFakeRunner()
	a := newAssembler(t, fake)
	writeThin(t, a.BuildDir, "iphoneos", "PromisesObjC", "FBLPromises")

	merged, err := a.Assemble(context.Background(), "PromisesObjC", []arch.Architecture{arch.ARM64})
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if !strings.Contains(merged, "FBLPromises.framework") {
		t.Errorf("merged path = %q, want FBLPromises container", merged)
	}
}

func TestAssembleClearsStaleOutput(t *testing.T) {
	fake := localexec.NewFakeRunner()
	a := newAssembler(t, fake)
	writeThin(t, a.BuildDir, "iphoneos", "Lib", "Lib")

	stale := filepath.Join(a.OutputDir, "leftover.txt")
	if err := os.MkdirAll(a.OutputDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(stale, []byte("old"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := a.Assemble(context.Background(), "Lib", []arch.Architecture{arch.ARM64}); err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Error("stale output dir contents survived Assemble")
	}
}

func TestAssembleAbortsOnBuildFailure(t *testing.T) {
	fake := localexec.NewFakeRunner()
	fake.Stub("xcodebuild", 65, "error: compile failed")
	a := newAssembler(t, fake)

	_, err := a.Assemble(context.Background(), "Lib", []arch.Architecture{arch.ARM64, arch.X8664})
	var buildErr *xcode.BuildError
	if !errors.As(err, &buildErr) {
		t.Fatalf("Assemble error = %v, want *xcode.BuildError", err)
	}

	// First group failed fatally: no further builds, no lipo, no container.
	if got := len(fake.Calls()); got != 1 {
		t.Errorf("ran %d commands after failure, want 1", got)
	}
	if _, err := os.Stat(filepath.Join(a.OutputDir, "Lib.framework")); !os.IsNotExist(err) {
		t.Error("merged container exists after aborted build")
	}
	if _, err := os.Stat(buildErr.LogPath); err != nil {
		t.Errorf("failure log missing: %v", err)
	}
}

func TestAssembleRejectsEmptyRequest(t *testing.T) {
	fake := localexec.NewFakeRunner()
	a := newAssembler(t, fake)

	if _, err := a.Assemble(context.Background(), "Lib", nil); err == nil {
		t.Fatal("Assemble accepted an empty architecture request")
	}
	if got := len(fake.Calls()); got != 0 {
		t.Errorf("ran %d commands for an empty request, want 0", got)
	}
}

func TestAssembleAbortsOnLipoFailure(t *testing.T) {
	fake := localexec.NewFakeRunner()
	fake.Stub("lipo", 1, "fatal error: can't open input file")
	a := newAssembler(t, fake)
	writeThin(t, a.BuildDir, "iphoneos", "Lib", "Lib")

	_, err := a.Assemble(context.Background(), "Lib", []arch.Architecture{arch.ARM64})
	if err == nil {
		t.Fatal("Assemble returned nil error on lipo failure")
	}
	if !strings.Contains(err.Error(), "exit code 1") || !strings.Contains(err.Error(), "can't open input file") {
		t.Errorf("lipo error = %q, want exit code and output surfaced", err)
	}
}
