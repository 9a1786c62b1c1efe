// Package framework assembles the thin frameworks produced per architecture
// group into one fat, multi-architecture framework.
package framework

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/podforge/podforge/internal/arch"
	"github.com/podforge/podforge/internal/localexec"
	"github.com/podforge/podforge/internal/xcode"
)

// Assembler drives thin builds for every architecture group and merges the
// results with lipo. Groups build sequentially; ownership of each thin
// framework passes to the assembler, which consumes it in the merge.
type Assembler struct {
	Runner  localexec.Runner
	Builder *xcode.Builder

	// OutputDir receives the merged framework. It is wiped and recreated on
	// every Assemble call.
	OutputDir string
	// BuildDir is handed to the toolchain as the root for thin build
	// products.
	BuildDir string
	// LogDir receives one build log per architecture group.
	LogDir string
}

// Assemble builds target for the requested architectures and returns the
// path of the merged framework inside OutputDir.
//
// lipo cannot combine a legacy 32-bit slice with certain modern slices in a
// single merge; such requests are not validated here and surface as a lipo
// failure.
func (a *Assembler) Assemble(ctx context.Context, target string, archs []arch.Architecture) (string, error) {
	if len(archs) == 0 {
		return "", fmt.Errorf("no architectures requested for %s", target)
	}
	if err := os.RemoveAll(a.OutputDir); err != nil {
		return "", fmt.Errorf("failed to clear output dir: %w", err)
	}
	if err := os.MkdirAll(a.OutputDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output dir: %w", err)
	}
	if err := os.MkdirAll(a.LogDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create log dir: %w", err)
	}

	groups := xcode.GroupArchitectures(archs)
	thins := make([]string, 0, len(groups))
	for _, g := range groups {
		log.Info("building", "target", target, "archs", g.String(), "sdk", g.Platform().SDK())
		thin, err := a.Builder.BuildGroup(ctx, target, g, a.BuildDir, a.LogDir)
		if err != nil {
			return "", err
		}
		thins = append(thins, thin)
	}

	product := xcode.ProductName(target)
	merged := filepath.Join(a.OutputDir, product+".framework")

	// The fat framework starts as a copy of the first thin one; lipo then
	// replaces the binary with the merged slices.
	if err := os.CopyFS(merged, os.DirFS(thins[0])); err != nil {
		return "", fmt.Errorf("failed to copy framework %s: %w", thins[0], err)
	}

	argv := []string{"lipo", "-create"}
	for _, thin := range thins {
		argv = append(argv, filepath.Join(thin, product))
	}
	argv = append(argv, "-output", filepath.Join(merged, product))

	log.Info("merging", "target", target, "groups", len(thins))
	res, err := a.Runner.Run(ctx, localexec.Cmd{Argv: argv}, true)
	if err != nil {
		return "", fmt.Errorf("failed to run lipo for %s: %w", target, err)
	}
	if !res.Success() {
		return "", fmt.Errorf("lipo failed for %s with exit code %d: %s", target, res.ExitCode, res.Output)
	}

	return merged, nil
}
