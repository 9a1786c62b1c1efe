// Package xcode groups requested architectures into buildable units and
// drives one xcodebuild invocation per unit.
package xcode

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/podforge/podforge/internal/arch"
	"github.com/podforge/podforge/internal/localexec"
)

// Group is an ordered set of one or two architectures compiled in a single
// toolchain invocation. The toolchain accepts one SDK per invocation, so all
// members share a platform; legacy 32-bit/64-bit device or simulator pairs
// are built in the same pass.
type Group []arch.Architecture

// Primary returns the architecture whose identifier names the group's build
// log.
func (g Group) Primary() arch.Architecture {
	return g[0]
}

// Platform returns the platform shared by every member of the group.
func (g Group) Platform() arch.Platform {
	return arch.PlatformOf(g[0])
}

func (g Group) String() string {
	ids := make([]string, len(g))
	for i, a := range g {
		ids[i] = a.String()
	}
	return strings.Join(ids, "+")
}

// Legacy pairs built in one pass. Tried in this order, so grouping is
// deterministic for a given request.
var legacyPairs = [2][2]arch.Architecture{
	{arch.ARMv7, arch.ARM64},
	{arch.I386, arch.X8664},
}

// GroupArchitectures splits a requested architecture set into the minimum
// number of toolchain invocations. Both members of a legacy pair present in
// the request are emitted as one group; everything left over becomes a
// singleton group, in canonical architecture order. The catalyst
// pseudo-architecture is in no pair and therefore always builds alone.
// Identical input sets yield identical output ordering regardless of how the
// request was spelled.
func GroupArchitectures(requested []arch.Architecture) []Group {
	remaining := make(map[arch.Architecture]bool, len(requested))
	for _, a := range requested {
		remaining[a] = true
	}

	var groups []Group
	for _, pair := range legacyPairs {
		if remaining[pair[0]] && remaining[pair[1]] {
			groups = append(groups, Group{pair[0], pair[1]})
			delete(remaining, pair[0])
			delete(remaining, pair[1])
		}
	}
	for _, a := range arch.All {
		if remaining[a] {
			groups = append(groups, Group{a})
		}
	}
	return groups
}

// Product names that differ from the configured target name. Everything not
// listed here keeps its own name.
var productNames = map[string]string{
	"PromisesObjC":  "FBLPromises",
	"PromisesSwift": "Promises",
}

// ProductName returns the name the toolchain gives a target's built product.
func ProductName(target string) string {
	if name, ok := productNames[target]; ok {
		return name
	}
	return target
}

// BuildError reports a failed toolchain invocation. The build aborts; the
// captured output has already been persisted to LogPath.
type BuildError struct {
	Target   string
	Group    Group
	ExitCode int
	Output   string
	LogPath  string
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("xcodebuild failed for %s (%s) with exit code %d, log at %s",
		e.Target, e.Group, e.ExitCode, e.LogPath)
}

// Builder constructs and runs xcodebuild invocations for a Pods project.
type Builder struct {
	Runner     localexec.Runner
	ProjectDir string // project root containing the Pods directory
	Static     bool   // build for the static distribution mode
}

// BuildGroup compiles one architecture group of target below buildRoot and
// returns the path of the thin framework the toolchain produced. Captured
// output is written to logDir both on success (best effort) and on failure
// (required); a non-zero exit aborts the whole build with a *BuildError.
func (b *Builder) BuildGroup(ctx context.Context, target string, group Group, buildRoot, logDir string) (string, error) {
	platform := group.Platform()

	// The catalyst pseudo-architecture compiles as plain x86_64 with
	// catalyst support switched on, and lands in its own output folder.
	archs := group.String()
	catalyst := "NO"
	folder := platform.String()
	if platform == arch.Catalyst {
		archs = arch.X8664.String()
		catalyst = "YES"
	}

	cmd := localexec.Cmd{
		Argv: []string{
			"xcodebuild", "build",
			"-project", "Pods.xcodeproj",
			"-target", target,
			"-configuration", "Release",
			"-sdk", platform.SDK(),
			"SYMROOT=" + buildRoot,
			"ARCHS=" + strings.ReplaceAll(archs, "+", " "),
			"ONLY_ACTIVE_ARCH=NO",
			"BUILD_LIBRARY_FOR_DISTRIBUTION=YES",
			"SUPPORTS_MACCATALYST=" + catalyst,
			"GCC_GENERATE_DEBUGGING_SYMBOLS=NO",
			"OTHER_CFLAGS=" + b.otherCFlags(platform),
		},
		Dir: filepath.Join(b.ProjectDir, "Pods"),
	}

	res, err := b.Runner.Run(ctx, cmd, true)
	if err != nil {
		return "", fmt.Errorf("failed to run xcodebuild for %s: %w", target, err)
	}

	logPath := filepath.Join(logDir, fmt.Sprintf("%s-%s-%s.txt", target, group.Primary(), platform))
	if !res.Success() {
		if werr := os.WriteFile(logPath, []byte(res.Output), 0o644); werr != nil {
			return "", fmt.Errorf("build of %s (%s) failed with exit code %d and its log could not be written: %w",
				target, group, res.ExitCode, werr)
		}
		return "", &BuildError{
			Target:   target,
			Group:    group,
			ExitCode: res.ExitCode,
			Output:   res.Output,
			LogPath:  logPath,
		}
	}

	// The build succeeded; losing its log is not worth failing over.
	_ = os.WriteFile(logPath, []byte(res.Output), 0o644)

	return filepath.Join(buildRoot, "Release-"+folder, target, ProductName(target)+".framework"), nil
}

// otherCFlags joins the distribution-mode marker with the platform's extra
// compiler flags into the composite OTHER_CFLAGS value.
func (b *Builder) otherCFlags(platform arch.Platform) string {
	marker := "-DPODFORGE_DYNAMIC"
	if b.Static {
		marker = "-DPODFORGE_STATIC"
	}
	return strings.Join(append([]string{marker}, platform.ExtraFlags()...), " ")
}
