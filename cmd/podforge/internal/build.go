package internal

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/podforge/podforge/internal/arch"
	"github.com/podforge/podforge/internal/cache"
	"github.com/podforge/podforge/internal/config"
	"github.com/podforge/podforge/internal/env"
	"github.com/podforge/podforge/internal/framework"
	"github.com/podforge/podforge/internal/localexec"
	"github.com/podforge/podforge/internal/xcode"
)

var (
	buildArchs   []string
	buildStatic  bool
	buildProject string
	buildLogs    string
	buildCache   string
	buildForce   bool
	buildVerbose bool
)

// defaultArchs is built when neither --archs nor podforge.toml says
// otherwise.
var defaultArchs = []string{"armv7", "arm64", "i386", "x86_64"}

var buildCmd = &cobra.Command{
	Use:   "build [target@version]",
	Short: "Build a pod target into a cached fat framework",
	Long: `Build compiles the named pod target once per architecture group,
merges the thin frameworks into one multi-architecture framework, and moves
it into the artifact cache. The cached path is printed on success.`,
	Args: cobra.ExactArgs(1),
	RunE: runBuild,
}

func init() {
	buildCmd.Flags().StringSliceVarP(&buildArchs, "archs", "a", nil, "Architectures to build (default from podforge.toml, else all device+simulator)")
	buildCmd.Flags().BoolVar(&buildStatic, "static", false, "Build the static distribution variant")
	buildCmd.Flags().StringVarP(&buildProject, "project", "p", ".", "Project root containing the Pods directory")
	buildCmd.Flags().StringVar(&buildLogs, "logs", "", "Directory for toolchain build logs")
	buildCmd.Flags().StringVar(&buildCache, "cache", "", "Artifact cache root")
	buildCmd.Flags().BoolVarP(&buildForce, "force", "f", false, "Rebuild even when the artifact is already cached")
	buildCmd.Flags().BoolVarP(&buildVerbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, args []string) error {
	if buildVerbose {
		log.SetLevel(log.DebugLevel)
	}

	target, version := parseTargetArg(args[0])

	projectDir, err := filepath.Abs(buildProject)
	if err != nil {
		return fmt.Errorf("failed to resolve project dir: %w", err)
	}
	cfg, err := config.Load(projectDir)
	if err != nil {
		return err
	}

	if version == "" {
		version = cfg.Versions[target]
	}
	if version == "" {
		return fmt.Errorf("no version for %s: pass %s@<version> or pin it in %s", target, target, config.FileName)
	}

	archNames := buildArchs
	if len(archNames) == 0 {
		archNames = cfg.Archs
	}
	if len(archNames) == 0 {
		archNames = defaultArchs
	}
	archs := make([]arch.Architecture, len(archNames))
	for i, name := range archNames {
		if archs[i], err = arch.Parse(name); err != nil {
			return err
		}
	}

	static := buildStatic || cfg.Static
	variant := cache.Dynamic
	if static {
		variant = cache.Static
	}

	cacheRoot := buildCache
	if cacheRoot == "" {
		cacheRoot = env.CacheDir()
	}
	c := cache.New(cacheRoot)

	if !buildForce && c.Has(target, version, variant) {
		cached, err := c.Path(target, version, variant)
		if err != nil {
			return err
		}
		log.Info("already cached", "target", target, "version", version)
		fmt.Println(cached)
		return nil
	}

	logDir := buildLogs
	if logDir == "" {
		logDir = env.LogDir()
	}

	// The workspace sits under the cache root so the finished framework
	// reaches the cache with a same-filesystem rename; a workspace on
	// another device (os.TempDir is commonly tmpfs) would make the final
	// move fail with a cross-device link error.
	tmpDir, err := c.Workspace(target, version)
	if err != nil {
		return err
	}
	defer os.RemoveAll(tmpDir)

	runner := &localexec.ProcessRunner{}
	asm := &framework.Assembler{
		Runner: runner,
		Builder: &xcode.Builder{
			Runner:     runner,
			ProjectDir: projectDir,
			Static:     static,
		},
		OutputDir: filepath.Join(tmpDir, "out"),
		BuildDir:  filepath.Join(tmpDir, "build"),
		LogDir:    logDir,
	}

	built, err := asm.Assemble(context.Background(), target, archs)
	if err != nil {
		return fmt.Errorf("failed to build %s@%s: %w", target, version, err)
	}

	cached, err := c.Store(target, version, built, variant)
	if err != nil {
		return err
	}

	log.Info("cached", "target", target, "version", version, "path", cached)
	fmt.Println(cached)
	return nil
}

// parseTargetArg parses a build argument in the form "target@version" or
// "target".
func parseTargetArg(arg string) (target, version string) {
	for i := len(arg) - 1; i >= 0; i-- {
		if arg[i] == '@' {
			return arg[:i], arg[i+1:]
		}
	}
	return arg, ""
}
