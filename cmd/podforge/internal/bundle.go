package internal

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/podforge/podforge/internal/cache"
	"github.com/podforge/podforge/internal/env"
)

var (
	bundleStatic bool
	bundleCache  string
)

var bundleCmd = &cobra.Command{
	Use:   "bundle [out.zip] [target@version]...",
	Short: "Zip cached frameworks into one release archive",
	Long: `Bundle collects already-cached frameworks and writes them into a
single zip archive, each under <target>/<version>/. Every requested target
must be in the cache; bundle never builds.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runBundle,
}

func init() {
	bundleCmd.Flags().BoolVar(&bundleStatic, "static", false, "Bundle the static distribution variant")
	bundleCmd.Flags().StringVar(&bundleCache, "cache", "", "Artifact cache root")
	rootCmd.AddCommand(bundleCmd)
}

func runBundle(cmd *cobra.Command, args []string) error {
	variant := cache.Dynamic
	if bundleStatic {
		variant = cache.Static
	}
	root := bundleCache
	if root == "" {
		root = env.CacheDir()
	}
	c := cache.New(root)

	out, err := os.Create(args[0])
	if err != nil {
		return fmt.Errorf("failed to create archive: %w", err)
	}
	defer out.Close()

	w := zip.NewWriter(out)
	defer w.Close()

	for _, entry := range args[1:] {
		target, version := parseTargetArg(entry)
		if version == "" {
			return fmt.Errorf("bundle needs explicit versions, got %q", entry)
		}
		dir := c.Dir(target, version, variant)
		if !c.Has(target, version, variant) {
			return fmt.Errorf("%s@%s is not cached, build it first", target, version)
		}
		log.Info("bundling", "target", target, "version", version)
		if err := zipTree(w, dir, filepath.Join(target, version)); err != nil {
			return fmt.Errorf("failed to bundle %s@%s: %w", target, version, err)
		}
	}
	return nil
}

// zipTree writes the contents of srcDir into the archive below prefix.
func zipTree(w *zip.Writer, srcDir, prefix string) error {
	return filepath.Walk(srcDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(srcDir, path)
		if err != nil {
			return err
		}
		header, err := zip.FileInfoHeader(info)
		if err != nil {
			return err
		}
		header.Name = filepath.ToSlash(filepath.Join(prefix, rel))
		header.Method = zip.Deflate

		writer, err := w.CreateHeader(header)
		if err != nil {
			return err
		}
		file, err := os.Open(path)
		if err != nil {
			return err
		}
		defer file.Close()
		_, err = io.Copy(writer, file)
		return err
	})
}
