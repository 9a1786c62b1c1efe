package internal

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/podforge/podforge/internal/cache"
	"github.com/podforge/podforge/internal/env"
)

var (
	listStatic bool
	listCache  string
)

var listCmd = &cobra.Command{
	Use:   "list [target]",
	Short: "List cached targets, or the cached versions of one target",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runList,
}

func init() {
	listCmd.Flags().BoolVar(&listStatic, "static", false, "List the static distribution variant")
	listCmd.Flags().StringVar(&listCache, "cache", "", "Artifact cache root")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	variant := cache.Dynamic
	if listStatic {
		variant = cache.Static
	}
	root := listCache
	if root == "" {
		root = env.CacheDir()
	}
	c := cache.New(root)

	if len(args) == 1 {
		versions, err := c.Versions(args[0], variant)
		if err != nil {
			return err
		}
		for _, v := range versions {
			fmt.Println(v)
		}
		return nil
	}

	targets, err := c.Targets(variant)
	if err != nil {
		return err
	}
	for _, t := range targets {
		fmt.Println(t)
	}
	return nil
}
