package internal

import (
	"github.com/spf13/cobra"

	"github.com/podforge/podforge/internal/headers"
)

var headersCmd = &cobra.Command{
	Use:   "headers [source] [dest]",
	Short: "Flatten an aliased Pods/Headers subtree into a canonical copy",
	Long: `Headers resolves every symlinked header reachable from the source
subtree (which must sit under a Pods/Headers directory) and copies it into
dest at the same relative path.`,
	Args: cobra.ExactArgs(2),
	RunE: runHeaders,
}

func init() {
	rootCmd.AddCommand(headersCmd)
}

func runHeaders(cmd *cobra.Command, args []string) error {
	return headers.Flatten(args[0], args[1])
}
