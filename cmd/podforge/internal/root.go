package internal

import (
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "podforge",
	Short: "podforge prebuilds pods into fat frameworks",
	Long: `podforge compiles pod library targets into distributable
multi-architecture frameworks and caches the results per version, so
unchanged artifacts are never rebuilt.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
