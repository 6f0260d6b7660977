package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect the effective configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the configuration after file, environment and defaults are merged",
	Run: func(cmd *cobra.Command, args []string) {
		if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
			printJSON(cfg)
			return
		}

		out, err := yaml.Marshal(cfg)
		if err != nil {
			exitWithError(cmd, nil, fmt.Errorf("encode config: %w", err))
		}
		_, _ = os.Stdout.Write(out)
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(configCmd)
}
