package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "progressctl",
	Short: "Offline project progress analytics",
	Long: `progressctl evaluates a snapshot file of tasks, status updates and milestones
and prints the same progress summary, delay table and milestone breakdown the API serves.
Snapshots are JSON or YAML with top-level "tasks", "updates" and "milestones" lists.`,
	SilenceUsage: true,
}

func main() {
	cobra.OnInitialize(initConfig)
	addPersistentFlags()
	rootCmd.AddCommand(summaryCmd())
	rootCmd.AddCommand(milestonesCmd())
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func initConfig() {
	viper.SetEnvPrefix("PROGRESSCTL")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func addPersistentFlags() {
	rootCmd.PersistentFlags().StringP("file", "f", "", "snapshot file (.json, .yaml or .yml)")
	rootCmd.PersistentFlags().String("now", "", "reference date YYYY-MM-DD (defaults to today)")
	rootCmd.PersistentFlags().Bool("json", false, "output JSON")
	_ = viper.BindPFlag("file", rootCmd.PersistentFlags().Lookup("file"))
	_ = viper.BindPFlag("now", rootCmd.PersistentFlags().Lookup("now"))
	_ = viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}
