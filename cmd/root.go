package cmd

import (
	"fmt"
	"os"

	"github.com/mount-tech/typedb/cmd/kv"
	"github.com/mount-tech/typedb/cmd/util"
	"github.com/spf13/cobra"
)

const (
	Version = "0.3.0"
)

var (

	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "typedb",
		Short: "embedded file backed key-value store",
		Long: fmt.Sprintf(`typedb (v%s)

An embedded key-value store that keeps its whole mapping in a single file.
Any number of processes may open the same file; they coordinate through
advisory file locks.`, Version),
		SilenceUsage: true,
	}
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of typedb",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("typedb v%s\n", Version)
		},
	}
)

func init() {
	// Initialize viper
	cobra.OnInitialize(util.InitConfig)

	// Add Commands
	RootCmd.AddCommand(kv.KeyValueCommands)
	RootCmd.AddCommand(versionCmd)

	// Add Flags
	key := "log-level"
	RootCmd.PersistentFlags().String(key, "warn", util.WrapString("Log level (debug, info, warn, error)"))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
