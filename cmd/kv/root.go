package kv

import (
	"os"

	"github.com/mount-tech/typedb/cmd/util"
	"github.com/mount-tech/typedb/lib/store/fstore"
	"github.com/mount-tech/typedb/lib/value"
	"github.com/spf13/cobra"
)

var (
	kvStore *fstore.Store[string, value.Value]

	// KeyValueCommands represents the KV command group
	KeyValueCommands = &cobra.Command{
		Use:                "kv",
		Short:              "Perform key-value store operations",
		PersistentPreRunE:  setupStore,
		PersistentPostRunE: closeStore,
	}
)

func init() {
	// Add store flags to the KV command
	util.SetupStoreFlags(KeyValueCommands)

	// Add subcommands
	KeyValueCommands.AddCommand(setCmd)
	KeyValueCommands.AddCommand(getCmd)
	KeyValueCommands.AddCommand(delCmd)
	KeyValueCommands.AddCommand(hasCmd)
	KeyValueCommands.AddCommand(keysCmd)
	KeyValueCommands.AddCommand(dumpCmd)
	KeyValueCommands.AddCommand(incrCmd)
	KeyValueCommands.AddCommand(perfTestCmd)
}

// setupStore opens the configured store file
func setupStore(cmd *cobra.Command, _ []string) error {
	// Bind command flags to viper
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	if err := util.InitLogging(); err != nil {
		return err
	}

	// the perf command opens its own instances
	if cmd.Name() == "perf" {
		return nil
	}

	var err error
	kvStore, err = util.OpenStore()
	return err
}

// closeStore closes the store and prints metrics if requested
func closeStore(_ *cobra.Command, _ []string) error {
	util.WriteMetrics(os.Stdout)
	if kvStore == nil {
		return nil
	}
	return kvStore.Close()
}
