package cmd

import (
	"fmt"
	"os"

	"github.com/birchkv/birch/cmd/kv"
	"github.com/birchkv/birch/cmd/pubsub"
	"github.com/birchkv/birch/cmd/tx"
	"github.com/birchkv/birch/cmd/util"
	"github.com/spf13/cobra"
)

const (
	Version = "0.3.1"
)

var (

	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "birch",
		Short: "key-value store client",
		Long: fmt.Sprintf(`birch (v%s)

A key-value store client with atomic command batches and
channel-based publish/subscribe over a single connection.`, Version),
	}
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of birch",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("birch v%s\n", Version)
		},
	}
)

func init() {
	// Add Commands
	RootCmd.AddCommand(kv.KeyValueCommands)
	RootCmd.AddCommand(tx.TxCommands)
	RootCmd.AddCommand(pubsub.PubSubCommands)
	RootCmd.AddCommand(versionCmd)

	// Add Flags
	key := "serializer"
	RootCmd.PersistentFlags().String(key, "json", util.WrapString("serializer to use (json, gob, binary)"))
	key = "transport"
	RootCmd.PersistentFlags().String(key, "tcp", util.WrapString("transport to use (tcp, unix, memory)"))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
