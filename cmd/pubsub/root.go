package pubsub

import (
	"github.com/birchkv/birch/cmd/util"
	"github.com/birchkv/birch/rpc/client"
	"github.com/spf13/cobra"
)

var (
	rpcClient *client.Client

	// PubSubCommands represents the pub/sub command group
	PubSubCommands = &cobra.Command{
		Use:               "pubsub",
		Short:             "Publish and subscribe to channels",
		PersistentPreRunE: setupPubSubClient,
	}
)

func init() {
	// Initialize viper
	cobra.OnInitialize(util.InitClientConfig)

	// Add common RPC flags to the pubsub command
	util.SetupRPCClientFlags(PubSubCommands)

	// Add subcommands
	PubSubCommands.AddCommand(subCmd)
	PubSubCommands.AddCommand(pubCmd)
}

// setupPubSubClient initializes the RPC client
func setupPubSubClient(cmd *cobra.Command, _ []string) error {
	var err error
	rpcClient, err = util.NewRPCClient(cmd)
	return err
}
