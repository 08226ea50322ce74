package tx

import (
	"github.com/birchkv/birch/cmd/util"
	"github.com/birchkv/birch/rpc/client"
	"github.com/spf13/cobra"
)

var (
	rpcClient *client.Client

	// TxCommands represents the transaction command group
	TxCommands = &cobra.Command{
		Use:               "tx",
		Short:             "Run atomic command batches",
		PersistentPreRunE: setupTxClient,
	}
)

func init() {
	// Initialize viper
	cobra.OnInitialize(util.InitClientConfig)

	// Add common RPC flags to the tx command
	util.SetupRPCClientFlags(TxCommands)

	// Add subcommands
	TxCommands.AddCommand(demoCmd)
	TxCommands.AddCommand(perfTestCmd)
}

// setupTxClient initializes the RPC client
func setupTxClient(cmd *cobra.Command, _ []string) error {
	var err error
	rpcClient, err = util.NewRPCClient(cmd)
	return err
}
