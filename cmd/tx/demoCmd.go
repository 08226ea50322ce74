package tx

import (
	"fmt"

	"github.com/birchkv/birch/rpc/tx"
	"github.com/spf13/cobra"
)

var (
	demoCmd = &cobra.Command{
		Use:   "demo",
		Short: "Runs a demonstration batch and prints the filtered results",
		Long: `Runs a batch of six commands atomically in one round trip:

  SET k1 "sad"     (acknowledgment only)
  SET k2 "windows" (acknowledgment only)
  GET k1           -> observes the first write
  SET k1 "nix"     (acknowledgment only)
  SET k2 "linux"   (acknowledgment only)
  GET k1           -> observes the second write

Acknowledgment-only entries are removed from the result, so the batch
yields exactly two values.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			batch := tx.Batch{
				tx.Set("k1", []byte("sad")),
				tx.Set("k2", []byte("windows")),
				tx.Get("k1"),
				tx.Set("k1", []byte("nix")),
				tx.Set("k2", []byte("linux")),
				tx.Get("k1"),
			}

			seq, err := rpcClient.Run(batch)
			if err != nil {
				return err
			}

			fmt.Printf("batch of %d commands committed, %d result(s):\n", len(batch), seq.Len())
			for i := 0; i < seq.Len(); i++ {
				fmt.Printf("  [%d] %s\n", i, seq.At(i))
			}
			return nil
		},
	}
)
