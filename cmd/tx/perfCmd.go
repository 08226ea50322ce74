package tx

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/birchkv/birch/cmd/util"
	"github.com/birchkv/birch/rpc/tx"
	metrics "github.com/rcrowley/go-metrics"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	perfTestCmd = &cobra.Command{
		Use:     "perf",
		Short:   "Performance testing tool for command batches",
		RunE:    runPerf,
		PreRunE: processPerfConfig,
	}
	perfKeyPrefix  = "__test"
	perfBatchSize  = 10
	perfIterations = 1000
	perfNumThreads = 10
)

func init() {
	// add flags
	key := "batch-size"
	perfTestCmd.Flags().Int(key, 10, util.WrapString("Number of commands per batch"))
	key = "iterations"
	perfTestCmd.Flags().Int(key, 1000, util.WrapString("Number of batches to commit per thread"))
	key = "threads"
	perfTestCmd.Flags().Int(key, 10, util.WrapString("Number of threads committing batches concurrently"))
}

func processPerfConfig(cmd *cobra.Command, _ []string) error {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	// Read the configuration from the command line flags and environment variables
	perfBatchSize = viper.GetInt("batch-size")
	perfIterations = viper.GetInt("iterations")
	perfNumThreads = viper.GetInt("threads")

	return nil
}

func runPerf(_ *cobra.Command, _ []string) error {

	fmt.Println("Performance testing tool for command batches")

	// Print configuration
	fmt.Println()
	fmt.Println("Configuration:")
	fmt.Println(util.GetClientConfig().String())
	fmt.Printf("Threads:    %d\n", perfNumThreads)
	fmt.Printf("Batch size: %d\n", perfBatchSize)
	fmt.Printf("Iterations: %d\n", perfIterations)
	fmt.Println()

	fmt.Println("starting test...")

	commitTimer := metrics.NewTimer()

	var wg sync.WaitGroup
	start := time.Now()
	for thread := 0; thread < perfNumThreads; thread++ {
		wg.Add(1)
		go func(thread int) {
			defer wg.Done()
			for i := 0; i < perfIterations; i++ {
				batch := makeBatch(thread, i)

				t0 := time.Now()
				_, err := rpcClient.Run(batch)
				commitTimer.UpdateSince(t0)

				if err != nil {
					log.Printf("(thread %d) - error committing batch: %v\n", thread, err)
				}
			}
		}(thread)
	}
	wg.Wait()
	elapsed := time.Since(start)

	// cleanup
	for thread := 0; thread < perfNumThreads; thread++ {
		if err := rpcClient.Delete(fmt.Sprintf("%s-%d", perfKeyPrefix, thread)); err != nil {
			log.Printf("error deleting test key: %v\n", err)
		}
	}

	printTimer(commitTimer, elapsed)
	return nil
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// makeBatch builds a mixed batch: writes followed by a read per chunk, so the
// result contains one value per three commands.
func makeBatch(thread, iteration int) tx.Batch {
	key := fmt.Sprintf("%s-%d", perfKeyPrefix, thread)
	value := []byte(fmt.Sprintf("v%d", iteration))

	batch := make(tx.Batch, 0, perfBatchSize)
	for len(batch) < perfBatchSize {
		switch len(batch) % 3 {
		case 0:
			batch = append(batch, tx.Set(key, value))
		case 1:
			batch = append(batch, tx.Get(key))
		case 2:
			batch = append(batch, tx.Has(key))
		}
	}
	return batch
}

// printTimer prints the latency distribution and throughput of the run
func printTimer(timer metrics.Timer, elapsed time.Duration) {
	ps := timer.Percentiles([]float64{0.5, 0.95, 0.99})

	fmt.Println()
	fmt.Println("Results:")
	fmt.Printf("  %-12s: %d\n", "commits", timer.Count())
	fmt.Printf("  %-12s: %s\n", "mean", time.Duration(int64(timer.Mean())))
	fmt.Printf("  %-12s: %s\n", "p50", time.Duration(int64(ps[0])))
	fmt.Printf("  %-12s: %s\n", "p95", time.Duration(int64(ps[1])))
	fmt.Printf("  %-12s: %s\n", "p99", time.Duration(int64(ps[2])))
	fmt.Printf("  %-12s: %s\n", "max", time.Duration(timer.Max()))
	fmt.Printf("  %-12s: %.0f batches/sec\n", "throughput", float64(timer.Count())/elapsed.Seconds())
}
