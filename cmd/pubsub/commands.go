package pubsub

import (
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

var (
	subCmd = &cobra.Command{
		Use:   "sub [channel]...",
		Short: "Subscribes to one or more channels and prints incoming messages",
		Long: `Subscribes to the given channels and prints every published message
until interrupted (Ctrl+C). All channels share the one underlying
connection.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var wg sync.WaitGroup
			for _, channel := range args {
				sub, err := rpcClient.Subscribe(channel)
				if err != nil {
					return fmt.Errorf("subscribe to %s: %w", channel, err)
				}
				defer sub.Close()

				wg.Add(1)
				go func() {
					defer wg.Done()
					for payload := range sub.C() {
						fmt.Printf("[%s] %s %s\n", sub.Channel(), time.Now().Format(time.TimeOnly), payload)
					}
					if err := sub.Err(); err != nil {
						fmt.Fprintf(os.Stderr, "[%s] subscription ended: %v\n", sub.Channel(), err)
					}
				}()
			}

			fmt.Printf("subscribed to %d channel(s), waiting for messages (Ctrl+C to quit)\n", len(args))

			// wait for interrupt or loss of all subscriptions
			interrupt := make(chan os.Signal, 1)
			signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

			done := make(chan struct{})
			go func() {
				wg.Wait()
				close(done)
			}()

			select {
			case <-interrupt:
			case <-done:
			}
			return nil
		},
	}
	pubCmd = &cobra.Command{
		Use:   "pub [channel] [payload]",
		Short: "Publishes a payload to a channel",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			channel := args[0]
			payload := args[1]
			if err := rpcClient.Publish(channel, []byte(payload)); err != nil {
				return err
			}
			fmt.Println("published successfully")
			return nil
		},
	}
)
