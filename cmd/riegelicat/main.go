// Command riegelicat dumps the records in one or more record streams
// produced by package record, reading them through the ffi handle API, or
// with --buffer through an in-memory Chain copy of each file.
package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/rgli/riegeli/internal/xcmd"
)

var cmd Cmd

var rootCmd = &cobra.Command{
	Use:   "riegelicat [paths...]",
	Short: "Dump records from one or more record streams",
	Args:  cobra.MinimumNArgs(1),
	Run: func(rawCmd *cobra.Command, args []string) {
		cmd.Paths = args
		if err := run(cmd); err != nil {
			var sig xcmd.Interrupted
			if errors.As(err, &sig) {
				return
			}
			fmt.Printf("ERROR: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.Flags().StringVarP(&cmd.ConfigPath, "config", "c", "", "Path to an optional YAML config file")
	rootCmd.Flags().BoolVarP(&cmd.Follow, "follow", "f", false, "Wait for not-yet-present paths instead of failing immediately")
	rootCmd.Flags().DurationVar(&cmd.FollowTimeout, "follow-timeout", 30*time.Second, "How long --follow waits for a missing path")
	rootCmd.Flags().BoolVar(&cmd.Buffer, "buffer", false, "Copy each file into an in-memory chain before parsing records out of it")
	rootCmd.Flags().StringVar(&cmd.MinBlockSize, "min-block-size", "", "Chain block-size floor when --buffer is set, e.g. 4KiB")
	rootCmd.Flags().StringVar(&cmd.MaxBlockSize, "max-block-size", "", "Chain block-size ceiling when --buffer is set, e.g. 64KiB")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Printf("ERROR: %v\n", err)
		os.Exit(1)
	}
}
